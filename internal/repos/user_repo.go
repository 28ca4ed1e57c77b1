package repos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
)

type UserRepo struct{ db sqlx.ExtContext }

func NewUserRepo(db sqlx.ExtContext) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, email, name, password_hash, role, created_at, updated_at`

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	q := r.db.Rebind(`SELECT ` + userCols + ` FROM users WHERE LOWER(email)=LOWER(?)`)
	if err := sqlx.GetContext(ctx, r.db, &u, q, strings.TrimSpace(email)); err != nil {
		return nil, translate(err, "user", "")
	}
	return &u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	q := r.db.Rebind(`SELECT ` + userCols + ` FROM users WHERE id=?`)
	if err := sqlx.GetContext(ctx, r.db, &u, q, id); err != nil {
		return nil, translate(err, "user", "")
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	u.CreatedAt = Timestamp(Now())
	u.UpdatedAt = u.CreatedAt
	q := r.db.Rebind(`INSERT INTO users(` + userCols + `) VALUES(?,?,?,?,?,?,?)`)
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.Name, u.Hash, string(u.Role), u.CreatedAt, u.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		return ierr.NewError("email already registered").
			WithHint("An account with this email already exists.").
			Mark(ierr.ErrInvalidInput)
	}
	return translate(err, "user", "")
}

func (r *UserRepo) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	q := r.db.Rebind(`UPDATE users SET role=?, updated_at=? WHERE id=?`)
	res, err := r.db.ExecContext(ctx, q, string(role), Timestamp(Now()), id)
	if err != nil {
		return ierr.Internal(err, "update role")
	}
	return mustAffect(res, "user")
}

func (r *UserRepo) BindSession(ctx context.Context, sid, userID string) error {
	now := Timestamp(Now())
	q := r.db.Rebind(`INSERT INTO sessions(id,user_id,created_at,last_seen)
                       VALUES(?,?,?,?)
                       ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=excluded.last_seen`)
	if _, err := r.db.ExecContext(ctx, q, sid, userID, now, now); err != nil {
		return ierr.Internal(err, "bind session")
	}
	return nil
}

// SessionUser resolves the user bound to sid and marks the session as seen.
func (r *UserRepo) SessionUser(ctx context.Context, sid string) (*domain.User, error) {
	var u domain.User
	q := r.db.Rebind(`
      SELECT u.id,u.email,u.name,u.password_hash,u.role,u.created_at,u.updated_at
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`)
	if err := sqlx.GetContext(ctx, r.db, &u, q, sid); err != nil {
		return nil, translate(err, "session", "")
	}
	_, _ = r.db.ExecContext(ctx, r.db.Rebind(`UPDATE sessions SET last_seen=? WHERE id=?`), Timestamp(Now()), sid)
	return &u, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	q := r.db.Rebind(`UPDATE sessions SET user_id=NULL,last_seen=? WHERE id=?`)
	if _, err := r.db.ExecContext(ctx, q, Timestamp(Now()), sid); err != nil {
		return ierr.Internal(err, "unbind session")
	}
	return nil
}

func (r *UserRepo) PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE last_seen < ?`), Timestamp(cutoff))
	if err != nil {
		return 0, ierr.Internal(err, "purge sessions")
	}
	return res.RowsAffected()
}
