package memstore

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"

	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
	"bizdir/internal/repos"
)

type userRepo struct{ s *Store }

func (r userRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	defer r.s.lock()()
	u, ok := r.s.db.st.users[id]
	if !ok {
		return nil, repos.NotFound("user")
	}
	return &u, nil
}

func (r userRepo) byEmail(email string) (domain.User, bool) {
	email = strings.TrimSpace(email)
	return lo.Find(lo.Values(r.s.db.st.users), func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	defer r.s.lock()()
	u, ok := r.byEmail(email)
	if !ok {
		return nil, repos.NotFound("user")
	}
	return &u, nil
}

func (r userRepo) Create(_ context.Context, u *domain.User) error {
	defer r.s.lock()()
	if _, taken := r.byEmail(u.Email); taken {
		return ierr.NewError("email already registered").
			WithHint("An account with this email already exists.").
			Mark(ierr.ErrInvalidInput)
	}
	u.ID = newID(u.ID)
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	r.s.db.st.users[u.ID] = *u
	return nil
}

func (r userRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	defer r.s.lock()()
	u, ok := r.s.db.st.users[id]
	if !ok {
		return repos.NotFound("user")
	}
	u.Role = role
	u.UpdatedAt = now()
	r.s.db.st.users[id] = u
	return nil
}

func (r userRepo) BindSession(_ context.Context, sid, userID string) error {
	defer r.s.lock()()
	r.s.db.st.sessions[sid] = session{userID: userID, lastSeen: repos.Now()}
	return nil
}

func (r userRepo) SessionUser(_ context.Context, sid string) (*domain.User, error) {
	defer r.s.lock()()
	sess, ok := r.s.db.st.sessions[sid]
	if !ok || sess.userID == "" {
		return nil, repos.NotFound("session")
	}
	u, ok := r.s.db.st.users[sess.userID]
	if !ok {
		return nil, repos.NotFound("session")
	}
	sess.lastSeen = repos.Now()
	r.s.db.st.sessions[sid] = sess
	return &u, nil
}

func (r userRepo) UnbindSession(_ context.Context, sid string) error {
	defer r.s.lock()()
	if sess, ok := r.s.db.st.sessions[sid]; ok {
		sess.userID = ""
		sess.lastSeen = repos.Now()
		r.s.db.st.sessions[sid] = sess
	}
	return nil
}

func (r userRepo) PurgeSessions(_ context.Context, cutoff time.Time) (int64, error) {
	defer r.s.lock()()
	var n int64
	for sid, sess := range r.s.db.st.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(r.s.db.st.sessions, sid)
			n++
		}
	}
	return n, nil
}
