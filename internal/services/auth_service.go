package services

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"bizdir/internal/auth"
	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
	"bizdir/internal/repos"
	"bizdir/internal/validate"
)

var ErrBadCreds = ierr.NewError("invalid email or password").
	WithHint("Invalid email or password.").
	Mark(ierr.ErrUnauthenticated)

type AuthService struct {
	store  repos.Store
	gate   *AccessGate
	tokens *auth.Tokens
}

func NewAuthService(store repos.Store, gate *AccessGate, tokens *auth.Tokens) *AuthService {
	return &AuthService{store: store, gate: gate, tokens: tokens}
}

// Login checks the password, binds the session id to the user and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, string, error) {
	u, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, "", ErrBadCreds
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", ErrBadCreds
	}
	if err := s.store.Users().BindSession(ctx, sid, u.ID); err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Generate(auth.Identity{ID: u.ID, Email: u.Email})
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.store.Users().UnbindSession(ctx, sid)
}

// CurrentIdentity resolves a session cookie to an identity.
func (s *AuthService) CurrentIdentity(ctx context.Context, sid string) (auth.Identity, bool) {
	u, err := s.store.Users().SessionUser(ctx, sid)
	if err != nil || u == nil {
		return auth.Identity{}, false
	}
	return auth.Identity{ID: u.ID, Email: u.Email}, true
}

func (s *AuthService) ParseToken(raw string) (auth.Identity, error) {
	return s.tokens.Parse(raw)
}

// UpgradeOwnRole is the self-service USER to BUSINESS_OWNER upgrade.
func (s *AuthService) UpgradeOwnRole(ctx context.Context, targetUserID string, role domain.Role) (*domain.User, error) {
	return s.gate.UpgradeOwnRole(ctx, targetUserID, role)
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Register creates a plain USER account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ierr.Internal(err, "hash password")
	}
	u := &domain.User{Email: in.Email, Name: in.Name, Hash: string(hash), Role: domain.RoleUser}
	if err := s.store.Users().Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
