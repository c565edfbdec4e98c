package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/auth"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/logging"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/mailer"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/users/domain"
)

// Repository is the user store consumed by UserService.
type Repository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByToken(ctx context.Context, token string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	ClearStaleTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

type TokenIssuer interface {
	Issue(subjectID string, ttl time.Duration) (string, error)
}

// Session is what a successful login returns.
type Session struct {
	auth.Identity
	Token string `json:"token"`
}

type UserService struct {
	repo     Repository
	tokens   TokenIssuer
	mail     mailer.Mailer
	tokenTTL time.Duration
	now      func() time.Time
}

func NewUserService(repo Repository, tokens TokenIssuer, mail mailer.Mailer, tokenTTL time.Duration) *UserService {
	return &UserService{
		repo:     repo,
		tokens:   tokens,
		mail:     mail,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Register creates an unconfirmed account and mails its confirmation link.
func (s *UserService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	_, err := s.repo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, apperr.Conflict("user already registered")
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	digest, err := hashPassword("register", req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Email:    req.Email,
		Password: digest,
	}
	user.SetToken(newPendingToken(), s.now())

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.notify(ctx, "users.register", func() error {
		return s.mail.SendConfirmation(ctx, mailer.Message{To: user.Email, Name: user.Name, Token: *user.Token})
	})
	return user, nil
}

// Login checks the credentials of a confirmed account and issues a bearer token.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}

	if !user.Confirmed {
		return nil, apperr.Forbidden("account not confirmed")
	}
	if !auth.ComparePassword(password, user.Password) {
		return nil, apperr.Unauthenticated("incorrect password")
	}

	token, err := s.tokens.Issue(user.ID, s.tokenTTL)
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}
	return &Session{Identity: user.Identity(), Token: token}, nil
}

// Confirm marks the account holding token as confirmed.
func (s *UserService) Confirm(ctx context.Context, token string) error {
	user, err := s.findByToken(ctx, token)
	if err != nil {
		return err
	}

	user.Confirmed = true
	user.ClearToken()
	return s.repo.Update(ctx, user)
}

// ForgotPassword issues a fresh pending-action token and mails the reset link.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if apperr.IsNotFound(err) {
			return apperr.NotFound("user not found")
		}
		return err
	}

	user.SetToken(newPendingToken(), s.now())
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.notify(ctx, "users.forgot_password", func() error {
		return s.mail.SendPasswordReset(ctx, mailer.Message{To: user.Email, Name: user.Name, Token: *user.Token})
	})
	return nil
}

// CheckResetToken reports whether token belongs to an account.
func (s *UserService) CheckResetToken(ctx context.Context, token string) error {
	_, err := s.findByToken(ctx, token)
	return err
}

// ResetPassword replaces the password of the account holding token.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	if err := domain.ValidatePassword(password); err != nil {
		return err
	}

	user, err := s.findByToken(ctx, token)
	if err != nil {
		return err
	}

	digest, err := hashPassword("reset password", password)
	if err != nil {
		return err
	}
	user.Password = digest
	user.ClearToken()
	return s.repo.Update(ctx, user)
}

func hashPassword(op, password string) (string, error) {
	digest, err := auth.HashPassword(password)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			return "", err
		}
		return "", apperr.Internal(op, err)
	}
	return digest, nil
}

// PurgeStaleTokens clears pending-action tokens older than ttl.
func (s *UserService) PurgeStaleTokens(ctx context.Context, ttl time.Duration) (int64, error) {
	return s.repo.ClearStaleTokens(ctx, s.now().Add(-ttl))
}

func (s *UserService) findByToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, apperr.NotFound("invalid token")
	}
	user, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("invalid token")
		}
		return nil, err
	}
	return user, nil
}

// notify sends mail without failing the operation that triggered it.
func (s *UserService) notify(ctx context.Context, operation string, send func() error) {
	if err := send(); err != nil {
		logging.FromContext(ctx).Error(operation, err)
	}
}

func newPendingToken() string {
	return uuid.NewString()
}
