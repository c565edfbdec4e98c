package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/auth"
)

const (
	MinPasswordLength = 6
	// MaxPasswordBytes is the longest secret bcrypt accepts.
	MaxPasswordBytes = 72
)

var validate = validator.New()

// User is an account. Password holds the bcrypt digest; Token is the
// pending-action token used by confirmation and password reset.
type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Password      string     `json:"-"`
	Token         *string    `json:"-"`
	TokenIssuedAt *time.Time `json:"-"`
	Confirmed     bool       `json:"confirmed"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (u *User) Identity() auth.Identity {
	return auth.Identity{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (u *User) SetToken(token string, now time.Time) {
	u.Token = &token
	u.TokenIssuedAt = &now
}

func (u *User) ClearToken() {
	u.Token = nil
	u.TokenIssuedAt = nil
}

// RegisterRequest represents data needed to create a new user
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

func (r RegisterRequest) Validate() error {
	if r.Name == "" {
		return apperr.Validation("name is required")
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	return ValidatePassword(r.Password)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail accepts a bare mailbox only. Display names and comments
// ("Eve <eve@example.com>") are rejected so one mailbox maps to one
// stored address.
func ValidateEmail(email string) error {
	if email == "" {
		return apperr.Validation("email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return apperr.Validation("email is not valid")
	}
	return nil
}

// ValidatePassword checks the exact string that will be hashed.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return apperr.Validation("password is required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperr.Validation("password must be at least 6 characters")
	}
	if len(password) > MaxPasswordBytes {
		return apperr.Validation("password must be at most 72 bytes")
	}
	return nil
}
