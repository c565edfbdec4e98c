package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"cora@example.com", true},
		{"cora.b+tasks@mail.example.com", true},
		{"", false},
		{"not-an-email", false},
		{"Eve <cora@example.com>", false},
		{"cora@example.com (comment)", false},
		{"<cora@example.com>", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret"))
	assert.NoError(t, ValidatePassword("  abc   "), "counted as typed, eight characters")
	assert.NoError(t, ValidatePassword(strings.Repeat("p", MaxPasswordBytes)))

	for _, pw := range []string{"", "       ", "abc", strings.Repeat("p", MaxPasswordBytes+1), strings.Repeat("é", 37)} {
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(ValidatePassword(pw)), "%q", pw)
	}
}

func TestRegisterRequest_Normalize(t *testing.T) {
	r := RegisterRequest{Name: "  Cora ", Email: " CORA@Example.COM ", Password: " pw "}
	r.Normalize()

	assert.Equal(t, "Cora", r.Name)
	assert.Equal(t, "cora@example.com", r.Email)
	assert.Equal(t, " pw ", r.Password)
}
