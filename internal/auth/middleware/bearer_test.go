package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/auth"
)

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, credential string) (auth.Identity, error) {
	if credential == "good" {
		return auth.Identity{ID: "u1", Name: "Ana", Email: "ana@example.com"}, nil
	}
	return auth.Identity{}, apperr.Unauthenticated("invalid token")
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireUser(stubResolver{}), func(c *gin.Context) {
		id, ok := auth.CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, id)
	})
	return r
}

func TestRequireUser(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid bearer", "Bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token good", http.StatusUnauthorized},
		{"rejected token", "Bearer bad", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			require.Equal(t, tt.status, rr.Code)
			if tt.status != http.StatusOK {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.NotEmpty(t, body["error"])
				return
			}

			var id auth.Identity
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &id))
			assert.Equal(t, "u1", id.ID)
		})
	}
}
