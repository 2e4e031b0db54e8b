package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SebastienDelgado/detachements-backend/internal/auth"
	autherrors "github.com/SebastienDelgado/detachements-backend/internal/auth/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeAuthService struct {
	loginFn func(ctx context.Context, email, password string) (string, auth.AuthResponse, error)
	getMeFn func(ctx context.Context, adminID string) (*auth.AuthResponse, error)
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, auth.AuthResponse, error) {
	return f.loginFn(ctx, email, password)
}
func (f *fakeAuthService) GetMe(ctx context.Context, adminID string) (*auth.AuthResponse, error) {
	return f.getMeFn(ctx, adminID)
}
func (f *fakeAuthService) EnsureSeedAdmin(ctx context.Context) error { return nil }

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success sets cookie and returns token", func(t *testing.T) {
		adminID := uuid.New().String()
		svc := &fakeAuthService{
			loginFn: func(ctx context.Context, email, password string) (string, auth.AuthResponse, error) {
				assert.Equal(t, "sophie.martin@exemple.fr", email)
				assert.Equal(t, "motdepasse", password)
				return "jwt-token", auth.AuthResponse{
					ID:    adminID,
					Email: email,
					Name:  "Sophie Martin",
					Role:  "admin",
				}, nil
			},
		}

		h := auth.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"email":"sophie.martin@exemple.fr","password":"motdepasse"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Login(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var cookie *http.Cookie
		for _, ck := range w.Result().Cookies() {
			if ck.Name == "access_token" {
				cookie = ck
			}
		}
		assert.NotNil(t, cookie)
		assert.Equal(t, "jwt-token", cookie.Value)
		assert.True(t, cookie.HttpOnly)

		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got struct {
			User        auth.AuthResponse `json:"user"`
			AccessToken string            `json:"access_token"`
		}
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Equal(t, "jwt-token", got.AccessToken)
		assert.Equal(t, adminID, got.User.ID)
		assert.Equal(t, "admin", got.User.Role)
	})

	t.Run("negative validation error", func(t *testing.T) {
		h := auth.NewHandler(&fakeAuthService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"pas-un-email"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Login(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("negative invalid credentials", func(t *testing.T) {
		svc := &fakeAuthService{
			loginFn: func(ctx context.Context, email, password string) (string, auth.AuthResponse, error) {
				return "", auth.AuthResponse{}, autherrors.ErrInvalidCredentials
			},
		}

		h := auth.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"email":"sophie.martin@exemple.fr","password":"mauvais"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Login(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
		assert.Equal(t, "Adresse e-mail ou mot de passe incorrect.", env.Error.Message)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		adminID := uuid.New().String()
		svc := &fakeAuthService{
			getMeFn: func(ctx context.Context, id string) (*auth.AuthResponse, error) {
				assert.Equal(t, adminID, id)
				return &auth.AuthResponse{ID: id, Email: "sophie.martin@exemple.fr", Name: "Sophie Martin", Role: "admin"}, nil
			},
		}

		h := auth.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		c.Set("admin_id", adminID)

		h.Me(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got auth.AuthResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Equal(t, adminID, got.ID)
	})

	t.Run("negative missing identity", func(t *testing.T) {
		h := auth.NewHandler(&fakeAuthService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)

		h.Me(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	})

	t.Run("negative disabled account", func(t *testing.T) {
		svc := &fakeAuthService{
			getMeFn: func(ctx context.Context, id string) (*auth.AuthResponse, error) {
				return nil, autherrors.ErrAccountDisabled
			},
		}

		h := auth.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		c.Set("admin_id", uuid.New().String())

		h.Me(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("success clears cookie", func(t *testing.T) {
		h := auth.NewHandler(&fakeAuthService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)

		h.Logout(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var cookie *http.Cookie
		for _, ck := range w.Result().Cookies() {
			if ck.Name == "access_token" {
				cookie = ck
			}
		}
		assert.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Equal(t, -1, cookie.MaxAge)
	})
}
