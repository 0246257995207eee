package handler_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"plantsight_backend/internal/feature/auth/transport/handler"
	"plantsight_backend/internal/feature/auth/usecase"
)

// mockAuthUsecase はAuthUsecaseインターフェースのモック実装です。
type mockAuthUsecase struct {
	SignupFunc  func(ctx context.Context, email, password string) error
	LoginFunc   func(ctx context.Context, email, password, userAgent, ipAddress string) (*usecase.TokenPair, error)
	RefreshFunc func(ctx context.Context, refreshToken, userAgent, ipAddress string) (*usecase.TokenPair, error)
	LogoutFunc  func(ctx context.Context, refreshToken string) error
}

func (m *mockAuthUsecase) Signup(ctx context.Context, email, password string) error {
	return m.SignupFunc(ctx, email, password)
}

func (m *mockAuthUsecase) Login(ctx context.Context, email, password, userAgent, ipAddress string) (*usecase.TokenPair, error) {
	return m.LoginFunc(ctx, email, password, userAgent, ipAddress)
}

func (m *mockAuthUsecase) Refresh(ctx context.Context, refreshToken, userAgent, ipAddress string) (*usecase.TokenPair, error) {
	return m.RefreshFunc(ctx, refreshToken, userAgent, ipAddress)
}

func (m *mockAuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	return m.LogoutFunc(ctx, refreshToken)
}

// newAuthRouter はテスト用のGinルータを生成します。
func newAuthRouter(h *handler.AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	r.POST("/refresh", h.Refresh)
	r.POST("/logout", h.Logout)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		signupFunc     func(ctx context.Context, email, password string) error
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"email":"test@example.com","password":"password123"}`,
			signupFunc: func(ctx context.Context, email, password string) error {
				return nil
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"message":"ok"}`,
		},
		{
			name:           "error: invalid email",
			body:           `{"email":"not-an-email","password":"password123"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request"}`,
		},
		{
			name:           "error: missing password",
			body:           `{"email":"test@example.com"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request"}`,
		},
		{
			name: "error: duplicate email is not disclosed",
			body: `{"email":"test@example.com","password":"password123"}`,
			signupFunc: func(ctx context.Context, email, password string) error {
				return usecase.ErrEmailAlreadyExists
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"signup failed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewAuthHandler(&mockAuthUsecase{SignupFunc: tt.signupFunc})
			w := postJSON(newAuthRouter(h), "/signup", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success: returns token pair", func(t *testing.T) {
		h := handler.NewAuthHandler(&mockAuthUsecase{
			LoginFunc: func(ctx context.Context, email, password, userAgent, ipAddress string) (*usecase.TokenPair, error) {
				assert.Equal(t, "test@example.com", email)
				return &usecase.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
			},
		})
		w := postJSON(newAuthRouter(h), "/login", `{"email":"test@example.com","password":"password123"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"access_token":"access","refresh_token":"refresh"}`, w.Body.String())
	})

	t.Run("error: bad credentials", func(t *testing.T) {
		h := handler.NewAuthHandler(&mockAuthUsecase{
			LoginFunc: func(ctx context.Context, email, password, userAgent, ipAddress string) (*usecase.TokenPair, error) {
				return nil, errors.New("invalid email or password")
			},
		})
		w := postJSON(newAuthRouter(h), "/login", `{"email":"test@example.com","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"invalid email or password"}`, w.Body.String())
	})

	t.Run("error: malformed body", func(t *testing.T) {
		h := handler.NewAuthHandler(&mockAuthUsecase{})
		w := postJSON(newAuthRouter(h), "/login", `{`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("success: returns rotated pair", func(t *testing.T) {
		h := handler.NewAuthHandler(&mockAuthUsecase{
			RefreshFunc: func(ctx context.Context, refreshToken, userAgent, ipAddress string) (*usecase.TokenPair, error) {
				assert.Equal(t, "old-token", refreshToken)
				return &usecase.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
			},
		})
		w := postJSON(newAuthRouter(h), "/refresh", `{"refresh_token":"old-token"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"access_token":"new-access","refresh_token":"new-refresh"}`, w.Body.String())
	})

	t.Run("error: invalid refresh token", func(t *testing.T) {
		h := handler.NewAuthHandler(&mockAuthUsecase{
			RefreshFunc: func(ctx context.Context, refreshToken, userAgent, ipAddress string) (*usecase.TokenPair, error) {
				return nil, usecase.ErrInvalidRefreshToken
			},
		})
		w := postJSON(newAuthRouter(h), "/refresh", `{"refresh_token":"bad-token"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"invalid refresh token"}`, w.Body.String())
	})

	t.Run("error: missing token", func(t *testing.T) {
		h := handler.NewAuthHandler(&mockAuthUsecase{})
		w := postJSON(newAuthRouter(h), "/refresh", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		called := false
		h := handler.NewAuthHandler(&mockAuthUsecase{
			LogoutFunc: func(ctx context.Context, refreshToken string) error {
				called = true
				return nil
			},
		})
		w := postJSON(newAuthRouter(h), "/logout", `{"refresh_token":"token"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})

	t.Run("error: usecase failure", func(t *testing.T) {
		h := handler.NewAuthHandler(&mockAuthUsecase{
			LogoutFunc: func(ctx context.Context, refreshToken string) error {
				return errors.New("redis down")
			},
		})
		w := postJSON(newAuthRouter(h), "/logout", `{"refresh_token":"token"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
