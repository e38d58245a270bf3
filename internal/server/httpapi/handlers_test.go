package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authkeeper/internal/common"
	"authkeeper/internal/logging"
	"authkeeper/internal/server/models"
	"authkeeper/internal/server/services"
)

// stubUserService lets each test script the services layer.
type stubUserService struct {
	registerFn      func(ctx context.Context, in services.RegisterInput) (*models.User, error)
	loginFn         func(ctx context.Context, login, password string) (*services.TokenPair, error)
	refreshFn       func(ctx context.Context, token string) (*services.TokenPair, error)
	logoutFn        func(ctx context.Context, token string) error
	authenticateFn  func(ctx context.Context, token string) (*models.User, error)
	requireAdminFn  func(user *models.User) error
	updateProfileFn func(ctx context.Context, userID int64, email, fullName *string) (*models.User, error)
	listUsersFn     func(ctx context.Context, skip, limit int) ([]*models.User, error)
	deleteUserFn    func(ctx context.Context, callerID, targetID int64) error
}

func (s *stubUserService) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	return s.registerFn(ctx, in)
}
func (s *stubUserService) Login(ctx context.Context, login, password string) (*services.TokenPair, error) {
	return s.loginFn(ctx, login, password)
}
func (s *stubUserService) Refresh(ctx context.Context, token string) (*services.TokenPair, error) {
	return s.refreshFn(ctx, token)
}
func (s *stubUserService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}
func (s *stubUserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	return s.authenticateFn(ctx, token)
}
func (s *stubUserService) RequireAdmin(user *models.User) error {
	return s.requireAdminFn(user)
}
func (s *stubUserService) UpdateProfile(ctx context.Context, userID int64, email, fullName *string) (*models.User, error) {
	return s.updateProfileFn(ctx, userID, email, fullName)
}
func (s *stubUserService) ListUsers(ctx context.Context, skip, limit int) ([]*models.User, error) {
	return s.listUsersFn(ctx, skip, limit)
}
func (s *stubUserService) DeleteUser(ctx context.Context, callerID, targetID int64) error {
	return s.deleteUserFn(ctx, callerID, targetID)
}

func newTestServer(t *testing.T, svc UserService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewServer(":0", "test", logger, svc).Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sampleUser() *models.User {
	return &models.User{
		ID:        1,
		Email:     "alice@x.com",
		Username:  "alice",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

func TestRegister_Created(t *testing.T) {
	svc := &stubUserService{
		registerFn: func(ctx context.Context, in services.RegisterInput) (*models.User, error) {
			assert.Equal(t, "alice@x.com", in.Email)
			assert.False(t, in.IsAdmin, "public registration must never set admin")
			return sampleUser(), nil
		},
	}
	router := newTestServer(t, svc)

	w := doJSON(t, router, http.MethodPost, "/auth/register",
		`{"email":"alice@x.com","username":"alice","password":"Passw0rd1"}`, nil)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
	assert.True(t, resp.IsActive)
	assert.False(t, resp.IsAdmin)
}

func TestRegister_Conflict(t *testing.T) {
	svc := &stubUserService{
		registerFn: func(ctx context.Context, in services.RegisterInput) (*models.User, error) {
			return nil, fmt.Errorf("%w: email already registered", common.ErrConflict)
		},
	}
	router := newTestServer(t, svc)

	w := doJSON(t, router, http.MethodPost, "/auth/register",
		`{"email":"alice@x.com","username":"alice","password":"Passw0rd1"}`, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")
}

func TestRegister_MissingFields(t *testing.T) {
	svc := &stubUserService{}
	router := newTestServer(t, svc)

	w := doJSON(t, router, http.MethodPost, "/auth/register", `{"email":"a@x.com"}`, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRegister_ValidationFailed(t *testing.T) {
	svc := &stubUserService{
		registerFn: func(ctx context.Context, in services.RegisterInput) (*models.User, error) {
			return nil, fmt.Errorf("%w: password must be at least 8 characters", common.ErrValidation)
		},
	}
	router := newTestServer(t, svc)

	w := doJSON(t, router, http.MethodPost, "/auth/register",
		`{"email":"a@x.com","username":"alice","password":"weak"}`, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "at least 8 characters")
}

func TestLogin_Success(t *testing.T) {
	svc := &stubUserService{
		loginFn: func(ctx context.Context, login, password string) (*services.TokenPair, error) {
			assert.Equal(t, "alice", login)
			return &services.TokenPair{AccessToken: "acc", RefreshToken: "ref", ExpiresIn: 3600}, nil
		},
	}
	router := newTestServer(t, svc)

	w := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"username":"alice","password":"Passw0rd!"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "acc", resp.AccessToken)
	assert.Equal(t, "ref", resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
}

func TestLogin_UnauthorizedIsOpaque(t *testing.T) {
	svc := &stubUserService{
		loginFn: func(ctx context.Context, login, password string) (*services.TokenPair, error) {
			return nil, common.ErrUnauthorized
		},
	}
	router := newTestServer(t, svc)

	w := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"username":"alice","password":"nope"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"detail":"could not validate credentials"}`, w.Body.String())
}

func TestRefresh_SuccessAndReplay(t *testing.T) {
	used := map[string]bool{}
	svc := &stubUserService{
		refreshFn: func(ctx context.Context, token string) (*services.TokenPair, error) {
			if used[token] {
				return nil, common.ErrUnauthorized
			}
			used[token] = true
			return &services.TokenPair{AccessToken: "acc2", RefreshToken: "ref2", ExpiresIn: 3600}, nil
		},
	}
	router := newTestServer(t, svc)

	w := doJSON(t, router, http.MethodPost, "/auth/refresh", `{"refresh_token":"ref1"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/auth/refresh", `{"refresh_token":"ref1"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_OK(t *testing.T) {
	svc := &stubUserService{
		logoutFn: func(ctx context.Context, token string) error { return nil },
	}
	router := newTestServer(t, svc)

	w := doJSON(t, router, http.MethodPost, "/auth/logout", `{"refresh_token":"ref"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetSelf(t *testing.T) {
	t.Run("no header", func(t *testing.T) {
		svc := &stubUserService{}
		router := newTestServer(t, svc)

		w := doJSON(t, router, http.MethodGet, "/users/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad scheme", func(t *testing.T) {
		svc := &stubUserService{}
		router := newTestServer(t, svc)

		w := doJSON(t, router, http.MethodGet, "/users/me", "",
			map[string]string{"Authorization": "Basic abc"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		svc := &stubUserService{
			authenticateFn: func(ctx context.Context, token string) (*models.User, error) {
				assert.Equal(t, "tok", token)
				return sampleUser(), nil
			},
		}
		router := newTestServer(t, svc)

		w := doJSON(t, router, http.MethodGet, "/users/me", "",
			map[string]string{"Authorization": "Bearer tok"})
		assert.Equal(t, http.StatusOK, w.Code)

		var resp userResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "alice", resp.Username)
	})
}

func TestUpdateSelf(t *testing.T) {
	svc := &stubUserService{
		authenticateFn: func(ctx context.Context, token string) (*models.User, error) {
			return sampleUser(), nil
		},
		updateProfileFn: func(ctx context.Context, userID int64, email, fullName *string) (*models.User, error) {
			assert.Equal(t, int64(1), userID)
			require.NotNil(t, fullName)
			u := sampleUser()
			u.FullName.String, u.FullName.Valid = *fullName, true
			return u, nil
		},
	}
	router := newTestServer(t, svc)

	w := doJSON(t, router, http.MethodPut, "/users/me", `{"full_name":"Alice A"}`,
		map[string]string{"Authorization": "Bearer tok"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alice A")
}

func TestListUsers_AdminGate(t *testing.T) {
	t.Run("forbidden for non-admin", func(t *testing.T) {
		svc := &stubUserService{
			authenticateFn: func(ctx context.Context, token string) (*models.User, error) {
				return sampleUser(), nil
			},
			requireAdminFn: func(user *models.User) error {
				return fmt.Errorf("%w: not enough permissions", common.ErrForbidden)
			},
		}
		router := newTestServer(t, svc)

		w := doJSON(t, router, http.MethodGet, "/users/admin/users", "",
			map[string]string{"Authorization": "Bearer tok"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "not enough permissions")
	})

	t.Run("non-integer paging params rejected", func(t *testing.T) {
		admin := sampleUser()
		admin.IsAdmin = true
		svc := &stubUserService{
			authenticateFn: func(ctx context.Context, token string) (*models.User, error) {
				return admin, nil
			},
			requireAdminFn: func(user *models.User) error { return nil },
			listUsersFn: func(ctx context.Context, skip, limit int) ([]*models.User, error) {
				t.Fatal("service must not be called with unparsable paging")
				return nil, nil
			},
		}
		router := newTestServer(t, svc)

		w := doJSON(t, router, http.MethodGet, "/users/admin/users?skip=abc", "",
			map[string]string{"Authorization": "Bearer tok"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "skip must be an integer")

		w = doJSON(t, router, http.MethodGet, "/users/admin/users?limit=ten", "",
			map[string]string{"Authorization": "Bearer tok"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "limit must be an integer")
	})

	t.Run("paged list for admin", func(t *testing.T) {
		admin := sampleUser()
		admin.IsAdmin = true
		svc := &stubUserService{
			authenticateFn: func(ctx context.Context, token string) (*models.User, error) {
				return admin, nil
			},
			requireAdminFn: func(user *models.User) error { return nil },
			listUsersFn: func(ctx context.Context, skip, limit int) ([]*models.User, error) {
				assert.Equal(t, 5, skip)
				assert.Equal(t, 10, limit)
				return []*models.User{sampleUser()}, nil
			},
		}
		router := newTestServer(t, svc)

		w := doJSON(t, router, http.MethodGet, "/users/admin/users?skip=5&limit=10", "",
			map[string]string{"Authorization": "Bearer tok"})
		assert.Equal(t, http.StatusOK, w.Code)

		var resp []userResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp, 1)
	})
}

func TestDeleteUser(t *testing.T) {
	admin := sampleUser()
	admin.IsAdmin = true

	newAdminStub := func(deleteFn func(ctx context.Context, callerID, targetID int64) error) *stubUserService {
		return &stubUserService{
			authenticateFn: func(ctx context.Context, token string) (*models.User, error) {
				return admin, nil
			},
			requireAdminFn: func(user *models.User) error { return nil },
			deleteUserFn:   deleteFn,
		}
	}
	headers := map[string]string{"Authorization": "Bearer tok"}

	t.Run("self delete conflict", func(t *testing.T) {
		svc := newAdminStub(func(ctx context.Context, callerID, targetID int64) error {
			assert.Equal(t, callerID, targetID)
			return fmt.Errorf("%w: cannot delete your own account", common.ErrConflict)
		})
		router := newTestServer(t, svc)

		w := doJSON(t, router, http.MethodDelete, "/users/admin/users/1", "", headers)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing target", func(t *testing.T) {
		svc := newAdminStub(func(ctx context.Context, callerID, targetID int64) error {
			return fmt.Errorf("%w: user not found", common.ErrNotFound)
		})
		router := newTestServer(t, svc)

		w := doJSON(t, router, http.MethodDelete, "/users/admin/users/99", "", headers)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		svc := newAdminStub(func(ctx context.Context, callerID, targetID int64) error { return nil })
		router := newTestServer(t, svc)

		w := doJSON(t, router, http.MethodDelete, "/users/admin/users/abc", "", headers)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		svc := newAdminStub(func(ctx context.Context, callerID, targetID int64) error {
			assert.Equal(t, int64(2), targetID)
			return nil
		})
		router := newTestServer(t, svc)

		w := doJSON(t, router, http.MethodDelete, "/users/admin/users/2", "", headers)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHealthAndRoot(t *testing.T) {
	svc := &stubUserService{}
	router := newTestServer(t, svc)

	w := doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = doJSON(t, router, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
