package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/wishlist-service/internal/auth"
	"github.com/utafrali/wishlist-service/internal/domain"
	"github.com/utafrali/wishlist-service/internal/service"
	apperrors "github.com/utafrali/wishlist-service/pkg/errors"
	"github.com/utafrali/wishlist-service/pkg/middleware"
)

func handlerTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret-key-for-testing", 15*time.Minute, 7*24*time.Hour)
}

type userTestDeps struct {
	userRepo  *mockUserRepo
	tokenRepo *mockRefreshTokenRepo
}

func newUserTestDeps() *userTestDeps {
	return &userTestDeps{
		userRepo:  new(mockUserRepo),
		tokenRepo: new(mockRefreshTokenRepo),
	}
}

func (d *userTestDeps) service() *service.UserService {
	return service.NewUserService(d.userRepo, d.tokenRepo, handlerTestJWTManager(), noopPublisher{}, handlerTestLogger())
}

// setupUserRouter mirrors the production account routes with a fake token
// validator for the given caller identity.
func setupUserRouter(d *userTestDeps, callerID, callerRole string) *chi.Mux {
	handler := NewUserHandler(d.service(), handlerTestLogger())

	r := chi.NewRouter()
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Auth(fakeTokenValidator(callerID, callerRole)))
		r.Post("/", handler.Create)
		r.Get("/", handler.List)
		r.Get("/{userID}", handler.Get)
		r.Put("/{userID}", handler.Update)
		r.Delete("/{userID}", handler.Delete)
	})
	return r
}

// ============================================================================
// Create Tests
// ============================================================================

func TestUserCreate_AdminCreated(t *testing.T) {
	d := newUserTestDeps()
	router := setupUserRouter(d, "admin-1", domain.RoleAdmin)

	d.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	body := []byte(`{"email":"new@example.com","password":"SecurePass123","first_name":"Anna","last_name":"Silva"}`)
	req := authedRequest(http.MethodPost, "/api/v1/users", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
	d.userRepo.AssertExpectations(t)
}

func TestUserCreate_CustomerForbidden(t *testing.T) {
	d := newUserTestDeps()
	router := setupUserRouter(d, "user-1", domain.RoleCustomer)

	body := []byte(`{"email":"new@example.com","password":"SecurePass123","first_name":"Anna"}`)
	req := authedRequest(http.MethodPost, "/api/v1/users", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	d.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserCreate_InvalidEmail(t *testing.T) {
	d := newUserTestDeps()
	router := setupUserRouter(d, "admin-1", domain.RoleAdmin)

	body := []byte(`{"email":"not-an-email","password":"SecurePass123","first_name":"Anna"}`)
	req := authedRequest(http.MethodPost, "/api/v1/users", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	d := newUserTestDeps()
	router := setupUserRouter(d, "admin-1", domain.RoleAdmin)

	d.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Return(apperrors.Conflict("user with email new@example.com already exists"))

	body := []byte(`{"email":"new@example.com","password":"SecurePass123","first_name":"Anna"}`)
	req := authedRequest(http.MethodPost, "/api/v1/users", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CONFLICT", resp.Error.Code)
}

// ============================================================================
// Get / List Tests
// ============================================================================

func TestUserGet_Self(t *testing.T) {
	d := newUserTestDeps()
	router := setupUserRouter(d, wishlistOwnerID, domain.RoleCustomer)

	d.userRepo.On("GetByID", mock.Anything, wishlistOwnerID).Return(activeCustomer(wishlistOwnerID), nil)

	req := authedRequest(http.MethodGet, "/api/v1/users/"+wishlistOwnerID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	// The password hash must never appear in a response.
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUserGet_OtherCustomerForbidden(t *testing.T) {
	d := newUserTestDeps()
	router := setupUserRouter(d, "user-1", domain.RoleCustomer)

	req := authedRequest(http.MethodGet, "/api/v1/users/"+wishlistOwnerID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	d.userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUserGet_AdminNotFound(t *testing.T) {
	d := newUserTestDeps()
	router := setupUserRouter(d, "admin-1", domain.RoleAdmin)

	d.userRepo.On("GetByID", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound)

	req := authedRequest(http.MethodGet, "/api/v1/users/ghost", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserList_AdminPaginated(t *testing.T) {
	d := newUserTestDeps()
	router := setupUserRouter(d, "admin-1", domain.RoleAdmin)

	users := []*domain.User{activeCustomer("a"), activeCustomer("b")}
	d.userRepo.On("List", mock.Anything, 0, 20).Return(users, 2, nil)

	req := authedRequest(http.MethodGet, "/api/v1/users", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_count":2`)
}

func TestUserList_CustomerForbidden(t *testing.T) {
	d := newUserTestDeps()
	router := setupUserRouter(d, "user-1", domain.RoleCustomer)

	req := authedRequest(http.MethodGet, "/api/v1/users", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// ============================================================================
// Update / Delete Tests
// ============================================================================

func TestUserUpdate_Self(t *testing.T) {
	d := newUserTestDeps()
	router := setupUserRouter(d, wishlistOwnerID, domain.RoleCustomer)

	d.userRepo.On("GetByID", mock.Anything, wishlistOwnerID).Return(activeCustomer(wishlistOwnerID), nil)
	d.userRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	body := []byte(`{"first_name":"Beatriz"}`)
	req := authedRequest(http.MethodPut, "/api/v1/users/"+wishlistOwnerID, body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Beatriz")
}

func TestUserDelete_SelfNoContent(t *testing.T) {
	d := newUserTestDeps()
	router := setupUserRouter(d, wishlistOwnerID, domain.RoleCustomer)

	d.userRepo.On("Delete", mock.Anything, wishlistOwnerID).Return(nil)
	d.tokenRepo.On("RevokeByUserID", mock.Anything, wishlistOwnerID).Return(nil)

	req := authedRequest(http.MethodDelete, "/api/v1/users/"+wishlistOwnerID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestUserDelete_NotFound(t *testing.T) {
	d := newUserTestDeps()
	router := setupUserRouter(d, "admin-1", domain.RoleAdmin)

	d.userRepo.On("Delete", mock.Anything, "ghost").Return(apperrors.ErrNotFound)

	req := authedRequest(http.MethodDelete, "/api/v1/users/ghost", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// Login round trip through the service
// ============================================================================

func TestLogin_RoundTrip(t *testing.T) {
	d := newUserTestDeps()
	handler := NewAuthHandler(d.service(), handlerTestLogger())

	hash, err := bcrypt.GenerateFromPassword([]byte("SecurePass123"), 4)
	require.NoError(t, err)

	u := activeCustomer(wishlistOwnerID)
	u.PasswordHash = string(hash)
	d.userRepo.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	d.tokenRepo.On("Create", mock.Anything, u.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	body := []byte(`{"email":"test@example.com","password":"SecurePass123"}`)
	req := authedRequest(http.MethodPost, "/api/v1/auth/login", body)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "access_token")
	assert.Contains(t, rec.Body.String(), "refresh_token")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestLogin_WrongPassword(t *testing.T) {
	d := newUserTestDeps()
	handler := NewAuthHandler(d.service(), handlerTestLogger())

	hash, err := bcrypt.GenerateFromPassword([]byte("SecurePass123"), 4)
	require.NoError(t, err)

	u := activeCustomer(wishlistOwnerID)
	u.PasswordHash = string(hash)
	d.userRepo.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)

	body := []byte(`{"email":"test@example.com","password":"WrongPass456"}`)
	req := authedRequest(http.MethodPost, "/api/v1/auth/login", body)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}
