package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/wishlist-service/internal/auth"
	"github.com/utafrali/wishlist-service/internal/domain"
	apperrors "github.com/utafrali/wishlist-service/pkg/errors"
	"github.com/utafrali/wishlist-service/pkg/pagination"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Refresh Token Repository ---

type mockRefreshTokenRepository struct {
	mock.Mock
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) RevokeByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Stub Event Publisher ---

// stubPublisher records published events without a broker.
type stubPublisher struct {
	mu           sync.Mutex
	userCreated  []string
	userUpdated  []string
	userDeleted  []string
	itemsAdded   []*domain.WishlistItem
	itemsRemoved []*domain.WishlistItem
	err          error
}

func (s *stubPublisher) PublishUserCreated(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userCreated = append(s.userCreated, user.ID)
	return s.err
}

func (s *stubPublisher) PublishUserUpdated(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userUpdated = append(s.userUpdated, user.ID)
	return s.err
}

func (s *stubPublisher) PublishUserDeleted(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userDeleted = append(s.userDeleted, userID)
	return s.err
}

func (s *stubPublisher) PublishItemAdded(_ context.Context, item *domain.WishlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itemsAdded = append(s.itemsAdded, item)
	return s.err
}

func (s *stubPublisher) PublishItemRemoved(_ context.Context, item *domain.WishlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itemsRemoved = append(s.itemsRemoved, item)
	return s.err
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret-key-for-testing", 15*time.Minute, 7*24*time.Hour)
}

func newTestUserService(userRepo *mockUserRepository, tokenRepo *mockRefreshTokenRepository) (*UserService, *stubPublisher) {
	pub := &stubPublisher{}
	svc := NewUserService(userRepo, tokenRepo, newTestJWTManager(), pub, newTestLogger())
	return svc, pub
}

func strPtr(s string) *string {
	return &s
}

// hashForTest creates a bcrypt hash with cost 4 for fast tests.
func hashForTest(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), 4)
	if err != nil {
		panic(err)
	}
	return string(h)
}

var (
	adminPrincipal    = auth.Principal{UserID: "admin-1", Role: domain.RoleAdmin}
	customerPrincipal = auth.Principal{UserID: "user-1", Role: domain.RoleCustomer}
)

func customerUser(id string) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:        id,
		Email:     id + "@example.com",
		FirstName: "Anna",
		LastName:  "Silva",
		Role:      domain.RoleCustomer,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// --- CreateUser ---

func TestCreateUser_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, pub := newTestUserService(userRepo, tokenRepo)
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := svc.CreateUser(ctx, adminPrincipal, CreateUserInput{
		Email:     "anna@example.com",
		Password:  "SecurePass123",
		FirstName: "Anna",
		LastName:  "Silva",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "anna@example.com", user.Email)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "SecurePass123", user.PasswordHash)
	assert.Len(t, pub.userCreated, 1)
	userRepo.AssertExpectations(t)
}

func TestCreateUser_CustomerForbidden(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _ := newTestUserService(userRepo, new(mockRefreshTokenRepository))

	_, err := svc.CreateUser(context.Background(), customerPrincipal, CreateUserInput{
		Email:    "anna@example.com",
		Password: "SecurePass123",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden), "expected ErrForbidden, got: %v", err)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_Anonymous(t *testing.T) {
	svc, _ := newTestUserService(new(mockUserRepository), new(mockRefreshTokenRepository))

	_, err := svc.CreateUser(context.Background(), auth.Principal{}, CreateUserInput{
		Email:    "anna@example.com",
		Password: "SecurePass123",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized), "expected ErrUnauthorized, got: %v", err)
}

func TestCreateUser_InvalidRole(t *testing.T) {
	svc, _ := newTestUserService(new(mockUserRepository), new(mockRefreshTokenRepository))

	_, err := svc.CreateUser(context.Background(), adminPrincipal, CreateUserInput{
		Email:     "anna@example.com",
		Password:  "SecurePass123",
		FirstName: "Anna",
		Role:      "seller",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput), "expected ErrInvalidInput, got: %v", err)
}

func TestCreateUser_WeakPassword(t *testing.T) {
	svc, _ := newTestUserService(new(mockUserRepository), new(mockRefreshTokenRepository))

	_, err := svc.CreateUser(context.Background(), adminPrincipal, CreateUserInput{
		Email:     "anna@example.com",
		Password:  "short",
		FirstName: "Anna",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _ := newTestUserService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(apperrors.Conflict("user with email anna@example.com already exists"))

	_, err := svc.CreateUser(ctx, adminPrincipal, CreateUserInput{
		Email:     "anna@example.com",
		Password:  "SecurePass123",
		FirstName: "Anna",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict), "expected ErrConflict, got: %v", err)
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, _ := newTestUserService(userRepo, tokenRepo)
	ctx := context.Background()

	u := customerUser("user-1")
	u.PasswordHash = hashForTest("SecurePass123")
	userRepo.On("GetByEmail", ctx, u.Email).Return(u, nil)
	tokenRepo.On("Create", ctx, u.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	user, tokens, err := svc.Login(ctx, LoginInput{Email: u.Email, Password: "SecurePass123"})

	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _ := newTestUserService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	u := customerUser("user-1")
	u.PasswordHash = hashForTest("SecurePass123")
	userRepo.On("GetByEmail", ctx, u.Email).Return(u, nil)

	_, _, err := svc.Login(ctx, LoginInput{Email: u.Email, Password: "WrongPass456"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestLogin_UnknownEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _ := newTestUserService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	_, _, err := svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "SecurePass123"})

	require.Error(t, err)
	// Unknown email and wrong password are indistinguishable to the caller.
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _ := newTestUserService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	u := customerUser("user-1")
	u.IsActive = false
	u.PasswordHash = hashForTest("SecurePass123")
	userRepo.On("GetByEmail", ctx, u.Email).Return(u, nil)

	_, _, err := svc.Login(ctx, LoginInput{Email: u.Email, Password: "SecurePass123"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

// --- RefreshToken ---

func TestRefreshToken_RotatesToken(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, _ := newTestUserService(userRepo, tokenRepo)
	ctx := context.Background()

	u := customerUser("user-1")
	refresh, err := newTestJWTManager().GenerateRefreshToken(u.ID)
	require.NoError(t, err)

	stored := &domain.RefreshToken{
		ID:        "rt-1",
		UserID:    u.ID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		CreatedAt: time.Now().UTC(),
	}
	tokenRepo.On("GetByHash", ctx, mock.AnythingOfType("string")).Return(stored, nil)
	tokenRepo.On("Revoke", ctx, mock.AnythingOfType("string")).Return(nil)
	tokenRepo.On("Create", ctx, u.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)
	userRepo.On("GetByID", ctx, u.ID).Return(u, nil)

	tokens, err := svc.RefreshToken(ctx, refresh)

	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	tokenRepo.AssertCalled(t, "Revoke", ctx, mock.AnythingOfType("string"))
}

func TestRefreshToken_Revoked(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, _ := newTestUserService(userRepo, tokenRepo)
	ctx := context.Background()

	refresh, err := newTestJWTManager().GenerateRefreshToken("user-1")
	require.NoError(t, err)

	revokedAt := time.Now().UTC().Add(-time.Minute)
	stored := &domain.RefreshToken{UserID: "user-1", ExpiresAt: time.Now().UTC().Add(time.Hour), RevokedAt: &revokedAt}
	tokenRepo.On("GetByHash", ctx, mock.AnythingOfType("string")).Return(stored, nil)

	_, err = svc.RefreshToken(ctx, refresh)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestRefreshToken_Garbage(t *testing.T) {
	svc, _ := newTestUserService(new(mockUserRepository), new(mockRefreshTokenRepository))

	_, err := svc.RefreshToken(context.Background(), "not.a.token")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

// --- GetUser ---

func TestGetUser_Self(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _ := newTestUserService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	u := customerUser("user-1")
	userRepo.On("GetByID", ctx, "user-1").Return(u, nil)

	got, err := svc.GetUser(ctx, customerPrincipal, "user-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestGetUser_OtherCustomerForbidden(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _ := newTestUserService(userRepo, new(mockRefreshTokenRepository))

	_, err := svc.GetUser(context.Background(), customerPrincipal, "user-2")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	// The lookup never happens for a forbidden caller.
	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetUser_AdminOnMissingAccount(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _ := newTestUserService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "ghost").Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetUser(ctx, adminPrincipal, "ghost")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

// --- ListUsers ---

func TestListUsers_AdminOnly(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _ := newTestUserService(userRepo, new(mockRefreshTokenRepository))

	_, err := svc.ListUsers(context.Background(), customerPrincipal, pagination.Params{Page: 1, PerPage: 20})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	userRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestListUsers_Paginates(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _ := newTestUserService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	users := []*domain.User{customerUser("user-1"), customerUser("user-2")}
	userRepo.On("List", ctx, 20, 20).Return(users, 42, nil)

	result, err := svc.ListUsers(ctx, adminPrincipal, pagination.Params{Page: 2, PerPage: 20, Offset: 20})

	require.NoError(t, err)
	assert.Equal(t, 42, result.TotalCount)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 3, result.TotalPages)
	assert.Len(t, result.Data, 2)
}

// --- UpdateUser ---

func TestUpdateUser_Self(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, pub := newTestUserService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	u := customerUser("user-1")
	userRepo.On("GetByID", ctx, "user-1").Return(u, nil)
	userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	got, err := svc.UpdateUser(ctx, customerPrincipal, "user-1", UpdateUserInput{FirstName: strPtr("Beatriz")})

	require.NoError(t, err)
	assert.Equal(t, "Beatriz", got.FirstName)
	assert.Len(t, pub.userUpdated, 1)
}

func TestUpdateUser_EmptyEmailRejected(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _ := newTestUserService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "user-1").Return(customerUser("user-1"), nil)

	_, err := svc.UpdateUser(ctx, customerPrincipal, "user-1", UpdateUserInput{Email: strPtr("")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestUpdateUser_OtherCustomerForbidden(t *testing.T) {
	svc, _ := newTestUserService(new(mockUserRepository), new(mockRefreshTokenRepository))

	_, err := svc.UpdateUser(context.Background(), customerPrincipal, "user-2", UpdateUserInput{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

// --- DeleteUser ---

func TestDeleteUser_SelfRevokesTokensAndPublishes(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, pub := newTestUserService(userRepo, tokenRepo)
	ctx := context.Background()

	userRepo.On("Delete", ctx, "user-1").Return(nil)
	tokenRepo.On("RevokeByUserID", ctx, "user-1").Return(nil)

	err := svc.DeleteUser(ctx, customerPrincipal, "user-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, pub.userDeleted)
	tokenRepo.AssertExpectations(t)
}

func TestDeleteUser_NotFound(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _ := newTestUserService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	userRepo.On("Delete", ctx, "ghost").Return(apperrors.ErrNotFound)

	err := svc.DeleteUser(ctx, adminPrincipal, "ghost")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestDeleteUser_OtherCustomerForbidden(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _ := newTestUserService(userRepo, new(mockRefreshTokenRepository))

	err := svc.DeleteUser(context.Background(), customerPrincipal, "user-2")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	userRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
