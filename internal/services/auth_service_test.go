package services_test

import (
	"log"
	"os"
	"testing"

	"boutique/internal/apperrors"
	"boutique/internal/models"
	"boutique/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetVerified(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	log.SetOutput(os.Stdout)
	code := m.Run()
	os.Exit(code)
}

const testJWTSecret = "test_jwt_secret"

func newTestAuthService(repo *MockUserRepository) *services.AuthService {
	return services.NewAuthService(repo, testJWTSecret, nil, "http://localhost:8080")
}

func TestAuthService_RegisterUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newTestAuthService(mockRepo)

	user := &models.User{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
	}

	mockRepo.On("GetByEmail", user.Email).Return(nil, apperrors.ErrNotFound).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	token, err := authService.RegisterUser(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	// The stored password must be a bcrypt hash, not the plaintext.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	assert.False(t, user.IsAdmin)
	assert.False(t, user.IsVerified)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUser_EmailTaken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newTestAuthService(mockRepo)

	existing := &models.User{ID: "user-1", Email: "taken@example.com"}
	mockRepo.On("GetByEmail", existing.Email).Return(existing, nil).Once()

	_, err := authService.RegisterUser(&models.User{
		Username: "someone",
		Email:    "taken@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_RegisterUser_MissingFields(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newTestAuthService(mockRepo)

	_, err := authService.RegisterUser(&models.User{Email: "no-pass@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	_, err = authService.RegisterUser(&models.User{Password: "password123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}

func TestAuthService_LoginUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newTestAuthService(mockRepo)

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	user := &models.User{
		ID:       "user-1",
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashed),
	}

	mockRepo.On("GetByEmail", user.Email).Return(user, nil)

	token, err := authService.LoginUser(user.Email, "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Wrong password must come back as the same generic unauthorized error.
	_, err = authService.LoginUser(user.Email, "wrongpassword")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser_UnknownEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newTestAuthService(mockRepo)

	mockRepo.On("GetByEmail", "ghost@example.com").Return(nil, apperrors.ErrNotFound).Once()

	_, err := authService.LoginUser("ghost@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_IdentityFromToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newTestAuthService(mockRepo)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-1",
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashed),
		IsAdmin:  true,
	}
	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	mockRepo.On("GetByID", user.ID).Return(user, nil).Once()

	token, err := authService.LoginUser(user.Email, "password123")
	assert.NoError(t, err)

	identity, err := authService.IdentityFromToken(token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, user.Email, identity.Email)
	assert.True(t, identity.IsAdmin)

	_, err = authService.IdentityFromToken("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	mockRepo.AssertExpectations(t)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newTestAuthService(mockRepo)

	user := &models.User{ID: "user-1", Email: "test@example.com", Password: "x"}
	mockRepo.On("GetByEmail", user.Email).Return(nil, apperrors.ErrNotFound).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()
	mockRepo.On("SetVerified", user.ID).Return(nil).Once()

	user.Password = "password123"
	token, err := authService.RegisterUser(user)
	assert.NoError(t, err)

	// The registration token carries the same user_id claim as the
	// verification token, so it exercises the same path.
	assert.NoError(t, authService.VerifyEmail(token))
	assert.ErrorIs(t, authService.VerifyEmail("garbage"), apperrors.ErrUnauthorized)

	mockRepo.AssertExpectations(t)
}
