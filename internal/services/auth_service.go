package services

import (
	"fmt"
	"log"
	"time"

	"boutique/internal/apperrors"
	"boutique/internal/models"
	"boutique/internal/repositories"
	"boutique/pkg/mailer"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	dispatcher *mailer.Dispatcher
	baseURL    string
}

// NewAuthService creates a new AuthService. The dispatcher may be nil; the
// verification email is then skipped.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, dispatcher *mailer.Dispatcher, baseURL string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 7 * 24 * time.Hour, // Token valid for 7 days
		dispatcher: dispatcher,
		baseURL:    baseURL,
	}
}

// RegisterUser registers a new user, hashes their password, saves them and
// returns a credential token. A verification email goes out best-effort.
func (s *AuthService) RegisterUser(user *models.User) (string, error) {
	if user.Email == "" || user.Password == "" {
		return "", fmt.Errorf("email and password required: %w", apperrors.ErrInvalidRequest)
	}
	if existingUser, err := s.userRepo.GetByEmail(user.Email); err == nil && existingUser != nil {
		return "", fmt.Errorf("email '%s' already registered: %w", user.Email, apperrors.ErrConflict)
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword) // Store the hashed password
	user.IsAdmin = false
	user.IsVerified = false

	if err := s.userRepo.Create(user); err != nil {
		return "", fmt.Errorf("failed to register user: %w", err)
	}

	s.sendVerificationEmail(user)

	return s.issueToken(user.ID, s.tokenDurat)
}

func (s *AuthService) sendVerificationEmail(user *models.User) {
	if s.dispatcher == nil {
		return
	}
	verifyToken, err := s.issueToken(user.ID, 24*time.Hour)
	if err != nil {
		log.Printf("Failed to issue verification token for %s: %v", user.Email, err)
		return
	}
	s.dispatcher.Enqueue(mailer.KindVerifyEmail, user.Email, mailer.Data{
		Subject:   "Verify your account",
		Username:  user.Username,
		VerifyURL: fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", s.baseURL, verifyToken),
	})
}

// LoginUser authenticates a user by email and returns a JWT token.
func (s *AuthService) LoginUser(email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		// Do not reveal whether the email exists
		return "", fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
	}

	// Compare the provided password with the hashed password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
	}

	return s.issueToken(user.ID, s.tokenDurat)
}

func (s *AuthService) issueToken(userID string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(), // Token expiration time
		"iat":     time.Now().Unix(),          // Issued at time
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", apperrors.ErrUnauthorized)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token: %w", apperrors.ErrUnauthorized)
}

// IdentityFromToken resolves a token to the caller's identity.
func (s *AuthService) IdentityFromToken(tokenString string) (*Identity, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("token missing user_id: %w", apperrors.ErrUnauthorized)
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("unknown user: %w", apperrors.ErrUnauthorized)
	}
	return &Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	}, nil
}

// VerifyEmail marks the user in a valid verification token as verified.
func (s *AuthService) VerifyEmail(tokenString string) error {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return err
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return fmt.Errorf("token missing user_id: %w", apperrors.ErrUnauthorized)
	}
	if err := s.userRepo.SetVerified(userID); err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}
	return nil
}

// Profile returns the stored account for an identity.
func (s *AuthService) Profile(identity *Identity) (*models.User, error) {
	if identity == nil {
		return nil, fmt.Errorf("authentication required: %w", apperrors.ErrUnauthorized)
	}
	user, err := s.userRepo.GetByID(identity.UserID)
	if err != nil {
		return nil, err
	}
	user.Password = "" // never serialized, cleared anyway
	return user, nil
}
