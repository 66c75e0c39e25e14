package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gopherblog/internal/model"
	"gopherblog/internal/pkg/jwtutil"
	"gopherblog/internal/repository"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUsernameExists      = errors.New("username already taken")
	ErrEmailExists         = errors.New("user already exists with this email")
	ErrInvalidCredential   = errors.New("invalid credentials")
	ErrAccountDisabled     = errors.New("your account has been deactivated")
	ErrUserNotFound        = errors.New("user not found")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrNoSecurityQuestion  = errors.New("security question not set for this user")
	ErrWrongSecurityAnswer = errors.New("incorrect security answer")
)

const minPasswordLen = 6

type AuthService struct {
	userRepo      *repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

type RegisterInput struct {
	Username         string
	Email            string
	Password         string
	SecurityQuestion string
	SecurityAnswer   string
}

type UpdateProfileInput struct {
	Username       string
	Bio            *string
	ProfilePicture string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(userRepo *repository.UserRepository, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register creates the account with password and security answer bcrypt-hashed
// and returns a fresh bearer token alongside the stored user.
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := input.Password

	if username == "" || email == "" || len(password) < minPasswordLen {
		return nil, ErrInvalidInput
	}

	question := strings.TrimSpace(input.SecurityQuestion)
	answer := strings.TrimSpace(input.SecurityAnswer)
	if (question == "") != (answer == "") {
		return nil, ErrInvalidInput
	}

	existingByEmail, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existingByEmail != nil {
		return nil, ErrEmailExists
	}

	existingByName, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existingByName != nil {
		return nil, ErrUsernameExists
	}

	passwordHash, err := hashSecret(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:         username,
		Email:            email,
		PasswordHash:     passwordHash,
		Role:             model.RoleUser,
		Active:           true,
		SecurityQuestion: question,
	}
	if answer != "" {
		answerHash, err := hashSecret(answer)
		if err != nil {
			return nil, err
		}
		user.SecurityAnswerHash = answerHash
	}

	if err := s.userRepo.Create(user); err != nil {
		// A concurrent registration can slip past the lookups above; the
		// unique indexes are the authority.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if rival, lookupErr := s.userRepo.GetByEmail(email); lookupErr == nil && rival != nil {
				return nil, ErrEmailExists
			}
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies the password and the active flag. A correct password against
// a deactivated account yields ErrAccountDisabled, never ErrInvalidCredential.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	if !user.Active {
		return nil, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) GetProfile(userID uint) (*model.User, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies only the supplied fields. Email and password are not
// mutable through this operation.
func (s *AuthService) UpdateProfile(userID uint, input UpdateProfileInput) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if username := strings.TrimSpace(input.Username); username != "" && username != user.Username {
		existing, err := s.userRepo.GetByUsername(username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrUsernameExists
		}
		user.Username = username
	}
	if input.Bio != nil {
		user.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.ProfilePicture != "" {
		user.ProfilePicture = input.ProfilePicture
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return ErrInvalidInput
	}

	user, err := s.GetProfile(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := hashSecret(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.userRepo.Update(user)
}

// ForgotPassword resets the password after verifying the security answer. No
// authenticated session is required on this path; rate limiting is a known
// open hardening gap.
func (s *AuthService) ForgotPassword(email, securityAnswer, newPassword string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || len(newPassword) < minPasswordLen {
		return ErrInvalidInput
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if user.SecurityQuestion == "" || user.SecurityAnswerHash == "" {
		return ErrNoSecurityQuestion
	}

	answer := strings.TrimSpace(securityAnswer)
	if err := bcrypt.CompareHashAndPassword([]byte(user.SecurityAnswerHash), []byte(answer)); err != nil {
		return ErrWrongSecurityAnswer
	}

	hash, err := hashSecret(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.userRepo.Update(user)
}

// GetSecurityQuestion returns the question text only, never the hashed answer.
func (s *AuthService) GetSecurityQuestion(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", ErrInvalidInput
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if user.SecurityQuestion == "" {
		return "", ErrNoSecurityQuestion
	}
	return user.SecurityQuestion, nil
}

func hashSecret(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret failed: %w", err)
	}
	return string(hash), nil
}
