package service

import (
	"regexp"
	"time"

	"github.com/vinnymaker/stockapp/internal/models"
	"github.com/vinnymaker/stockapp/internal/repository"
	"github.com/vinnymaker/stockapp/pkg/utils/zaplogger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	usernameLengthMin = 5
	passwordLengthMin = 8

	// bcrypt hashes embed their parameters and salt in a fixed-width prefix
	bcryptSaltPrefixLen = 29
)

// Error codes carried by InvalidUserError
const (
	ErrCodeUsernameInvalid = "USERNAME_INVALID"
	ErrCodeUsernameTaken   = "USERNAME_TAKEN"
	ErrCodePasswordInvalid = "PASSWORD_INVALID"
)

// InvalidUserError is a domain validation failure in the credential service
type InvalidUserError struct {
	Code    string
	Message string
}

func (e *InvalidUserError) Error() string {
	return e.Message
}

var alphaInputPattern = regexp.MustCompile(`^[0-9A-Za-z_-]+$`)

// UserService manages user accounts and their credentials. Password hashes
// are produced by bcrypt, the salt is embedded in the hash and verification
// re-derives it, application code never compares hashes for equality.
type UserService struct {
	repo *repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{repo: repository.NewUserRepository(db)}
}

// ValidateUsername reports whether a username is acceptable: at least 5
// characters from [0-9A-Za-z_-].
func (s *UserService) ValidateUsername(username string) bool {
	return len(username) >= usernameLengthMin && alphaInputPattern.MatchString(username)
}

// ValidatePassword reports whether a password is acceptable: at least 8
// characters from the same alphabet as usernames.
func (s *UserService) ValidatePassword(password string) bool {
	return len(password) >= passwordLengthMin && alphaInputPattern.MatchString(password)
}

// GetUser fetches a user by username, nil when absent
func (s *UserService) GetUser(username string) (*models.User, error) {
	return s.repo.LoadByUsername(username)
}

// CreateUser creates a new account and returns it. Validation failures are
// reported as InvalidUserError, store faults as plain errors.
func (s *UserService) CreateUser(username, password string) (*models.User, error) {
	if !s.ValidateUsername(username) {
		return nil, &InvalidUserError{
			Code:    ErrCodeUsernameInvalid,
			Message: "Invalid username. Username must be at least 5 characters from [0-9A-Za-z_-].",
		}
	}
	if !s.ValidatePassword(password) {
		return nil, &InvalidUserError{
			Code:    ErrCodePasswordInvalid,
			Message: "Invalid password. Password must be at least 8 characters from [0-9A-Za-z_-].",
		}
	}

	existing, err := s.repo.LoadByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &InvalidUserError{
			Code:    ErrCodeUsernameTaken,
			Message: "Username is already taken.",
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		PasswordSalt: string(hash[:bcryptSaltPrefixLen]),
		DateCreated:  time.Now(),
	}
	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	zaplogger.Info("user created", zaplogger.Fields{"username": username})
	return user, nil
}

// UpdatePassword regenerates the hash and salt for a user from a new
// password and persists the change.
func (s *UserService) UpdatePassword(user *models.User, newPassword string) error {
	if !s.ValidatePassword(newPassword) {
		return &InvalidUserError{
			Code:    ErrCodePasswordInvalid,
			Message: "Invalid password. Password must be at least 8 characters from [0-9A-Za-z_-].",
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.PasswordSalt = string(hash[:bcryptSaltPrefixLen])
	return s.repo.UpdateUser(user)
}

// DeleteUser removes an account. Returns false when no such user existed.
func (s *UserService) DeleteUser(username string) (bool, error) {
	user, err := s.repo.LoadByUsername(username)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	if err := s.repo.DeleteUser(user); err != nil {
		return false, err
	}
	zaplogger.Info("user deleted", zaplogger.Fields{"username": username})
	return true, nil
}

// VerifyPassword reports whether the candidate password matches the stored
// hash for the named user. Unknown users verify as false.
func (s *UserService) VerifyPassword(username, candidate string) bool {
	user, err := s.repo.LoadByUsername(username)
	if err != nil || user == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(candidate)) == nil
}
