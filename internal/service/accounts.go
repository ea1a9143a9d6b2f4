package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vitrinalab/vitrina/internal/models"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountPending     = errors.New("account is awaiting approval")
	ErrAccountRejected    = errors.New("account was rejected")
	ErrUserNotFound       = errors.New("user not found")
)

// AccountService manages registration, login checks and the admin-side
// account lifecycle (approve/reject, role and type assignment).
type AccountService struct {
	db             *gorm.DB
	logger         *zap.Logger
	mailer         *Mailer
	bootstrapAdmin string
}

func NewAccountService(db *gorm.DB, logger *zap.Logger, mailer *Mailer, bootstrapAdmin string) *AccountService {
	return &AccountService{
		db:             db,
		logger:         logger,
		mailer:         mailer,
		bootstrapAdmin: strings.ToLower(strings.TrimSpace(bootstrapAdmin)),
	}
}

// Register creates a pending account. The configured bootstrap admin email
// skips the approval queue and lands approved with the admin role.
func (s *AccountService) Register(name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Type:         models.TypeRevista,
		Status:       models.UserPending,
	}

	if s.bootstrapAdmin != "" && email == s.bootstrapAdmin {
		user.Role = models.RoleAdmin
		user.Status = models.UserApproved
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("account registered",
		zap.String("user_id", user.ID),
		zap.String("status", string(user.Status)))

	return user, nil
}

// Authenticate verifies credentials and the approval gate. Pending and
// rejected accounts get distinct errors so the UI can explain the state.
func (s *AccountService) Authenticate(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	switch user.Status {
	case models.UserPending:
		return nil, ErrAccountPending
	case models.UserRejected:
		return nil, ErrAccountRejected
	}

	return &user, nil
}

func (s *AccountService) Get(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns all accounts, newest first.
func (s *AccountService) List() ([]*models.User, error) {
	var users []*models.User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SetStatus approves or rejects an account and notifies the user by email.
// The email is best-effort; a send failure never rolls the decision back.
func (s *AccountService) SetStatus(id string, status models.UserStatus) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	user.Status = status
	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendAccountDecision(user, status); err != nil {
			s.logger.Warn("account decision email failed",
				zap.String("user_id", user.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("account status updated",
		zap.String("user_id", user.ID),
		zap.String("status", string(status)))

	return user, nil
}

func (s *AccountService) SetRole(id string, role models.UserRole) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}
	return user, nil
}

func (s *AccountService) SetType(id string, userType models.UserType) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	user.Type = userType
	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user type: %w", err)
	}
	return user, nil
}
