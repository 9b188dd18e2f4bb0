package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"ecom_inventory/pkg/models"
	"ecom_inventory/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StaffRegistration is the input of RegisterStaff
type StaffRegistration struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// CustomerRegistration is the input of RegisterCustomer
type CustomerRegistration struct {
	Name     string
	Email    string
	Password string
	Phone    *string
	Address  *string
}

// LoginResult carries the issued token and the identity it encodes
type LoginResult struct {
	Token    string
	Identity utils.Identity
}

type AuthService struct {
	db     *gorm.DB
	tokens *utils.TokenManager
	log    *zap.Logger
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenManager, log *zap.Logger) *AuthService {
	return &AuthService{db: db, tokens: tokens, log: log}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// compareNoAccount spends the same bcrypt work as a real comparison so the
// response time does not reveal whether an email is registered.
func compareNoAccount(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = utils.HashPassword("no-account-placeholder")
	})
	_ = utils.ComparePassword(dummyHash, password)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterStaff creates a users row with a bcrypt hash
func (s *AuthService) RegisterStaff(ctx context.Context, in StaffRegistration) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, validationf("Name, email, password, and role are required.")
	}
	if !in.Role.IsStaff() {
		return nil, validationf("Invalid role.")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check user email: %w", err)
	}
	if count > 0 {
		return nil, &Error{Kind: ErrDuplicateEmail, Message: "User already exists with this email."}
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Name: in.Name, Email: in.Email, Password: hash, Role: in.Role}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &Error{Kind: ErrDuplicateEmail, Message: "User already exists with this email."}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("staff user registered", zap.Int("userId", user.ID), zap.String("role", string(user.Role)))
	return &user, nil
}

// LoginStaff verifies staff credentials and issues a token
func (s *AuthService) LoginStaff(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationf("Email and password are required.")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		compareNoAccount(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(utils.Identity{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role})
}

// RegisterCustomer creates a customers row with a bcrypt hash
func (s *AuthService) RegisterCustomer(ctx context.Context, in CustomerRegistration) (*models.Customer, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, validationf("Name, email, and password are required.")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Customer{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check customer email: %w", err)
	}
	if count > 0 {
		return nil, &Error{Kind: ErrDuplicateEmail, Message: "Customer already exists with this email."}
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	customer := models.Customer{
		Name:         in.Name,
		Email:        &in.Email,
		PasswordHash: &hash,
		Phone:        in.Phone,
		Address:      in.Address,
	}
	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &Error{Kind: ErrDuplicateEmail, Message: "Customer already exists with this email."}
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}

	s.log.Info("customer registered", zap.Int("customerId", customer.ID))
	return &customer, nil
}

// LoginCustomer verifies customer credentials. Customers created by staff
// without a password cannot log in.
func (s *AuthService) LoginCustomer(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationf("Email and password are required.")
	}

	var customer models.Customer
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		compareNoAccount(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	if customer.PasswordHash == nil || *customer.PasswordHash == "" {
		compareNoAccount(password)
		return nil, ErrInvalidCredentials
	}
	if err := utils.ComparePassword(*customer.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(utils.Identity{ID: customer.ID, Name: customer.Name, Email: email, Role: models.RoleCustomer})
}

func (s *AuthService) issue(identity utils.Identity) (*LoginResult, error) {
	token, err := s.tokens.GenerateToken(identity)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{Token: token, Identity: identity}, nil
}
