package service

import (
	"context" // Request scoped storage calls
	"errors"  // Error inspection
	"strings" // Input normalisation
	"time"    // Timestamps

	"habit_tracker/internal/domain" // Importing domain models
	"habit_tracker/internal/utils"  // Tokens and password hashing

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterInput is a validated registration request
type RegisterInput struct {
	Email     string  `json:"email" binding:"required,email,max=255"`    // Login email, unique
	Username  string  `json:"username" binding:"required,min=3,max=50"`  // Display handle, unique
	Password  string  `json:"password" binding:"required,min=8,max=100"` // Plain password, hashed before storage
	FirstName *string `json:"firstName" binding:"omitempty,max=50"`      // Optional first name
	LastName  *string `json:"lastName" binding:"omitempty,max=50"`       // Optional last name
}

// LoginInput is a validated login request
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"` // Login email
	Password string `json:"password" binding:"required"`    // Plain password
}

// UpdateProfileInput changes the optional names; nil leaves a field unchanged
type UpdateProfileInput struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=50"`
	LastName  *string `json:"lastName" binding:"omitempty,max=50"`
}

// ChangePasswordInput replaces the stored digest after checking the current password
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=100"`
}

// UserView is the public representation of a user; it never carries the digest
type UserView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	User  UserView `json:"user"`  // Public user view
	Token string   `json:"token"` // Freshly issued bearer token
}

// NewUserView strips a user down to its public fields
func NewUserView(u *domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// AuthService owns user credentials and token issuance
type AuthService struct {
	db     *gorm.DB             // Shared connection pool
	tokens *utils.TokenService  // Token issuer
	hasher utils.PasswordHasher // bcrypt at the configured cost
}

// NewAuthService wires the credential store
func NewAuthService(db *gorm.DB, tokens *utils.TokenService, hasher utils.PasswordHasher) *AuthService {
	return &AuthService{db: db, tokens: tokens, hasher: hasher}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) issue(u *domain.User) (string, error) {
	token, err := s.tokens.Issue(utils.TokenIdentity{ID: u.ID, Email: u.Email, Username: u.Username})
	if errors.Is(err, utils.ErrMissingSecret) {
		return "", newError(KindConfiguration, "Token signing is not configured", err)
	}
	if err != nil {
		return "", newError(KindInternal, "Failed to generate token", err)
	}
	return token, nil
}

// Register creates a user and issues its first token
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	// Hash the password before opening the transaction
	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, newError(KindInternal, "Failed to hash password", err)
	}
	user := domain.User{
		Email:     normalizeEmail(in.Email),
		Username:  strings.TrimSpace(in.Username),
		Password:  digest,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	var token string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64 // Existing users sharing the email or username
		if err := tx.Model(&domain.User{}).
			Where("email = ? OR username = ?", user.Email, user.Username).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return newError(KindConflict, MsgUserExists, nil)
		}
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueViolation(err) {
				return newError(KindConflict, MsgUserExists, err) // Lost a race with a concurrent registration
			}
			return err
		}
		// Issue inside the transaction so a signing failure leaves no orphan user
		token, err = s.issue(&user)
		return err
	})
	if err != nil {
		return nil, classify(err, MsgUserNotFound, "Failed to create user")
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")
	return &AuthResult{User: NewUserView(&user), Token: token}, nil
}

// Login checks credentials and issues a new token. Unknown emails and
// wrong passwords fail with the same message.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	var user domain.User // Fetch user from database
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(in.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindAuthentication, MsgInvalidCredentials, nil)
	}
	if err != nil {
		return nil, classify(err, MsgInvalidCredentials, "Failed to login")
	}
	// Compare provided password with stored hash
	if !s.hasher.Verify(in.Password, user.Password) {
		return nil, newError(KindAuthentication, MsgInvalidCredentials, nil)
	}
	token, err := s.issue(&user)
	if err != nil {
		return nil, err
	}
	logrus.WithField("user_id", user.ID).Info("User logged in")
	return &AuthResult{User: NewUserView(&user), Token: token}, nil
}

func (s *AuthService) findUser(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, classify(err, MsgUserNotFound, "Failed to fetch user")
	}
	return &user, nil
}

// Profile returns the caller's public view
func (s *AuthService) Profile(ctx context.Context, userID string) (*UserView, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := NewUserView(user)
	return &view, nil
}

// UpdateProfile changes the caller's optional names
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*UserView, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{"updated_at": time.Now()}
	if in.FirstName != nil {
		updates["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		updates["last_name"] = *in.LastName
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, classify(err, MsgUserNotFound, "Failed to update user")
	}
	return s.Profile(ctx, userID)
}

// ChangePassword verifies the current password and stores a digest of the new one
func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(in.CurrentPassword, user.Password) {
		return newError(KindAuthentication, MsgInvalidCredentials, nil)
	}
	digest, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return newError(KindInternal, "Failed to hash password", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"password":   digest,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return classify(err, MsgUserNotFound, "Failed to change password")
	}
	logrus.WithField("user_id", user.ID).Info("Password changed")
	return nil
}
