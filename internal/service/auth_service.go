package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"techmart/internal/auth"
	"techmart/internal/errors"
	"techmart/internal/mail"
	"techmart/internal/model"
	"techmart/internal/repository"
)

const (
	bcryptCost = 10
	otpExpiry  = 10 * time.Minute
)

// ProfileUpdate carries the optional fields of a profile patch.
type ProfileUpdate struct {
	Name     string
	Email    string
	Password string
}

// AuthService handles registration, verification and token lifecycle.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	VerifyOTP(ctx context.Context, email, otp string) error
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfileUpdate) (*model.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type authService struct {
	userRepo    repository.UserRepository
	jwtService  *auth.JWTService
	mailer      mail.Mailer
	frontendURL string
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, mailer mail.Mailer, frontendURL string) AuthService {
	return &authService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		mailer:      mailer,
		frontendURL: frontendURL,
	}
}

// Register creates an unverified user and mails the verification OTP.
func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, errors.ErrEmailExists
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}
	expiresAt := time.Now().Add(otpExpiry)

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         model.RoleUser,
		OTP:          otp,
		OTPExpiresAt: &expiresAt,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.mailer.SendOTP(email, otp); err != nil {
		return nil, fmt.Errorf("send otp mail: %w", err)
	}

	return user, nil
}

// VerifyOTP marks the user verified when the code matches and is unexpired.
func (s *authService) VerifyOTP(ctx context.Context, email, otp string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrInvalidOTP
		}
		return fmt.Errorf("load user: %w", err)
	}

	if user.OTP == "" || user.OTP != otp || user.OTPExpiresAt == nil || time.Now().After(*user.OTPExpiresAt) {
		return errors.ErrInvalidOTP
	}

	user.IsVerified = true
	user.OTP = ""
	user.OTPExpiresAt = nil
	return s.userRepo.Update(ctx, user)
}

// ResendOTP issues a fresh code for an existing unverified account.
func (s *authService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}
	if user.IsVerified {
		return errors.ErrAlreadyVerified
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	expiresAt := time.Now().Add(otpExpiry)

	user.OTP = otp
	user.OTPExpiresAt = &expiresAt
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.mailer.SendOTP(email, otp); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

// Login authenticates a verified user and returns access and refresh tokens.
// The new refresh token replaces any previously stored one.
func (s *authService) Login(ctx context.Context, email, password string) (string, string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", "", nil, errors.ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsVerified {
		return "", "", nil, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, errors.ErrInvalidCredentials
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	user.RefreshToken = refreshToken
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", "", nil, fmt.Errorf("store refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// RefreshToken validates a refresh token against the one persisted for the
// user and returns a new short-lived access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return "", errors.ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", errors.ErrInvalidRefreshToken
		}
		return "", fmt.Errorf("load user: %w", err)
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return "", errors.ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout clears the persisted refresh token, invalidating future refresh calls.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	user, err := s.userRepo.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrInvalidRefreshToken
		}
		return fmt.Errorf("load user: %w", err)
	}

	user.RefreshToken = ""
	return s.userRepo.Update(ctx, user)
}

// ForgotPassword issues a reset token, persists only its hash and mails the
// raw token embedded in a link.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}
	if !user.IsVerified {
		return errors.ErrAccountNotVerified
	}

	resetToken, err := s.jwtService.GenerateResetToken(user.ID)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	user.ResetToken = hashToken(resetToken)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, resetToken)
	if err := s.mailer.SendPasswordReset(email, link); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// ResetPassword verifies the presented token against the stored hash, updates
// the password and clears the hash so the token cannot be replayed.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		if auth.IsExpired(err) {
			return errors.ErrResetTokenExpired
		}
		return errors.ErrInvalidResetToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrInvalidResetToken
		}
		return fmt.Errorf("load user: %w", err)
	}
	if user.ResetToken == "" || user.ResetToken != hashToken(token) {
		return errors.ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	user.ResetToken = ""
	return s.userRepo.Update(ctx, user)
}

// UpdateProfile patches name, email and password; an empty patch is rejected.
func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfileUpdate) (*model.User, error) {
	if patch.Name == "" && patch.Email == "" && patch.Password == "" {
		return nil, errors.ErrNothingToUpdate
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if patch.Name != "" {
		user.Name = patch.Name
	}
	if patch.Email != "" {
		user.Email = patch.Email
	}
	if patch.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(patch.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// ListUsers returns all customer accounts, newest first.
func (s *authService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.ListByRole(ctx, model.RoleUser)
}

// GetUser returns one user with their orders.
func (s *authService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByIDWithOrders(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// generateOTP returns a 6-digit numeric one-time code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// hashToken returns the sha256 hex digest of a token; only digests are stored.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
