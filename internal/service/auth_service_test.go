package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/google/uuid"

	"techmart/internal/auth"
	"techmart/internal/errors"
	"techmart/internal/model"
)

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		userName      string
		setupMock     func(*MockUserRepository, *MockMailer)
		expectedError error
	}{
		{
			name:     "successful registration",
			email:    "test@example.com",
			password: "password123",
			userName: "Test User",
			setupMock: func(m *MockUserRepository, mailer *MockMailer) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				mailer.On("SendOTP", "test@example.com", mock.AnythingOfType("string")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "email already registered",
			email:    "existing@example.com",
			password: "password123",
			userName: "Existing User",
			setupMock: func(m *MockUserRepository, mailer *MockMailer) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: errors.ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockMailer := new(MockMailer)
			tt.setupMock(mockRepo, mockMailer)

			jwtService := auth.NewJWTService("test-secret")
			service := NewAuthService(mockRepo, jwtService, mockMailer, "http://localhost:5173")

			user, err := service.Register(context.Background(), tt.userName, tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, model.RoleUser, user.Role)
				assert.False(t, user.IsVerified)
				assert.Len(t, user.OTP, 6)
				assert.NotNil(t, user.OTPExpiresAt)
				assert.NotEmpty(t, user.PasswordHash)
			}

			mockRepo.AssertExpectations(t)
			mockMailer.AssertExpectations(t)
		})
	}
}

func TestAuthService_VerifyOTP(t *testing.T) {
	validExpiry := time.Now().Add(5 * time.Minute)
	pastExpiry := time.Now().Add(-time.Minute)

	tests := []struct {
		name          string
		otp           string
		user          *model.User
		findErr       error
		expectUpdate  bool
		expectedError error
	}{
		{
			name:         "valid code verifies the account",
			otp:          "123456",
			user:         &model.User{Email: "a@b.com", OTP: "123456", OTPExpiresAt: &validExpiry},
			expectUpdate: true,
		},
		{
			name:          "wrong code",
			otp:           "000000",
			user:          &model.User{Email: "a@b.com", OTP: "123456", OTPExpiresAt: &validExpiry},
			expectedError: errors.ErrInvalidOTP,
		},
		{
			name:          "expired code",
			otp:           "123456",
			user:          &model.User{Email: "a@b.com", OTP: "123456", OTPExpiresAt: &pastExpiry},
			expectedError: errors.ErrInvalidOTP,
		},
		{
			name:          "no pending code",
			otp:           "123456",
			user:          &model.User{Email: "a@b.com", IsVerified: true},
			expectedError: errors.ErrInvalidOTP,
		},
		{
			name:          "unknown email",
			otp:           "123456",
			findErr:       gorm.ErrRecordNotFound,
			expectedError: errors.ErrInvalidOTP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			if tt.findErr != nil {
				mockRepo.On("FindByEmail", mock.Anything, "a@b.com").Return(nil, tt.findErr)
			} else {
				mockRepo.On("FindByEmail", mock.Anything, "a@b.com").Return(tt.user, nil)
			}
			if tt.expectUpdate {
				mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			}

			service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockMailer), "")
			err := service.VerifyOTP(context.Background(), "a@b.com", tt.otp)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
				assert.True(t, tt.user.IsVerified)
				assert.Empty(t, tt.user.OTP)
				assert.Nil(t, tt.user.OTPExpiresAt)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_ResendOTP(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(*MockUserRepository, *MockMailer)
		expectedError error
	}{
		{
			name: "resends to an unverified account",
			setupMock: func(m *MockUserRepository, mailer *MockMailer) {
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(&model.User{Email: "a@b.com"}, nil)
				m.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				mailer.On("SendOTP", "a@b.com", mock.AnythingOfType("string")).Return(nil)
			},
		},
		{
			name: "unknown email",
			setupMock: func(m *MockUserRepository, mailer *MockMailer) {
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrUserNotFound,
		},
		{
			name: "already verified account",
			setupMock: func(m *MockUserRepository, mailer *MockMailer) {
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(&model.User{Email: "a@b.com", IsVerified: true}, nil)
			},
			expectedError: errors.ErrAlreadyVerified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockMailer := new(MockMailer)
			tt.setupMock(mockRepo, mockMailer)

			service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), mockMailer, "")
			err := service.ResendOTP(context.Background(), "a@b.com")

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
			mockMailer.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)

	tests := []struct {
		name          string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login stores a fresh refresh token",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
					IsVerified:   true,
					RefreshToken: "stale-token",
				}, nil)
				m.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:     "unverified account",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
				}, nil)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			password: "wrong",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
					IsVerified:   true,
				}, nil)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockMailer), "")
			accessToken, refreshToken, user, err := service.Login(context.Background(), "test@example.com", tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
				assert.NotNil(t, user)
				assert.Equal(t, refreshToken, user.RefreshToken)
				assert.NotEqual(t, "stale-token", user.RefreshToken)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	user := &model.User{ID: uuid.New(), Role: model.RoleUser, IsVerified: true}

	validToken, err := jwtService.GenerateRefreshToken(user.ID, user.Role)
	assert.NoError(t, err)

	t.Run("matching stored token yields a new access token", func(t *testing.T) {
		user.RefreshToken = validToken
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		service := NewAuthService(mockRepo, jwtService, new(MockMailer), "")
		accessToken, err := service.RefreshToken(context.Background(), validToken)

		assert.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("token not matching the stored one is rejected", func(t *testing.T) {
		other, err := jwtService.GenerateRefreshToken(user.ID, user.Role)
		assert.NoError(t, err)

		assert.NotEqual(t, validToken, other)

		user.RefreshToken = validToken
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		service := NewAuthService(mockRepo, jwtService, new(MockMailer), "")
		_, err = service.RefreshToken(context.Background(), other)

		assert.Equal(t, errors.ErrInvalidRefreshToken, err)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		service := NewAuthService(new(MockUserRepository), jwtService, new(MockMailer), "")
		_, err := service.RefreshToken(context.Background(), "not-a-jwt")
		assert.Equal(t, errors.ErrInvalidRefreshToken, err)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	user := &model.User{ID: uuid.New(), IsVerified: true}

	resetToken, err := jwtService.GenerateResetToken(user.ID)
	assert.NoError(t, err)

	t.Run("valid token updates the password and clears the hash", func(t *testing.T) {
		user.ResetToken = hashToken(resetToken)
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		service := NewAuthService(mockRepo, jwtService, new(MockMailer), "")
		err := service.ResetPassword(context.Background(), resetToken, "newpassword1")

		assert.NoError(t, err)
		assert.Empty(t, user.ResetToken)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newpassword1")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("token cannot be replayed after use", func(t *testing.T) {
		user.ResetToken = ""
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		service := NewAuthService(mockRepo, jwtService, new(MockMailer), "")
		err := service.ResetPassword(context.Background(), resetToken, "anotherpass1")

		assert.Equal(t, errors.ErrInvalidResetToken, err)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		foreign, err := auth.NewJWTService("other-secret").GenerateResetToken(user.ID)
		assert.NoError(t, err)

		service := NewAuthService(new(MockUserRepository), jwtService, new(MockMailer), "")
		err = service.ResetPassword(context.Background(), foreign, "anotherpass1")
		assert.Equal(t, errors.ErrInvalidResetToken, err)
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("clears the stored refresh token", func(t *testing.T) {
		user := &model.User{RefreshToken: "some-token"}
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByRefreshToken", mock.Anything, "some-token").Return(user, nil)
		mockRepo.On("Update", mock.Anything, user).Return(nil)

		service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockMailer), "")
		err := service.Logout(context.Background(), "some-token")

		assert.NoError(t, err)
		assert.Empty(t, user.RefreshToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByRefreshToken", mock.Anything, "unknown").Return(nil, gorm.ErrRecordNotFound)

		service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockMailer), "")
		err := service.Logout(context.Background(), "unknown")

		assert.Equal(t, errors.ErrInvalidRefreshToken, err)
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	t.Run("empty patch is rejected", func(t *testing.T) {
		service := NewAuthService(new(MockUserRepository), auth.NewJWTService("test-secret"), new(MockMailer), "")
		_, err := service.UpdateProfile(context.Background(), uuid.New(), ProfileUpdate{})
		assert.Equal(t, errors.ErrNothingToUpdate, err)
	})

	t.Run("patches only the provided fields", func(t *testing.T) {
		id := uuid.New()
		user := &model.User{ID: id, Name: "Old Name", Email: "old@example.com"}
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(user, nil)
		mockRepo.On("Update", mock.Anything, user).Return(nil)

		service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockMailer), "")
		updated, err := service.UpdateProfile(context.Background(), id, ProfileUpdate{Name: "New Name"})

		assert.NoError(t, err)
		assert.Equal(t, "New Name", updated.Name)
		assert.Equal(t, "old@example.com", updated.Email)
		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_GetProfile(t *testing.T) {
	id := uuid.New()

	t.Run("returns the user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, Email: "user@example.com"}, nil)

		service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockMailer), "")
		user, err := service.GetProfile(context.Background(), id)

		assert.NoError(t, err)
		assert.Equal(t, "user@example.com", user.Email)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockMailer), "")
		_, err := service.GetProfile(context.Background(), id)
		assert.Equal(t, errors.ErrUserNotFound, err)
	})

	t.Run("database failure is not reported as a missing user", func(t *testing.T) {
		dbErr := fmt.Errorf("dial tcp 127.0.0.1:3306: connect: connection refused")
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(nil, dbErr)

		service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockMailer), "")
		_, err := service.GetProfile(context.Background(), id)

		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, errors.ErrUserNotFound)
	})
}
