package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"market-service/internal/apperr"
	"market-service/internal/auth"
	"market-service/internal/domain"
	"market-service/internal/logger"
	"market-service/internal/mocks"
	"market-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthService(users *mocks.MockUserRepository, revoked *mocks.MockRevocationList) *AuthService {
	return NewAuthService(users, auth.NewTokenManager("test-secret", 30*24*time.Hour), revoked, logger.Discard())
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name         string
		input        RegisterInput
		setupMocks   func(users *mocks.MockUserRepository)
		expectedKind apperr.Kind
		wantErr      bool
		wantStatus   domain.UserStatus
	}{
		{
			name:  "consumer is approved at once",
			input: RegisterInput{Name: "Rahim", Phone: "017", Password: "secret1", NID: "123"},
			setupMocks: func(users *mocks.MockUserRepository) {
				users.On("FindByPhone", mock.Anything, "017").Return(nil, nil)
				users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
					return u.Role == domain.RoleConsumer && u.NID == nil && u.PasswordHash != "secret1"
				})).Return(nil)
			},
			wantStatus: domain.UserApproved,
		},
		{
			name: "producer waits for approval",
			input: RegisterInput{
				Name: "Karim", Phone: "018", Password: "secret1", NID: "55", Division: "Dhaka",
				District: "Dhaka", Thana: "Mirpur", Address: "Road 1", TradeLicense: "TL-1", Role: domain.RoleProducer,
			},
			setupMocks: func(users *mocks.MockUserRepository) {
				users.On("FindByPhone", mock.Anything, "018").Return(nil, nil)
				users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
					return u.NID != nil && *u.NID == "55" && u.Email == nil
				})).Return(nil)
			},
			wantStatus: domain.UserPending,
		},
		{
			name:         "producer without address details",
			input:        RegisterInput{Name: "Karim", Phone: "018", Password: "secret1", Role: domain.RoleProducer},
			setupMocks:   func(*mocks.MockUserRepository) {},
			wantErr:      true,
			expectedKind: apperr.KindValidation,
		},
		{
			name:         "admin cannot self register",
			input:        RegisterInput{Name: "Eve", Phone: "019", Password: "secret1", Role: domain.RoleAdmin},
			setupMocks:   func(*mocks.MockUserRepository) {},
			wantErr:      true,
			expectedKind: apperr.KindValidation,
		},
		{
			name:         "short password",
			input:        RegisterInput{Name: "Rahim", Phone: "017", Password: "123"},
			setupMocks:   func(*mocks.MockUserRepository) {},
			wantErr:      true,
			expectedKind: apperr.KindValidation,
		},
		{
			name:  "phone taken",
			input: RegisterInput{Name: "Rahim", Phone: "017", Password: "secret1"},
			setupMocks: func(users *mocks.MockUserRepository) {
				users.On("FindByPhone", mock.Anything, "017").Return(&domain.User{ID: 2}, nil)
			},
			wantErr:      true,
			expectedKind: apperr.KindConflict,
		},
		{
			name: "unique index rejects email",
			input: RegisterInput{
				Name: "Karim", Phone: "018", Password: "secret1", NID: "55", Division: "Dhaka",
				District: "Dhaka", Thana: "Mirpur", Address: "Road 1", Email: "k@example.com", Role: domain.RoleWholesaler,
			},
			setupMocks: func(users *mocks.MockUserRepository) {
				users.On("FindByPhone", mock.Anything, "018").Return(nil, nil)
				users.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("insert user: %w", repository.ErrDuplicate))
			},
			wantErr:      true,
			expectedKind: apperr.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mocks.MockUserRepository)
			tt.setupMocks(users)

			u, err := newAuthService(users, new(mocks.MockRevocationList)).Register(context.Background(), tt.input)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.expectedKind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, u.Status)
			ok, err := auth.CheckPassword(u.PasswordHash, tt.input.Password)
			require.NoError(t, err)
			assert.True(t, ok)
			users.AssertExpectations(t)
		})
	}
}

func registeredUser(t *testing.T, status domain.UserStatus) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	return &domain.User{ID: 7, Phone: "017", PasswordHash: hash, Role: domain.RoleConsumer, Status: status}
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name         string
		password     string
		user         func(t *testing.T) *domain.User
		expectedCode string
	}{
		{"approved user", "secret1", func(t *testing.T) *domain.User { return registeredUser(t, domain.UserApproved) }, ""},
		{"wrong password", "nope", func(t *testing.T) *domain.User { return registeredUser(t, domain.UserApproved) }, apperr.CodeInvalidCredentials},
		{"unknown phone", "secret1", func(*testing.T) *domain.User { return nil }, apperr.CodeInvalidCredentials},
		{"pending approval", "secret1", func(t *testing.T) *domain.User { return registeredUser(t, domain.UserPending) }, apperr.CodePendingApproval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mocks.MockUserRepository)
			users.On("FindByPhone", mock.Anything, "017").Return(tt.user(t), nil)
			users.On("Update", mock.Anything, mock.Anything).Return(nil)
			svc := newAuthService(users, new(mocks.MockRevocationList))

			res, err := svc.Login(context.Background(), " 017 ", tt.password)

			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedCode, apperr.CodeOf(err))
				users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, res.Token)
			assert.NotNil(t, res.User.LastLogin)
			assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), res.ExpiresAt, time.Minute)
		})
	}
}

func TestAuthService_PendingLoginIsForbidden(t *testing.T) {
	users := new(mocks.MockUserRepository)
	users.On("FindByPhone", mock.Anything, "017").Return(registeredUser(t, domain.UserPending), nil)

	_, err := newAuthService(users, new(mocks.MockRevocationList)).Login(context.Background(), "017", "secret1")
	assert.Equal(t, 403, apperr.HTTPStatus(err))
}

func TestAuthService_AuthenticateAndLogout(t *testing.T) {
	users, revoked := new(mocks.MockUserRepository), new(mocks.MockRevocationList)
	u := registeredUser(t, domain.UserApproved)
	users.On("FindByPhone", mock.Anything, "017").Return(u, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	users.On("FindByID", mock.Anything, uint64(7)).Return(u, nil)
	svc := newAuthService(users, revoked)

	res, err := svc.Login(context.Background(), "017", "secret1")
	require.NoError(t, err)

	revoked.On("IsRevoked", mock.Anything, mock.Anything).Return(false, nil).Once()
	actor, claims, err := svc.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, Actor{UserID: 7, Role: domain.RoleConsumer}, actor)

	revoked.On("Revoke", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 29*24*time.Hour && ttl <= 30*24*time.Hour
	})).Return(nil)
	require.NoError(t, svc.Logout(context.Background(), claims))

	revoked.On("IsRevoked", mock.Anything, claims.ID).Return(true, nil).Once()
	_, _, err = svc.Authenticate(context.Background(), res.Token)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	revoked.AssertExpectations(t)
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Run("garbage token", func(t *testing.T) {
		_, _, err := newAuthService(new(mocks.MockUserRepository), new(mocks.MockRevocationList)).Authenticate(context.Background(), "not-a-jwt")
		assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	})

	t.Run("revocation store down", func(t *testing.T) {
		users, revoked := new(mocks.MockUserRepository), new(mocks.MockRevocationList)
		svc := newAuthService(users, revoked)
		token, _, err := svc.tokens.Issue(&domain.User{ID: 7, Role: domain.RoleConsumer})
		require.NoError(t, err)
		revoked.On("IsRevoked", mock.Anything, mock.Anything).Return(false, errors.New("redis down"))

		_, _, err = svc.Authenticate(context.Background(), token)
		assert.Equal(t, apperr.KindUnexpected, apperr.KindOf(err))
	})

	t.Run("deleted user", func(t *testing.T) {
		users, revoked := new(mocks.MockUserRepository), new(mocks.MockRevocationList)
		svc := newAuthService(users, revoked)
		token, _, err := svc.tokens.Issue(&domain.User{ID: 7, Role: domain.RoleConsumer})
		require.NoError(t, err)
		revoked.On("IsRevoked", mock.Anything, mock.Anything).Return(false, nil)
		users.On("FindByID", mock.Anything, uint64(7)).Return(nil, nil)

		_, _, err = svc.Authenticate(context.Background(), token)
		assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	})
}
