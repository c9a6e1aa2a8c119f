package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"market-service/internal/apperr"
	"market-service/internal/auth"
	"market-service/internal/domain"
	"market-service/internal/repository"

	"github.com/sirupsen/logrus"
)

const minPasswordLen = 6

// RevocationList remembers logged-out token ids.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type RegisterInput struct {
	Name         string
	Phone        string
	Password     string
	Email        string
	NID          string
	Division     string
	District     string
	Thana        string
	Address      string
	TradeLicense string
	Role         domain.Role
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

type AuthService struct {
	users   repository.UserRepository
	tokens  *auth.TokenManager
	revoked RevocationList
	now     func() time.Time
	log     *logrus.Entry
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, revoked RevocationList, log *logrus.Entry) *AuthService {
	return &AuthService{users: users, tokens: tokens, revoked: revoked, now: time.Now, log: log}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func validateRegistration(in *RegisterInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Role == "" {
		in.Role = domain.RoleConsumer
	}
	if !in.Role.Valid() || in.Role == domain.RoleAdmin {
		return apperr.Validation("Invalid role")
	}
	if in.Role == domain.RoleConsumer {
		if in.Name == "" || in.Phone == "" || in.Password == "" {
			return apperr.Validation("Name, phone, and password are required for consumers")
		}
	} else {
		for _, v := range []string{in.Name, in.Phone, in.Password, in.NID, in.Division, in.District, in.Thana, in.Address} {
			if strings.TrimSpace(v) == "" {
				return apperr.Validation("All fields are required for non-consumers")
			}
		}
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLen {
		return apperr.Validationf("Password must be at least %d characters", minPasswordLen)
	}
	return nil
}

// Register creates an account. Producer, wholesaler and superseller accounts
// wait for admin approval before they can log in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := validateRegistration(&in); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByPhone(ctx, in.Phone)
	if err != nil {
		return nil, apperr.Unexpected("failed to register user", err)
	}
	if existing != nil {
		return nil, apperr.Conflict(apperr.CodeDuplicate, "Phone number already registered")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Unexpected("failed to register user", err)
	}

	u := &domain.User{
		Name:         in.Name,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         in.Role,
		Status:       domain.UserApproved,
	}
	if in.Role.RequiresApproval() {
		u.Status = domain.UserPending
	}
	if in.Role != domain.RoleConsumer {
		u.Email = optional(in.Email)
		u.NID = optional(in.NID)
		u.TradeLicense = optional(in.TradeLicense)
		u.Division = strings.TrimSpace(in.Division)
		u.District = strings.TrimSpace(in.District)
		u.Thana = strings.TrimSpace(in.Thana)
		u.Address = strings.TrimSpace(in.Address)
	}

	err = s.users.Create(ctx, u)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.Conflict(apperr.CodeDuplicate, "Phone, email, NID or trade license already registered")
	}
	if err != nil {
		return nil, apperr.Unexpected("failed to register user", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role, "status": u.Status}).Info("user registered")
	return u, nil
}

var errInvalidCredentials = apperr.New(apperr.KindValidation, apperr.CodeInvalidCredentials, "Invalid Phone or Password")

// Login checks the password before the approval state so pending accounts
// are not revealed to callers without credentials.
func (s *AuthService) Login(ctx context.Context, phone, password string) (*LoginResult, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return nil, apperr.Validation("Phone and Password are required")
	}

	u, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return nil, apperr.Unexpected("failed to log in", err)
	}
	if u == nil {
		return nil, errInvalidCredentials
	}
	ok, err := auth.CheckPassword(u.PasswordHash, password)
	if err != nil {
		return nil, apperr.Unexpected("failed to log in", err)
	}
	if !ok {
		return nil, errInvalidCredentials
	}
	if u.Status != domain.UserApproved {
		return nil, apperr.New(apperr.KindAccessDenied, apperr.CodePendingApproval, "Admin approval required for login")
	}

	now := s.now()
	u.LastLogin = &now
	if err := s.users.Update(ctx, u); err != nil {
		return nil, apperr.Unexpected("failed to log in", err)
	}

	token, claims, err := s.tokens.Issue(u)
	if err != nil {
		return nil, apperr.Unexpected("failed to log in", err)
	}
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: u}, nil
}

// Authenticate resolves a bearer token to the calling user. The role is read
// from the stored account so approvals and role changes apply immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Actor, *auth.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return Actor{}, nil, apperr.Unauthenticated("Unauthorized: Invalid token")
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Actor{}, nil, apperr.Unexpected("failed to verify token", err)
	}
	if revoked {
		return Actor{}, nil, apperr.Unauthenticated("Unauthorized: Token has been revoked")
	}
	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return Actor{}, nil, apperr.Unexpected("failed to verify token", err)
	}
	if u == nil {
		return Actor{}, nil, apperr.Unauthenticated("Unauthorized: User not found")
	}
	return Actor{UserID: u.ID, Role: u.Role}, claims, nil
}

// Logout revokes the token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperr.Validation("Token not provided")
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.Remaining(s.now())); err != nil {
		return apperr.Unexpected("failed to log out", err)
	}
	return nil
}
