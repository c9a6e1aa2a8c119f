package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"market-service/internal/apperr"
	"market-service/internal/auth"
	"market-service/internal/domain"
	"market-service/internal/infra/imagestore"
	"market-service/internal/policy"
	"market-service/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultUserLimit = 20

// ProfileInput carries profile edits. Empty fields are left unchanged.
type ProfileInput struct {
	Name     string
	Email    string
	Phone    string
	NID      string
	Division string
	District string
	Thana    string
	Address  string
}

type UserQuery struct {
	Role   string
	Status string
	Query  string
	Page   int
	Limit  int
}

type UserPage struct {
	Users []domain.User
	Page  domain.PageInfo
}

// Dashboard is the landing data of one role.
type Dashboard struct {
	Message      string                `json:"message"`
	Orders       *OrderStats           `json:"orders,omitempty"`
	RecentOrders []domain.Order        `json:"recentOrders,omitempty"`
	ProductCount *int64                `json:"productCount,omitempty"`
	UsersByRole  map[domain.Role]int64 `json:"usersByRole,omitempty"`
}

type UserService struct {
	users    repository.UserRepository
	orders   *OrderService
	products repository.ProductRepository
	images   ImageStore
	log      *logrus.Entry
}

func NewUserService(users repository.UserRepository, orders *OrderService, products repository.ProductRepository, images ImageStore, log *logrus.Entry) *UserService {
	return &UserService{users: users, orders: orders, products: products, images: images, log: log}
}

func (s *UserService) find(ctx context.Context, id uint64) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected("failed to fetch user", err)
	}
	if u == nil {
		return nil, apperr.ErrUserNotFound.With("User not found")
	}
	return u, nil
}

func (s *UserService) Profile(ctx context.Context, userID uint64) (*domain.User, error) {
	return s.find(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint64, in ProfileInput) (*domain.User, error) {
	u, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&u.Name, in.Name)
	set(&u.Phone, in.Phone)
	set(&u.Division, in.Division)
	set(&u.District, in.District)
	set(&u.Thana, in.Thana)
	set(&u.Address, in.Address)
	if v := optional(in.Email); v != nil {
		u.Email = v
	}
	if v := optional(in.NID); v != nil {
		u.NID = v
	}

	err = s.users.Update(ctx, u)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.Conflict(apperr.CodeDuplicate, "Phone, email or NID already registered")
	}
	if err != nil {
		return nil, apperr.Unexpected("failed to update profile", err)
	}
	return u, nil
}

// UpdateProfileImage stores a new profile picture and drops the previous one.
func (s *UserService) UpdateProfileImage(ctx context.Context, userID uint64, r io.Reader, filename string) (*domain.User, error) {
	u, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, apperr.Unexpected("image uploads are not configured", nil)
	}
	url, err := s.images.Save(r, filename)
	if errors.Is(err, imagestore.ErrUnsupportedFormat) {
		return nil, apperr.Validation("Unsupported image format. Only PNG, JPG, JPEG are allowed.")
	}
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("Failed to process image %s", filename))
	}

	old := u.Image
	u.Image = url
	if err := s.users.Update(ctx, u); err != nil {
		s.removeImage(url)
		return nil, apperr.Unexpected("failed to update profile image", err)
	}
	s.removeImage(old)
	return u, nil
}

func (s *UserService) removeImage(url string) {
	if url == "" {
		return
	}
	if err := s.images.Remove(url); err != nil {
		s.log.WithError(err).WithField("image", url).Warn("failed to remove profile image")
	}
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint64, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("Current and new password are required")
	}
	if len([]rune(next)) < minPasswordLen {
		return apperr.Validationf("Password must be at least %d characters", minPasswordLen)
	}
	if current == next {
		return apperr.Validation("New password must differ from the current password")
	}
	u, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := auth.CheckPassword(u.PasswordHash, current)
	if err != nil {
		return apperr.Unexpected("failed to change password", err)
	}
	if !ok {
		return apperr.Validation("Current password is incorrect")
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return apperr.Unexpected("failed to change password", err)
	}
	u.PasswordHash = hash
	if err := s.users.Update(ctx, u); err != nil {
		return apperr.Unexpected("failed to change password", err)
	}
	return nil
}

func requireAdmin(actor Actor) error {
	if !policy.Allow(actor.Role, policy.Users, policy.Manage) {
		return apperr.ErrAccessDenied.With("Access Denied: Admins only")
	}
	return nil
}

// ListUsers filters by role, status and a name/phone/email search. Unknown
// roles and statuses are ignored.
func (s *UserService) ListUsers(ctx context.Context, actor Actor, q UserQuery) (*UserPage, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	filter := repository.UserFilter{Query: strings.TrimSpace(q.Query)}
	if r := domain.Role(strings.TrimSpace(q.Role)); r.Valid() {
		filter.Role = &r
	}
	if st := domain.UserStatus(strings.TrimSpace(q.Status)); st == domain.UserPending || st == domain.UserApproved {
		filter.Status = &st
	}
	req := domain.NewPageRequest(q.Page, q.Limit, defaultUserLimit)
	users, total, err := s.users.List(ctx, filter, req)
	if err != nil {
		return nil, apperr.Unexpected("failed to fetch users", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return &UserPage{Users: users, Page: domain.NewPageInfo(req, total)}, nil
}

func (s *UserService) PendingUsers(ctx context.Context, actor Actor, q UserQuery) (*UserPage, error) {
	q.Status = string(domain.UserPending)
	return s.ListUsers(ctx, actor, q)
}

func (s *UserService) GetUser(ctx context.Context, actor Actor, id uint64) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *UserService) DeleteUser(ctx context.Context, actor Actor, id uint64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if id == actor.UserID {
		return apperr.Validation("Admins cannot delete their own account")
	}
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return apperr.Unexpected("failed to delete user", err)
	}
	if !ok {
		return apperr.ErrUserNotFound.With("User not found")
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "admin_id": actor.UserID}).Info("user deleted")
	return nil
}

func (s *UserService) Approve(ctx context.Context, actor Actor, id uint64) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Status == domain.UserApproved {
		return u, nil
	}
	u.Status = domain.UserApproved
	if err := s.users.Update(ctx, u); err != nil {
		return nil, apperr.Unexpected("failed to approve user", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "admin_id": actor.UserID}).Info("user approved")
	return u, nil
}

var dashboardTitles = map[domain.Role][2]string{
	domain.RoleConsumer:    {"Consumer", "Consumers"},
	domain.RoleWholesaler:  {"Wholesaler", "Wholesalers"},
	domain.RoleSuperseller: {"Super Seller", "Supersellers"},
	domain.RoleProducer:    {"Producer", "Producers"},
	domain.RoleAdmin:       {"Admin", "Admins"},
}

// Dashboard returns the landing data for role, which must be the caller's own.
func (s *UserService) Dashboard(ctx context.Context, actor Actor, role string) (*Dashboard, error) {
	r := domain.Role(strings.TrimSpace(role))
	titles, ok := dashboardTitles[r]
	if !ok {
		return nil, apperr.NotFound(apperr.CodeInvalidInput, "Dashboard not found")
	}
	if !policy.Allow(actor.Role, policy.Dashboard(r), policy.View) {
		return nil, apperr.ErrAccessDenied.With("Access Denied: " + titles[1] + " only")
	}

	d := &Dashboard{Message: "Welcome to " + titles[0] + " Dashboard"}
	g, gctx := errgroup.WithContext(ctx)

	var scope *uint64
	if r != domain.RoleAdmin {
		scope = &actor.UserID
	}
	g.Go(func() error {
		stats, err := s.orders.Stats(gctx, scope)
		d.Orders = stats
		return err
	})
	if r != domain.RoleAdmin {
		g.Go(func() error {
			recent, err := s.orders.Recent(gctx, actor.UserID, 0)
			d.RecentOrders = recent
			return err
		})
	}
	switch r {
	case domain.RoleProducer:
		g.Go(func() error {
			n, err := s.products.CountByProducer(gctx, actor.UserID)
			if err != nil {
				return apperr.Unexpected("failed to count products", err)
			}
			d.ProductCount = &n
			return nil
		})
	case domain.RoleAdmin:
		g.Go(func() error {
			counts, err := s.users.CountByRole(gctx)
			if err != nil {
				return apperr.Unexpected("failed to count users", err)
			}
			d.UsersByRole = counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
