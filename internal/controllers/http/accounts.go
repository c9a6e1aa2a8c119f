package http

import (
	"net/http"

	"market-service/internal/apperr"
	"market-service/internal/domain"
	"market-service/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	u, err := h.auth.Register(c.Request.Context(), req.toInput())
	if err != nil {
		h.respondError(c, err, "Registration failed")
		return
	}
	msg := "Registration successful"
	if u.Status == domain.UserPending {
		msg += ", pending admin approval"
	}
	created(c, msg, u)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" || req.Password == "" {
		h.badRequest(c, "Phone and Password are required")
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		h.respondError(c, err, "Login failed")
		return
	}
	ok(c, "Login successful", res)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), currentClaims(c)); err != nil {
		h.respondError(c, err, "Logout failed")
		return
	}
	ok(c, "Logout successful", nil)
}

func (h *Handler) GetProfile(c *gin.Context) {
	u, err := h.users.Profile(c.Request.Context(), currentActor(c).UserID)
	if err != nil {
		h.respondError(c, err, "Failed to fetch profile")
		return
	}
	ok(c, "", u)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), currentActor(c).UserID, services.ProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		NID:      req.NID,
		Division: req.Division,
		District: req.District,
		Thana:    req.Thana,
		Address:  req.Address,
	})
	if err != nil {
		h.respondError(c, err, "Failed to update profile")
		return
	}
	ok(c, "Profile updated successfully", u)
}

func (h *Handler) UpdateProfileImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageUpload)
	header, err := c.FormFile("image")
	if err != nil {
		h.badRequest(c, "Image file is required (max 10MB)")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.respondError(c, apperr.Unexpected("open upload", err), "Failed to upload image")
		return
	}
	defer file.Close()

	u, err := h.users.UpdateProfileImage(c.Request.Context(), currentActor(c).UserID, file, header.Filename)
	if err != nil {
		h.respondError(c, err, "Failed to upload image")
		return
	}
	ok(c, "Profile image updated successfully", u)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		h.badRequest(c, "Current and new password are required")
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), currentActor(c).UserID, req.CurrentPassword, req.NewPassword); err != nil {
		h.respondError(c, err, "Failed to change password")
		return
	}
	ok(c, "Password changed successfully", nil)
}

func userQuery(c *gin.Context) services.UserQuery {
	return services.UserQuery{
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Query:  c.Query("q"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}
}

func (h *Handler) ListUsers(c *gin.Context) {
	page, err := h.users.ListUsers(c.Request.Context(), currentActor(c), userQuery(c))
	if err != nil {
		h.respondError(c, err, "Failed to fetch users")
		return
	}
	ok(c, "", UserList{Users: page.Users, Pagination: page.Page})
}

func (h *Handler) PendingUsers(c *gin.Context) {
	page, err := h.users.PendingUsers(c.Request.Context(), currentActor(c), userQuery(c))
	if err != nil {
		h.respondError(c, err, "Failed to fetch users")
		return
	}
	ok(c, "", UserList{Users: page.Users, Pagination: page.Page})
}

func (h *Handler) userID(c *gin.Context) (uint64, bool) {
	id := paramID(c, "id")
	if id == 0 {
		fail(c, apperr.HTTPStatus(apperr.ErrUserNotFound), apperr.CodeUserNotFound, "User not found")
		return 0, false
	}
	return id, true
}

func (h *Handler) GetUser(c *gin.Context) {
	id, found := h.userID(c)
	if !found {
		return
	}
	u, err := h.users.GetUser(c.Request.Context(), currentActor(c), id)
	if err != nil {
		h.respondError(c, err, "Failed to fetch user")
		return
	}
	ok(c, "", u)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, found := h.userID(c)
	if !found {
		return
	}
	if err := h.users.DeleteUser(c.Request.Context(), currentActor(c), id); err != nil {
		h.respondError(c, err, "Failed to delete user")
		return
	}
	ok(c, "User deleted successfully", nil)
}

func (h *Handler) ApproveUser(c *gin.Context) {
	id, found := h.userID(c)
	if !found {
		return
	}
	u, err := h.users.Approve(c.Request.Context(), currentActor(c), id)
	if err != nil {
		h.respondError(c, err, "Failed to approve user")
		return
	}
	ok(c, "User approved successfully", u)
}

func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.users.Dashboard(c.Request.Context(), currentActor(c), c.Param("role"))
	if err != nil {
		h.respondError(c, err, "Failed to load dashboard")
		return
	}
	ok(c, d.Message, d)
}
