package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/andriansp/gocommerce/internal/application"
	"github.com/andriansp/gocommerce/internal/domain/entity"
	"github.com/andriansp/gocommerce/pkg/helpers"
	"github.com/andriansp/gocommerce/pkg/response"
	"github.com/andriansp/gocommerce/pkg/validation"
)

const dateLayout = "2006-01-02"

type AccountHandler struct {
	Svc     *application.AccountService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAccountHandler(svc *application.AccountService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

func userSummary(u *entity.User) gin.H {
	return gin.H{
		"id":           u.ID,
		"username":     u.Username,
		"email":        u.Email,
		"first_name":   u.FirstName,
		"last_name":    u.LastName,
		"full_name":    u.FullName(),
		"phone_number": u.PhoneNumber,
		"date_joined":  u.CreatedAt,
		"is_active":    u.IsActive,
	}
}

func profilePayload(u *entity.User, p *entity.Profile) gin.H {
	var dob any
	if u.DateOfBirth != nil {
		dob = u.DateOfBirth.Format(dateLayout)
	}
	return gin.H{
		"full_name":           u.FullName(),
		"email":               u.Email,
		"first_name":          u.FirstName,
		"last_name":           u.LastName,
		"phone_number":        u.PhoneNumber,
		"date_of_birth":       dob,
		"avatar":              p.AvatarURL,
		"bio":                 p.Bio,
		"location":            p.Location,
		"website":             p.Website,
		"email_notifications": p.EmailNotifications,
		"marketing_emails":    p.MarketingEmails,
	}
}

// fieldErrorsOr500 writes a 400 with field details for pipeline validation
// failures and a 500 for anything else.
func (h *AccountHandler) fieldErrorsOr500(c *gin.Context, err error, msg string) {
	if fe, ok := application.AsFieldErrors(err); ok {
		response.Error[any](c, http.StatusBadRequest, "validation failed", fe)
		return
	}
	if h.Logger != nil {
		h.Logger.WithError(err).Error(msg)
	}
	response.Error[any](c, http.StatusInternalServerError, msg, nil)
}

type registerRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Username        string `json:"username" binding:"required,min=3"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}

// Register POST /api/register
func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, tok, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:           req.Email,
		Username:        req.Username,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		h.fieldErrorsOr500(c, err, "registration failed")
		return
	}

	h.Cookies.SetToken(c, tok.Token, tok.ExpiresAt)
	response.Success(c, http.StatusCreated, gin.H{
		"user":  userSummary(u),
		"token": tok.Token,
	}, "user registered successfully", gin.H{"expires_at": tok.ExpiresAt})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, tok, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) || errors.Is(err, application.ErrAccountDisabled) {
			response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		h.fieldErrorsOr500(c, err, "login failed")
		return
	}

	h.Cookies.SetToken(c, tok.Token, tok.ExpiresAt)
	response.Success(c, http.StatusOK, gin.H{
		"user":  userSummary(u),
		"token": tok.Token,
	}, "login successful", gin.H{"expires_at": tok.ExpiresAt})
}

// Logout POST /api/logout
func (h *AccountHandler) Logout(c *gin.Context) {
	h.Svc.RevokeToken(c.Request.Context(), c.GetString("userID"))
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logout successful", nil)
}

// GetProfile GET /api/profile
func (h *AccountHandler) GetProfile(c *gin.Context) {
	u, p, err := h.Svc.GetProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.fieldErrorsOr500(c, err, "failed to load profile")
		return
	}
	response.Success(c, http.StatusOK, profilePayload(u, p), "profile", nil)
}

type updateProfileRequest struct {
	FirstName          *string `json:"first_name"`
	LastName           *string `json:"last_name"`
	PhoneNumber        *string `json:"phone_number"`
	DateOfBirth        *string `json:"date_of_birth"`
	Avatar             *string `json:"avatar"`
	Bio                *string `json:"bio"`
	Location           *string `json:"location"`
	Website            *string `json:"website"`
	EmailNotifications *bool   `json:"email_notifications"`
	MarketingEmails    *bool   `json:"marketing_emails"`
}

// UpdateProfile PUT /api/profile — updates user and profile fields together.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := application.UpdateProfileInput{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		PhoneNumber:        req.PhoneNumber,
		AvatarURL:          req.Avatar,
		Bio:                req.Bio,
		Location:           req.Location,
		Website:            req.Website,
		EmailNotifications: req.EmailNotifications,
		MarketingEmails:    req.MarketingEmails,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse(dateLayout, *req.DateOfBirth)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload",
				map[string]string{"date_of_birth": "must match format " + dateLayout})
			return
		}
		in.DateOfBirth = &dob
	}

	u, p, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString("userID"), in)
	if err != nil {
		h.fieldErrorsOr500(c, err, "failed to update profile")
		return
	}
	response.Success(c, http.StatusOK, profilePayload(u, p), "profile updated", nil)
}

// UploadAvatar POST /api/profile/avatar (multipart form, field "avatar")
func (h *AccountHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "could not read avatar file", nil)
		return
	}
	defer func() { _ = src.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), c.GetString("userID"), src,
		file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		h.fieldErrorsOr500(c, err, "avatar upload failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar uploaded", nil)
}

// Dashboard GET /api/dashboard
func (h *AccountHandler) Dashboard(c *gin.Context) {
	d, err := h.Svc.GetDashboard(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.fieldErrorsOr500(c, err, "failed to load dashboard")
		return
	}

	addresses := make([]gin.H, 0, len(d.Addresses))
	for i := range d.Addresses {
		addresses = append(addresses, addressPayload(&d.Addresses[i]))
	}
	response.Success(c, http.StatusOK, gin.H{
		"user":         userSummary(d.User),
		"profile":      profilePayload(d.User, d.Profile),
		"addresses":    addresses,
		"total_orders": d.TotalOrders,
	}, "dashboard", nil)
}

// UserInfo GET /api/user-info
func (h *AccountHandler) UserInfo(c *gin.Context) {
	u, err := h.Svc.GetUser(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user":             userSummary(u),
		"is_authenticated": true,
	}, "user info", nil)
}

type changePasswordRequest struct {
	OldPassword        string `json:"old_password" binding:"required"`
	NewPassword        string `json:"new_password" binding:"required"`
	NewPasswordConfirm string `json:"new_password_confirm" binding:"required"`
}

// ChangePassword POST /api/change-password
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	err := h.Svc.ChangePassword(c.Request.Context(), c.GetString("userID"),
		req.OldPassword, req.NewPassword, req.NewPasswordConfirm)
	if err != nil {
		h.fieldErrorsOr500(c, err, "failed to change password")
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed successfully", nil)
}

type checkEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// CheckEmail POST /api/check-email
func (h *AccountHandler) CheckEmail(c *gin.Context) {
	var req checkEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "email is required", validation.ToDetails(err))
		return
	}
	email, available, err := h.Svc.CheckEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.fieldErrorsOr500(c, err, "availability check failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"email": email, "is_available": available}, "email availability", nil)
}

type checkUsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

// CheckUsername POST /api/check-username
func (h *AccountHandler) CheckUsername(c *gin.Context) {
	var req checkUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "username is required", validation.ToDetails(err))
		return
	}
	username, available, err := h.Svc.CheckUsername(c.Request.Context(), req.Username)
	if err != nil {
		h.fieldErrorsOr500(c, err, "availability check failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"username": username, "is_available": available}, "username availability", nil)
}

type deactivateRequest struct {
	Password string `json:"password" binding:"required"`
}

// Deactivate POST /api/deactivate
func (h *AccountHandler) Deactivate(c *gin.Context) {
	var req deactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "password is required to deactivate account", validation.ToDetails(err))
		return
	}

	err := h.Svc.Deactivate(c.Request.Context(), c.GetString("userID"), req.Password)
	if err != nil {
		if errors.Is(err, application.ErrIncorrectPassword) {
			response.Error[any](c, http.StatusBadRequest, "incorrect password", nil)
			return
		}
		h.fieldErrorsOr500(c, err, "failed to deactivate account")
		return
	}

	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"deactivated": true}, "account deactivated successfully", nil)
}
