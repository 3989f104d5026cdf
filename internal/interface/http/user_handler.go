package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/internal/application"
	"github.com/oksasatya/go-ecommerce-backend/pkg/apperror"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
	"github.com/oksasatya/go-ecommerce-backend/pkg/response"
	"github.com/oksasatya/go-ecommerce-backend/pkg/validation"
)

type UserHandler struct {
	Svc            UserUseCase
	Logger         *logrus.Logger
	Cookies        *helpers.AuthCookies
	MaxUploadBytes int64
}

func NewUserHandler(svc UserUseCase, logger *logrus.Logger, cookieDomain string, cookieSecure bool, maxUploadBytes int64) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: helpers.NewAuthCookies(cookieDomain, cookieSecure), MaxUploadBytes: maxUploadBytes}
}

type signupRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type updateProfileRequest struct {
	Email       string `json:"email" binding:"omitempty,email"`
	UserName    string `json:"userName" binding:"omitempty,min=3,max=50"`
	FullName    string `json:"fullName" binding:"omitempty,max=100"`
	Bio         string `json:"bio" binding:"omitempty,max=500"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth"` // YYYY-MM-DD
}

// Signup POST /api/users/signup
func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": toUser(u)}, "User created successfully", nil)
}

// Signin POST /api/users/signin
func (h *UserHandler) Signin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"user":         toUser(u),
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "Login successful", tokenMeta(pair))
}

// Refresh POST /api/users/refresh. The token comes from the body or the refresh cookie.
func (h *UserHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	_ = bindOptionalJSON(c, &req)
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		token, _ = c.Cookie(helpers.RefreshCookie)
	}
	if token == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "Token refreshed", tokenMeta(pair))
}

// Logout POST /api/users/logout
func (h *UserHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), currentUser(c))
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"loggedOut": true}, "Logged out", nil)
}

// Me GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "Profile", nil)
}

// GetByID GET /api/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "User retrieved", nil)
}

// List GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUser(&users[i]))
	}
	response.Success(c, http.StatusOK, out, "Users retrieved", map[string]any{"count": len(out)})
}

// Update PUT /api/users/me
func (h *UserHandler) Update(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in := application.UpdateProfileInput{
		Email:    req.Email,
		UserName: req.UserName,
		FullName: req.FullName,
		Bio:      req.Bio,
		Gender:   req.Gender,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(time.DateOnly, req.DateOfBirth)
		if err != nil {
			response.FromError(c, h.Logger, apperror.Validation("invalid payload", map[string]string{"dateOfBirth": "must be YYYY-MM-DD"}))
			return
		}
		in.DateOfBirth = &dob
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), currentUser(c), in)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "User updated successfully", nil)
}

// UploadAvatar POST /api/users/me/avatar (multipart field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.FromError(c, h.Logger, apperror.Validation("No image file received", nil))
		return
	}
	img, done, err := openImage(fh)
	if err != nil {
		response.FromError(c, h.Logger, apperror.Validation("invalid image upload", nil))
		return
	}
	defer done()

	u, err := h.Svc.UploadAvatar(c.Request.Context(), currentUser(c), img.Reader, img.Filename, img.ContentType)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "Avatar updated", nil)
}

// Delete DELETE /api/users/me
func (h *UserHandler) Delete(c *gin.Context) {
	u, err := h.Svc.DeleteAccount(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"id": u.ID}, "User deleted successfully", nil)
}
