package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nourishtogether/donation-api/internal/constants"
	"github.com/nourishtogether/donation-api/internal/dto"
	apierrors "github.com/nourishtogether/donation-api/internal/errors"
	"github.com/nourishtogether/donation-api/internal/services"
	"github.com/nourishtogether/donation-api/internal/utils"
)

// AuthHandler coordinates identity and profile HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a new identity and returns it with a bearer token.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Name     string `json:"name" binding:"required,max=255"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, err)
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.WithToken(dto.ToUserDTO(*user), token))
}

// Login authenticates a user and returns a fresh bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, err)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WithToken(dto.ToUserDTO(*user), token))
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), actor.ID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToUserDTO(*user)))
}

// UpdateProfile changes the caller's own profile. Empty fields are kept.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	type UpdateProfileRequest struct {
		Name               string   `json:"name" binding:"max=255"`
		PhoneNumber        string   `json:"phoneNumber" binding:"max=50"`
		Address            string   `json:"address"`
		Bio                string   `json:"bio"`
		ProfileImage       string   `json:"profileImage" binding:"omitempty,url"`
		OrganizationName   string   `json:"organizationName" binding:"max=255"`
		RegistrationNumber string   `json:"registrationNumber" binding:"max=100"`
		Skills             []string `json:"skills"`
		Availability       string   `json:"availability" binding:"max=255"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, err)
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), actor, actor.ID, services.ProfileInput{
		Name:               req.Name,
		PhoneNumber:        req.PhoneNumber,
		Address:            req.Address,
		Bio:                req.Bio,
		ProfileImage:       req.ProfileImage,
		OrganizationName:   req.OrganizationName,
		RegistrationNumber: req.RegistrationNumber,
		Skills:             req.Skills,
		Availability:       req.Availability,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToUserDTO(*user)))
}

// UploadProfileImage accepts a multipart "image" file and stores it as the
// caller's profile image.
func (h *AuthHandler) UploadProfileImage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxProfileImageBytes)
	header, err := c.FormFile("image")
	if err != nil {
		apierrors.BadRequest(c, "an image file up to 5MB is required in the \"image\" field")
		return
	}
	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		apierrors.BadRequest(c, "only image uploads are allowed")
		return
	}

	file, err := header.Open()
	if err != nil {
		apierrors.BadRequest(c, "unable to read uploaded image")
		return
	}
	defer file.Close()

	user, err := h.authService.UploadProfileImage(c.Request.Context(), actor, file)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToUserDTO(*user)))
}

// ListUsers returns one page of users. Admin only.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	users, total, err := h.authService.ListUsers(c.Request.Context(), actor, params)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.List(dto.ToUserListResponse(users, params.Page, params.Limit, total), len(users)))
}

// DeleteUser removes an identity. Admin only.
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.authService.DeleteUser(c.Request.Context(), actor, id); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(gin.H{"id": id}))
}
