package controllers

import (
	"github.com/gin-gonic/gin"

	"libretrack/middleware"
	"libretrack/models"
	"libretrack/services"
	"libretrack/utils"
)

// AuthController exposes registration, login and logout.
type AuthController struct {
	authService *services.AuthService
}

// NewAuthController creates the controller.
func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// RegisterRequest is the register payload.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=admin student"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account.
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(c, err)
		return
	}

	user, err := ac.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password, models.Role(req.Role))
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Created(c, gin.H{"user": user})
}

// Login verifies credentials and returns a bearer token.
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(c, err)
		return
	}

	user, token, err := ac.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"token": token,
		"user":  user,
		"role":  user.Role,
	})
}

// Logout revokes the caller's token.
func (ac *AuthController) Logout(c *gin.Context) {
	token := c.GetString(middleware.CtxToken)
	if err := ac.authService.Logout(c.Request.Context(), token); err != nil {
		utils.InternalError(c, "")
		return
	}
	utils.SuccessWithMessage(c, "logged out successfully", nil)
}

// Me returns the authenticated caller's account.
func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.authService.GetUser(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		utils.ServiceError(c, err)
		return
	}
	utils.Success(c, user)
}

// ListUsers returns every account. Admin only.
func (ac *AuthController) ListUsers(c *gin.Context) {
	users, err := ac.authService.ListUsers(c.Request.Context())
	if err != nil {
		utils.InternalError(c, "")
		return
	}
	utils.Success(c, users)
}
