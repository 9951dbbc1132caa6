package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/almasmith/mercer-library/internal/auth"
	"github.com/almasmith/mercer-library/internal/problem"
	"github.com/almasmith/mercer-library/internal/validation"
)

type AuthController struct {
	service AuthService
}

func NewAuthController(service AuthService) *AuthController {
	return &AuthController{service: service}
}

func clientOf(c *gin.Context) auth.Client {
	return auth.Client{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

// Register handles POST /api/auth/register.
func (ac *AuthController) Register(c *gin.Context) {
	var creds auth.Credentials
	if !bindJSON(c, &creds) {
		return
	}

	token, err := ac.service.Register(c.Request.Context(), creds, clientOf(c))
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		respondValidation(c, verrs)
		return
	}
	if err != nil {
		respondInternalError(c, err, "register")
		return
	}
	c.JSON(http.StatusOK, token)
}

// Login handles POST /api/auth/login.
func (ac *AuthController) Login(c *gin.Context) {
	var creds auth.Credentials
	if !bindJSON(c, &creds) {
		return
	}

	token, err := ac.service.Login(c.Request.Context(), creds, clientOf(c))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		problem.Respond(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		respondInternalError(c, err, "login")
		return
	}
	c.JSON(http.StatusOK, token)
}
