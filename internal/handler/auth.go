package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinehall/cinema-booking/internal/config"
	"github.com/cinehall/cinema-booking/internal/utils"
)

// AuthHandler issues admin access tokens.  The service has a single
// admin account configured through the environment; there is no user
// registration.
type AuthHandler struct {
	cfg config.Config
}

// NewAuthHandler constructs an AuthHandler over the loaded config.
func NewAuthHandler(cfg config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Login handles POST /v1/auth/login.  It verifies the admin credentials
// against the configured bcrypt hash and returns a short-lived bearer
// token with the ADMIN role.
func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Username != h.cfg.AdminUser || !utils.VerifyPassword(h.cfg.AdminPassHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	token, err := utils.NewAccessToken(h.cfg.JWTSecret, body.Username, "ADMIN", h.cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": token.Token,
		"expires_at":   token.Exp,
	})
}
