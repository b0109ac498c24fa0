package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/services"
	"github.com/anonto42/biolink/backend/pkg/firebase"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	accounts  *services.AccountService
	pages     *services.PageService
	firebase  *firebase.App
	jwtSecret string
	jwtTTL    time.Duration
	logger    *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. firebaseApp may be nil, which
// disables social sign-in.
func NewAuthHandler(accounts *services.AccountService, pages *services.PageService, firebaseApp *firebase.App, jwtSecret string, jwtTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		pages:     pages,
		firebase:  firebaseApp,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		logger:    logger,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/check-username", h.CheckUsername)
	g.POST("/firebase-login", h.FirebaseLogin)
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
	Page  *models.Page `json:"page,omitempty"`
}

// Register creates a password account and, when a username is given, its first page.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, page, err := h.accounts.Register(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	token, err := h.generateJWT(user)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusCreated, authResponse{Token: token, User: user, Page: page})
}

// Login handles local user authentication with email and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.accounts.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	token, err := h.generateJWT(user)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

func (h *AuthHandler) CheckUsername(c echo.Context) error {
	var req models.CheckUsernameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	availability, err := h.pages.CheckUsername(c.Request().Context(), req.Username)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, availability)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebase == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Social sign-in is not configured")
	}
	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	identity, err := h.firebase.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}
	user, err := h.accounts.FirebaseSignIn(ctx, identity.UID, identity.Email)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	token, err := h.generateJWT(user)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(h.jwtTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
