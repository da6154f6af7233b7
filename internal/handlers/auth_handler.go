package handlers

import (
	"errors"
	"fmt"
	"log"

	"salesku/internal/models"
	"salesku/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// HomeRoute maps a role to its home screen. The switch is exhaustive over
// the closed role set; anything else falls back to login.
func HomeRoute(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "/admin"
	case models.RoleSales:
		return "/sales"
	}
	return "/login"
}

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
// loginLimiter guards the login route only; authRequired guards the rest.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, loginLimiter, authRequired fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", loginLimiter, h.HandleLogin)
	authRoutes.Post("/logout", authRequired, h.HandleLogout)
	authRoutes.Get("/session", authRequired, h.HandleSession)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required,min=6"`
	RememberMe bool   `json:"remember_me"`
}

// HandleLogin authenticates credentials and issues a session token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	result, err := h.authService.Login(c.Context(), req.Username, req.Password, req.RememberMe)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication failed",
				"error":   "username or password is incorrect",
			})
		}
		log.Printf("Error during login for user %s: %v", req.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not log in",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   result.Token,
		"role":    result.User.Role,
		"home":    HomeRoute(result.User.Role),
	})
}

// HandleLogout destroys the current session.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sessionID, _ := c.Locals("session_id").(string)
	if err := h.authService.Logout(c.Context(), sessionID); err != nil {
		log.Printf("Error during logout: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not log out",
		})
	}
	return c.JSON(fiber.Map{
		"message":  "Logged out",
		"redirect": "/login",
	})
}

// HandleSession reports who is currently logged in.
func (h *AuthHandler) HandleSession(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(models.Role)
	return c.JSON(fiber.Map{
		"username": c.Locals("username"),
		"role":     role,
		"home":     HomeRoute(role),
	})
}
