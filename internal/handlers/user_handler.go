package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"salesku/internal/models"
	"salesku/internal/repositories"
	"salesku/internal/services"
	"salesku/pkg/currency"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for account management. Every route is
// admin-only.
type UserHandler struct {
	userService *services.UserService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the account management routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router, authRequired, adminOnly fiber.Handler) {
	userRoutes := router.Group("/users", authRequired, adminOnly)
	userRoutes.Post("/", h.HandleCreate)
	userRoutes.Get("/", h.HandleList)
	userRoutes.Get("/sales", h.HandleListSales)
}

// CreateUserRequest represents the request body for account creation.
// TargetOmset arrives as the text the input field holds, which may still
// carry currency decoration.
type CreateUserRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Username    string `json:"username" validate:"required,min=3,max=100"`
	Password    string `json:"password" validate:"required,min=6"`
	Role        string `json:"role" validate:"required"`
	TargetOmset string `json:"target_omset"`
}

// HandleCreate creates a new account.
func (h *UserHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create user request body: %v", err)
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

	role, err := models.ParseRole(req.Role)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  map[string]string{"role": "role must be ADMIN or SALES"},
		})
	}

	input := services.CreateUserInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Role:     role,
	}
	if role == models.RoleSales {
		// Emptiness is checked before parsing: an all-decoration value
		// parses to zero and would otherwise masquerade as "present".
		if strings.TrimSpace(req.TargetOmset) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  map[string]string{"target_omset": "target omset is required for sales accounts"},
			})
		}
		target := currency.ParseAmount(req.TargetOmset)
		input.TargetOmset = &target
	}

	user, err := h.userService.CreateUser(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateUsername):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Could not create user",
				"errors":  map[string]string{"username": "username already taken"},
			})
		case errors.Is(err, services.ErrPasswordTooShort),
			errors.Is(err, services.ErrTargetRequired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"error":   err.Error(),
			})
		}
		log.Printf("Error creating user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create user",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// HandleList returns every account, newest first.
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	users, err := h.userService.ListAll(c.Context())
	if err != nil {
		log.Printf("Error listing users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not list users",
		})
	}
	return c.JSON(fiber.Map{
		"users": users,
	})
}

// HandleListSales returns sales accounts sorted by display name.
func (h *UserHandler) HandleListSales(c *fiber.Ctx) error {
	users, err := h.userService.ListSalesUsers(c.Context())
	if err != nil {
		log.Printf("Error listing sales users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not list sales users",
		})
	}
	return c.JSON(fiber.Map{
		"users": users,
	})
}
