package handlers

import (
	"errors"
	"fmt"
	"log"

	"salesku/internal/services"
	"salesku/pkg/currency"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// SalesHandler handles HTTP requests for sales record submission. Every
// route is sales-only.
type SalesHandler struct {
	salesService *services.SalesService
	validate     *validator.Validate
}

// NewSalesHandler creates a new SalesHandler.
func NewSalesHandler(salesService *services.SalesService) *SalesHandler {
	return &SalesHandler{
		salesService: salesService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the sales routes with the Fiber app.
func (h *SalesHandler) RegisterRoutes(router fiber.Router, authRequired, salesOnly fiber.Handler) {
	salesRoutes := router.Group("/sales", authRequired, salesOnly)
	salesRoutes.Post("/", h.HandleSubmit)
	salesRoutes.Get("/mine", h.HandleMine)
}

// SubmitSalesRequest represents the request body for a sales submission.
// Amount arrives as the text the input field holds, which may still carry
// currency decoration; the required check runs on the raw text so an empty
// field is rejected before parsing turns it into zero.
type SubmitSalesRequest struct {
	StoreName    string  `json:"store_name" validate:"required"`
	StoreAddress string  `json:"store_address" validate:"required"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Amount       string  `json:"amount" validate:"required"`
}

// HandleSubmit stores a new sales record for the logged-in agent.
func (h *SalesHandler) HandleSubmit(c *fiber.Ctx) error {
	var req SubmitSalesRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing sales submission body: %v", err)
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

	username, _ := c.Locals("username").(string)
	result, err := h.salesService.Submit(c.Context(), username, services.SubmitInput{
		StoreName:    req.StoreName,
		StoreAddress: req.StoreAddress,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Amount:       currency.ParseAmount(req.Amount),
	})
	if err != nil {
		if errors.Is(err, services.ErrLocationRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  map[string]string{"location": "capture a location before saving"},
			})
		}
		log.Printf("Error submitting sales record for %s: %v", username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not save sales record",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "Sales record saved",
		"record":         result.Record,
		"amount_display": currency.FormatRupiah(result.Record.Amount),
		"location":       result.LocationLabel,
	})
}

// HandleMine returns the logged-in agent's own submissions, newest first.
func (h *SalesHandler) HandleMine(c *fiber.Ctx) error {
	username, _ := c.Locals("username").(string)
	records, err := h.salesService.ListByUsername(c.Context(), username)
	if err != nil {
		log.Printf("Error listing sales records for %s: %v", username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not list sales records",
		})
	}
	return c.JSON(fiber.Map{
		"records": records,
	})
}
