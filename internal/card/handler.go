package card

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes card HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a card HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	SpendingLimit uint64 `json:"spending_limit"`
}

type amountRequest struct {
	Amount uint64 `json:"amount"`
}

type transferRequest struct {
	Amount    uint64 `json:"amount"`
	Recipient string `json:"recipient"`
}

type limitRequest struct {
	SpendingLimit uint64 `json:"spending_limit"`
}

type cardResponse struct {
	ID            string    `json:"id"`
	Owner         string    `json:"owner"`
	Balance       uint64    `json:"balance"`
	SpendingLimit uint64    `json:"spending_limit"`
	AmountSpent   uint64    `json:"amount_spent"`
	Active        bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

func toResponse(c Card) cardResponse {
	return cardResponse{
		ID:            c.ID,
		Owner:         c.Owner,
		Balance:       c.Balance,
		SpendingLimit: c.SpendingLimit,
		AmountSpent:   c.AmountSpent,
		Active:        c.Active,
		CreatedAt:     c.CreatedAt,
	}
}

// Create provisions a card for the attested caller.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	caller, _ := c.Locals("caller_id").(string)

	created, err := h.service.Create(c.UserContext(), req.SpendingLimit, caller)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(toResponse(created))
}

// Info serves the public read projection of a card.
func (h *Handler) Info(c *fiber.Ctx) error {
	info, err := h.service.Info(c.UserContext(), c.Params("cardId"))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"card_id":        info.CardID,
		"owner":          info.Owner,
		"balance":        info.Balance,
		"spending_limit": info.SpendingLimit,
		"amount_spent":   info.AmountSpent,
		"is_active":      info.Active,
	})
}

// Deposit adds funds to a card.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	caller, _ := c.Locals("caller_id").(string)

	updated, err := h.service.Deposit(c.UserContext(), c.Params("cardId"), req.Amount, caller)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(updated))
}

// Spend moves funds out through the limit-tracked path.
func (h *Handler) Spend(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	caller, _ := c.Locals("caller_id").(string)

	updated, err := h.service.Spend(c.UserContext(), c.Params("cardId"), req.Amount, req.Recipient, caller)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(updated))
}

// SpendToOwner is the limit-tracked spend with the caller as recipient.
func (h *Handler) SpendToOwner(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	caller, _ := c.Locals("caller_id").(string)

	updated, err := h.service.SpendToOwner(c.UserContext(), c.Params("cardId"), req.Amount, caller)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(updated))
}

// DirectTransfer moves funds out bypassing the spending-limit accounting.
func (h *Handler) DirectTransfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	caller, _ := c.Locals("caller_id").(string)

	updated, err := h.service.DirectTransfer(c.UserContext(), c.Params("cardId"), req.Amount, req.Recipient, caller)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(updated))
}

// Withdraw returns funds to the owner regardless of the activity flag.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	caller, _ := c.Locals("caller_id").(string)

	updated, err := h.service.Withdraw(c.UserContext(), c.Params("cardId"), req.Amount, caller)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(updated))
}

// Deactivate sets the card inactive.
func (h *Handler) Deactivate(c *fiber.Ctx) error {
	caller, _ := c.Locals("caller_id").(string)
	updated, err := h.service.Deactivate(c.UserContext(), c.Params("cardId"), caller)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(updated))
}

// Reactivate sets the card active.
func (h *Handler) Reactivate(c *fiber.Ctx) error {
	caller, _ := c.Locals("caller_id").(string)
	updated, err := h.service.Reactivate(c.UserContext(), c.Params("cardId"), caller)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(updated))
}

// UpdateLimit replaces the spending limit.
func (h *Handler) UpdateLimit(c *fiber.Ctx) error {
	var req limitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	caller, _ := c.Locals("caller_id").(string)

	updated, err := h.service.UpdateSpendingLimit(c.UserContext(), c.Params("cardId"), req.SpendingLimit, caller)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(updated))
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotOwner):
		return fiber.NewError(http.StatusForbidden, "not card owner")
	case errors.Is(err, ErrCardNotFound):
		return fiber.NewError(http.StatusNotFound, "card not found")
	case errors.Is(err, ErrInactiveCard):
		return fiber.NewError(http.StatusConflict, "card is inactive")
	case errors.Is(err, ErrInsufficientBalance):
		return fiber.NewError(http.StatusBadRequest, "insufficient balance")
	case errors.Is(err, ErrExceedsSpendingLimit):
		return fiber.NewError(http.StatusBadRequest, "exceeds spending limit")
	case errors.Is(err, ErrAmountOverflow):
		return fiber.NewError(http.StatusBadRequest, "amount overflow")
	case errors.Is(err, ErrInvalidRecipient):
		return fiber.NewError(http.StatusBadRequest, "invalid recipient")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
