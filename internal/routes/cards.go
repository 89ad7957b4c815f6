package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cardledger/cardledger/internal/card"
	"github.com/cardledger/cardledger/internal/middleware"
)

// RegisterCardRoutes wires card ledger endpoints. The info read is public;
// every mutating route requires the platform-attested caller header.
func RegisterCardRoutes(r fiber.Router, h *card.Handler) {
	r.Get("/cards/:cardId", h.Info)

	gated := r.Group("", middleware.CallerID())
	gated.Post("/cards", h.Create)
	gated.Post("/cards/:cardId/deposit", h.Deposit)
	gated.Post("/cards/:cardId/spend", h.Spend)
	gated.Post("/cards/:cardId/spend-to-owner", h.SpendToOwner)
	gated.Post("/cards/:cardId/transfer", h.DirectTransfer)
	gated.Post("/cards/:cardId/withdraw", h.Withdraw)
	gated.Post("/cards/:cardId/deactivate", h.Deactivate)
	gated.Post("/cards/:cardId/reactivate", h.Reactivate)
	gated.Put("/cards/:cardId/limit", h.UpdateLimit)
}
