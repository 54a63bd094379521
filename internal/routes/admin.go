package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ledger-bank/ledger_bank/internal/admin"
)

// RegisterAdminRoutes wires the admin-only endpoints.
func RegisterAdminRoutes(r fiber.Router, h *admin.Handler) {
	r.Get("/transactions", h.Transactions)
	r.Get("/users", h.Users)
	r.Post("/bank-transfer", h.BankTransfer)
	r.Post("/credit", h.Credit)
}
