package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ledger-bank/ledger_bank/internal/account"
	"github.com/ledger-bank/ledger_bank/internal/ledger"
)

// RegisterWalletRoutes wires the authenticated wallet endpoints.
func RegisterWalletRoutes(r fiber.Router, ops *ledger.Handler, views *account.Handler) {
	r.Get("/balance", views.Balance)
	r.Get("/history", views.History)
	r.Post("/deposit", ops.Deposit)
	r.Post("/withdraw", ops.Withdraw)
	r.Post("/transfer", ops.Transfer)
}
