package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ledger-bank/ledger_bank/internal/account"
	"github.com/ledger-bank/ledger_bank/internal/identity"
	"github.com/ledger-bank/ledger_bank/internal/wallet"
)

// RegisterMeRoute exposes a profile endpoint for the authenticated user,
// including the wallet balance when a wallet exists.
func RegisterMeRoute(r fiber.Router, users identity.Repository, accounts *account.Service) {
	r.Get("/me", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(int64)
		if uid == 0 {
			return fiber.NewError(http.StatusUnauthorized, "unauthorized")
		}
		user, err := users.FindByID(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}

		resp := fiber.Map{
			"user_id":    user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"role":       user.Role,
			"created_at": user.CreatedAt,
		}
		bal, err := accounts.GetBalance(c.UserContext(), uid)
		switch {
		case err == nil:
			resp["wallet_code"] = bal.WalletCode
			resp["balance"] = bal.Amount
		case !errors.Is(err, wallet.ErrNotFound):
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(resp)
	})
}
