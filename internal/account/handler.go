package account

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ledger-bank/ledger_bank/internal/wallet"
)

// Handler exposes the read-only wallet endpoints for the authenticated user.
type Handler struct {
	svc *Service
}

// NewHandler builds an account HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Balance returns the caller's wallet code and balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int64)
	bal, err := h.svc.GetBalance(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(bal)
}

// History returns the caller's transactions, newest first.
func (h *Handler) History(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int64)
	history, err := h.svc.GetHistory(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(history)
}
