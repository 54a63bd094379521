package ledger

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/ledger-bank/ledger_bank/internal/validation"
)

// Handler exposes the balance-mutating wallet endpoints. The actor identity
// is resolved by the auth middleware before any request reaches the engine.
type Handler struct {
	engine *Engine
}

// NewHandler builds a ledger HTTP handler.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type transferRequest struct {
	TargetWalletCode string          `json:"targetWalletCode" validate:"required"`
	Amount           decimal.Decimal `json:"amount" validate:"required"`
}

// Deposit credits the caller's wallet.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	var req amountRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	res, err := h.engine.Deposit(c.UserContext(), actorID(c), req.Amount)
	if err != nil {
		return mapLedgerError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":       "Deposit successful",
		"newBalance":    res.NewBalance,
		"transactionId": res.TransactionID,
	})
}

// Withdraw debits the caller's wallet.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req amountRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	res, err := h.engine.Withdraw(c.UserContext(), actorID(c), req.Amount)
	if err != nil {
		return mapLedgerError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":       "Withdrawal successful",
		"newBalance":    res.NewBalance,
		"transactionId": res.TransactionID,
	})
}

// Transfer moves funds from the caller's wallet to the addressed wallet.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	res, err := h.engine.Transfer(c.UserContext(), actorID(c), req.TargetWalletCode, req.Amount)
	if err != nil {
		return mapLedgerError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":             "Transfer successful",
		"newBalance":          res.NewBalance,
		"transactionId":       res.TransactionID,
		"recipientWalletCode": res.RecipientCode,
	})
}

func parse(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// actorID reads the user id resolved by the auth middleware.
func actorID(c *fiber.Ctx) int64 {
	id, _ := c.Locals("user_id").(int64)
	return id
}

func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, ErrWalletNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInsufficientBalance), errors.Is(err, ErrInvalidOperation):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
