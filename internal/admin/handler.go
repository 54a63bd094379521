// Package admin exposes the administrative HTTP surface: global listings and
// bank-sourced transfers. Every route behind it requires the ADMIN role.
package admin

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/ledger-bank/ledger_bank/internal/account"
	"github.com/ledger-bank/ledger_bank/internal/ledger"
	"github.com/ledger-bank/ledger_bank/internal/validation"
)

// Handler wires admin endpoints to the account service and ledger engine.
type Handler struct {
	accounts *account.Service
	engine   *ledger.Engine
}

// NewHandler builds an admin HTTP handler.
func NewHandler(accounts *account.Service, engine *ledger.Engine) *Handler {
	return &Handler{accounts: accounts, engine: engine}
}

// Transactions returns the unfiltered transaction log, newest first.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	txs, err := h.accounts.ListAllTransactions(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(txs)
}

// Users returns every user joined with its wallet code and balance.
func (h *Handler) Users(c *fiber.Ctx) error {
	users, err := h.accounts.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(users)
}

type bankTransferRequest struct {
	TargetWalletCode string          `json:"targetWalletCode" validate:"required"`
	Amount           decimal.Decimal `json:"amount" validate:"required"`
}

// BankTransfer moves funds from the admin's own wallet to the target wallet,
// leaving an auditable BANK_TRANSFER record.
func (h *Handler) BankTransfer(c *fiber.Ctx) error {
	var req bankTransferRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	adminID, _ := c.Locals("user_id").(int64)
	res, err := h.engine.BankTransfer(c.UserContext(), adminID, req.TargetWalletCode, req.Amount)
	if err != nil {
		return mapLedgerError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":        "Bank transfer successful",
		"newBalance":     res.NewBalance,
		"transactionId":  res.TransactionID,
		"targetBankCode": res.RecipientCode,
	})
}

// Credit injects funds into the target wallet with no debited source.
func (h *Handler) Credit(c *fiber.Ctx) error {
	var req bankTransferRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	res, err := h.engine.Credit(c.UserContext(), req.TargetWalletCode, req.Amount)
	if err != nil {
		return mapLedgerError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":          "Credit successful",
		"targetWalletCode": res.RecipientCode,
		"amount":           res.Amount,
		"newBalance":       res.NewBalance,
		"transactionId":    res.TransactionID,
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

func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrWalletNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance), errors.Is(err, ledger.ErrInvalidOperation):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
