package notification

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Notification kinds emitted by the ledger engine.
const (
	KindDeposit          = "deposit"
	KindWithdrawal       = "withdrawal"
	KindTransferReceived = "transfer_received"
	KindBankTransfer     = "bank_transfer"
)

// Message describes a notification payload addressed to a wallet owner.
type Message struct {
	Kind   string
	UserID int64
	Amount decimal.Decimal
	Body   string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		"kind", message.Kind,
		"user_id", message.UserID,
		"amount", message.Amount.String(),
		"body", message.Body,
	)
	return nil
}
