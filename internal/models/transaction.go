package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction types
const (
	TypeBuy              = "BUY"
	TypeSell             = "SELL"
	TypeInternalTransfer = "INTERNAL_TRANSFER"
)

// Transaction statuses
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusRejected  = "rejected"
)

// Transaction represents a single fiat/USDT exchange event. It is the atomic
// unit of the ledger; balances are always reproducible by replaying the
// transaction history from zero.
type Transaction struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TransactionID string             `bson:"transaction_id" json:"transaction_id"`
	Type          string             `bson:"type" json:"type"`
	UserID        string             `bson:"user_id" json:"user_id"`
	UserName      string             `bson:"user_name" json:"user_name"` // denormalized snapshot
	USDTAmount    decimal.Decimal    `bson:"usdt_amount" json:"usdt_amount"`
	PHPAmount     decimal.Decimal    `bson:"php_amount" json:"php_amount"`
	Platform      string             `bson:"platform,omitempty" json:"platform,omitempty"`
	ToPlatform    string             `bson:"to_platform,omitempty" json:"to_platform,omitempty"` // transfer destination
	Bank          string             `bson:"bank,omitempty" json:"bank,omitempty"`
	Rate          decimal.Decimal    `bson:"rate" json:"rate"`
	Fee           decimal.Decimal    `bson:"fee" json:"fee"`
	Note          string             `bson:"note,omitempty" json:"note,omitempty"`
	Status        string             `bson:"status" json:"status"`
	Timestamp     time.Time          `bson:"timestamp" json:"timestamp"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// TransactionInput carries the caller-supplied fields of a new transaction.
type TransactionInput struct {
	Type       string          `json:"type"`
	UserID     string          `json:"user_id"`
	UserName   string          `json:"user_name"`
	USDTAmount decimal.Decimal `json:"usdt_amount"`
	PHPAmount  decimal.Decimal `json:"php_amount"`
	Platform   string          `json:"platform"`
	ToPlatform string          `json:"to_platform"`
	Bank       string          `json:"bank"`
	Rate       decimal.Decimal `json:"rate"`
	Fee        decimal.Decimal `json:"fee"`
	Note       string          `json:"note"`
}

// TransactionPatch holds the editable fields of a transaction. Nil fields
// are left untouched when the patch is applied.
type TransactionPatch struct {
	USDTAmount *decimal.Decimal `json:"usdt_amount,omitempty"`
	PHPAmount  *decimal.Decimal `json:"php_amount,omitempty"`
	Platform   *string          `json:"platform,omitempty"`
	ToPlatform *string          `json:"to_platform,omitempty"`
	Bank       *string          `json:"bank,omitempty"`
	Rate       *decimal.Decimal `json:"rate,omitempty"`
	Fee        *decimal.Decimal `json:"fee,omitempty"`
	Note       *string          `json:"note,omitempty"`
	Status     *string          `json:"status,omitempty"`
}

// NewTransaction builds a completed transaction from caller input. The rate
// is derived from the two legs when not supplied; pure transfers keep a zero
// rate.
func NewTransaction(input *TransactionInput) *Transaction {
	now := time.Now()

	rate := input.Rate
	if rate.IsZero() && input.Type != TypeInternalTransfer && !input.USDTAmount.IsZero() {
		rate = input.PHPAmount.Div(input.USDTAmount)
	}

	return &Transaction{
		TransactionID: fmt.Sprintf("TXN-%d-%s", now.Unix(), uuid.NewString()[:8]),
		Type:          input.Type,
		UserID:        input.UserID,
		UserName:      input.UserName,
		USDTAmount:    input.USDTAmount,
		PHPAmount:     input.PHPAmount,
		Platform:      input.Platform,
		ToPlatform:    input.ToPlatform,
		Bank:          input.Bank,
		Rate:          rate,
		Fee:           input.Fee,
		Note:          input.Note,
		Status:        StatusCompleted,
		Timestamp:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Apply overlays the non-nil fields of the patch onto the transaction.
func (t *Transaction) Apply(patch *TransactionPatch) {
	if patch.USDTAmount != nil {
		t.USDTAmount = *patch.USDTAmount
	}
	if patch.PHPAmount != nil {
		t.PHPAmount = *patch.PHPAmount
	}
	if patch.Platform != nil {
		t.Platform = *patch.Platform
	}
	if patch.ToPlatform != nil {
		t.ToPlatform = *patch.ToPlatform
	}
	if patch.Bank != nil {
		t.Bank = *patch.Bank
	}
	if patch.Rate != nil {
		t.Rate = *patch.Rate
	}
	if patch.Fee != nil {
		t.Fee = *patch.Fee
	}
	if patch.Note != nil {
		t.Note = *patch.Note
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.UpdatedAt = time.Now()
}

// Snapshot returns a value copy suitable for audit old/new capture.
func (t *Transaction) Snapshot() Transaction {
	return *t
}

// IsBuy reports whether the transaction acquires USDT for the business.
func (t *Transaction) IsBuy() bool { return t.Type == TypeBuy }

// IsSell reports whether the transaction disposes of USDT.
func (t *Transaction) IsSell() bool { return t.Type == TypeSell }

// Validate checks the structural invariants of the record.
func (t *Transaction) Validate() error {
	switch t.Type {
	case TypeBuy, TypeSell, TypeInternalTransfer:
	default:
		return fmt.Errorf("invalid transaction type: %s", t.Type)
	}

	switch t.Status {
	case StatusCompleted, StatusPending, StatusRejected:
	default:
		return fmt.Errorf("invalid transaction status: %s", t.Status)
	}

	if t.USDTAmount.IsNegative() {
		return fmt.Errorf("usdt amount cannot be negative")
	}
	if t.PHPAmount.IsNegative() {
		return fmt.Errorf("php amount cannot be negative")
	}
	if t.Rate.IsNegative() {
		return fmt.Errorf("rate cannot be negative")
	}
	if t.Fee.IsNegative() {
		return fmt.Errorf("fee cannot be negative")
	}

	if t.Type != TypeInternalTransfer && t.USDTAmount.IsZero() && t.PHPAmount.IsZero() {
		return fmt.Errorf("buy/sell transaction must have a non-zero leg")
	}

	return nil
}

// Description returns a human-readable summary for notifications and logs.
func (t *Transaction) Description() string {
	switch t.Type {
	case TypeBuy:
		return fmt.Sprintf("Buy %s USDT for %s PHP via %s", t.USDTAmount.String(), t.PHPAmount.String(), t.Platform)
	case TypeSell:
		return fmt.Sprintf("Sell %s USDT for %s PHP via %s", t.USDTAmount.String(), t.PHPAmount.String(), t.Platform)
	case TypeInternalTransfer:
		return fmt.Sprintf("Internal transfer of %s USDT from %s to %s", t.USDTAmount.String(), t.Platform, t.ToPlatform)
	default:
		return fmt.Sprintf("Transaction %s", t.TransactionID)
	}
}
