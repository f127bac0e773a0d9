package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles assignable to trading users. Role semantics (permission tables) live
// outside this service; the ledger only checks role names.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleAnalyst    = "analyst"
	RoleTrader     = "trader"
)

// User is an account holder who can be assigned banks and record trades.
// The Version field is a monotonic counter checked on every balance write so
// that two concurrent adjustments cannot silently overwrite each other.
type User struct {
	ID            primitive.ObjectID         `bson:"_id,omitempty" json:"id,omitempty"`
	UserID        string                     `bson:"user_id" json:"user_id"`
	Name          string                     `bson:"name" json:"name"`
	Email         string                     `bson:"email" json:"email"`
	Role          string                     `bson:"role" json:"role"`
	AssignedBanks []string                   `bson:"assigned_banks" json:"assigned_banks"`
	BankBalances  map[string]decimal.Decimal `bson:"bank_balances" json:"bank_balances"`
	Version       int64                      `bson:"version" json:"version"`
	IsLoggedIn    bool                       `bson:"is_logged_in" json:"is_logged_in"`
	LoginTime     time.Time                  `bson:"login_time,omitempty" json:"login_time,omitempty"`
	CreatedAt     time.Time                  `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time                  `bson:"updated_at" json:"updated_at"`
}

// BankBalance returns the user's balance in the named bank, zero when the
// bank has never been touched.
func (u *User) BankBalance(bank string) decimal.Decimal {
	if u.BankBalances == nil {
		return decimal.Zero
	}
	if bal, ok := u.BankBalances[bank]; ok {
		return bal
	}
	return decimal.Zero
}

// HasBank reports whether the bank is currently assigned to the user.
func (u *User) HasBank(bank string) bool {
	for _, b := range u.AssignedBanks {
		if b == bank {
			return true
		}
	}
	return false
}

// TotalFiat sums the user's balances across all banks.
func (u *User) TotalFiat() decimal.Decimal {
	total := decimal.Zero
	for _, bal := range u.BankBalances {
		total = total.Add(bal)
	}
	return total
}

// HasOutstandingBalance reports whether any bank balance is non-zero. Users
// may only be deleted once this returns false.
func (u *User) HasOutstandingBalance() bool {
	for _, bal := range u.BankBalances {
		if !bal.IsZero() {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants of the record.
func (u *User) Validate() error {
	if u.UserID == "" {
		return fmt.Errorf("user ID is required")
	}
	if u.Name == "" {
		return fmt.Errorf("user name is required")
	}

	switch u.Role {
	case RoleSuperAdmin, RoleAdmin, RoleAnalyst, RoleTrader:
	default:
		return fmt.Errorf("invalid role: %s", u.Role)
	}

	return nil
}
