package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit log entry types, one per mutation category.
const (
	AuditRoleChange        = "ROLE_CHANGE"
	AuditBalanceAdjustment = "BALANCE_ADJUSTMENT"
	AuditTransactionEdit   = "TRANSACTION_EDIT"
	AuditTransactionDelete = "TRANSACTION_DELETE"
	AuditUserAdded         = "USER_ADDED"
	AuditUserUpdated       = "USER_UPDATED"
	AuditUserDeleted       = "USER_DELETED"
	AuditPlatformAdded     = "PLATFORM_ADDED"
	AuditPlatformDeleted   = "PLATFORM_DELETED"
	AuditBankAdded         = "BANK_ADDED"
	AuditBankDeleted       = "BANK_DELETED"
)

// AuditLog is an append-only record of a mutating operation. Entries are
// never updated or removed by normal application flow; old/new values must
// carry enough state to reconstruct the change.
type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Type      string             `bson:"type" json:"type"`
	Actor     string             `bson:"actor" json:"actor"`
	Target    string             `bson:"target" json:"target"`
	Reason    string             `bson:"reason" json:"reason"`
	OldValue  interface{}        `bson:"old_value,omitempty" json:"old_value,omitempty"`
	NewValue  interface{}        `bson:"new_value,omitempty" json:"new_value,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// NewAuditLog builds an entry stamped with the current time.
func NewAuditLog(logType, actor, target, reason string, oldValue, newValue interface{}) *AuditLog {
	return &AuditLog{
		Type:      logType,
		Actor:     actor,
		Target:    target,
		Reason:    reason,
		OldValue:  oldValue,
		NewValue:  newValue,
		Timestamp: time.Now(),
	}
}

// AuditFilter narrows audit trail queries.
type AuditFilter struct {
	Type      string    `json:"type,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Target    string    `json:"target,omitempty"`
	StartDate time.Time `json:"start_date,omitempty"`
	EndDate   time.Time `json:"end_date,omitempty"`
}
