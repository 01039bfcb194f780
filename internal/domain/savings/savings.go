package savings

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acefarmer/backend/internal/domain/shared"
)

// SavingsType distinguishes the two account kinds BIJLI tracks per member
type SavingsType string

const (
	SavingsTypeCompulsory SavingsType = "COMPULSORY"
	SavingsTypeVoluntary  SavingsType = "VOLUNTARY"
)

// Balance is the latest savings snapshot for one (customer, type). It is
// overwritten wholesale on every sync pass; no history is kept on this row.
type Balance struct {
	shared.BaseEntity
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_savings_balances_customer_type,priority:1"`
	Type            SavingsType     `gorm:"type:varchar(20);not null;uniqueIndex:idx_savings_balances_customer_type,priority:2"`
	PrincipalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CurrentBalance  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	InterestAccrued decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (Balance) TableName() string {
	return "savings_balances"
}

// Transaction is one immutable ledger entry synced from the external source.
// ExternalKey is the deterministic idempotency key: replaying the same source
// data updates amounts in place and never creates a second row.
type Transaction struct {
	shared.BaseEntity
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	SavingsType      SavingsType     `gorm:"type:varchar(20);not null"`
	TrnDate          time.Time       `gorm:"not null;index"`
	TrnType          string          `gorm:"type:varchar(50);not null"`
	DepositAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	WithdrawalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ExternalKey      string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_savings_transactions_external_key"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "savings_transactions"
}

// TransactionKey is the composite identity of an external transaction.
// Occurrence disambiguates legitimate same-day, same-type, same-amount
// duplicates within one batch: without it they would collapse into one row.
type TransactionKey struct {
	CustomerID uuid.UUID
	Type       SavingsType
	TrnDate    time.Time
	TrnType    string
	Deposit    decimal.Decimal
	Withdrawal decimal.Decimal
	Occurrence int
}

// Hash returns the deterministic idempotency key for this transaction
func (k TransactionKey) Hash() string {
	payload := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%d",
		k.CustomerID,
		k.Type,
		k.TrnDate.UTC().Format("2006-01-02"),
		k.TrnType,
		k.Deposit.String(),
		k.Withdrawal.String(),
		k.Occurrence,
	)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// NewBalance creates a savings balance snapshot
func NewBalance(customerID uuid.UUID, t SavingsType, principal, current, interest decimal.Decimal) *Balance {
	return &Balance{
		BaseEntity:      shared.NewBaseEntity(),
		CustomerID:      customerID,
		Type:            t,
		PrincipalAmount: principal,
		CurrentBalance:  current,
		InterestAccrued: interest,
	}
}

// NewTransaction creates a ledger entry with its idempotency key precomputed
func NewTransaction(key TransactionKey) *Transaction {
	return &Transaction{
		BaseEntity:       shared.NewBaseEntity(),
		CustomerID:       key.CustomerID,
		SavingsType:      key.Type,
		TrnDate:          key.TrnDate,
		TrnType:          key.TrnType,
		DepositAmount:    key.Deposit,
		WithdrawalAmount: key.Withdrawal,
		ExternalKey:      key.Hash(),
	}
}
