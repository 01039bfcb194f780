package loan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acefarmer/backend/internal/domain/shared"
)

// Status reflects the lifecycle of a loan as reported by the external source
type Status string

const (
	StatusActive  Status = "active"
	StatusClosed  Status = "closed"
	StatusOverdue Status = "overdue"
	StatusUnknown Status = "unknown"
)

// Loan is the latest snapshot of one external loan account. Like savings
// balances it is overwritten per sync pass, keyed on (customer, external code).
type Loan struct {
	shared.BaseEntity
	CustomerID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_loans_customer_code,priority:1"`
	ExternalCode       string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_loans_customer_code,priority:2"`
	ProductName        string          `gorm:"type:varchar(200)"`
	PrincipalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DisbursementDate   *time.Time
	Status             Status `gorm:"type:varchar(20);not null;default:'unknown'"`
}

// TableName returns the table name for GORM
func (Loan) TableName() string {
	return "loans"
}

// Repository defines the persistence operations for loan snapshots
type Repository interface {
	// UpsertLoan overwrites the snapshot for (customer, external code)
	UpsertLoan(ctx context.Context, l *Loan) error

	// FindByCustomer returns all loan snapshots for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]Loan, error)
}

// MapStatus maps the external status string to the canonical enum
func MapStatus(raw string) Status {
	switch raw {
	case "A", "active", "ACTIVE":
		return StatusActive
	case "C", "closed", "CLOSED":
		return StatusClosed
	case "O", "overdue", "OVERDUE":
		return StatusOverdue
	default:
		return StatusUnknown
	}
}
