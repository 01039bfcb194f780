package savings

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence operations for savings state
type Repository interface {
	// UpsertBalance overwrites the balance row for (customer, type) wholesale;
	// the latest snapshot wins, amounts are never added together
	UpsertBalance(ctx context.Context, balance *Balance) error

	// FindBalances returns all balance snapshots for a customer
	FindBalances(ctx context.Context, customerID uuid.UUID) ([]Balance, error)

	// UpsertTransactions applies one reconciliation batch for a single
	// (customer, savings type) atomically: every entry is upserted by its
	// external key, and either the whole batch commits or none of it does
	UpsertTransactions(ctx context.Context, transactions []*Transaction) error

	// FindTransactions returns the ledger for a customer and savings type,
	// oldest first
	FindTransactions(ctx context.Context, customerID uuid.UUID, t SavingsType) ([]Transaction, error)

	// CountTransactions counts ledger rows for a customer across types
	CountTransactions(ctx context.Context, customerID uuid.UUID) (int64, error)
}
