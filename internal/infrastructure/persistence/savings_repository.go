package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acefarmer/backend/internal/domain/savings"
)

// GormSavingsRepository implements savings.Repository using GORM
type GormSavingsRepository struct {
	db *gorm.DB
}

// NewGormSavingsRepository creates a new GormSavingsRepository
func NewGormSavingsRepository(db *gorm.DB) *GormSavingsRepository {
	return &GormSavingsRepository{db: db}
}

// UpsertBalance overwrites the balance snapshot for (customer, type).
// Latest snapshot wins; amounts are replaced, never accumulated.
func (r *GormSavingsRepository) UpsertBalance(ctx context.Context, balance *savings.Balance) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "customer_id"}, {Name: "type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"principal_amount", "current_balance", "interest_accrued", "updated_at",
			}),
		}).
		Create(balance).Error
}

// FindBalances returns all balance snapshots for a customer
func (r *GormSavingsRepository) FindBalances(ctx context.Context, customerID uuid.UUID) ([]savings.Balance, error) {
	var balances []savings.Balance
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("type ASC").
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// UpsertTransactions applies one reconciliation batch atomically. Each entry
// is upserted by its external idempotency key: unseen keys insert, seen keys
// update amounts in place. The surrounding transaction guarantees no reader
// ever observes a partially applied batch.
func (r *GormSavingsRepository) UpsertTransactions(ctx context.Context, transactions []*savings.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "external_key"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"deposit_amount", "withdrawal_amount", "updated_at",
				}),
			}).
			Create(&transactions).Error
	})
}

// FindTransactions returns the ledger for a customer and savings type, oldest first
func (r *GormSavingsRepository) FindTransactions(ctx context.Context, customerID uuid.UUID, t savings.SavingsType) ([]savings.Transaction, error) {
	var transactions []savings.Transaction
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND savings_type = ?", customerID, t).
		Order("trn_date ASC, created_at ASC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// CountTransactions counts ledger rows for a customer across savings types
func (r *GormSavingsRepository) CountTransactions(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&savings.Transaction{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormSavingsRepository implements savings.Repository
var _ savings.Repository = (*GormSavingsRepository)(nil)
