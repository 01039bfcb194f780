package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acefarmer/backend/internal/domain/loan"
)

// GormLoanRepository implements loan.Repository using GORM
type GormLoanRepository struct {
	db *gorm.DB
}

// NewGormLoanRepository creates a new GormLoanRepository
func NewGormLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// UpsertLoan overwrites the loan snapshot for (customer, external code)
func (r *GormLoanRepository) UpsertLoan(ctx context.Context, l *loan.Loan) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "customer_id"}, {Name: "external_code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"product_name", "principal_amount", "outstanding_balance",
				"disbursement_date", "status", "updated_at",
			}),
		}).
		Create(l).Error
}

// FindByCustomer returns all loan snapshots for a customer
func (r *GormLoanRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]loan.Loan, error) {
	var loans []loan.Loan
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("external_code ASC").
		Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

// Ensure GormLoanRepository implements loan.Repository
var _ loan.Repository = (*GormLoanRepository)(nil)
