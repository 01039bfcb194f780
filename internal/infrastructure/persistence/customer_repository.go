package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/acefarmer/backend/internal/domain/member"
	"github.com/acefarmer/backend/internal/domain/shared"
)

// GormCustomerRepository implements member.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its internal ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*member.Customer, error) {
	var customer member.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindByMemberNo finds a customer by its external member number
func (r *GormCustomerRepository) FindByMemberNo(ctx context.Context, memberNo string) (*member.Customer, error) {
	var customer member.Customer
	if err := r.db.WithContext(ctx).
		Where("member_no = ?", memberNo).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// Upsert creates the customer or updates the mutable fields of the existing
// row keyed by member number. The stored member number is never rewritten.
func (r *GormCustomerRepository) Upsert(ctx context.Context, customer *member.Customer) (*member.Customer, error) {
	existing, err := r.FindByMemberNo(ctx, customer.MemberNo)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
			return nil, err
		}
		return customer, nil
	}

	existing.ApplySnapshot(customer)
	if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// ExistsByMemberNo checks whether a customer with the member number exists
func (r *GormCustomerRepository) ExistsByMemberNo(ctx context.Context, memberNo string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&member.Customer{}).
		Where("member_no = ?", memberNo).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormCustomerRepository implements member.CustomerRepository
var _ member.CustomerRepository = (*GormCustomerRepository)(nil)
