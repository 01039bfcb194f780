package member

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines the persistence operations for customers
type CustomerRepository interface {
	// FindByID finds a customer by its internal ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByMemberNo finds a customer by its external member number
	FindByMemberNo(ctx context.Context, memberNo string) (*Customer, error)

	// Upsert creates the customer if the member number is unseen, otherwise
	// updates the mutable fields of the existing row. The member number of an
	// existing row is never changed.
	Upsert(ctx context.Context, customer *Customer) (*Customer, error)

	// ExistsByMemberNo checks whether a customer with the member number exists
	ExistsByMemberNo(ctx context.Context, memberNo string) (bool, error)
}
