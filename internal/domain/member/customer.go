package member

import (
	"time"

	"github.com/acefarmer/backend/internal/domain/shared"
)

// Gender is the canonical gender classification for a member
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// LocationType classifies where a member lives, derived from village presence
type LocationType string

const (
	LocationTypeRural LocationType = "rural"
	LocationTypeUrban LocationType = "urban"
)

// Customer is a cooperative member mirrored from the BIJLI system of record.
// MemberNo is the stable external key: it identifies the member across sync
// passes and is never rewritten once set, even when the external payload
// reports a different value.
type Customer struct {
	shared.BaseEntity
	MemberNo            string       `gorm:"type:varchar(30);not null;uniqueIndex:idx_customers_member_no"`
	FullName            string       `gorm:"type:varchar(200);not null"`
	Gender              Gender       `gorm:"type:varchar(10);not null;default:'unknown'"`
	IDCardNumber        string       `gorm:"type:varchar(30);index"`
	PhoneNumber         string       `gorm:"type:varchar(30)"`
	GroupNameRaw        string       `gorm:"type:varchar(200)"`
	GroupCode           *string      `gorm:"type:varchar(50)"`
	BranchID            *string      `gorm:"type:varchar(20);index"`
	BranchName          *string      `gorm:"type:varchar(200)"`
	VillageName         string       `gorm:"type:varchar(200)"`
	LocationType        LocationType `gorm:"type:varchar(10);not null;default:'urban'"`
	MembershipStartDate *time.Time
	LastSyncedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a customer keyed on its external member number
func NewCustomer(memberNo, fullName string) (*Customer, error) {
	if err := validateMemberNo(memberNo); err != nil {
		return nil, err
	}
	if fullName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Member name cannot be empty")
	}
	return &Customer{
		BaseEntity:   shared.NewBaseEntity(),
		MemberNo:     memberNo,
		FullName:     fullName,
		Gender:       GenderUnknown,
		LocationType: LocationTypeUrban,
		LastSyncedAt: time.Now(),
	}, nil
}

// ApplySnapshot overwrites the mutable attributes with the latest normalized
// external snapshot. MemberNo is deliberately not touched.
func (c *Customer) ApplySnapshot(snap *Customer) {
	c.FullName = snap.FullName
	c.Gender = snap.Gender
	c.IDCardNumber = snap.IDCardNumber
	c.PhoneNumber = snap.PhoneNumber
	c.GroupNameRaw = snap.GroupNameRaw
	c.GroupCode = snap.GroupCode
	c.BranchID = snap.BranchID
	c.BranchName = snap.BranchName
	c.VillageName = snap.VillageName
	c.LocationType = snap.LocationType
	c.MembershipStartDate = snap.MembershipStartDate
	c.LastSyncedAt = snap.LastSyncedAt
	c.Touch()
}

// SetGroupResolution records a successful branch/group resolution
func (c *Customer) SetGroupResolution(groupCode, branchID, branchName string) {
	c.GroupCode = &groupCode
	c.BranchID = &branchID
	c.BranchName = &branchName
}

// ClearGroupResolution leaves the group/branch fields null when the raw group
// name could not be resolved; guessing would corrupt branch reporting.
func (c *Customer) ClearGroupResolution() {
	c.GroupCode = nil
	c.BranchID = nil
	c.BranchName = nil
}

// IsRural returns true when the member lives in a village
func (c *Customer) IsRural() bool {
	return c.LocationType == LocationTypeRural
}

func validateMemberNo(memberNo string) error {
	if memberNo == "" {
		return shared.ErrInvalidMemberNo
	}
	for _, r := range memberNo {
		if r < '0' || r > '9' {
			return shared.ErrInvalidMemberNo
		}
	}
	return nil
}
