package dto

import (
	"time"

	"github.com/shopspring/decimal"

	appsync "github.com/acefarmer/backend/internal/application/sync"
)

// BulkImportRequest carries the member numbers for a bulk synchronization
type BulkImportRequest struct {
	MemberNos []string `json:"member_nos" binding:"required,min=1,max=10000"`
}

// CustomerResponse is the API view of a stored member
type CustomerResponse struct {
	MemberNo            string            `json:"member_no"`
	FullName            string            `json:"full_name"`
	Gender              string            `json:"gender"`
	IDCardNumber        string            `json:"id_card_number,omitempty"`
	PhoneNumber         string            `json:"phone_number,omitempty"`
	GroupName           string            `json:"group_name,omitempty"`
	GroupCode           *string           `json:"group_code"`
	BranchID            *string           `json:"branch_id"`
	BranchName          *string           `json:"branch_name"`
	VillageName         string            `json:"village_name,omitempty"`
	LocationType        string            `json:"location_type"`
	MembershipStartDate *time.Time        `json:"membership_start_date"`
	LastSyncedAt        time.Time         `json:"last_synced_at"`
	Balances            []BalanceResponse `json:"balances"`
	Loans               []LoanResponse    `json:"loans"`
}

// BalanceResponse is the API view of one savings balance snapshot
type BalanceResponse struct {
	Type            string          `json:"type"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	InterestAccrued decimal.Decimal `json:"interest_accrued"`
}

// LoanResponse is the API view of one loan snapshot
type LoanResponse struct {
	ExternalCode       string          `json:"external_code"`
	ProductName        string          `json:"product_name,omitempty"`
	PrincipalAmount    decimal.Decimal `json:"principal_amount"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	DisbursementDate   *time.Time      `json:"disbursement_date"`
	Status             string          `json:"status"`
}

// FromMemberSnapshot maps the application snapshot to the API response
func FromMemberSnapshot(snap *appsync.MemberSnapshot) CustomerResponse {
	resp := CustomerResponse{
		MemberNo:            snap.Customer.MemberNo,
		FullName:            snap.Customer.FullName,
		Gender:              string(snap.Customer.Gender),
		IDCardNumber:        snap.Customer.IDCardNumber,
		PhoneNumber:         snap.Customer.PhoneNumber,
		GroupName:           snap.Customer.GroupNameRaw,
		GroupCode:           snap.Customer.GroupCode,
		BranchID:            snap.Customer.BranchID,
		BranchName:          snap.Customer.BranchName,
		VillageName:         snap.Customer.VillageName,
		LocationType:        string(snap.Customer.LocationType),
		MembershipStartDate: snap.Customer.MembershipStartDate,
		LastSyncedAt:        snap.Customer.LastSyncedAt,
		Balances:            make([]BalanceResponse, 0, len(snap.Balances)),
		Loans:               make([]LoanResponse, 0, len(snap.Loans)),
	}
	for _, b := range snap.Balances {
		resp.Balances = append(resp.Balances, BalanceResponse{
			Type:            string(b.Type),
			PrincipalAmount: b.PrincipalAmount,
			CurrentBalance:  b.CurrentBalance,
			InterestAccrued: b.InterestAccrued,
		})
	}
	for _, l := range snap.Loans {
		resp.Loans = append(resp.Loans, LoanResponse{
			ExternalCode:       l.ExternalCode,
			ProductName:        l.ProductName,
			PrincipalAmount:    l.PrincipalAmount,
			OutstandingBalance: l.OutstandingBalance,
			DisbursementDate:   l.DisbursementDate,
			Status:             string(l.Status),
		})
	}
	return resp
}
