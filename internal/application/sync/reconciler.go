package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/acefarmer/backend/internal/domain/loan"
	"github.com/acefarmer/backend/internal/domain/member"
	"github.com/acefarmer/backend/internal/domain/refdata"
	"github.com/acefarmer/backend/internal/domain/savings"
	"github.com/acefarmer/backend/internal/domain/shared"
	"github.com/acefarmer/backend/internal/infrastructure/bijli"
)

// Reconciler turns one external payload into persisted customer, savings and
// loan state. All writes go through idempotent upsert keys, so replaying the
// same payload is always safe.
type Reconciler struct {
	customers      member.CustomerRepository
	savings        savings.Repository
	loans          loan.Repository
	resolver       *refdata.Resolver
	logger         *zap.Logger
	preferDayFirst bool
}

// NewReconciler creates a reconciler
func NewReconciler(
	customers member.CustomerRepository,
	savingsRepo savings.Repository,
	loans loan.Repository,
	resolver *refdata.Resolver,
	logger *zap.Logger,
	preferDayFirst bool,
) *Reconciler {
	return &Reconciler{
		customers:      customers,
		savings:        savingsRepo,
		loans:          loans,
		resolver:       resolver,
		logger:         logger,
		preferDayFirst: preferDayFirst,
	}
}

// pickField returns the first present field among the known aliases for a
// logical attribute; the legacy system is not consistent about names
func pickField(raw bijli.RawRecord, names ...string) any {
	for _, name := range names {
		if v, ok := raw[name]; ok && v != nil {
			return v
		}
	}
	return nil
}

// MapExternalToCustomer builds a typed customer from the raw record. The
// canonical member number supplied by the caller is always the persistence
// key: when the payload reports a different one, the mismatch is logged and
// returned as a warning, and the canonical value is kept.
func (r *Reconciler) MapExternalToCustomer(raw bijli.RawRecord, canonicalMemberNo string) (*member.Customer, []string, error) {
	var warnings []string

	if reported, err := member.NormalizeMemberNo(pickField(raw, "MemberNo", "MemberID", "Code")); err == nil && reported != canonicalMemberNo {
		r.logger.Warn("external payload reports a different member number",
			zap.String("canonical", canonicalMemberNo),
			zap.String("reported", reported))
		warnings = append(warnings, fmt.Sprintf(
			"member number mismatch: source reported %s, keeping %s", reported, canonicalMemberNo))
	}

	fullName := member.FormatVietnameseName(
		member.FixMojibake(member.NormalizeString(pickField(raw, "FullName", "Name", "MemberName"))))
	if fullName == "" {
		return nil, warnings, shared.NewDomainError("INVALID_PAYLOAD", "external payload has no member name")
	}

	customer, err := member.NewCustomer(canonicalMemberNo, fullName)
	if err != nil {
		return nil, warnings, err
	}

	customer.Gender = member.MapGender(pickField(raw, "Gender", "Sex"))
	customer.IDCardNumber = member.NormalizeString(pickField(raw, "IdCardNumber", "IdCardNo", "NationalId"))
	customer.PhoneNumber = member.NormalizeString(pickField(raw, "PhoneNumber", "Phone", "Mobile"))
	customer.GroupNameRaw = member.FixMojibake(member.NormalizeString(pickField(raw, "GroupName", "Group")))
	customer.VillageName = member.FormatVietnameseName(
		member.FixMojibake(member.NormalizeString(pickField(raw, "VillageName", "Village"))))
	if customer.VillageName != "" {
		customer.LocationType = member.LocationTypeRural
	} else {
		customer.LocationType = member.LocationTypeUrban
	}
	customer.MembershipStartDate = member.ParseDateFlexible(
		pickField(raw, "MembershipStartDate", "JoinDate", "StartDate"), r.preferDayFirst)
	customer.LastSyncedAt = time.Now()

	return customer, warnings, nil
}

// ResolveGroup resolves the customer's raw group name and writes the result
// onto the customer. Misses and conflicts leave the group fields null and
// come back as a diagnostic string; guessing a branch is never acceptable.
func (r *Reconciler) ResolveGroup(customer *member.Customer) (refdata.GroupResolution, string) {
	if customer.GroupNameRaw == "" {
		customer.ClearGroupResolution()
		return refdata.GroupResolution{Reason: refdata.ReasonInvalid}, ""
	}

	res := r.resolver.ResolveGroupName(customer.GroupNameRaw)
	if !res.Found {
		customer.ClearGroupResolution()
		r.logger.Warn("group name did not resolve",
			zap.String("member_no", customer.MemberNo),
			zap.String("group_name", customer.GroupNameRaw),
			zap.String("reason", string(res.Reason)))
		return res, fmt.Sprintf("group %q unresolved: %s", customer.GroupNameRaw, res.Reason)
	}

	customer.SetGroupResolution(res.GroupCode, res.BranchID, res.BranchName)
	return res, ""
}

// UpsertCustomer persists the customer keyed on its member number
func (r *Reconciler) UpsertCustomer(ctx context.Context, customer *member.Customer) (*member.Customer, error) {
	return r.customers.Upsert(ctx, customer)
}

// savingsModule mirrors one savings account object in the raw payload
type savingsModule struct {
	raw          map[string]any
	savingsType  savings.SavingsType
	transactions []any
}

// ReconcileSavings upserts the balance snapshot and the transaction ledger
// for every savings account present in the payload. Returns the accumulated
// warnings and whether a savings module was present at all.
func (r *Reconciler) ReconcileSavings(ctx context.Context, customerID uuid.UUID, raw bijli.RawRecord) ([]string, bool, error) {
	modules := extractSavingsModules(raw)
	if len(modules) == 0 {
		return nil, false, nil
	}

	var warnings []string
	for _, mod := range modules {
		balance := savings.NewBalance(customerID, mod.savingsType,
			moneyOrZero(pickField(mod.raw, "Principal", "PrincipalAmount")),
			moneyOrZero(pickField(mod.raw, "Balance", "CurrentBalance")),
			moneyOrZero(pickField(mod.raw, "Interest", "InterestAccrued")))
		if err := r.savings.UpsertBalance(ctx, balance); err != nil {
			return warnings, true, fmt.Errorf("upsert %s balance: %w", mod.savingsType, err)
		}

		dropped, err := r.ReconcileTransactionHistory(ctx, customerID, mod.savingsType, mod.transactions)
		if err != nil {
			return warnings, true, fmt.Errorf("reconcile %s transactions: %w", mod.savingsType, err)
		}
		if dropped > 0 {
			warnings = append(warnings, fmt.Sprintf(
				"%s: dropped %d transactions with unparseable dates", mod.savingsType, dropped))
		}
	}
	return warnings, true, nil
}

// ReconcileTransactionHistory normalizes a raw transaction list and applies
// it as one atomic batch. Entries whose dates fail to parse are dropped (the
// count is returned). The idempotency key carries an occurrence index so that
// legitimate same-day, same-type, same-amount duplicates each keep their own
// row, while a replay of the batch updates rows in place.
func (r *Reconciler) ReconcileTransactionHistory(ctx context.Context, customerID uuid.UUID, t savings.SavingsType, rawList []any) (dropped int, err error) {
	occurrences := make(map[string]int)
	var batch []*savings.Transaction

	for _, entry := range rawList {
		fields, ok := entry.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		trnDate := member.ParseDateFlexible(pickField(fields, "TrnDate", "Date", "TransactionDate"), r.preferDayFirst)
		if trnDate == nil {
			dropped++
			continue
		}
		trnType := member.NormalizeString(pickField(fields, "TrnType", "Type"))
		if trnType == "" {
			trnType = "UNKNOWN"
		}

		key := savings.TransactionKey{
			CustomerID: customerID,
			Type:       t,
			TrnDate:    *trnDate,
			TrnType:    trnType,
			Deposit:    moneyOrZero(pickField(fields, "Deposit", "DepositAmount")),
			Withdrawal: moneyOrZero(pickField(fields, "Withdrawal", "WithdrawalAmount")),
		}

		tuple := fmt.Sprintf("%s|%s|%s|%s|%s",
			trnDate.Format("2006-01-02"), trnType, key.Deposit, key.Withdrawal, t)
		key.Occurrence = occurrences[tuple]
		occurrences[tuple]++

		batch = append(batch, savings.NewTransaction(key))
	}

	if err := r.savings.UpsertTransactions(ctx, batch); err != nil {
		return dropped, err
	}
	return dropped, nil
}

// ReconcileLoans upserts a snapshot per loan in the payload. Returns whether
// a loans module was present.
func (r *Reconciler) ReconcileLoans(ctx context.Context, customerID uuid.UUID, raw bijli.RawRecord) (bool, error) {
	rawLoans, ok := pickField(raw, "Loans", "LoanAccounts").([]any)
	if !ok || len(rawLoans) == 0 {
		return false, nil
	}

	for _, entry := range rawLoans {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		code := member.NormalizeString(pickField(fields, "LoanCode", "Code", "LoanNo"))
		if code == "" {
			continue
		}
		l := &loan.Loan{
			BaseEntity:         shared.NewBaseEntity(),
			CustomerID:         customerID,
			ExternalCode:       code,
			ProductName:        member.FixMojibake(member.NormalizeString(pickField(fields, "ProductName", "Product"))),
			PrincipalAmount:    moneyOrZero(pickField(fields, "Principal", "PrincipalAmount")),
			OutstandingBalance: moneyOrZero(pickField(fields, "Outstanding", "OutstandingBalance")),
			DisbursementDate:   member.ParseDateFlexible(pickField(fields, "DisbursementDate", "DisburseDate"), r.preferDayFirst),
			Status:             loan.MapStatus(member.NormalizeString(pickField(fields, "Status", "State"))),
		}
		if err := r.loans.UpsertLoan(ctx, l); err != nil {
			return true, fmt.Errorf("upsert loan %s: %w", code, err)
		}
	}
	return true, nil
}

// extractSavingsModules pulls the savings account objects out of the payload,
// tolerating both an array under "Savings" and the older per-type keys
func extractSavingsModules(raw bijli.RawRecord) []savingsModule {
	var modules []savingsModule

	if list, ok := pickField(raw, "Savings", "SavingsAccounts").([]any); ok {
		for _, entry := range list {
			fields, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			t, ok := mapSavingsType(member.NormalizeString(pickField(fields, "Type", "SavingsType")))
			if !ok {
				continue
			}
			modules = append(modules, newSavingsModule(fields, t))
		}
		return modules
	}

	if fields, ok := pickField(raw, "CompulsorySavings").(map[string]any); ok {
		modules = append(modules, newSavingsModule(fields, savings.SavingsTypeCompulsory))
	}
	if fields, ok := pickField(raw, "VoluntarySavings").(map[string]any); ok {
		modules = append(modules, newSavingsModule(fields, savings.SavingsTypeVoluntary))
	}
	return modules
}

func newSavingsModule(fields map[string]any, t savings.SavingsType) savingsModule {
	transactions, _ := pickField(fields, "Transactions", "History").([]any)
	return savingsModule{raw: fields, savingsType: t, transactions: transactions}
}

func mapSavingsType(raw string) (savings.SavingsType, bool) {
	switch strings.ToUpper(raw) {
	case "COMPULSORY", "C":
		return savings.SavingsTypeCompulsory, true
	case "VOLUNTARY", "V":
		return savings.SavingsTypeVoluntary, true
	default:
		return "", false
	}
}

// moneyOrZero treats an absent or unparseable amount as zero in contexts
// where a row-level amount is required
func moneyOrZero(v any) decimal.Decimal {
	if d := member.ParseMoney(v); d != nil {
		return *d
	}
	return decimal.Zero
}
