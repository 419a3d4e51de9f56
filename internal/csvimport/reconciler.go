package csvimport

import (
	"strings"

	"github.com/dmelton/splitbook/internal/category"
	"github.com/dmelton/splitbook/internal/domain"
	"github.com/dmelton/splitbook/internal/money"
)

// Context is the user's snapshot a batch reconciles against.
type Context struct {
	UserID      string
	AccountName string
	Accounts    []domain.Account
	Categories  []domain.Category
}

// Result is the outcome of reconciling one batch. When
// UnresolvedAccountName is set, the batch halted before producing drafts;
// the caller creates the account out of band and re-invokes reconciliation
// with the same rows.
type Result struct {
	Drafts                []domain.Transaction
	Skipped               int
	UnresolvedAccountName string
}

// Reconcile resolves each row to the batch account and a category, infers
// the transaction type from the account type, and normalizes the amount.
// It is side-effect-free: it returns drafts, enabling dry-run validation
// before any write.
func Reconcile(rows []Row, rctx Context) Result {
	account, ok := findAccount(rctx.Accounts, rctx.AccountName)
	if !ok {
		return Result{UnresolvedAccountName: rctx.AccountName}
	}

	tree := category.New(rctx.Categories)

	res := Result{Drafts: make([]domain.Transaction, 0, len(rows))}
	for _, row := range rows {
		raw, err := money.Parse(row.RawAmount)
		if err != nil {
			res.Skipped++
			continue
		}

		// The raw sign only picks the transaction type; the canonical
		// sign is re-derived from that type.
		txType := inferType(account.Type, raw.IsNegative())
		amount, err := money.NormalizeDecimal(txType, raw)
		if err != nil {
			res.Skipped++
			continue
		}

		draft := domain.Transaction{
			UserID:      rctx.UserID,
			AccountID:   account.ID,
			Amount:      amount,
			Type:        txType,
			Date:        row.Date,
			Description: row.Description,
			Shared:      row.Shared,
		}
		if row.CategoryName != "" {
			if cat, ok := tree.FindByName(row.CategoryName); ok {
				draft.CategoryID = cat.ID
			}
			// Unresolved categories import uncategorized; unlike the
			// account, a category miss is never batch-fatal.
		}
		if row.Shared {
			for _, id := range row.SharedWith {
				draft.SharedWith = append(draft.SharedWith, domain.Participant{UserID: id})
			}
		}
		res.Drafts = append(res.Drafts, draft)
	}

	return res
}

func findAccount(accounts []domain.Account, name string) (domain.Account, bool) {
	for _, a := range accounts {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return domain.Account{}, false
}

// inferType picks the transaction type from the account type and the raw
// amount sign. Deposit accounts see Income/Expense; credit cards see
// Charge/Payment (a negative raw amount on a card is a payment toward it).
func inferType(accountType string, negative bool) string {
	switch accountType {
	case domain.AccountChecking, domain.AccountSavings, domain.AccountCash:
		if negative {
			return domain.TypeExpense
		}
		return domain.TypeIncome
	case domain.AccountCreditCard:
		if negative {
			return domain.TypePayment
		}
		return domain.TypeCharge
	default:
		return domain.TypeExpense
	}
}
