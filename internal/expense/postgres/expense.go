// Package postgres implements internal/expense.Repository: a gorm lookup
// for the single-row read and sqlx parameterized queries for the
// filtered/paginated listings (spec §4.F Query Surface).
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/expense"
	expenseDatamodel "github.com/approvalengine/expense-service/internal/core/datamodel/expense"
	"github.com/approvalengine/expense-service/internal/persistence"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type expenseRow struct {
	ID               int64      `db:"id"`
	UserID           int64      `db:"user_id"`
	CompanyID        int64      `db:"company_id"`
	AmountBase       float64    `db:"amount"`
	AmountOriginal   float64    `db:"original_amount"`
	CurrencyOriginal string     `db:"original_currency"`
	Category         string     `db:"category"`
	Description      string     `db:"description"`
	ExpenseDate      time.Time  `db:"date"`
	Status           string     `db:"status"`
	ReceiptURL       *string    `db:"receipt_url"`
	ApprovedCount    int        `db:"approved_count"`
	ChainWarning     *string    `db:"chain_warning"`
	SubmittedAt      time.Time  `db:"submitted_at"`
	ProcessedAt      *time.Time `db:"processed_at"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

func (r expenseRow) toDomain() *expense.Expense {
	return &expense.Expense{
		ID:               r.ID,
		UserID:           r.UserID,
		CompanyID:        r.CompanyID,
		AmountBase:       r.AmountBase,
		AmountOriginal:   r.AmountOriginal,
		CurrencyOriginal: r.CurrencyOriginal,
		Category:         r.Category,
		Description:      r.Description,
		ExpenseDate:      r.ExpenseDate,
		Status:           r.Status,
		ReceiptURL:       r.ReceiptURL,
		ApprovedCount:    r.ApprovedCount,
		ChainWarning:     r.ChainWarning,
		SubmittedAt:      r.SubmittedAt,
		ProcessedAt:      r.ProcessedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// Repository implements expense.Repository.
type Repository struct {
	db  *gorm.DB
	sdb *sqlx.DB
}

func NewRepository(db *gorm.DB, sdb *sqlx.DB) *Repository {
	return &Repository{db: db, sdb: sdb}
}

func (r *Repository) GetByID(ctx context.Context, expenseID int64) (*expense.Expense, error) {
	var row expenseDatamodel.Expense
	if err := r.db.WithContext(ctx).First(&row, expenseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrExpenseNotFound
		}
		return nil, internal.NewInternalError("failed to load expense", err)
	}
	return expense.FromDataModel(&row), nil
}

func (r *Repository) ListMine(ctx context.Context, userID int64, filter expense.ListFilter) ([]*expense.Expense, int, error) {
	return r.list(ctx, "user_id = $1", []interface{}{userID}, filter)
}

func (r *Repository) ListForCompany(ctx context.Context, companyID int64, filter expense.ListFilter) ([]*expense.Expense, int, error) {
	return r.list(ctx, "company_id = $1", []interface{}{companyID}, filter)
}

// list assembles a parameterized WHERE clause from the base predicate plus
// the filter's optional status/category/date-range terms, following the
// same $N placeholder style the Query Surface uses throughout (spec §4.F).
func (r *Repository) list(ctx context.Context, basePredicate string, baseArgs []interface{}, filter expense.ListFilter) ([]*expense.Expense, int, error) {
	clauses := []string{basePredicate}
	args := append([]interface{}{}, baseArgs...)

	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		clauses = append(clauses, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		clauses = append(clauses, fmt.Sprintf("date <= $%d", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := "SELECT count(*) FROM expenses WHERE " + where
	if err := persistence.QueryOne(ctx, r.sdb, &total, r.sdb.Rebind(countQuery), args...); err != nil {
		return nil, 0, internal.NewInternalError("failed to count expenses", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := (page - 1) * limit
	pagedArgs := append(append([]interface{}{}, args...), limit, offset)
	listQuery := fmt.Sprintf(
		"SELECT id, user_id, company_id, amount, original_amount, original_currency, category, description, date, status, receipt_url, approved_count, chain_warning, submitted_at, processed_at, created_at, updated_at FROM expenses WHERE %s ORDER BY submitted_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2,
	)

	var rows []expenseRow
	if err := persistence.QueryMany(ctx, r.sdb, &rows, r.sdb.Rebind(listQuery), pagedArgs...); err != nil {
		return nil, 0, internal.NewInternalError("failed to list expenses", err)
	}

	out := make([]*expense.Expense, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, total, nil
}
