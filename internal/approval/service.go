package approval

import (
	"context"
	"log/slog"

	"github.com/approvalengine/expense-service/internal/core/events"
	"github.com/approvalengine/expense-service/internal/currency"
	"github.com/approvalengine/expense-service/pkg/logger"
	"gorm.io/gorm"
)

// SlotRepository persists and reads ApprovalSlot rows. The Tx-suffixed
// reads run against a transaction that already holds the expense row's
// lock, so they observe a consistent snapshot for the state machine's
// sequential-gating check (spec §5).
type SlotRepository interface {
	InsertSlots(tx *gorm.DB, slots []*Slot) error
	GetSlot(ctx context.Context, slotID int64) (*Slot, error)
	GetSlotTx(tx *gorm.DB, slotID int64) (*Slot, error)
	ListSlotsForExpense(ctx context.Context, expenseID int64) ([]*Slot, error)
	ListSlotsForExpenseTx(tx *gorm.DB, expenseID int64) ([]*Slot, error)
	UpdateSlot(tx *gorm.DB, slot *Slot) error
	UpdateSlots(tx *gorm.DB, slots []*Slot) error
	HasPendingSlotForApprover(ctx context.Context, approverID int64) (bool, error)
	HasPendingSlotForApproverTx(tx *gorm.DB, approverID int64) (bool, error)
}

// ApproverRepository persists and reads a company's approver roster.
type ApproverRepository interface {
	ListActive(ctx context.Context, companyID int64) ([]*Approver, error)
	ListAll(ctx context.Context, companyID int64) ([]*Approver, error)
	GetByID(ctx context.Context, id int64) (*Approver, error)
	GetActiveBySequence(ctx context.Context, companyID int64, sequence int) (*Approver, error)
	GetActiveByUserAndRole(ctx context.Context, companyID, userID int64, roleName string) (*Approver, error)
	Insert(tx *gorm.DB, a *Approver) error
	Update(tx *gorm.DB, a *Approver) error
}

// RuleRepository persists and reads a company's quorum/veto rules.
type RuleRepository interface {
	ListActive(ctx context.Context, companyID int64) ([]*Rule, error)
	ListAll(ctx context.Context, companyID int64) ([]*Rule, error)
	DeactivateByType(tx *gorm.DB, companyID int64, ruleType string) error
	Insert(tx *gorm.DB, r *Rule) error
}

// UserLookup is the narrow slice of the user domain the chain builder
// needs: the submitter's direct manager and role.
type UserLookup interface {
	GetManagerID(userID int64) (*int64, error)
	BelongsToCompany(userID, companyID int64) (bool, error)
	IsManagerOrAdmin(userID int64) (bool, error)
	IsActive(userID int64) (bool, error)
}

// CompanyLookup is the narrow slice of the company domain the chain
// builder and currency step need.
type CompanyLookup interface {
	GetBaseCurrency(companyID int64) (string, error)
}

// QueryRepository backs the Query Surface's join-heavy reads (spec §4.F),
// written as parameterized SQL via sqlx rather than gorm's query builder.
type QueryRepository interface {
	ListPendingForApprover(ctx context.Context, approverID int64) ([]PendingItem, error)
	GetChainRows(ctx context.Context, expenseID int64) ([]ChainRow, error)
}

// ReceiptCleaner deletes a previously stored receipt upload. BuildChain
// calls it to compensate a rolled-back submission (spec §4.C, §5: "any
// uploaded receipt file whose URL was recorded must be deleted on
// rollback"), since the file is written to storage before the DB
// transaction commits.
type ReceiptCleaner interface {
	Delete(ctx context.Context, url string) error
}

// Service implements the Approval Chain Builder, State Machine, Rule
// Evaluator, Query Surface, and Admin Configuration components (spec §4.C
// through §4.G) against one gorm connection.
type Service struct {
	db         *gorm.DB
	slots      SlotRepository
	approvers  ApproverRepository
	rules      RuleRepository
	query      QueryRepository
	users      UserLookup
	companies  CompanyLookup
	normalizer currency.Normalizer
	logger     *slog.Logger
	eventBus   *events.EventBus
	receipts   ReceiptCleaner
}

// SetEventBus wires the bus decisions are published to (spec §6 audit
// trail, payment settlement trigger). Left nil, Decide simply skips
// publishing, matching the pattern expense.Service uses for its own
// optional collaborators.
func (s *Service) SetEventBus(bus *events.EventBus) {
	s.eventBus = bus
}

// SetReceiptCleaner wires BuildChain's rollback compensator. Left nil, a
// failed submission leaves an orphaned upload rather than erroring harder.
func (s *Service) SetReceiptCleaner(c ReceiptCleaner) {
	s.receipts = c
}

func NewService(db *gorm.DB, slots SlotRepository, approvers ApproverRepository, rules RuleRepository, query QueryRepository, users UserLookup, companies CompanyLookup, normalizer currency.Normalizer) *Service {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Service{
		db:         db,
		slots:      slots,
		approvers:  approvers,
		rules:      rules,
		query:      query,
		users:      users,
		companies:  companies,
		normalizer: normalizer,
		logger:     lg,
	}
}
