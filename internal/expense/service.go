package expense

import (
	"context"

	"github.com/approvalengine/expense-service/internal"
)

// ChainBuilder is satisfied by internal/approval's Service.BuildChain. The
// interface lives here, at the point of use, so this package never needs
// to import internal/approval — approval imports expense instead, keeping
// the dependency one-directional.
type ChainBuilder interface {
	BuildChain(ctx context.Context, principal internal.Principal, dto CreateExpenseDTO) (*Expense, error)
}

// ChainQuerier is satisfied by internal/approval's Service.GetChain,
// letting GetExpense attach the full ordered slot list without this
// package importing approval.
type ChainQuerier interface {
	GetChain(ctx context.Context, expenseID int64) ([]SlotView, error)
}

// Repository covers the Query Surface's reads (spec §4.F).
type Repository interface {
	GetByID(ctx context.Context, expenseID int64) (*Expense, error)
	ListMine(ctx context.Context, userID int64, filter ListFilter) ([]*Expense, int, error)
	ListForCompany(ctx context.Context, companyID int64, filter ListFilter) ([]*Expense, int, error)
}

// managerLookup reports submitterID's direct manager, used by GetExpense's
// access control without importing internal/user.
type managerLookup func(ctx context.Context, submitterID int64) (*int64, error)

type Service struct {
	repo         Repository
	chainBuilder ChainBuilder
	chainQuerier ChainQuerier
	managerOf    managerLookup
}

func NewService(repo Repository, chainBuilder ChainBuilder, chainQuerier ChainQuerier) *Service {
	return &Service{repo: repo, chainBuilder: chainBuilder, chainQuerier: chainQuerier}
}

// SetManagerLookup wires the optional submitter->manager check used by
// GetExpense's access control. Left unset, a manager can still read
// expenses they hold a slot on or their own, just not a report's.
func (s *Service) SetManagerLookup(fn func(ctx context.Context, submitterID int64) (*int64, error)) {
	s.managerOf = fn
}

// CreateExpense submits a new expense, delegating chain assembly to the
// Approval Chain Builder (spec §4.C). Currency normalization happens
// inside BuildChain, before the expense row is persisted.
func (s *Service) CreateExpense(ctx context.Context, principal internal.Principal, dto CreateExpenseDTO) (*Expense, error) {
	return s.chainBuilder.BuildChain(ctx, principal, dto)
}

// GetExpense returns one expense plus its ordered chain, enforcing the
// role-scoped access rules from spec §4.F.
func (s *Service) GetExpense(ctx context.Context, principal internal.Principal, expenseID int64) (*Expense, []SlotView, error) {
	e, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}
	if e.CompanyID != principal.CompanyID {
		return nil, nil, internal.ErrExpenseNotFound
	}

	chain, err := s.chainQuerier.GetChain(ctx, e.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorizeRead(ctx, principal, e, chain); err != nil {
		return nil, nil, err
	}
	return e, chain, nil
}

// authorizeRead implements spec §4.F's GetExpense access rule: admin sees
// any expense in their company; manager sees expenses from a direct
// report, any expense where they hold a slot, or their own; employee sees
// only their own.
func (s *Service) authorizeRead(ctx context.Context, principal internal.Principal, e *Expense, chain []SlotView) error {
	if principal.IsAdmin() {
		return nil
	}
	if e.UserID == principal.UserID {
		return nil
	}
	if !principal.IsManager() {
		return internal.ErrUnauthorizedAccess
	}
	for _, slot := range chain {
		if slot.ApproverID == principal.UserID {
			return nil
		}
	}
	if s.managerOf != nil {
		managerID, err := s.managerOf(ctx, e.UserID)
		if err != nil {
			return err
		}
		if managerID != nil && *managerID == principal.UserID {
			return nil
		}
	}
	return internal.ErrUnauthorizedAccess
}

// ListMyExpenses returns the caller's own submissions enriched with their
// chains (spec §4.F).
func (s *Service) ListMyExpenses(ctx context.Context, principal internal.Principal, filter ListFilter) ([]*ExpenseWithChain, int, error) {
	rows, total, err := s.repo.ListMine(ctx, principal.UserID, filter)
	if err != nil {
		return nil, 0, err
	}
	return s.attachChains(ctx, rows, total)
}

// ListCompanyExpenses backs the admin-facing GET /expenses listing.
func (s *Service) ListCompanyExpenses(ctx context.Context, principal internal.Principal, filter ListFilter) ([]*ExpenseWithChain, int, error) {
	if !principal.IsAdmin() {
		return nil, 0, internal.ErrUnauthorizedAccess
	}
	rows, total, err := s.repo.ListForCompany(ctx, principal.CompanyID, filter)
	if err != nil {
		return nil, 0, err
	}
	return s.attachChains(ctx, rows, total)
}

func (s *Service) attachChains(ctx context.Context, rows []*Expense, total int) ([]*ExpenseWithChain, int, error) {
	out := make([]*ExpenseWithChain, len(rows))
	for i, e := range rows {
		chain, err := s.chainQuerier.GetChain(ctx, e.ID)
		if err != nil {
			return nil, 0, err
		}
		out[i] = &ExpenseWithChain{Expense: e, Chain: chain}
	}
	return out, total, nil
}
