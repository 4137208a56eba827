package approval_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/approval"
)

// mockSlotRepo, mockApproverRepo, and mockRuleRepo satisfy the narrow
// repository interfaces internal/approval.Service depends on; each keeps
// its rows in memory since the admin-configuration paths under test only
// care about the sequencing/dedup logic layered on top, not persistence.

type mockSlotRepo struct {
	pendingFor map[int64]bool
}

func (m *mockSlotRepo) InsertSlots(tx *gorm.DB, slots []*approval.Slot) error { return nil }
func (m *mockSlotRepo) GetSlot(ctx context.Context, slotID int64) (*approval.Slot, error) {
	return nil, nil
}
func (m *mockSlotRepo) GetSlotTx(tx *gorm.DB, slotID int64) (*approval.Slot, error) { return nil, nil }
func (m *mockSlotRepo) ListSlotsForExpense(ctx context.Context, expenseID int64) ([]*approval.Slot, error) {
	return nil, nil
}
func (m *mockSlotRepo) ListSlotsForExpenseTx(tx *gorm.DB, expenseID int64) ([]*approval.Slot, error) {
	return nil, nil
}
func (m *mockSlotRepo) UpdateSlot(tx *gorm.DB, slot *approval.Slot) error   { return nil }
func (m *mockSlotRepo) UpdateSlots(tx *gorm.DB, slots []*approval.Slot) error { return nil }
func (m *mockSlotRepo) HasPendingSlotForApprover(ctx context.Context, approverID int64) (bool, error) {
	return m.pendingFor[approverID], nil
}
func (m *mockSlotRepo) HasPendingSlotForApproverTx(tx *gorm.DB, approverID int64) (bool, error) {
	return m.pendingFor[approverID], nil
}

type mockApproverRepo struct {
	byID       map[int64]*approval.Approver
	bySeq      map[int64]map[int]*approval.Approver
	byUserRole map[int64]map[string]*approval.Approver
	nextID     int64
}

func newMockApproverRepo() *mockApproverRepo {
	return &mockApproverRepo{
		byID:       make(map[int64]*approval.Approver),
		bySeq:      make(map[int64]map[int]*approval.Approver),
		byUserRole: make(map[int64]map[string]*approval.Approver),
	}
}

func (m *mockApproverRepo) ListActive(ctx context.Context, companyID int64) ([]*approval.Approver, error) {
	var out []*approval.Approver
	for _, a := range m.byID {
		if a.CompanyID == companyID && a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockApproverRepo) ListAll(ctx context.Context, companyID int64) ([]*approval.Approver, error) {
	var out []*approval.Approver
	for _, a := range m.byID {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockApproverRepo) GetByID(ctx context.Context, id int64) (*approval.Approver, error) {
	return m.byID[id], nil
}

func (m *mockApproverRepo) GetActiveBySequence(ctx context.Context, companyID int64, sequence int) (*approval.Approver, error) {
	if row, ok := m.bySeq[companyID][sequence]; ok && row.Active {
		return row, nil
	}
	return nil, nil
}

func (m *mockApproverRepo) GetActiveByUserAndRole(ctx context.Context, companyID, userID int64, roleName string) (*approval.Approver, error) {
	if row, ok := m.byUserRole[companyID][roleName]; ok && row.Active && row.UserID == userID {
		return row, nil
	}
	return nil, nil
}

func (m *mockApproverRepo) Insert(tx *gorm.DB, a *approval.Approver) error {
	m.nextID++
	a.ID = m.nextID
	m.byID[a.ID] = a
	if m.bySeq[a.CompanyID] == nil {
		m.bySeq[a.CompanyID] = make(map[int]*approval.Approver)
	}
	m.bySeq[a.CompanyID][a.Sequence] = a
	if m.byUserRole[a.CompanyID] == nil {
		m.byUserRole[a.CompanyID] = make(map[string]*approval.Approver)
	}
	m.byUserRole[a.CompanyID][a.RoleName] = a
	return nil
}

func (m *mockApproverRepo) Update(tx *gorm.DB, a *approval.Approver) error {
	m.byID[a.ID] = a
	if m.bySeq[a.CompanyID] == nil {
		m.bySeq[a.CompanyID] = make(map[int]*approval.Approver)
	}
	m.bySeq[a.CompanyID][a.Sequence] = a
	return nil
}

type mockRuleRepo struct {
	rows   []*approval.Rule
	nextID int64
}

func (m *mockRuleRepo) ListActive(ctx context.Context, companyID int64) ([]*approval.Rule, error) {
	var out []*approval.Rule
	for _, r := range m.rows {
		if r.CompanyID == companyID && r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRuleRepo) ListAll(ctx context.Context, companyID int64) ([]*approval.Rule, error) {
	var out []*approval.Rule
	for _, r := range m.rows {
		if r.CompanyID == companyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRuleRepo) DeactivateByType(tx *gorm.DB, companyID int64, ruleType string) error {
	for _, r := range m.rows {
		if r.CompanyID == companyID && r.RuleType == ruleType {
			r.Active = false
		}
	}
	return nil
}

func (m *mockRuleRepo) Insert(tx *gorm.DB, r *approval.Rule) error {
	m.nextID++
	r.ID = m.nextID
	m.rows = append(m.rows, r)
	return nil
}

type mockUserLookup struct {
	inCompany     map[int64]bool
	active        map[int64]bool
	managerOrAdmin map[int64]bool
}

func (m *mockUserLookup) GetManagerID(userID int64) (*int64, error) { return nil, nil }
func (m *mockUserLookup) BelongsToCompany(userID, companyID int64) (bool, error) {
	return m.inCompany[userID], nil
}
func (m *mockUserLookup) IsManagerOrAdmin(userID int64) (bool, error) {
	return m.managerOrAdmin[userID], nil
}
func (m *mockUserLookup) IsActive(userID int64) (bool, error) { return m.active[userID], nil }

type mockCompanyLookup struct{}

func (mockCompanyLookup) GetBaseCurrency(companyID int64) (string, error) { return "USD", nil }

type mockQueryRepo struct{}

func (mockQueryRepo) ListPendingForApprover(ctx context.Context, approverID int64) ([]approval.PendingItem, error) {
	return nil, nil
}
func (mockQueryRepo) GetChainRows(ctx context.Context, expenseID int64) ([]approval.ChainRow, error) {
	return nil, nil
}

type mockNormalizer struct{}

func (mockNormalizer) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	return amount, nil
}

func newTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	Expect(err).NotTo(HaveOccurred())
	return db
}

var _ = Describe("Admin configuration", func() {
	var (
		slots     *mockSlotRepo
		approvers *mockApproverRepo
		rules     *mockRuleRepo
		users     *mockUserLookup
		svc       *approval.Service
		ctx       = context.Background()
	)

	BeforeEach(func() {
		slots = &mockSlotRepo{pendingFor: map[int64]bool{}}
		approvers = newMockApproverRepo()
		rules = &mockRuleRepo{}
		users = &mockUserLookup{
			inCompany:      map[int64]bool{10: true},
			active:         map[int64]bool{10: true},
			managerOrAdmin: map[int64]bool{10: true},
		}
		svc = approval.NewService(newTestDB(), slots, approvers, rules, mockQueryRepo{}, users, mockCompanyLookup{}, mockNormalizer{})
	})

	Describe("AddApprover", func() {
		It("inserts a new active roster row for a valid manager", func() {
			a, err := svc.AddApprover(ctx, 1, 10, "finance", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.ID).To(BeNumerically(">", 0))
			Expect(a.Active).To(BeTrue())
		})

		It("rejects a user outside the company", func() {
			_, err := svc.AddApprover(ctx, 1, 99, "finance", 1)
			Expect(err).To(HaveOccurred())
		})

		It("rejects an inactive user", func() {
			users.active[10] = false
			_, err := svc.AddApprover(ctx, 1, 10, "finance", 1)
			Expect(err).To(HaveOccurred())
		})

		It("rejects an employee (neither manager nor admin)", func() {
			users.managerOrAdmin[10] = false
			_, err := svc.AddApprover(ctx, 1, 10, "finance", 1)
			Expect(err).To(HaveOccurred())
		})

		It("rejects a duplicate user+role", func() {
			_, err := svc.AddApprover(ctx, 1, 10, "finance", 1)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.AddApprover(ctx, 1, 10, "finance", 2)
			Expect(err).To(Equal(internal.ErrDuplicateApprover))
		})

		It("rejects an already-occupied sequence", func() {
			_, err := svc.AddApprover(ctx, 1, 10, "finance", 1)
			Expect(err).NotTo(HaveOccurred())

			users.inCompany[11] = true
			users.active[11] = true
			users.managerOrAdmin[11] = true
			_, err = svc.AddApprover(ctx, 1, 11, "legal", 1)
			Expect(err).To(Equal(internal.ErrSequenceOccupied))
		})
	})

	Describe("UpdateApproverSequence", func() {
		It("swaps two approvers' sequences", func() {
			a1, err := svc.AddApprover(ctx, 1, 10, "finance", 1)
			Expect(err).NotTo(HaveOccurred())

			users.inCompany[11] = true
			users.active[11] = true
			users.managerOrAdmin[11] = true
			a2, err := svc.AddApprover(ctx, 1, 11, "legal", 2)
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.UpdateApproverSequence(ctx, a1.ID, 2)).To(Succeed())

			got1, _ := svc.ListApprovers(ctx, 1)
			var seq1, seq2 int
			for _, a := range got1 {
				if a.ID == a1.ID {
					seq1 = a.Sequence
				}
				if a.ID == a2.ID {
					seq2 = a.Sequence
				}
			}
			Expect(seq1).To(Equal(2))
			Expect(seq2).To(Equal(1))
		})

		It("errors for an unknown approver", func() {
			err := svc.UpdateApproverSequence(ctx, 99999, 2)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RemoveApprover", func() {
		It("deactivates an approver with no pending slot", func() {
			a, err := svc.AddApprover(ctx, 1, 10, "finance", 1)
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.RemoveApprover(ctx, a.ID)).To(Succeed())

			got, err := approvers.GetByID(ctx, a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Active).To(BeFalse())
		})

		It("refuses to remove an approver with a pending slot", func() {
			a, err := svc.AddApprover(ctx, 1, 10, "finance", 1)
			Expect(err).NotTo(HaveOccurred())
			slots.pendingFor[10] = true

			err = svc.RemoveApprover(ctx, a.ID)
			Expect(err).To(Equal(internal.ErrPendingWorkBlocks))
		})
	})

	Describe("SetApprovalRule", func() {
		It("deactivates a prior rule of the same type and inserts the new one", func() {
			cfg1 := approval.RuleConfig{Percentage: &approval.PercentageConfig{Percentage: 50, TotalApprovers: 2}}
			_, err := svc.SetApprovalRule(ctx, 1, approval.RuleTypePercentage, cfg1)
			Expect(err).NotTo(HaveOccurred())

			cfg2 := approval.RuleConfig{Percentage: &approval.PercentageConfig{Percentage: 75, TotalApprovers: 4}}
			latest, err := svc.SetApprovalRule(ctx, 1, approval.RuleTypePercentage, cfg2)
			Expect(err).NotTo(HaveOccurred())

			all, err := svc.ListRules(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))

			active, err := rules.ListActive(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(HaveLen(1))
			Expect(active[0].ID).To(Equal(latest.ID))
		})

		It("rejects an invalid config for the rule family", func() {
			_, err := svc.SetApprovalRule(ctx, 1, approval.RuleTypePercentage, approval.RuleConfig{})
			Expect(err).To(HaveOccurred())
		})
	})
})
