package user_test

import (
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/user"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

type mockRepository struct {
	byID        map[int64]*user.User
	managerOf   map[int64]*int64
	created     *user.User
	createErr   error
	updateErr   error
	updatedMgr  *int64
	updatedUser int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{byID: make(map[int64]*user.User), managerOf: make(map[int64]*int64)}
}

func (m *mockRepository) GetByID(userID int64) (*user.User, error) {
	u, ok := m.byID[userID]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (m *mockRepository) GetManagerID(userID int64) (*int64, error) {
	return m.managerOf[userID], nil
}

func (m *mockRepository) Create(u *user.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = u
	return nil
}

func (m *mockRepository) UpdateManager(userID int64, managerID *int64) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedUser = userID
	m.updatedMgr = managerID
	return nil
}

func ptr(v int64) *int64 { return &v }

var _ = Describe("Service", func() {
	var (
		repo *mockRepository
		svc  *user.Service
	)

	BeforeEach(func() {
		repo = newMockRepository()
		svc = user.NewService(repo)
	})

	Describe("CreateUser", func() {
		It("hashes the password and persists an active user", func() {
			u, err := svc.CreateUser(1, user.CreateUserDTO{
				Email: "new@example.com", Name: "New User", Password: "longenough", Role: "employee",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(u.IsActive).To(BeTrue())
			Expect(u.CompanyID).To(Equal(int64(1)))
			Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("longenough"))).ToNot(HaveOccurred())
			Expect(repo.created).To(Equal(u))
		})

		It("rejects an invalid role", func() {
			_, err := svc.CreateUser(1, user.CreateUserDTO{
				Email: "new@example.com", Name: "New User", Password: "longenough", Role: "owner",
			})

			Expect(err).To(HaveOccurred())
		})

		It("rejects a short password", func() {
			_, err := svc.CreateUser(1, user.CreateUserDTO{
				Email: "new@example.com", Name: "New User", Password: "short", Role: "employee",
			})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SetManager", func() {
		It("assigns a manager with no cycle", func() {
			err := svc.SetManager(1, ptr(2))

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.updatedUser).To(Equal(int64(1)))
			Expect(*repo.updatedMgr).To(Equal(int64(2)))
		})

		It("clears the manager when nil is given", func() {
			err := svc.SetManager(1, nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.updatedMgr).To(BeNil())
		})

		It("rejects assigning a user as their own manager", func() {
			err := svc.SetManager(1, ptr(1))

			Expect(err).To(Equal(internal.ErrManagerCycle))
		})

		It("rejects a transitive cycle through the reporting chain", func() {
			// 2 already reports to 3, who reports to 1 -- assigning 1's
			// manager to 2 would close the loop.
			repo.managerOf[2] = ptr(3)
			repo.managerOf[3] = ptr(1)

			err := svc.SetManager(1, ptr(2))

			Expect(err).To(Equal(internal.ErrManagerCycle))
		})
	})
})

var _ = Describe("ValidateManagerAssignment", func() {
	It("allows a candidate with no existing chain", func() {
		lookup := func(id int64) (*int64, error) { return nil, nil }

		err := user.ValidateManagerAssignment(1, 2, 50, lookup)

		Expect(err).ToNot(HaveOccurred())
	})

	It("rejects self-assignment", func() {
		lookup := func(id int64) (*int64, error) { return nil, nil }

		err := user.ValidateManagerAssignment(1, 1, 50, lookup)

		Expect(err).To(Equal(user.ErrManagerCycle))
	})

	It("rejects a cycle found within the depth bound", func() {
		chain := map[int64]*int64{2: ptr(3), 3: ptr(1)}
		lookup := func(id int64) (*int64, error) { return chain[id], nil }

		err := user.ValidateManagerAssignment(1, 2, 50, lookup)

		Expect(err).To(Equal(user.ErrManagerCycle))
	})

	It("treats a chain that never resolves within maxDepth as a cycle", func() {
		lookup := func(id int64) (*int64, error) { return ptr(id + 1), nil }

		err := user.ValidateManagerAssignment(1, 2, 5, lookup)

		Expect(err).To(Equal(user.ErrManagerCycle))
	})

	It("propagates a lookup error", func() {
		boom := errors.New("lookup failed")
		lookup := func(id int64) (*int64, error) {
			if id == 2 {
				return ptr(5), nil
			}
			return nil, boom
		}

		err := user.ValidateManagerAssignment(1, 2, 50, lookup)

		Expect(err).To(Equal(boom))
	})
})
