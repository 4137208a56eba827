package approval

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func approverAt(userID int64, sequence int) *Approver {
	return &Approver{UserID: userID, Sequence: sequence, Active: true}
}

var _ = Describe("assembleChain", func() {
	It("returns an empty chain when there is no manager and no approvers", func() {
		entries := assembleChain(nil, nil)
		Expect(entries).To(BeEmpty())
	})

	It("places the direct manager first", func() {
		managerID := int64(9)
		entries := assembleChain(&managerID, []*Approver{approverAt(2, 1), approverAt(3, 2)})

		Expect(entries).To(HaveLen(3))
		Expect(entries[0]).To(Equal(chainEntry{userID: 9, roleName: "manager"}))
		Expect(entries[1].userID).To(Equal(int64(2)))
		Expect(entries[2].userID).To(Equal(int64(3)))
	})

	It("sorts configured approvers by their sequence regardless of input order", func() {
		entries := assembleChain(nil, []*Approver{approverAt(3, 2), approverAt(2, 1)})

		Expect(entries).To(HaveLen(2))
		Expect(entries[0].userID).To(Equal(int64(2)))
		Expect(entries[1].userID).To(Equal(int64(3)))
	})

	It("does not duplicate the manager if they are also a configured approver", func() {
		managerID := int64(2)
		entries := assembleChain(&managerID, []*Approver{approverAt(2, 1), approverAt(3, 2)})

		Expect(entries).To(HaveLen(2))
		Expect(entries[0]).To(Equal(chainEntry{userID: 2, roleName: "manager"}))
		Expect(entries[1].userID).To(Equal(int64(3)))
	})

	It("builds a manager-only chain when no approvers are configured", func() {
		managerID := int64(9)
		entries := assembleChain(&managerID, nil)

		Expect(entries).To(Equal([]chainEntry{{userID: 9, roleName: "manager"}}))
	})
})
