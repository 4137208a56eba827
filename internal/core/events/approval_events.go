package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeApprovalDecided = "approval.decided"
)

// ApprovalAuditEvent records a single approve/reject decision against an
// approval slot, independent of whether that decision made the owning
// expense terminal.
type ApprovalAuditEvent struct {
	BaseEvent
	ExpenseID  int64  `json:"expense_id"`
	SlotID     int64  `json:"slot_id"`
	ApproverID int64  `json:"approver_id"`
	Verdict    string `json:"verdict"`
	Comment    string `json:"comment,omitempty"`
	Terminal   bool   `json:"terminal"`
}

func NewApprovalAuditEvent(expenseID, slotID, approverID int64, verdict, comment string, terminal bool) *ApprovalAuditEvent {
	return &ApprovalAuditEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeApprovalDecided,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"expense_id":  expenseID,
				"slot_id":     slotID,
				"approver_id": approverID,
				"verdict":     verdict,
				"terminal":    terminal,
			},
		},
		ExpenseID:  expenseID,
		SlotID:     slotID,
		ApproverID: approverID,
		Verdict:    verdict,
		Comment:    comment,
		Terminal:   terminal,
	}
}
