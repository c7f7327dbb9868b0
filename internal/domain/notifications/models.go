package notifications

import "time"

const (
	TypeApprovalDecision = "approval_decision"
	TypeApprovalPending  = "approval_pending"
	TypeSystem           = "system"
)

type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
