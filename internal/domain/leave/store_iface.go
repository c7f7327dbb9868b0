package leave

import (
	"context"

	"emsspace/internal/domain/approval"
)

type StoreAPI interface {
	Get(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, scope approval.ListScope, limit, offset int) ([]LeaveRequest, int, error)
	Insert(ctx context.Context, req LeaveRequest) (LeaveRequest, error)
	UpdateContent(ctx context.Context, id string, input EditInput, totalDays int) (LeaveRequest, error)
	ApplyTransition(ctx context.Context, id string, stamps approval.Stamps, approverName string) (LeaveRequest, error)
	Delete(ctx context.Context, id string) error
}
