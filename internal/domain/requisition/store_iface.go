package requisition

import (
	"context"

	"emsspace/internal/domain/approval"
)

type StoreAPI interface {
	Get(ctx context.Context, id string) (Requisition, error)
	List(ctx context.Context, scope approval.ListScope, limit, offset int) ([]Requisition, int, error)
	Insert(ctx context.Context, req Requisition) (Requisition, error)
	UpdateContent(ctx context.Context, id string, input EditInput) (Requisition, error)
	ApplyTransition(ctx context.Context, id string, stamps approval.Stamps) (Requisition, error)
	Delete(ctx context.Context, id string) error
}
