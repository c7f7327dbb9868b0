package requisition

import (
	"context"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emsspace/internal/domain/approval"
	"emsspace/internal/domain/auth"
	"emsspace/internal/events"
)

type fakeStore struct {
	seq     int
	records map[string]Requisition
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]Requisition{}}
}

func (f *fakeStore) Get(_ context.Context, id string) (Requisition, error) {
	req, ok := f.records[id]
	if !ok {
		return Requisition{}, ErrNotFound
	}
	return req, nil
}

func (f *fakeStore) List(_ context.Context, scope approval.ListScope, limit, offset int) ([]Requisition, int, error) {
	if scope.None {
		return nil, 0, nil
	}
	var out []Requisition
	for _, req := range f.records {
		switch {
		case scope.All:
		case scope.EmployeeID != "":
			if req.EmployeeID != scope.EmployeeID {
				continue
			}
		case scope.DepartmentID != "":
			if req.CompanyID != scope.CompanyID || req.DepartmentID != scope.DepartmentID {
				continue
			}
		default:
			if req.CompanyID != scope.CompanyID {
				continue
			}
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeStore) Insert(_ context.Context, req Requisition) (Requisition, error) {
	f.seq++
	req.ID = "req-" + strconv.Itoa(f.seq)
	f.records[req.ID] = req
	return req, nil
}

func (f *fakeStore) UpdateContent(_ context.Context, id string, input EditInput) (Requisition, error) {
	req, ok := f.records[id]
	if !ok {
		return Requisition{}, ErrNotFound
	}
	req.Type = input.Type
	req.Title = input.Title
	req.Description = input.Description
	req.Amount = input.Amount
	f.records[id] = req
	return req, nil
}

func (f *fakeStore) ApplyTransition(_ context.Context, id string, stamps approval.Stamps) (Requisition, error) {
	req, ok := f.records[id]
	if !ok {
		return Requisition{}, ErrNotFound
	}
	req.Status = stamps.Status
	req.RejectionReason = stamps.RejectionReason
	req.UpdatedAt = stamps.UpdatedAt
	f.records[id] = req
	return req, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if _, ok := f.records[id]; !ok {
		return ErrNotFound
	}
	delete(f.records, id)
	return nil
}

type fakePINs struct {
	pins map[string]string
}

func (f *fakePINs) ApprovalPIN(_ context.Context, userID string) (string, error) {
	return f.pins[userID], nil
}

var (
	employeeActor = auth.Actor{UserID: "u-emp", EmployeeID: "e1", FullName: "Eve Employee", Role: auth.RoleEmployee, CompanyID: "C1", DepartmentID: "D1"}
	leaderActor   = auth.Actor{UserID: "u-tl", EmployeeID: "tl1", FullName: "Lena Leader", Role: auth.RoleTeamLeader, CompanyID: "C1", DepartmentID: "D1"}
	managerActor  = auth.Actor{UserID: "u-mgr", EmployeeID: "m1", FullName: "Mora Manager", Role: auth.RoleManager, CompanyID: "C1", DepartmentID: "D0"}
)

func newTestService(t *testing.T) (*Service, *fakeStore, *fakePINs) {
	t.Helper()
	store := newFakeStore()
	pins := &fakePINs{pins: map[string]string{"u-tl": "4321", "u-mgr": "9999"}}
	return NewService(store, pins, events.NewBroadcaster(8)), store, pins
}

func submit(t *testing.T, svc *Service) Requisition {
	t.Helper()
	req, err := svc.Create(context.Background(), employeeActor, CreateInput{
		Type:  TypePurchase,
		Title: "Standing desk",
	})
	require.NoError(t, err)
	require.Equal(t, approval.StatusPendingLeader, req.Status)
	return req
}

func TestFullApprovalChain(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	req := submit(t, svc)

	afterLeader, err := svc.SubmitAction(ctx, leaderActor, req.ID, approval.ActionApprove, ActionPayload{PIN: "4321"})
	require.NoError(t, err)
	assert.Equal(t, approval.StatusPendingManager, afterLeader.Status)

	afterManager, err := svc.SubmitAction(ctx, managerActor, req.ID, approval.ActionApprove, ActionPayload{PIN: "9999"})
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, afterManager.Status)

	// Terminal: nobody can act anymore.
	_, err = svc.SubmitAction(ctx, managerActor, req.ID, approval.ActionApprove, ActionPayload{PIN: "9999"})
	assert.ErrorIs(t, err, approval.ErrNotAllowed)
}

func TestStaleDuplicateApproveFailsAuthorization(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	req := submit(t, svc)

	_, err := svc.SubmitAction(ctx, leaderActor, req.ID, approval.ActionApprove, ActionPayload{PIN: "4321"})
	require.NoError(t, err)

	// A second leader racing on a stale card: re-evaluated against the fresh
	// record, the approve is refused rather than re-applied.
	secondLeader := auth.Actor{UserID: "u-tl2", EmployeeID: "tl2", Role: auth.RoleTeamLeader, CompanyID: "C1", DepartmentID: "D1"}
	_, err = svc.SubmitAction(ctx, secondLeader, req.ID, approval.ActionApprove, ActionPayload{PIN: ""})
	assert.ErrorIs(t, err, approval.ErrNotAllowed)
}

func TestWrongPINLeavesStatusUntouched(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	req := submit(t, svc)

	_, err := svc.SubmitAction(ctx, leaderActor, req.ID, approval.ActionApprove, ActionPayload{PIN: "0000"})
	assert.ErrorIs(t, err, approval.ErrPINMismatch)
	assert.Equal(t, approval.StatusPendingLeader, store.records[req.ID].Status)
}

func TestMissingPINIsConfigurationError(t *testing.T) {
	svc, store, pins := newTestService(t)
	ctx := context.Background()
	req := submit(t, svc)

	delete(pins.pins, "u-tl")
	_, err := svc.SubmitAction(ctx, leaderActor, req.ID, approval.ActionApprove, ActionPayload{})
	assert.ErrorIs(t, err, approval.ErrPINNotSet)
	assert.Equal(t, approval.StatusPendingLeader, store.records[req.ID].Status)
}

func TestRejectWithoutReasonIsValidationError(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	req := submit(t, svc)

	_, err := svc.SubmitAction(ctx, leaderActor, req.ID, approval.ActionReject, ActionPayload{PIN: "4321", Reason: "  "})
	assert.ErrorIs(t, err, approval.ErrReasonRequired)
	assert.Equal(t, approval.StatusPendingLeader, store.records[req.ID].Status)

	rejected, err := svc.SubmitAction(ctx, leaderActor, req.ID, approval.ActionReject, ActionPayload{PIN: "4321", Reason: "Budget exceeded"})
	require.NoError(t, err)
	assert.Equal(t, approval.StatusRejected, rejected.Status)
	assert.Equal(t, "Budget exceeded", rejected.RejectionReason)
}

func TestOutOfScopeRecordReadsAsAbsent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	req := submit(t, svc)

	otherDeptLeader := auth.Actor{UserID: "u-tl3", EmployeeID: "tl3", Role: auth.RoleTeamLeader, CompanyID: "C1", DepartmentID: "D2"}
	_, err := svc.Get(ctx, otherDeptLeader, req.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SubmitAction(ctx, otherDeptLeader, req.ID, approval.ActionApprove, ActionPayload{PIN: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTeamLeaderSubmissionSkipsLeaderStage(t *testing.T) {
	svc, _, _ := newTestService(t)
	req, err := svc.Create(context.Background(), leaderActor, CreateInput{Type: TypeTravel, Title: "Conference trip"})
	require.NoError(t, err)
	assert.Equal(t, approval.StatusPendingManager, req.Status)
}

func TestOwnerEditWindowClosesOnEscalation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	req := submit(t, svc)

	edited, err := svc.Edit(ctx, employeeActor, req.ID, EditInput{Type: TypeExpense, Title: "Standing desk, revised"})
	require.NoError(t, err)
	assert.Equal(t, "Standing desk, revised", edited.Title)

	_, err = svc.SubmitAction(ctx, leaderActor, req.ID, approval.ActionApprove, ActionPayload{PIN: "4321"})
	require.NoError(t, err)

	_, err = svc.Edit(ctx, employeeActor, req.ID, EditInput{Type: TypeExpense, Title: "Too late"})
	assert.ErrorIs(t, err, approval.ErrNotAllowed)
}

func TestListScopesPerRole(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	store.records["a"] = Requisition{ID: "a", EmployeeID: "e1", CompanyID: "C1", DepartmentID: "D1", Status: approval.StatusPendingLeader}
	store.records["b"] = Requisition{ID: "b", EmployeeID: "e2", CompanyID: "C1", DepartmentID: "D2", Status: approval.StatusPendingManager}
	store.records["c"] = Requisition{ID: "c", EmployeeID: "e3", CompanyID: "C2", DepartmentID: "D1", Status: approval.StatusPendingLeader}

	own, _, err := svc.List(ctx, employeeActor, 10, 0)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	dept, _, err := svc.List(ctx, leaderActor, 10, 0)
	require.NoError(t, err)
	assert.Len(t, dept, 1)

	company, _, err := svc.List(ctx, managerActor, 10, 0)
	require.NoError(t, err)
	assert.Len(t, company, 2)

	all, _, err := svc.List(ctx, auth.Actor{UserID: "u-adm", Role: auth.RoleAdmin}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, _, err := svc.List(ctx, auth.Actor{UserID: "u-fin", Role: auth.RoleFinanceManager, CompanyID: "C1"}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteOnlyForOwnerBeforeEscalation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	req := submit(t, svc)

	assert.ErrorIs(t, svc.Delete(ctx, leaderActor, req.ID), approval.ErrNotAllowed)

	_, err := svc.SubmitAction(ctx, leaderActor, req.ID, approval.ActionApprove, ActionPayload{PIN: "4321"})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Delete(ctx, employeeActor, req.ID), approval.ErrNotAllowed)

	second := submit(t, svc)
	assert.NoError(t, svc.Delete(ctx, employeeActor, second.ID))
	_, err = svc.Get(ctx, employeeActor, second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
