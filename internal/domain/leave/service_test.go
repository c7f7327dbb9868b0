package leave

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emsspace/internal/domain/approval"
	"emsspace/internal/domain/auth"
	"emsspace/internal/events"
)

type fakeStore struct {
	seq     int
	records map[string]LeaveRequest
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]LeaveRequest{}}
}

func (f *fakeStore) Get(_ context.Context, id string) (LeaveRequest, error) {
	req, ok := f.records[id]
	if !ok {
		return LeaveRequest{}, ErrNotFound
	}
	return req, nil
}

func (f *fakeStore) List(_ context.Context, scope approval.ListScope, limit, offset int) ([]LeaveRequest, int, error) {
	if scope.None {
		return nil, 0, nil
	}
	var out []LeaveRequest
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
	return out, len(out), nil
}

func (f *fakeStore) Insert(_ context.Context, req LeaveRequest) (LeaveRequest, error) {
	f.seq++
	req.ID = "lv-" + strconv.Itoa(f.seq)
	f.records[req.ID] = req
	return req, nil
}

func (f *fakeStore) UpdateContent(_ context.Context, id string, input EditInput, totalDays int) (LeaveRequest, error) {
	req, ok := f.records[id]
	if !ok {
		return LeaveRequest{}, ErrNotFound
	}
	req.LeaveType = input.LeaveType
	req.Title = input.Title
	req.Description = input.Description
	req.StartDate = input.StartDate
	req.EndDate = input.EndDate
	req.TotalDays = totalDays
	f.records[id] = req
	return req, nil
}

func (f *fakeStore) ApplyTransition(_ context.Context, id string, stamps approval.Stamps, approverName string) (LeaveRequest, error) {
	req, ok := f.records[id]
	if !ok {
		return LeaveRequest{}, ErrNotFound
	}
	req.Status = stamps.Status
	req.RejectionReason = stamps.RejectionReason
	req.UpdatedAt = stamps.UpdatedAt
	if stamps.LeaderStage {
		req.TeamLeaderApprovedBy = approverName
		at := stamps.UpdatedAt
		req.TeamLeaderApprovedAt = &at
	}
	if stamps.ManagerStage {
		req.ManagerApprovedBy = approverName
		at := stamps.UpdatedAt
		req.ManagerApprovedAt = &at
	}
	if stamps.Final {
		at := stamps.UpdatedAt
		req.FinalApprovedAt = &at
	}
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

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	pins := &fakePINs{pins: map[string]string{"u-tl": "4321", "u-mgr": "9999"}}
	return NewService(store, pins, events.NewBroadcaster(8)), store
}

func submit(t *testing.T, svc *Service) LeaveRequest {
	t.Helper()
	req, err := svc.Create(context.Background(), employeeActor, CreateInput{
		LeaveType: TypeAnnual,
		Title:     "Summer vacation",
		StartDate: time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, approval.StatusPendingLeader, req.Status)
	require.Equal(t, 5, req.TotalDays)
	return req
}

func TestApprovalStampsPerStage(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	req := submit(t, svc)

	afterLeader, err := svc.SubmitAction(ctx, leaderActor, req.ID, approval.ActionApprove, ActionPayload{PIN: "4321"})
	require.NoError(t, err)
	assert.Equal(t, approval.StatusPendingManager, afterLeader.Status)
	assert.Equal(t, "Lena Leader", afterLeader.TeamLeaderApprovedBy)
	require.NotNil(t, afterLeader.TeamLeaderApprovedAt)
	assert.Empty(t, afterLeader.ManagerApprovedBy)
	assert.Nil(t, afterLeader.FinalApprovedAt)

	final, err := svc.SubmitAction(ctx, managerActor, req.ID, approval.ActionApprove, ActionPayload{PIN: "9999"})
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, final.Status)
	assert.Equal(t, "Mora Manager", final.ManagerApprovedBy)
	require.NotNil(t, final.ManagerApprovedAt)
	require.NotNil(t, final.FinalApprovedAt)

	// Leader-stage stamps survive the manager stage untouched.
	assert.Equal(t, "Lena Leader", final.TeamLeaderApprovedBy)
}

func TestRejectionStampsReason(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	req := submit(t, svc)

	_, err := svc.SubmitAction(ctx, leaderActor, req.ID, approval.ActionReject, ActionPayload{PIN: "4321"})
	assert.ErrorIs(t, err, approval.ErrReasonRequired)

	rejected, err := svc.SubmitAction(ctx, leaderActor, req.ID, approval.ActionReject, ActionPayload{PIN: "4321", Reason: "Coverage gap that week"})
	require.NoError(t, err)
	assert.Equal(t, approval.StatusRejected, rejected.Status)
	assert.Equal(t, "Coverage gap that week", rejected.RejectionReason)

	_, err = svc.SubmitAction(ctx, managerActor, req.ID, approval.ActionApprove, ActionPayload{PIN: "9999"})
	assert.ErrorIs(t, err, approval.ErrNotAllowed)
}

func TestEditRecomputesFrozenDayCount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	req := submit(t, svc)

	edited, err := svc.Edit(ctx, employeeActor, req.ID, EditInput{
		LeaveType: TypeAnnual,
		Title:     "Summer vacation, shortened",
		StartDate: time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 7, 7, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, edited.TotalDays)
}

func TestInvalidDateRangeRejectedAtSubmission(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), employeeActor, CreateInput{
		LeaveType: TypeSick,
		Title:     "Backwards range",
		StartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestPINGateBlocksWrongCandidate(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	req := submit(t, svc)

	_, err := svc.SubmitAction(ctx, leaderActor, req.ID, approval.ActionApprove, ActionPayload{PIN: "1111"})
	assert.ErrorIs(t, err, approval.ErrPINMismatch)
	assert.Equal(t, approval.StatusPendingLeader, store.records[req.ID].Status)
	assert.Empty(t, store.records[req.ID].TeamLeaderApprovedBy)
}
