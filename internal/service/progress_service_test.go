package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/projectnuraya/tilawah-tracker/internal/dto"
	"github.com/projectnuraya/tilawah-tracker/internal/model"
	"github.com/projectnuraya/tilawah-tracker/internal/rotation"
)

type progressFixture struct {
	store    *memStore
	svc      ProgressService
	periods  PeriodService
	group    model.Group
	periodID string
	byName   map[string]model.Assignment
}

// setupTestProgressService 创建一个含 2 名参与者的活跃周期
func setupTestProgressService(t *testing.T) *progressFixture {
	t.Helper()
	store := newMemStore()
	repo := newMemRepository(store)
	f := &progressFixture{
		store:   store,
		svc:     NewProgressService(repo, nil, nil, zap.NewNop()),
		periods: NewPeriodService(testConfig(), repo, fixedClock{t: testNow}, nil, nil, zap.NewNop()),
	}
	f.group = store.seedGroup("Grup Progres")
	ps := []model.Participant{
		store.seedParticipant(f.group.GroupID, "Ahmad", true),
		store.seedParticipant(f.group.GroupID, "Budi", true),
	}
	contact := "+6281234567890"
	ps[0].Contact = &contact
	store.participants[ps[0].ParticipantID] = ps[0]

	f.periodID = openPeriod(t, f.periods, f.group.GroupID, testSunday).PeriodID
	f.byName = map[string]model.Assignment{}
	assignments := store.assignmentsOf(f.periodID)
	for _, p := range ps {
		f.byName[p.Name] = assignments[p.ParticipantID]
	}
	return f
}

func TestProgressService_SetStatus(t *testing.T) {
	f := setupTestProgressService(t)
	a := f.byName["Ahmad"]

	// 预置连续缺勤，验证 completed 清零
	a.MissedStreak = 3
	f.store.assignments[a.AssignmentID] = a

	resp, err := f.svc.SetStatus(context.Background(), a.AssignmentID, &dto.UpdateProgressRequest{Status: "missed"}, "coord-1")
	if err != nil {
		t.Fatalf("更新进度失败: %v", err)
	}
	if resp.Status != "missed" || resp.MissedStreak != 3 {
		t.Errorf("改为 missed 不应修改连续缺勤，实际=%s/%d", resp.Status, resp.MissedStreak)
	}
	if resp.ReminderLink != "" {
		t.Error("非 pending 状态不应生成提醒链接")
	}

	resp, err = f.svc.SetStatus(context.Background(), a.AssignmentID, &dto.UpdateProgressRequest{Status: "completed"}, "coord-1")
	if err != nil {
		t.Fatalf("更新进度失败: %v", err)
	}
	if resp.MissedStreak != 0 {
		t.Errorf("completed 应清零连续缺勤，实际=%d", resp.MissedStreak)
	}
	if got := f.store.assignmentsOf(f.periodID)[a.ParticipantID]; got.MissedStreak != 0 || got.Status != "completed" {
		t.Errorf("存储中的分配未更新: %+v", got)
	}

	resp, err = f.svc.SetStatus(context.Background(), a.AssignmentID, &dto.UpdateProgressRequest{Status: "pending"}, "coord-1")
	if err != nil {
		t.Fatalf("撤销为 pending 失败: %v", err)
	}
	if resp.ReminderLink == "" {
		t.Error("pending 且有联系方式时应生成提醒链接")
	}
}

func TestProgressService_SetStatus_Errors(t *testing.T) {
	f := setupTestProgressService(t)
	a := f.byName["Budi"]

	if _, err := f.svc.SetStatus(context.Background(), a.AssignmentID, &dto.UpdateProgressRequest{Status: "done"}, "coord-1"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("期望 ErrInvalidStatus，实际=%v", err)
	}
	if _, err := f.svc.SetStatus(context.Background(), "missing", &dto.UpdateProgressRequest{Status: "completed"}, "coord-1"); !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("期望 ErrAssignmentNotFound，实际=%v", err)
	}
}

func TestProgressService_LockedPeriodIsImmutable(t *testing.T) {
	f := setupTestProgressService(t)
	a := f.byName["Ahmad"]
	lockPeriod(t, f.periods, f.periodID)

	before := f.store.assignmentsOf(f.periodID)[a.ParticipantID]

	for _, status := range []string{"completed", "pending", "missed", "bogus"} {
		_, err := f.svc.SetStatus(context.Background(), a.AssignmentID, &dto.UpdateProgressRequest{Status: status}, "coord-1")
		if !errors.Is(err, ErrPeriodLockedEdit) {
			t.Errorf("状态 %q：期望 ErrPeriodLockedEdit，实际=%v", status, err)
		}
	}
	if _, err := f.svc.SetSlot(context.Background(), a.AssignmentID, &dto.UpdateSlotRequest{SlotNumber: 10}, "coord-1"); !errors.Is(err, ErrPeriodLockedEdit) {
		t.Errorf("期望 ErrPeriodLockedEdit，实际=%v", err)
	}

	after := f.store.assignmentsOf(f.periodID)[a.ParticipantID]
	if after.Status != before.Status || after.SlotNumber != before.SlotNumber || after.MissedStreak != before.MissedStreak {
		t.Errorf("锁定后分配不应改变: %+v -> %+v", before, after)
	}
	if after.Status != string(rotation.StatusMissed) {
		t.Errorf("锁定后 pending 应变为 missed，实际=%s", after.Status)
	}
}

func TestProgressService_SetSlot(t *testing.T) {
	f := setupTestProgressService(t)
	a := f.byName["Budi"]

	tests := []struct {
		name    string
		slot    int
		wantErr error
	}{
		{"槽位 0", 0, ErrInvalidSlot},
		{"槽位 31", 31, ErrInvalidSlot},
		{"槽位 30", 30, nil},
		{"与他人同槽", 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.svc.SetSlot(context.Background(), a.AssignmentID, &dto.UpdateSlotRequest{SlotNumber: tt.slot}, "coord-1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("期望错误 %v，实际=%v", tt.wantErr, err)
			}
			if tt.wantErr == nil && resp.SlotNumber != tt.slot {
				t.Errorf("期望槽位=%d，实际=%d", tt.slot, resp.SlotNumber)
			}
		})
	}

	gid, err := f.svc.GroupID(context.Background(), a.AssignmentID)
	if err != nil || gid != f.group.GroupID {
		t.Errorf("期望组 ID=%s，实际=%s err=%v", f.group.GroupID, gid, err)
	}
}
