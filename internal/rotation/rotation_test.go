package rotation

import (
	"errors"
	"testing"
)

func TestLeastLoadedSlot_EmptyPicksFirst(t *testing.T) {
	if got := LeastLoadedSlot(Occupancy{}); got != 1 {
		t.Errorf("空占用期望槽位 1，实际=%d", got)
	}
}

func TestLeastLoadedSlot_MinimumWithLowestTieBreak(t *testing.T) {
	counts := make(map[int]int)
	for s := 1; s <= SlotCount; s++ {
		counts[s] = 3
	}
	counts[17] = 1
	counts[9] = 1
	counts[25] = 2

	if got := LeastLoadedSlot(NewOccupancy(counts)); got != 9 {
		t.Errorf("期望槽位 9，实际=%d", got)
	}
}

func TestLeastLoadedSlot_MissingSlotsCountAsZero(t *testing.T) {
	// 只有 1..5 有人，6 为未出现槽位
	o := NewOccupancy(map[int]int{1: 1, 2: 1, 3: 1, 4: 1, 5: 1})
	if got := LeastLoadedSlot(o); got != 6 {
		t.Errorf("期望槽位 6，实际=%d", got)
	}
}

func TestLeastLoadedSlot_Deterministic(t *testing.T) {
	o := NewOccupancy(map[int]int{1: 2, 2: 0, 3: 0})
	first := LeastLoadedSlot(o)
	for i := 0; i < 10; i++ {
		if got := LeastLoadedSlot(o); got != first {
			t.Fatalf("相同输入结果不一致: %d vs %d", first, got)
		}
	}
}

func TestOccupancy_AddSpreadsEvenly(t *testing.T) {
	var o Occupancy
	for i := 0; i < 2*SlotCount+5; i++ {
		o.Add(LeastLoadedSlot(o))
	}
	for s := 1; s <= SlotCount; s++ {
		want := 2
		if s <= 5 {
			want = 3
		}
		if o.Count(s) != want {
			t.Errorf("槽位 %d 期望 %d，实际=%d", s, want, o.Count(s))
		}
	}
}

func TestNewOccupancy_IgnoresOutOfRange(t *testing.T) {
	o := NewOccupancy(map[int]int{0: 5, 31: 5, 2: 1})
	if o.Count(2) != 1 || o.Count(0) != 0 || o.Count(31) != 0 {
		t.Errorf("越界槽位应被忽略: %v", o)
	}
}

func TestRoundRobinSlot(t *testing.T) {
	tests := []struct{ index, want int }{
		{0, 1}, {1, 2}, {29, 30}, {30, 1}, {34, 5}, {59, 30}, {60, 1},
	}
	for _, tt := range tests {
		if got := RoundRobinSlot(tt.index); got != tt.want {
			t.Errorf("RoundRobinSlot(%d)=%d, want %d", tt.index, got, tt.want)
		}
	}
}

func TestRotate(t *testing.T) {
	tests := []struct {
		name       string
		slot       int
		status     Status
		streak     int
		wantSlot   int
		wantStreak int
	}{
		{"完成后推进", 5, StatusCompleted, 0, 6, 0},
		{"未完成也推进", 5, StatusPending, 0, 6, 0},
		{"缺勤保持槽位", 5, StatusMissed, 0, 5, 1},
		{"连续缺勤累加", 12, StatusMissed, 3, 12, 4},
		{"完成后清零", 12, StatusCompleted, 3, 13, 0},
		{"末位回绕", 30, StatusCompleted, 0, 1, 0},
		{"末位缺勤不回绕", 30, StatusMissed, 1, 30, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, streak := Rotate(tt.slot, tt.status, tt.streak)
			if slot != tt.wantSlot || streak != tt.wantStreak {
				t.Errorf("Rotate(%d,%s,%d)=(%d,%d), want (%d,%d)",
					tt.slot, tt.status, tt.streak, slot, streak, tt.wantSlot, tt.wantStreak)
			}
		})
	}
}

func TestRotate_AllSlotsStayInRange(t *testing.T) {
	for s := 1; s <= SlotCount; s++ {
		for _, st := range []Status{StatusPending, StatusCompleted, StatusMissed} {
			slot, _ := Rotate(s, st, 0)
			if !ValidSlot(slot) {
				t.Errorf("Rotate(%d,%s) 越界: %d", s, st, slot)
			}
		}
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name      string
		locked    bool
		to        string
		wantErr   error
		wantReset bool
	}{
		{"完成清零", false, "completed", nil, true},
		{"回到待完成", false, "pending", nil, false},
		{"标记缺勤", false, "missed", nil, false},
		{"未知状态", false, "done", ErrUnknownStatus, false},
		{"锁定后禁止", true, "completed", ErrPeriodLocked, false},
		{"锁定优先于未知状态", true, "bogus", ErrPeriodLocked, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := ValidateTransition(tt.locked, tt.to)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("期望错误 %v，实际=%v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("不应出错: %v", err)
			}
			if string(tr.Status) != tt.to || tr.ResetStreak != tt.wantReset {
				t.Errorf("结果不符: %+v", tr)
			}
		})
	}
}
