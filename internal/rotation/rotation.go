// Package rotation 实现槽位轮换的纯函数规则：负载均衡选槽、周期间轮换与进度状态校验。
//
// 本包不依赖存储，所有函数均为确定性的，可在事务内外安全调用。
package rotation

import (
	"errors"
	"fmt"
)

// SlotCount 固定的槽位数量，槽位编号为 1..SlotCount
const SlotCount = 30

var (
	ErrUnknownStatus = errors.New("unknown progress status")
	ErrPeriodLocked  = errors.New("period is locked")
)

// Status 分配进度状态
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusMissed    Status = "missed"
)

// ParseStatus 解析进度状态，未知值返回错误
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusCompleted, StatusMissed:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// ValidSlot 判断槽位编号是否在 1..SlotCount 内
func ValidSlot(slot int) bool {
	return slot >= 1 && slot <= SlotCount
}

// ────────────────────── SlotBalancer ──────────────────────

// Occupancy 周期内各槽位的占用计数，下标 0 对应槽位 1。
// 未出现的槽位计数为 0。
type Occupancy [SlotCount]int

// NewOccupancy 由 slot→count 映射构建占用快照，忽略越界槽位
func NewOccupancy(counts map[int]int) Occupancy {
	var o Occupancy
	for slot, n := range counts {
		if ValidSlot(slot) {
			o[slot-1] = n
		}
	}
	return o
}

// Count 返回指定槽位的占用数
func (o *Occupancy) Count(slot int) int {
	if !ValidSlot(slot) {
		return 0
	}
	return o[slot-1]
}

// Add 将一次选择计入快照，供同一操作内的后续选择使用
func (o *Occupancy) Add(slot int) {
	if ValidSlot(slot) {
		o[slot-1]++
	}
}

// LeastLoadedSlot 返回占用最少的槽位；并列时取编号最小者
func LeastLoadedSlot(o Occupancy) int {
	best := 1
	for slot := 2; slot <= SlotCount; slot++ {
		if o.Count(slot) < o.Count(best) {
			best = slot
		}
	}
	return best
}

// RoundRobinSlot 首个周期按参与者顺序循环分配：index 0 → 1 … index 29 → 30, index 30 → 1
func RoundRobinSlot(index int) int {
	return index%SlotCount + 1
}

// ────────────────────── AssignmentRotator ──────────────────────

// NextSlot 循环推进槽位，SlotCount 之后回到 1
func NextSlot(slot int) int {
	return slot%SlotCount + 1
}

// Rotate 根据上一周期的分配计算下一周期的槽位与连续缺勤数。
//
// 上期 missed：保持原槽位，streak+1；否则槽位推进一位，streak 归零。
func Rotate(prevSlot int, prevStatus Status, prevStreak int) (slot, streak int) {
	if prevStatus == StatusMissed {
		return prevSlot, prevStreak + 1
	}
	return NextSlot(prevSlot), 0
}

// ────────────────────── ProgressStatusMachine ──────────────────────

// Transition 进度状态变更的结果
type Transition struct {
	Status      Status
	ResetStreak bool
}

// ValidateTransition 校验状态变更。周期锁定后不允许任何变更；
// 活跃周期内任意状态间均可互转，变为 completed 时连续缺勤清零。
func ValidateTransition(periodLocked bool, to string) (Transition, error) {
	if periodLocked {
		return Transition{}, ErrPeriodLocked
	}
	st, err := ParseStatus(to)
	if err != nil {
		return Transition{}, err
	}
	return Transition{Status: st, ResetStreak: st == StatusCompleted}, nil
}

