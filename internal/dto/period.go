package dto

// ── 周期模块 DTO ──

// OpenPeriodRequest 开启周期请求
type OpenPeriodRequest struct {
	StartDate string `json:"start_date" binding:"required"` // "2025-01-05"
}

// OpenPeriodResponse 开启周期响应
type OpenPeriodResponse struct {
	PeriodID        string `json:"period_id"`
	PeriodNumber    int    `json:"period_number"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	AssignmentCount int    `json:"assignment_count"`
}

// LockPeriodResponse 锁定周期响应
type LockPeriodResponse struct {
	PeriodID     string       `json:"period_id"`
	Status       string       `json:"status"`
	LockedAt     string       `json:"locked_at"`
	StatusCounts StatusCounts `json:"status_counts"`
}

// PeriodResponse 周期信息响应
type PeriodResponse struct {
	ID           string       `json:"id"`
	GroupID      string       `json:"group_id"`
	PeriodNumber int          `json:"period_number"`
	StartDate    string       `json:"start_date"`
	EndDate      string       `json:"end_date"`
	Status       string       `json:"status"`
	LockedAt     string       `json:"locked_at,omitempty"`
	StatusCounts StatusCounts `json:"status_counts"`
}

// AssignmentResponse 分配（进度）信息
type AssignmentResponse struct {
	ID              string `json:"id"`
	PeriodID        string `json:"period_id"`
	ParticipantID   string `json:"participant_id"`
	ParticipantName string `json:"participant_name"`
	SlotNumber      int    `json:"slot_number"`
	Status          string `json:"status"`
	MissedStreak    int    `json:"missed_streak"`
	ReminderLink    string `json:"reminder_link,omitempty"`
}

// SlotGroup 同一槽位的分配
type SlotGroup struct {
	SlotNumber  int                  `json:"slot_number"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// PeriodDetailResponse 周期详情：分配按槽位分组
type PeriodDetailResponse struct {
	PeriodResponse
	Slots []SlotGroup `json:"slots"`
}

// ── 进度 ──

// UpdateProgressRequest 更新进度状态请求
type UpdateProgressRequest struct {
	Status string `json:"status" binding:"required"` // pending | completed | missed
}

// UpdateSlotRequest 调整槽位请求
type UpdateSlotRequest struct {
	SlotNumber int `json:"slot_number" binding:"required"`
}
