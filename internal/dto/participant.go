package dto

// ── 参与者模块 DTO ──

// CreateParticipantRequest 添加参与者请求
type CreateParticipantRequest struct {
	Name    string  `json:"name"    binding:"required,notblank,min=2,max=255"`
	Contact *string `json:"contact" binding:"omitempty,whatsapp"`
}

// BulkCreateParticipantsRequest 批量添加参与者请求
type BulkCreateParticipantsRequest struct {
	Participants []CreateParticipantRequest `json:"participants" binding:"required,min=1,dive"`
}

// UpdateParticipantRequest 更新参与者请求；contact 传空字符串表示清除
type UpdateParticipantRequest struct {
	Name    *string `json:"name"    binding:"omitempty,min=2,max=255"`
	Contact *string `json:"contact" binding:"omitempty,whatsapp"`
}

// ParticipantResponse 参与者信息响应
type ParticipantResponse struct {
	ID           string `json:"id"`
	GroupID      string `json:"group_id"`
	Name         string `json:"name"`
	Contact      string `json:"contact,omitempty"`
	IsActive     bool   `json:"is_active"`
	ReminderLink string `json:"reminder_link,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// EnrollAssignment 入组时在当前活跃周期获得的分配
type EnrollAssignment struct {
	AssignmentID string `json:"assignment_id"`
	PeriodID     string `json:"period_id"`
	SlotNumber   int    `json:"slot_number"`
}

// EnrollResponse 添加参与者响应
type EnrollResponse struct {
	Participant ParticipantResponse `json:"participant"`
	Assignment  *EnrollAssignment   `json:"assignment,omitempty"`
}

// BulkEnrollResponse 批量添加响应
type BulkEnrollResponse struct {
	Participants []EnrollResponse `json:"participants"`
	Count        int              `json:"count"`
}

// ParticipantHistoryItem 参与者历史分配
type ParticipantHistoryItem struct {
	AssignmentID string `json:"assignment_id"`
	PeriodID     string `json:"period_id"`
	PeriodNumber int    `json:"period_number"`
	StartDate    string `json:"start_date"`
	SlotNumber   int    `json:"slot_number"`
	Status       string `json:"status"`
	MissedStreak int    `json:"missed_streak"`
}

// ParticipantDetailResponse 参与者详情
type ParticipantDetailResponse struct {
	ParticipantResponse
	History []ParticipantHistoryItem `json:"history"`
}
