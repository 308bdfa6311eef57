package dto

// ── 公开页 DTO（不含联系方式） ──

// PublicGroup 公开组信息
type PublicGroup struct {
	Name string `json:"name"`
}

// PublicOverviewResponse 公开进度总览
type PublicOverviewResponse struct {
	Group        PublicGroup      `json:"group"`
	ActivePeriod *PeriodResponse  `json:"active_period,omitempty"`
	History      []PeriodResponse `json:"history"`
}

// PublicPeriodResponse 公开周期详情
type PublicPeriodResponse struct {
	Group  PublicGroup          `json:"group"`
	Period PeriodDetailResponse `json:"period"`
}

// ── 分享 ──

// ShareRequest 生成分享文本请求
type ShareRequest struct {
	CustomMessage string `json:"custom_message"`
}

// ShareResponse 分享文本
type ShareResponse struct {
	Text string `json:"text"`
}

// Reminder 单个参与者的提醒链接
type Reminder struct {
	AssignmentID    string `json:"assignment_id"`
	ParticipantName string `json:"participant_name"`
	SlotNumber      int    `json:"slot_number"`
	Link            string `json:"link"`
}

// RemindersResponse 待完成参与者的提醒链接
type RemindersResponse struct {
	Reminders []Reminder `json:"reminders"`
	Count     int        `json:"count"`
}
