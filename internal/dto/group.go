package dto

// ── 组模块 DTO ──

// CreateGroupRequest 创建组请求
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,notblank,min=3,max=255"`
}

// UpdateGroupRequest 更新组请求
type UpdateGroupRequest struct {
	Name    *string `json:"name"    binding:"omitempty,min=3,max=255"`
	Version int     `json:"version" binding:"required,min=1"`
}

// GroupResponse 组信息响应
type GroupResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	PublicToken      string `json:"public_token"`
	PublicURL        string `json:"public_url,omitempty"`
	ParticipantCount int    `json:"participant_count"`
	PeriodCount      int    `json:"period_count"`
	HasActivePeriod  bool   `json:"has_active_period"`
	Version          int    `json:"version"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}
