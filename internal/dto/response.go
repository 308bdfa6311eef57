package dto

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string              `json:"access_token"`
	RefreshToken string              `json:"refresh_token"`
	ExpiresIn    int                 `json:"expires_in"` // Access Token 有效期（秒）
	Coordinator  CoordinatorResponse `json:"coordinator"`
}

// CoordinatorResponse 协调员信息响应
type CoordinatorResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ── 通用 ──

// StatusCounts 周期内各进度状态数量
type StatusCounts struct {
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Missed    int `json:"missed"`
	Total     int `json:"total"`
}
