package model

import "time"

// 周期状态
const (
	PeriodStatusActive = "active"
	PeriodStatusLocked = "locked"
)

// Period 周期表，对应 periods
type Period struct {
	PeriodID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"period_id"`
	GroupID      string     `gorm:"type:uuid;not null"                             json:"group_id"`
	PeriodNumber int        `gorm:"not null"                                       json:"period_number"`
	StartDate    time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate      time.Time  `gorm:"type:date;not null"                             json:"end_date"`
	Status       string     `gorm:"type:varchar(20);not null;default:'active'"     json:"status"` // active | locked
	LockedAt     *time.Time `gorm:""                                               json:"locked_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Period) TableName() string { return "periods" }

// IsLocked 周期是否已锁定
func (p *Period) IsLocked() bool { return p.Status == PeriodStatusLocked }
