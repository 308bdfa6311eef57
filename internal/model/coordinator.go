package model

import "time"

// Coordinator 协调员表，对应 coordinators
type Coordinator struct {
	CoordinatorID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"coordinator_id"`
	Name          string    `gorm:"type:varchar(255);not null"                     json:"name"`
	Email         string    `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash  string    `gorm:"type:varchar(255);not null"                     json:"-"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Coordinator) TableName() string { return "coordinators" }

// CoordinatorGroup 协调员与组的关联表，对应 coordinator_groups
type CoordinatorGroup struct {
	CoordinatorID string    `gorm:"type:uuid;primaryKey"               json:"coordinator_id"`
	GroupID       string    `gorm:"type:uuid;primaryKey"               json:"group_id"`
	JoinedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
}

// TableName 指定表名
func (CoordinatorGroup) TableName() string { return "coordinator_groups" }
