package model

// Participant 参与者表，对应 participants
type Participant struct {
	ParticipantID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"participant_id"`
	GroupID       string  `gorm:"type:uuid;not null;index"                       json:"group_id"`
	Name          string  `gorm:"type:varchar(255);not null"                     json:"name"`
	Contact       *string `gorm:"type:varchar(20)"                               json:"contact,omitempty"` // 规范化后的 WhatsApp 号码
	IsActive      bool    `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Participant) TableName() string { return "participants" }
