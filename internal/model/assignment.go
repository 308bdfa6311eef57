package model

// Assignment 参与者在某周期的槽位分配，对应 assignments
//
// Status 取值见 rotation.Status（pending | completed | missed）。
type Assignment struct {
	AssignmentID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	ParticipantID string `gorm:"type:uuid;not null"                             json:"participant_id"`
	PeriodID      string `gorm:"type:uuid;not null"                             json:"period_id"`
	SlotNumber    int    `gorm:"type:smallint;not null"                         json:"slot_number"`
	Status        string `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	MissedStreak  int    `gorm:"not null;default:0"                             json:"missed_streak"`
	BaseModel

	// 关联
	Participant *Participant `gorm:"foreignKey:ParticipantID;references:ParticipantID" json:"participant,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }
