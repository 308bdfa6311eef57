package model

// Group 读经小组表，对应 groups
type Group struct {
	GroupID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	Name        string `gorm:"type:varchar(255);not null"                     json:"name"`
	PublicToken string `gorm:"type:varchar(64);not null;uniqueIndex"          json:"public_token"`
	VersionedModel
}

// TableName 指定表名
func (Group) TableName() string { return "groups" }
