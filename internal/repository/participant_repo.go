package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/projectnuraya/tilawah-tracker/internal/model"
)

// ParticipantRepository 参与者数据访问接口
type ParticipantRepository interface {
	Create(ctx context.Context, participant *model.Participant) error
	GetByID(ctx context.Context, id string) (*model.Participant, error)
	// ListByGroup 按 created_at、participant_id 稳定排序
	ListByGroup(ctx context.Context, groupID string, includeInactive bool) ([]model.Participant, error)
	// ExistsByName 同组内名称大小写不敏感查重，excludeID 非空时排除该参与者
	ExistsByName(ctx context.Context, groupID, name, excludeID string) (bool, error)
	Update(ctx context.Context, participant *model.Participant) error
}

type participantRepo struct {
	db *gorm.DB
}

// NewParticipantRepo 创建 ParticipantRepository 实例
func NewParticipantRepo(db *gorm.DB) ParticipantRepository {
	return &participantRepo{db: db}
}

func (r *participantRepo) Create(ctx context.Context, participant *model.Participant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

func (r *participantRepo) GetByID(ctx context.Context, id string) (*model.Participant, error) {
	var p model.Participant
	err := r.db.WithContext(ctx).
		Where("participant_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participantRepo) ListByGroup(ctx context.Context, groupID string, includeInactive bool) ([]model.Participant, error) {
	var participants []model.Participant
	query := r.db.WithContext(ctx).Where("group_id = ?", groupID)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	err := query.
		Order("created_at ASC, participant_id ASC").
		Find(&participants).Error
	return participants, err
}

func (r *participantRepo) ExistsByName(ctx context.Context, groupID, name, excludeID string) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("group_id = ? AND LOWER(name) = ?", groupID, strings.ToLower(name))
	if excludeID != "" {
		query = query.Where("participant_id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *participantRepo) Update(ctx context.Context, participant *model.Participant) error {
	return r.db.WithContext(ctx).
		Model(participant).
		Where("participant_id = ?", participant.ParticipantID).
		Updates(map[string]interface{}{
			"name":       participant.Name,
			"contact":    participant.Contact,
			"is_active":  participant.IsActive,
			"updated_by": participant.UpdatedBy,
		}).Error
}
