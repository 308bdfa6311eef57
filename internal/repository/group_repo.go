package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/projectnuraya/tilawah-tracker/internal/model"
	pkgerrors "github.com/projectnuraya/tilawah-tracker/pkg/errors"
)

// GroupSummary 组列表行：组信息及参与者、周期统计
type GroupSummary struct {
	model.Group
	ParticipantCount int  `gorm:"column:participant_count"`
	PeriodCount      int  `gorm:"column:period_count"`
	HasActivePeriod  bool `gorm:"column:has_active_period"`
}

// GroupRepository 组数据访问接口
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id string) (*model.Group, error)
	// GetByIDForUpdate 读取并对组行加排他锁，必须在事务内调用
	GetByIDForUpdate(ctx context.Context, id string) (*model.Group, error)
	GetByPublicToken(ctx context.Context, token string) (*model.Group, error)
	ExistsByPublicToken(ctx context.Context, token string) (bool, error)
	ListByCoordinator(ctx context.Context, coordinatorID string) ([]GroupSummary, error)
	Update(ctx context.Context, group *model.Group) error
	Delete(ctx context.Context, id string) error
}

type groupRepo struct {
	db *gorm.DB
}

// NewGroupRepo 创建 GroupRepository 实例
func NewGroupRepo(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) Create(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var g model.Group
	err := r.db.WithContext(ctx).
		Where("group_id = ?", id).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Group, error) {
	var g model.Group
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("group_id = ?", id).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) GetByPublicToken(ctx context.Context, token string) (*model.Group, error) {
	var g model.Group
	err := r.db.WithContext(ctx).
		Where("public_token = ?", token).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) ExistsByPublicToken(ctx context.Context, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Group{}).
		Where("public_token = ?", token).
		Count(&count).Error
	return count > 0, err
}

// ListByCoordinator 返回协调员管理的组，按创建时间倒序
func (r *groupRepo) ListByCoordinator(ctx context.Context, coordinatorID string) ([]GroupSummary, error) {
	var rows []GroupSummary
	err := r.db.WithContext(ctx).
		Model(&model.Group{}).
		Select(`groups.*,
			(SELECT COUNT(*) FROM participants p WHERE p.group_id = groups.group_id AND p.is_active) AS participant_count,
			(SELECT COUNT(*) FROM periods pe WHERE pe.group_id = groups.group_id) AS period_count,
			EXISTS (SELECT 1 FROM periods pa WHERE pa.group_id = groups.group_id AND pa.status = ?) AS has_active_period`,
			model.PeriodStatusActive).
		Joins("JOIN coordinator_groups cg ON cg.group_id = groups.group_id").
		Where("cg.coordinator_id = ?", coordinatorID).
		Order("groups.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

// Update 乐观锁更新组名
func (r *groupRepo) Update(ctx context.Context, group *model.Group) error {
	oldVersion := group.Version
	result := r.db.WithContext(ctx).
		Model(group).
		Where("group_id = ? AND version = ?", group.GroupID, oldVersion).
		Updates(map[string]interface{}{
			"name":       group.Name,
			"updated_by": group.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	group.Version = oldVersion + 1
	return nil
}

// Delete 删除组，参与者、周期与分配由外键级联删除
func (r *groupRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("group_id = ?", id).
		Delete(&model.Group{}).Error
}
