package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/projectnuraya/tilawah-tracker/internal/model"
)

// CoordinatorRepository 协调员数据访问接口
type CoordinatorRepository interface {
	Create(ctx context.Context, coordinator *model.Coordinator) error
	GetByID(ctx context.Context, id string) (*model.Coordinator, error)
	GetByEmail(ctx context.Context, email string) (*model.Coordinator, error)
	AddGroup(ctx context.Context, coordinatorID, groupID string) error
	HasGroup(ctx context.Context, coordinatorID, groupID string) (bool, error)
}

type coordinatorRepo struct {
	db *gorm.DB
}

// NewCoordinatorRepo 创建 CoordinatorRepository 实例
func NewCoordinatorRepo(db *gorm.DB) CoordinatorRepository {
	return &coordinatorRepo{db: db}
}

func (r *coordinatorRepo) Create(ctx context.Context, coordinator *model.Coordinator) error {
	return r.db.WithContext(ctx).Create(coordinator).Error
}

func (r *coordinatorRepo) GetByID(ctx context.Context, id string) (*model.Coordinator, error) {
	var c model.Coordinator
	err := r.db.WithContext(ctx).
		Where("coordinator_id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByEmail 邮箱大小写不敏感查询
func (r *coordinatorRepo) GetByEmail(ctx context.Context, email string) (*model.Coordinator, error) {
	var c model.Coordinator
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AddGroup 建立协调员与组的关联，已存在时忽略
func (r *coordinatorRepo) AddGroup(ctx context.Context, coordinatorID, groupID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CoordinatorGroup{CoordinatorID: coordinatorID, GroupID: groupID}).Error
}

func (r *coordinatorRepo) HasGroup(ctx context.Context, coordinatorID, groupID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CoordinatorGroup{}).
		Where("coordinator_id = ? AND group_id = ?", coordinatorID, groupID).
		Count(&count).Error
	return count > 0, err
}
