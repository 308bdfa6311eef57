package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/projectnuraya/tilawah-tracker/internal/model"
)

// PeriodRepository 周期数据访问接口
type PeriodRepository interface {
	Create(ctx context.Context, period *model.Period) error
	GetByID(ctx context.Context, id string) (*model.Period, error)
	// GetByIDForUpdate 读取并对周期行加排他锁，必须在事务内调用
	GetByIDForUpdate(ctx context.Context, id string) (*model.Period, error)
	// GetActiveByGroup 组内 active 周期，不存在时返回 gorm.ErrRecordNotFound
	GetActiveByGroup(ctx context.Context, groupID string) (*model.Period, error)
	// GetLatestByGroup 组内编号最大的周期，不存在时返回 gorm.ErrRecordNotFound
	GetLatestByGroup(ctx context.Context, groupID string) (*model.Period, error)
	// ListByGroup 按编号倒序；status 为空时不过滤，limit<=0 时不限制
	ListByGroup(ctx context.Context, groupID, status string, limit int) ([]model.Period, error)
	// MarkLocked 将 active 周期置为 locked，返回是否有行被更新
	MarkLocked(ctx context.Context, id string, lockedAt time.Time) (bool, error)
}

type periodRepo struct {
	db *gorm.DB
}

// NewPeriodRepo 创建 PeriodRepository 实例
func NewPeriodRepo(db *gorm.DB) PeriodRepository {
	return &periodRepo{db: db}
}

func (r *periodRepo) Create(ctx context.Context, period *model.Period) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *periodRepo) GetByID(ctx context.Context, id string) (*model.Period, error) {
	var p model.Period
	err := r.db.WithContext(ctx).
		Where("period_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *periodRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Period, error) {
	var p model.Period
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("period_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *periodRepo) GetActiveByGroup(ctx context.Context, groupID string) (*model.Period, error) {
	var p model.Period
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND status = ?", groupID, model.PeriodStatusActive).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *periodRepo) GetLatestByGroup(ctx context.Context, groupID string) (*model.Period, error) {
	var p model.Period
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("period_number DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *periodRepo) ListByGroup(ctx context.Context, groupID, status string, limit int) ([]model.Period, error) {
	var periods []model.Period
	query := r.db.WithContext(ctx).Where("group_id = ?", groupID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Order("period_number DESC").Find(&periods).Error
	return periods, err
}

func (r *periodRepo) MarkLocked(ctx context.Context, id string, lockedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Period{}).
		Where("period_id = ? AND status = ?", id, model.PeriodStatusActive).
		Updates(map[string]interface{}{
			"status":     model.PeriodStatusLocked,
			"locked_at":  lockedAt,
			"updated_at": lockedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
