package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxFunc 在单个事务内执行 fn；fn 返回错误时整体回滚
type TxFunc func(ctx context.Context, fn func(txRepo *Repository) error) error

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Coordinator CoordinatorRepository
	Group       GroupRepository
	Participant ParticipantRepository
	Period      PeriodRepository
	Assignment  AssignmentRepository

	// Tx 事务执行器，NewRepository 默认使用 gorm 事务；测试可替换为内存实现
	Tx TxFunc
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Coordinator: NewCoordinatorRepo(db),
		Group:       NewGroupRepo(db),
		Participant: NewParticipantRepo(db),
		Period:      NewPeriodRepo(db),
		Assignment:  NewAssignmentRepo(db),
		Tx: func(ctx context.Context, fn func(txRepo *Repository) error) error {
			return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				return fn(NewRepository(tx))
			})
		},
	}
}

// Transaction 在事务内执行 fn，txRepo 中的所有 Repository 共享同一事务连接
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	return r.Tx(ctx, fn)
}
