package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/projectnuraya/tilawah-tracker/internal/model"
	"github.com/projectnuraya/tilawah-tracker/internal/rotation"
)

// StatusCounts 周期内各进度状态的分配数量
type StatusCounts struct {
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Missed    int `json:"missed"`
}

// Total 分配总数
func (s StatusCounts) Total() int { return s.Completed + s.Pending + s.Missed }

// Add 按状态累加一条分配
func (s *StatusCounts) Add(status string, n int) {
	switch rotation.Status(status) {
	case rotation.StatusCompleted:
		s.Completed += n
	case rotation.StatusPending:
		s.Pending += n
	case rotation.StatusMissed:
		s.Missed += n
	}
}

// AssignmentRepository 槽位分配数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	// GetByID 读取分配并预加载参与者
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	// ListByPeriod 预加载参与者，按槽位、创建时间排序
	ListByPeriod(ctx context.Context, periodID string) ([]model.Assignment, error)
	// ListByParticipant 参与者历史分配，按创建时间倒序
	ListByParticipant(ctx context.Context, participantID string, limit int) ([]model.Assignment, error)
	// SlotOccupancy 周期内各槽位的分配数量
	SlotOccupancy(ctx context.Context, periodID string) (map[int]int, error)
	// MarkPendingAsMissed 将周期内 pending 分配批量改为 missed，不修改 missed_streak
	MarkPendingAsMissed(ctx context.Context, periodID string) (int64, error)
	CountByStatus(ctx context.Context, periodID string) (StatusCounts, error)
	CountByStatusForPeriods(ctx context.Context, periodIDs []string) (map[string]StatusCounts, error)
	UpdateStatus(ctx context.Context, id, status string, resetStreak bool) error
	UpdateSlot(ctx context.Context, id string, slot int) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Participant").
		Where("assignment_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) ListByPeriod(ctx context.Context, periodID string) ([]model.Assignment, error) {
	var list []model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Participant").
		Where("period_id = ?", periodID).
		Order("slot_number ASC, created_at ASC, assignment_id ASC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ListByParticipant(ctx context.Context, participantID string, limit int) ([]model.Assignment, error) {
	var list []model.Assignment
	query := r.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&list).Error
	return list, err
}

func (r *assignmentRepo) SlotOccupancy(ctx context.Context, periodID string) (map[int]int, error) {
	var rows []struct {
		SlotNumber int
		Count      int
	}
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Select("slot_number, COUNT(*) AS count").
		Where("period_id = ?", periodID).
		Group("slot_number").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	occ := make(map[int]int, len(rows))
	for _, row := range rows {
		occ[row.SlotNumber] = row.Count
	}
	return occ, nil
}

func (r *assignmentRepo) MarkPendingAsMissed(ctx context.Context, periodID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("period_id = ? AND status = ?", periodID, string(rotation.StatusPending)).
		Updates(map[string]interface{}{
			"status":     string(rotation.StatusMissed),
			"updated_at": gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

func (r *assignmentRepo) CountByStatus(ctx context.Context, periodID string) (StatusCounts, error) {
	m, err := r.CountByStatusForPeriods(ctx, []string{periodID})
	if err != nil {
		return StatusCounts{}, err
	}
	return m[periodID], nil
}

func (r *assignmentRepo) CountByStatusForPeriods(ctx context.Context, periodIDs []string) (map[string]StatusCounts, error) {
	result := make(map[string]StatusCounts, len(periodIDs))
	if len(periodIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		PeriodID string
		Status   string
		Count    int
	}
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Select("period_id, status, COUNT(*) AS count").
		Where("period_id IN ?", periodIDs).
		Group("period_id, status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		c := result[row.PeriodID]
		c.Add(row.Status, row.Count)
		result[row.PeriodID] = c
	}
	return result, nil
}

func (r *assignmentRepo) UpdateStatus(ctx context.Context, id, status string, resetStreak bool) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": gorm.Expr("NOW()"),
	}
	if resetStreak {
		updates["missed_streak"] = 0
	}
	return r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ?", id).
		Updates(updates).Error
}

func (r *assignmentRepo) UpdateSlot(ctx context.Context, id string, slot int) error {
	return r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ?", id).
		Updates(map[string]interface{}{
			"slot_number": slot,
			"updated_at":  gorm.Expr("NOW()"),
		}).Error
}
