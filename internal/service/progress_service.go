package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/projectnuraya/tilawah-tracker/internal/dto"
	"github.com/projectnuraya/tilawah-tracker/internal/metrics"
	"github.com/projectnuraya/tilawah-tracker/internal/model"
	"github.com/projectnuraya/tilawah-tracker/internal/repository"
	"github.com/projectnuraya/tilawah-tracker/internal/rotation"
	pkgerrors "github.com/projectnuraya/tilawah-tracker/pkg/errors"
	"github.com/projectnuraya/tilawah-tracker/pkg/whatsapp"
)

// ── 进度模块业务错误 ──

var (
	ErrAssignmentNotFound = pkgerrors.NotFound("分配记录不存在")
	ErrInvalidStatus      = pkgerrors.Validation("进度状态无效，可选值：pending、completed、missed")
	ErrInvalidSlot        = pkgerrors.Validation("槽位编号须在 1-30 之间")
	ErrPeriodLockedEdit   = pkgerrors.Validation("周期已锁定，无法修改进度")
)

// ProgressService 进度业务接口
type ProgressService interface {
	// SetStatus 修改分配进度；completed 会清零连续缺勤数
	SetStatus(ctx context.Context, assignmentID string, req *dto.UpdateProgressRequest, callerID string) (*dto.AssignmentResponse, error)
	// SetSlot 手动调整槽位，不做均衡校验
	SetSlot(ctx context.Context, assignmentID string, req *dto.UpdateSlotRequest, callerID string) (*dto.AssignmentResponse, error)
	// GroupID 返回分配所属组，用于权限校验
	GroupID(ctx context.Context, assignmentID string) (string, error)
}

type progressService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	inv     *publicInvalidator
	logger  *zap.Logger
}

// NewProgressService 创建 ProgressService 实例
func NewProgressService(repo *repository.Repository, m *metrics.Metrics, inv *publicInvalidator, logger *zap.Logger) ProgressService {
	return &progressService{repo: repo, metrics: m, inv: inv, logger: logger}
}

// ────────────────────── SetStatus ──────────────────────

func (s *progressService) SetStatus(ctx context.Context, assignmentID string, req *dto.UpdateProgressRequest, callerID string) (*dto.AssignmentResponse, error) {
	var (
		assignment *model.Assignment
		groupID    string
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		a, period, err := loadForEdit(ctx, tx, assignmentID)
		if err != nil {
			return err
		}

		tr, err := rotation.ValidateTransition(period.IsLocked(), req.Status)
		if err != nil {
			return mapTransitionError(err)
		}

		if err := tx.Assignment.UpdateStatus(ctx, assignmentID, string(tr.Status), tr.ResetStreak); err != nil {
			return err
		}
		a.Status = string(tr.Status)
		if tr.ResetStreak {
			a.MissedStreak = 0
		}
		assignment, groupID = a, period.GroupID
		return nil
	})
	if err != nil {
		if pkgerrors.KindOf(err) == "" {
			s.logger.Error("更新进度失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		}
		return nil, err
	}

	s.metrics.ProgressUpdated(assignment.Status)
	s.inv.invalidate(ctx, groupID)
	resp := toAssignmentResponse(assignment)
	return &resp, nil
}

// ────────────────────── SetSlot ──────────────────────

func (s *progressService) SetSlot(ctx context.Context, assignmentID string, req *dto.UpdateSlotRequest, callerID string) (*dto.AssignmentResponse, error) {
	if !rotation.ValidSlot(req.SlotNumber) {
		return nil, ErrInvalidSlot
	}

	var (
		assignment *model.Assignment
		groupID    string
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		a, period, err := loadForEdit(ctx, tx, assignmentID)
		if err != nil {
			return err
		}
		if period.IsLocked() {
			return ErrPeriodLockedEdit
		}

		if err := tx.Assignment.UpdateSlot(ctx, assignmentID, req.SlotNumber); err != nil {
			return err
		}
		a.SlotNumber = req.SlotNumber
		assignment, groupID = a, period.GroupID
		return nil
	})
	if err != nil {
		if pkgerrors.KindOf(err) == "" {
			s.logger.Error("调整槽位失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		}
		return nil, err
	}

	s.inv.invalidate(ctx, groupID)
	resp := toAssignmentResponse(assignment)
	return &resp, nil
}

func (s *progressService) GroupID(ctx context.Context, assignmentID string) (string, error) {
	a, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrAssignmentNotFound
		}
		return "", err
	}
	period, err := s.repo.Period.GetByID(ctx, a.PeriodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrPeriodNotFound
		}
		return "", err
	}
	return period.GroupID, nil
}

// ── 内部辅助方法 ──

// loadForEdit 读取分配并锁定所属周期行，与 Lock 串行化
func loadForEdit(ctx context.Context, tx *repository.Repository, assignmentID string) (*model.Assignment, *model.Period, error) {
	a, err := tx.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrAssignmentNotFound
		}
		return nil, nil, err
	}
	period, err := tx.Period.GetByIDForUpdate(ctx, a.PeriodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrPeriodNotFound
		}
		return nil, nil, err
	}
	return a, period, nil
}

func mapTransitionError(err error) error {
	switch {
	case errors.Is(err, rotation.ErrPeriodLocked):
		return ErrPeriodLockedEdit
	case errors.Is(err, rotation.ErrUnknownStatus):
		return ErrInvalidStatus
	default:
		return err
	}
}

// toAssignmentResponse 仅对仍为 pending 且留有联系方式的参与者生成提醒链接
func toAssignmentResponse(a *model.Assignment) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		ID:            a.AssignmentID,
		PeriodID:      a.PeriodID,
		ParticipantID: a.ParticipantID,
		SlotNumber:    a.SlotNumber,
		Status:        a.Status,
		MissedStreak:  a.MissedStreak,
	}
	if a.Participant != nil {
		resp.ParticipantName = a.Participant.Name
		if a.Participant.Contact != nil && a.Status == string(rotation.StatusPending) {
			resp.ReminderLink = whatsapp.ReminderLink(*a.Participant.Contact, a.Participant.Name)
		}
	}
	return resp
}
