package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/projectnuraya/tilawah-tracker/config"
	"github.com/projectnuraya/tilawah-tracker/internal/dto"
	"github.com/projectnuraya/tilawah-tracker/internal/metrics"
	"github.com/projectnuraya/tilawah-tracker/internal/model"
	"github.com/projectnuraya/tilawah-tracker/internal/repository"
	"github.com/projectnuraya/tilawah-tracker/internal/rotation"
	pkgerrors "github.com/projectnuraya/tilawah-tracker/pkg/errors"
)

// ── 周期模块业务错误 ──

var (
	ErrGroupNotFound        = pkgerrors.NotFound("组不存在")
	ErrPeriodNotFound       = pkgerrors.NotFound("周期不存在")
	ErrInvalidStartDate     = pkgerrors.Validation("开始日期格式无效，应为 YYYY-MM-DD")
	ErrStartDateWeekday     = pkgerrors.Validation("周期开始日期不是规定的星期")
	ErrPeriodAlreadyActive  = pkgerrors.Validation("该组已有进行中的周期，请先锁定")
	ErrNoActiveParticipants = pkgerrors.Validation("该组没有活跃参与者")
	ErrPeriodAlreadyLocked  = pkgerrors.AlreadyLocked("周期已锁定")
)

// PeriodService 周期业务接口
type PeriodService interface {
	// Open 为组开启新周期，并为所有活跃参与者生成分配
	Open(ctx context.Context, groupID string, req *dto.OpenPeriodRequest, callerID string) (*dto.OpenPeriodResponse, error)
	// Lock 锁定周期：pending 改为 missed，此后进度不可修改
	Lock(ctx context.Context, periodID string, callerID string) (*dto.LockPeriodResponse, error)
	List(ctx context.Context, groupID string) ([]dto.PeriodResponse, error)
	Get(ctx context.Context, periodID string) (*dto.PeriodDetailResponse, error)
	// GroupID 返回周期所属组，用于权限校验
	GroupID(ctx context.Context, periodID string) (string, error)
}

type periodService struct {
	repo         *repository.Repository
	clock        Clock
	metrics      *metrics.Metrics
	inv          *publicInvalidator
	startWeekday time.Weekday
	logger       *zap.Logger
}

// NewPeriodService 创建 PeriodService 实例
func NewPeriodService(
	cfg *config.Config,
	repo *repository.Repository,
	clock Clock,
	m *metrics.Metrics,
	inv *publicInvalidator,
	logger *zap.Logger,
) PeriodService {
	wd, err := cfg.Rotation.Weekday()
	if err != nil {
		wd = time.Sunday
	}
	return &periodService{
		repo:         repo,
		clock:        clock,
		metrics:      m,
		inv:          inv,
		startWeekday: wd,
		logger:       logger,
	}
}

// ────────────────────── Open ──────────────────────

func (s *periodService) Open(ctx context.Context, groupID string, req *dto.OpenPeriodRequest, callerID string) (*dto.OpenPeriodResponse, error) {
	startDate, err := time.Parse(dateLayout, strings.TrimSpace(req.StartDate))
	if err != nil {
		return nil, ErrInvalidStartDate
	}
	if startDate.Weekday() != s.startWeekday {
		return nil, ErrStartDateWeekday
	}
	endDate := startDate.AddDate(0, 0, 6)

	var (
		period *model.Period
		plan   []plannedAssignment
	)
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// 锁定组行，串行化同组的开启与入组
		if _, err := tx.Group.GetByIDForUpdate(ctx, groupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return err
		}

		if _, err := tx.Period.GetActiveByGroup(ctx, groupID); err == nil {
			return ErrPeriodAlreadyActive
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		participants, err := tx.Participant.ListByGroup(ctx, groupID, false)
		if err != nil {
			return err
		}
		if len(participants) == 0 {
			return ErrNoActiveParticipants
		}

		number := 1
		var previous map[string]model.Assignment
		latest, err := tx.Period.GetLatestByGroup(ctx, groupID)
		switch {
		case err == nil:
			number = latest.PeriodNumber + 1
			prevList, err := tx.Assignment.ListByPeriod(ctx, latest.PeriodID)
			if err != nil {
				return err
			}
			previous = make(map[string]model.Assignment, len(prevList))
			for _, a := range prevList {
				previous[a.ParticipantID] = a
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}

		period = &model.Period{
			GroupID:      groupID,
			PeriodNumber: number,
			StartDate:    startDate,
			EndDate:      endDate,
			Status:       model.PeriodStatusActive,
		}
		period.CreatedBy = &callerID
		period.UpdatedBy = &callerID
		if err := tx.Period.Create(ctx, period); err != nil {
			// 部分唯一索引兜底：并发开启时只有一个能成功
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPeriodAlreadyActive
			}
			return err
		}

		plan = planAssignments(participants, previous, latest == nil)
		for _, p := range plan {
			a := &model.Assignment{
				ParticipantID: p.participantID,
				PeriodID:      period.PeriodID,
				SlotNumber:    p.slot,
				Status:        string(rotation.StatusPending),
				MissedStreak:  p.streak,
			}
			a.CreatedBy = &callerID
			a.UpdatedBy = &callerID
			if err := tx.Assignment.Create(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if pkgerrors.KindOf(err) == "" {
			s.logger.Error("开启周期失败", zap.String("group_id", groupID), zap.Error(err))
		}
		return nil, err
	}

	s.metrics.PeriodOpened()
	for source, n := range countSources(plan) {
		s.metrics.AssignmentsCreated(source, n)
	}
	s.inv.invalidate(ctx, groupID)
	s.logger.Info("周期已开启",
		zap.String("group_id", groupID),
		zap.String("period_id", period.PeriodID),
		zap.Int("period_number", period.PeriodNumber),
		zap.Int("assignments", len(plan)),
	)

	return &dto.OpenPeriodResponse{
		PeriodID:        period.PeriodID,
		PeriodNumber:    period.PeriodNumber,
		StartDate:       formatDate(period.StartDate),
		EndDate:         formatDate(period.EndDate),
		AssignmentCount: len(plan),
	}, nil
}

// ────────────────────── Lock ──────────────────────

func (s *periodService) Lock(ctx context.Context, periodID string, callerID string) (*dto.LockPeriodResponse, error) {
	var (
		period *model.Period
		counts repository.StatusCounts
		missed int64
	)
	lockedAt := s.clock.Now()

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		period, err = tx.Period.GetByIDForUpdate(ctx, periodID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPeriodNotFound
			}
			return err
		}
		if period.IsLocked() {
			return ErrPeriodAlreadyLocked
		}

		// 连续缺勤数不在此处累加，由下一次 Open 轮换时计算
		missed, err = tx.Assignment.MarkPendingAsMissed(ctx, periodID)
		if err != nil {
			return err
		}

		ok, err := tx.Period.MarkLocked(ctx, periodID, lockedAt)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPeriodAlreadyLocked
		}

		counts, err = tx.Assignment.CountByStatus(ctx, periodID)
		return err
	})
	if err != nil {
		if pkgerrors.KindOf(err) == "" {
			s.logger.Error("锁定周期失败", zap.String("period_id", periodID), zap.Error(err))
		}
		return nil, err
	}

	s.metrics.PeriodLocked(missed)
	s.inv.invalidate(ctx, period.GroupID)
	s.logger.Info("周期已锁定",
		zap.String("period_id", periodID),
		zap.String("locked_by", callerID),
		zap.Int64("marked_missed", missed),
	)

	return &dto.LockPeriodResponse{
		PeriodID:     periodID,
		Status:       model.PeriodStatusLocked,
		LockedAt:     formatTime(lockedAt),
		StatusCounts: toStatusCounts(counts),
	}, nil
}

// ────────────────────── List / Get ──────────────────────

func (s *periodService) List(ctx context.Context, groupID string) ([]dto.PeriodResponse, error) {
	if _, err := s.repo.Group.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询组失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}

	periods, err := s.repo.Period.ListByGroup(ctx, groupID, "", 0)
	if err != nil {
		s.logger.Error("列出周期失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}
	return periodResponses(ctx, s.repo, periods)
}

func (s *periodService) Get(ctx context.Context, periodID string) (*dto.PeriodDetailResponse, error) {
	period, err := s.repo.Period.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询周期失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}

	detail, err := periodDetail(ctx, s.repo, period, true)
	if err != nil {
		s.logger.Error("查询周期分配失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}
	return detail, nil
}

func (s *periodService) GroupID(ctx context.Context, periodID string) (string, error) {
	period, err := s.repo.Period.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrPeriodNotFound
		}
		return "", err
	}
	return period.GroupID, nil
}

// ── 内部辅助方法 ──

type plannedAssignment struct {
	participantID string
	slot          int
	streak        int
	source        string
}

// planAssignments 按参与者稳定顺序计算新周期的槽位。
//
// 有上期分配的参与者走轮换规则；首个周期按顺序循环分配；
// 其余新参与者按本次已分配的占用选择最空槽位。
func planAssignments(participants []model.Participant, previous map[string]model.Assignment, firstPeriod bool) []plannedAssignment {
	plan := make([]plannedAssignment, 0, len(participants))
	var occ rotation.Occupancy

	for i, p := range participants {
		next := plannedAssignment{participantID: p.ParticipantID}

		if prev, ok := previous[p.ParticipantID]; ok {
			next.slot, next.streak = rotation.Rotate(prev.SlotNumber, rotation.Status(prev.Status), prev.MissedStreak)
			next.source = metrics.SourceRotated
		} else if firstPeriod {
			next.slot = rotation.RoundRobinSlot(i)
			next.source = metrics.SourceRoundRobin
		} else {
			next.slot = rotation.LeastLoadedSlot(occ)
			next.source = metrics.SourceBalanced
		}

		occ.Add(next.slot)
		plan = append(plan, next)
	}
	return plan
}

func countSources(plan []plannedAssignment) map[string]int {
	out := make(map[string]int)
	for _, p := range plan {
		out[p.source]++
	}
	return out
}

func toStatusCounts(c repository.StatusCounts) dto.StatusCounts {
	return dto.StatusCounts{
		Completed: c.Completed,
		Pending:   c.Pending,
		Missed:    c.Missed,
		Total:     c.Total(),
	}
}

func toPeriodResponse(p *model.Period, counts repository.StatusCounts) dto.PeriodResponse {
	resp := dto.PeriodResponse{
		ID:           p.PeriodID,
		GroupID:      p.GroupID,
		PeriodNumber: p.PeriodNumber,
		StartDate:    formatDate(p.StartDate),
		EndDate:      formatDate(p.EndDate),
		Status:       p.Status,
		StatusCounts: toStatusCounts(counts),
	}
	if p.LockedAt != nil {
		resp.LockedAt = formatTime(*p.LockedAt)
	}
	return resp
}

// periodResponses 批量附加状态统计
func periodResponses(ctx context.Context, repo *repository.Repository, periods []model.Period) ([]dto.PeriodResponse, error) {
	ids := make([]string, len(periods))
	for i := range periods {
		ids[i] = periods[i].PeriodID
	}
	counts, err := repo.Assignment.CountByStatusForPeriods(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]dto.PeriodResponse, 0, len(periods))
	for i := range periods {
		result = append(result, toPeriodResponse(&periods[i], counts[periods[i].PeriodID]))
	}
	return result, nil
}

// periodDetail 周期详情，分配按槽位分组；withContacts 为 false 时不生成提醒链接
func periodDetail(ctx context.Context, repo *repository.Repository, period *model.Period, withContacts bool) (*dto.PeriodDetailResponse, error) {
	list, err := repo.Assignment.ListByPeriod(ctx, period.PeriodID)
	if err != nil {
		return nil, err
	}

	var counts repository.StatusCounts
	slots := make([]dto.SlotGroup, 0)
	for i := range list {
		a := &list[i]
		counts.Add(a.Status, 1)

		item := toAssignmentResponse(a)
		if !withContacts {
			item.ReminderLink = ""
		}
		if n := len(slots); n == 0 || slots[n-1].SlotNumber != a.SlotNumber {
			slots = append(slots, dto.SlotGroup{SlotNumber: a.SlotNumber})
		}
		last := &slots[len(slots)-1]
		last.Assignments = append(last.Assignments, item)
	}

	return &dto.PeriodDetailResponse{
		PeriodResponse: toPeriodResponse(period, counts),
		Slots:          slots,
	}, nil
}
