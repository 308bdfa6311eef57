package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/projectnuraya/tilawah-tracker/config"
	"github.com/projectnuraya/tilawah-tracker/internal/dto"
	"github.com/projectnuraya/tilawah-tracker/internal/model"
	"github.com/projectnuraya/tilawah-tracker/internal/repository"
	pkgerrors "github.com/projectnuraya/tilawah-tracker/pkg/errors"
)

// ── 公开页业务错误 ──

var ErrPublicNotFound = pkgerrors.NotFound("链接无效或组不存在")

// PublicService 通过公开令牌只读访问组进度
type PublicService interface {
	// Overview 当前活跃周期及最近的已锁定周期
	Overview(ctx context.Context, publicToken string) (*dto.PublicOverviewResponse, error)
	// Period 周期详情，周期必须属于该令牌对应的组
	Period(ctx context.Context, publicToken, periodID string) (*dto.PublicPeriodResponse, error)
	// Calendar 以 iCalendar 格式输出组的全部周期
	Calendar(ctx context.Context, publicToken string) ([]byte, error)
}

type publicService struct {
	repo         *repository.Repository
	cache        Cache
	cacheTTL     time.Duration
	historyLimit int
	logger       *zap.Logger
}

// NewPublicService 创建 PublicService 实例；cache 为 nil 或 TTL 为 0 时不缓存
func NewPublicService(cfg *config.Config, repo *repository.Repository, cache Cache, logger *zap.Logger) PublicService {
	limit := cfg.Rotation.PublicHistoryLimit
	if limit <= 0 {
		limit = 52
	}
	return &publicService{
		repo:         repo,
		cache:        cache,
		cacheTTL:     cfg.Redis.PublicCacheTTL,
		historyLimit: limit,
		logger:       logger,
	}
}

// ────────────────────── Overview ──────────────────────

func (s *publicService) Overview(ctx context.Context, publicToken string) (*dto.PublicOverviewResponse, error) {
	group, err := s.groupByToken(ctx, publicToken)
	if err != nil {
		return nil, err
	}

	key := publicOverviewKey(group.GroupID)
	if s.cacheEnabled() {
		var cached dto.PublicOverviewResponse
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	resp := &dto.PublicOverviewResponse{
		Group:   dto.PublicGroup{Name: group.Name},
		History: []dto.PeriodResponse{},
	}

	active, err := s.repo.Period.ListByGroup(ctx, group.GroupID, model.PeriodStatusActive, 1)
	if err != nil {
		s.logger.Error("查询活跃周期失败", zap.String("group_id", group.GroupID), zap.Error(err))
		return nil, err
	}
	locked, err := s.repo.Period.ListByGroup(ctx, group.GroupID, model.PeriodStatusLocked, s.historyLimit)
	if err != nil {
		s.logger.Error("查询历史周期失败", zap.String("group_id", group.GroupID), zap.Error(err))
		return nil, err
	}

	all, err := periodResponses(ctx, s.repo, append(active, locked...))
	if err != nil {
		s.logger.Error("统计周期进度失败", zap.String("group_id", group.GroupID), zap.Error(err))
		return nil, err
	}
	if len(active) > 0 {
		resp.ActivePeriod = &all[0]
		all = all[1:]
	}
	resp.History = append(resp.History, all...)

	if s.cacheEnabled() {
		if err := s.cache.SetJSON(ctx, key, resp, s.cacheTTL); err != nil {
			s.logger.Warn("写入公开页缓存失败", zap.String("group_id", group.GroupID), zap.Error(err))
		}
	}
	return resp, nil
}

// ────────────────────── Period ──────────────────────

func (s *publicService) Period(ctx context.Context, publicToken, periodID string) (*dto.PublicPeriodResponse, error) {
	group, err := s.groupByToken(ctx, publicToken)
	if err != nil {
		return nil, err
	}

	period, err := s.repo.Period.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询周期失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}
	if period.GroupID != group.GroupID {
		return nil, ErrPeriodNotFound
	}

	detail, err := periodDetail(ctx, s.repo, period, false)
	if err != nil {
		s.logger.Error("查询周期分配失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}
	return &dto.PublicPeriodResponse{
		Group:  dto.PublicGroup{Name: group.Name},
		Period: *detail,
	}, nil
}

// ────────────────────── Calendar ──────────────────────

func (s *publicService) Calendar(ctx context.Context, publicToken string) ([]byte, error) {
	group, err := s.groupByToken(ctx, publicToken)
	if err != nil {
		return nil, err
	}

	periods, err := s.repo.Period.ListByGroup(ctx, group.GroupID, "", 0)
	if err != nil {
		s.logger.Error("查询周期失败", zap.String("group_id", group.GroupID), zap.Error(err))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//tilawah-tracker//public calendar//ID")
	cal.SetName(group.Name)

	for i := range periods {
		p := &periods[i]
		event := cal.AddEvent(fmt.Sprintf("%s@tilawah-tracker", p.PeriodID))
		event.SetDtStampTime(p.CreatedAt)
		event.SetAllDayStartAt(p.StartDate)
		// DTEND 为开区间，取结束日的次日
		event.SetAllDayEndAt(p.EndDate.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("%s · Periode %d", group.Name, p.PeriodNumber))
		event.SetDescription(periodDescription(p))
	}

	return []byte(cal.Serialize()), nil
}

// ── 内部辅助方法 ──

func (s *publicService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

func (s *publicService) groupByToken(ctx context.Context, publicToken string) (*model.Group, error) {
	publicToken = strings.TrimSpace(publicToken)
	if publicToken == "" {
		return nil, ErrPublicNotFound
	}
	group, err := s.repo.Group.GetByPublicToken(ctx, publicToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPublicNotFound
		}
		s.logger.Error("按令牌查询组失败", zap.Error(err))
		return nil, err
	}
	return group, nil
}

func periodDescription(p *model.Period) string {
	if p.IsLocked() {
		return fmt.Sprintf("Periode %d (%s - %s), terkunci", p.PeriodNumber, formatDate(p.StartDate), formatDate(p.EndDate))
	}
	return fmt.Sprintf("Periode %d (%s - %s), berjalan", p.PeriodNumber, formatDate(p.StartDate), formatDate(p.EndDate))
}
