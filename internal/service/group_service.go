package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/projectnuraya/tilawah-tracker/config"
	"github.com/projectnuraya/tilawah-tracker/internal/dto"
	"github.com/projectnuraya/tilawah-tracker/internal/model"
	"github.com/projectnuraya/tilawah-tracker/internal/repository"
	pkgerrors "github.com/projectnuraya/tilawah-tracker/pkg/errors"
	"github.com/projectnuraya/tilawah-tracker/pkg/token"
)

// ── 组模块业务错误 ──

var (
	ErrGroupNameLength = pkgerrors.Validation("组名长度须为 3-255 个字符")
	ErrGroupForbidden  = pkgerrors.Forbidden("无权访问该组")
	ErrTokenExhausted  = errors.New("生成唯一公开令牌失败")
)

const maxTokenAttempts = 5

// GroupService 组业务接口
type GroupService interface {
	Create(ctx context.Context, req *dto.CreateGroupRequest, callerID string) (*dto.GroupResponse, error)
	ListMine(ctx context.Context, callerID string) ([]dto.GroupResponse, error)
	Get(ctx context.Context, groupID string) (*dto.GroupResponse, error)
	Update(ctx context.Context, groupID string, req *dto.UpdateGroupRequest, callerID string) (*dto.GroupResponse, error)
	// Delete 删除组及其全部参与者、周期与分配
	Delete(ctx context.Context, groupID string, callerID string) error
	// CheckAccess 校验协调员是否管理该组
	CheckAccess(ctx context.Context, coordinatorID, groupID string) error
}

type groupService struct {
	repo     *repository.Repository
	tokenGen token.Generator
	inv      *publicInvalidator
	baseURL  string
	logger   *zap.Logger
}

// NewGroupService 创建 GroupService 实例
func NewGroupService(
	cfg *config.Config,
	repo *repository.Repository,
	tokenGen token.Generator,
	inv *publicInvalidator,
	logger *zap.Logger,
) GroupService {
	return &groupService{
		repo:     repo,
		tokenGen: tokenGen,
		inv:      inv,
		baseURL:  strings.TrimRight(cfg.Server.BaseURL, "/"),
		logger:   logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *groupService) Create(ctx context.Context, req *dto.CreateGroupRequest, callerID string) (*dto.GroupResponse, error) {
	name, err := validateGroupName(req.Name)
	if err != nil {
		return nil, err
	}

	publicToken, err := s.uniqueToken(ctx)
	if err != nil {
		return nil, err
	}

	group := &model.Group{Name: name, PublicToken: publicToken}
	group.CreatedBy = &callerID
	group.UpdatedBy = &callerID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Group.Create(ctx, group); err != nil {
			return err
		}
		return tx.Coordinator.AddGroup(ctx, callerID, group.GroupID)
	})
	if err != nil {
		s.logger.Error("创建组失败", zap.String("coordinator_id", callerID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("组已创建", zap.String("group_id", group.GroupID), zap.String("coordinator_id", callerID))
	return s.toGroupResponse(&repository.GroupSummary{Group: *group}), nil
}

// uniqueToken 生成未被占用的公开令牌，最多重试 maxTokenAttempts 次
func (s *groupService) uniqueToken(ctx context.Context) (string, error) {
	for i := 0; i < maxTokenAttempts; i++ {
		t, err := s.tokenGen()
		if err != nil {
			s.logger.Error("生成公开令牌失败", zap.Error(err))
			return "", err
		}
		exists, err := s.repo.Group.ExistsByPublicToken(ctx, t)
		if err != nil {
			s.logger.Error("检查公开令牌失败", zap.Error(err))
			return "", err
		}
		if !exists {
			return t, nil
		}
		s.logger.Warn("公开令牌冲突，重新生成", zap.Int("attempt", i+1))
	}
	return "", ErrTokenExhausted
}

// ────────────────────── ListMine / Get ──────────────────────

func (s *groupService) ListMine(ctx context.Context, callerID string) ([]dto.GroupResponse, error) {
	rows, err := s.repo.Group.ListByCoordinator(ctx, callerID)
	if err != nil {
		s.logger.Error("列出组失败", zap.String("coordinator_id", callerID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.GroupResponse, 0, len(rows))
	for i := range rows {
		result = append(result, *s.toGroupResponse(&rows[i]))
	}
	return result, nil
}

func (s *groupService) Get(ctx context.Context, groupID string) (*dto.GroupResponse, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	summary := &repository.GroupSummary{Group: *group}
	participants, err := s.repo.Participant.ListByGroup(ctx, groupID, false)
	if err != nil {
		s.logger.Error("统计参与者失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}
	summary.ParticipantCount = len(participants)

	periods, err := s.repo.Period.ListByGroup(ctx, groupID, "", 0)
	if err != nil {
		s.logger.Error("统计周期失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}
	summary.PeriodCount = len(periods)
	for _, p := range periods {
		if p.Status == model.PeriodStatusActive {
			summary.HasActivePeriod = true
			break
		}
	}

	return s.toGroupResponse(summary), nil
}

// ────────────────────── Update ──────────────────────

func (s *groupService) Update(ctx context.Context, groupID string, req *dto.UpdateGroupRequest, callerID string) (*dto.GroupResponse, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.Name != nil {
		name, err := validateGroupName(*req.Name)
		if err != nil {
			return nil, err
		}
		group.Name = name
	}
	group.UpdatedBy = &callerID

	if err := s.repo.Group.Update(ctx, group); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新组失败", zap.String("group_id", groupID), zap.Error(err))
		}
		return nil, err
	}

	s.inv.invalidate(ctx, groupID)
	return s.Get(ctx, groupID)
}

// ────────────────────── Delete ──────────────────────

func (s *groupService) Delete(ctx context.Context, groupID string, callerID string) error {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.repo.Group.Delete(ctx, groupID); err != nil {
		s.logger.Error("删除组失败", zap.String("group_id", groupID), zap.Error(err))
		return err
	}
	s.inv.invalidate(ctx, groupID)
	s.logger.Info("组已删除", zap.String("group_id", groupID), zap.String("deleted_by", callerID))
	return nil
}

// ────────────────────── CheckAccess ──────────────────────

func (s *groupService) CheckAccess(ctx context.Context, coordinatorID, groupID string) error {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return err
	}
	ok, err := s.repo.Coordinator.HasGroup(ctx, coordinatorID, groupID)
	if err != nil {
		s.logger.Error("校验组权限失败", zap.String("group_id", groupID), zap.Error(err))
		return err
	}
	if !ok {
		return ErrGroupForbidden
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *groupService) getGroup(ctx context.Context, groupID string) (*model.Group, error) {
	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询组失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}
	return group, nil
}

func validateGroupName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(name); n < 3 || n > 255 {
		return "", ErrGroupNameLength
	}
	return name, nil
}

func (s *groupService) toGroupResponse(g *repository.GroupSummary) *dto.GroupResponse {
	resp := &dto.GroupResponse{
		ID:               g.GroupID,
		Name:             g.Name,
		PublicToken:      g.PublicToken,
		ParticipantCount: g.ParticipantCount,
		PeriodCount:      g.PeriodCount,
		HasActivePeriod:  g.HasActivePeriod,
		Version:          g.Version,
		CreatedAt:        formatTime(g.CreatedAt),
		UpdatedAt:        formatTime(g.UpdatedAt),
	}
	if s.baseURL != "" {
		resp.PublicURL = s.baseURL + "/view/" + g.PublicToken
	}
	return resp
}
