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
	"github.com/projectnuraya/tilawah-tracker/internal/metrics"
	"github.com/projectnuraya/tilawah-tracker/internal/model"
	"github.com/projectnuraya/tilawah-tracker/internal/repository"
	"github.com/projectnuraya/tilawah-tracker/internal/rotation"
	pkgerrors "github.com/projectnuraya/tilawah-tracker/pkg/errors"
	"github.com/projectnuraya/tilawah-tracker/pkg/whatsapp"
)

// ── 参与者模块业务错误 ──

var (
	ErrParticipantNotFound   = pkgerrors.NotFound("参与者不存在")
	ErrParticipantNameEmpty  = pkgerrors.Validation("参与者名称不能为空")
	ErrParticipantNameLength = pkgerrors.Validation("参与者名称长度须为 2-255 个字符")
	ErrParticipantNameTaken  = pkgerrors.Validation("同组内已存在同名参与者")
	ErrInvalidContact        = pkgerrors.Validation("WhatsApp 号码格式无效（示例：+6281234567890）")
	ErrBulkEmpty             = pkgerrors.Validation("至少添加 1 名参与者")
	ErrBulkTooLarge          = pkgerrors.Validation("单次添加的参与者数量超出上限")
)

const (
	participantNameMin = 2
	participantNameMax = 255
	historyLimit       = 20
)

// ParticipantService 参与者业务接口
type ParticipantService interface {
	// Enroll 添加参与者；组有活跃周期时同时分配最空槽位
	Enroll(ctx context.Context, groupID string, req *dto.CreateParticipantRequest, callerID string) (*dto.EnrollResponse, error)
	// EnrollBulk 批量添加，全部成功或全部回滚
	EnrollBulk(ctx context.Context, groupID string, req *dto.BulkCreateParticipantsRequest, callerID string) (*dto.BulkEnrollResponse, error)
	List(ctx context.Context, groupID string, includeInactive bool) ([]dto.ParticipantResponse, error)
	Get(ctx context.Context, participantID string) (*dto.ParticipantDetailResponse, error)
	Update(ctx context.Context, participantID string, req *dto.UpdateParticipantRequest, callerID string) (*dto.ParticipantResponse, error)
	// Deactivate 停用参与者，保留历史，下次开启周期时跳过
	Deactivate(ctx context.Context, participantID string, callerID string) error
	Reactivate(ctx context.Context, participantID string, callerID string) error
	// GroupID 返回参与者所属组，用于权限校验
	GroupID(ctx context.Context, participantID string) (string, error)
}

type participantService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	inv     *publicInvalidator
	bulkMax int
	logger  *zap.Logger
}

// NewParticipantService 创建 ParticipantService 实例
func NewParticipantService(
	cfg *config.Config,
	repo *repository.Repository,
	m *metrics.Metrics,
	inv *publicInvalidator,
	logger *zap.Logger,
) ParticipantService {
	bulkMax := cfg.Rotation.BulkMax
	if bulkMax <= 0 {
		bulkMax = 100
	}
	return &participantService{repo: repo, metrics: m, inv: inv, bulkMax: bulkMax, logger: logger}
}

// ────────────────────── Enroll ──────────────────────

func (s *participantService) Enroll(ctx context.Context, groupID string, req *dto.CreateParticipantRequest, callerID string) (*dto.EnrollResponse, error) {
	in, err := normalizeEnrollInput(req)
	if err != nil {
		return nil, err
	}

	var result []dto.EnrollResponse
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		result, err = s.enrollTx(ctx, tx, groupID, []enrollInput{in}, callerID)
		return err
	})
	if err != nil {
		s.logFailure("添加参与者失败", groupID, err)
		return nil, err
	}

	s.recordEnrolled(result)
	s.inv.invalidate(ctx, groupID)
	return &result[0], nil
}

// ────────────────────── EnrollBulk ──────────────────────

func (s *participantService) EnrollBulk(ctx context.Context, groupID string, req *dto.BulkCreateParticipantsRequest, callerID string) (*dto.BulkEnrollResponse, error) {
	if len(req.Participants) == 0 {
		return nil, ErrBulkEmpty
	}
	if len(req.Participants) > s.bulkMax {
		return nil, ErrBulkTooLarge
	}

	inputs := make([]enrollInput, 0, len(req.Participants))
	seen := make(map[string]struct{}, len(req.Participants))
	for i := range req.Participants {
		in, err := normalizeEnrollInput(&req.Participants[i])
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(in.name)
		if _, dup := seen[key]; dup {
			return nil, ErrParticipantNameTaken
		}
		seen[key] = struct{}{}
		inputs = append(inputs, in)
	}

	var result []dto.EnrollResponse
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		result, err = s.enrollTx(ctx, tx, groupID, inputs, callerID)
		return err
	})
	if err != nil {
		s.logFailure("批量添加参与者失败", groupID, err)
		return nil, err
	}

	s.recordEnrolled(result)
	s.inv.invalidate(ctx, groupID)
	s.logger.Info("批量添加参与者",
		zap.String("group_id", groupID),
		zap.Int("count", len(result)),
	)
	return &dto.BulkEnrollResponse{Participants: result, Count: len(result)}, nil
}

// enrollTx 在事务内创建参与者，组有活跃周期时逐个选择最空槽位并计入占用
func (s *participantService) enrollTx(ctx context.Context, tx *repository.Repository, groupID string, inputs []enrollInput, callerID string) ([]dto.EnrollResponse, error) {
	if _, err := tx.Group.GetByIDForUpdate(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	for _, in := range inputs {
		taken, err := tx.Participant.ExistsByName(ctx, groupID, in.name, "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrParticipantNameTaken
		}
	}

	var (
		active *model.Period
		occ    rotation.Occupancy
	)
	period, err := tx.Period.GetActiveByGroup(ctx, groupID)
	switch {
	case err == nil:
		active = period
		counts, err := tx.Assignment.SlotOccupancy(ctx, period.PeriodID)
		if err != nil {
			return nil, err
		}
		occ = rotation.NewOccupancy(counts)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, err
	}

	result := make([]dto.EnrollResponse, 0, len(inputs))
	for _, in := range inputs {
		p := &model.Participant{
			GroupID:  groupID,
			Name:     in.name,
			Contact:  in.contact,
			IsActive: true,
		}
		p.CreatedBy = &callerID
		p.UpdatedBy = &callerID
		if err := tx.Participant.Create(ctx, p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrParticipantNameTaken
			}
			return nil, err
		}

		resp := dto.EnrollResponse{Participant: toParticipantResponse(p)}
		if active != nil {
			slot := rotation.LeastLoadedSlot(occ)
			a := &model.Assignment{
				ParticipantID: p.ParticipantID,
				PeriodID:      active.PeriodID,
				SlotNumber:    slot,
				Status:        string(rotation.StatusPending),
			}
			a.CreatedBy = &callerID
			a.UpdatedBy = &callerID
			if err := tx.Assignment.Create(ctx, a); err != nil {
				return nil, err
			}
			occ.Add(slot)
			resp.Assignment = &dto.EnrollAssignment{
				AssignmentID: a.AssignmentID,
				PeriodID:     active.PeriodID,
				SlotNumber:   slot,
			}
		}
		result = append(result, resp)
	}

	return result, nil
}

// ────────────────────── List / Get ──────────────────────

func (s *participantService) List(ctx context.Context, groupID string, includeInactive bool) ([]dto.ParticipantResponse, error) {
	if _, err := s.repo.Group.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询组失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}

	participants, err := s.repo.Participant.ListByGroup(ctx, groupID, includeInactive)
	if err != nil {
		s.logger.Error("列出参与者失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ParticipantResponse, 0, len(participants))
	for i := range participants {
		result = append(result, toParticipantResponse(&participants[i]))
	}
	return result, nil
}

func (s *participantService) Get(ctx context.Context, participantID string) (*dto.ParticipantDetailResponse, error) {
	p, err := s.getParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.Assignment.ListByParticipant(ctx, participantID, historyLimit)
	if err != nil {
		s.logger.Error("查询参与者历史失败", zap.String("participant_id", participantID), zap.Error(err))
		return nil, err
	}

	items := make([]dto.ParticipantHistoryItem, 0, len(history))
	for _, a := range history {
		item := dto.ParticipantHistoryItem{
			AssignmentID: a.AssignmentID,
			PeriodID:     a.PeriodID,
			SlotNumber:   a.SlotNumber,
			Status:       a.Status,
			MissedStreak: a.MissedStreak,
		}
		period, err := s.repo.Period.GetByID(ctx, a.PeriodID)
		if err != nil {
			s.logger.Error("查询分配所属周期失败",
				zap.String("participant_id", participantID),
				zap.String("period_id", a.PeriodID),
				zap.Error(err),
			)
			return nil, err
		}
		item.PeriodNumber = period.PeriodNumber
		item.StartDate = formatDate(period.StartDate)
		items = append(items, item)
	}

	return &dto.ParticipantDetailResponse{
		ParticipantResponse: toParticipantResponse(p),
		History:             items,
	}, nil
}

// ────────────────────── Update ──────────────────────

func (s *participantService) Update(ctx context.Context, participantID string, req *dto.UpdateParticipantRequest, callerID string) (*dto.ParticipantResponse, error) {
	p, err := s.getParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name, err := validateParticipantName(*req.Name)
		if err != nil {
			return nil, err
		}
		taken, err := s.repo.Participant.ExistsByName(ctx, p.GroupID, name, p.ParticipantID)
		if err != nil {
			s.logger.Error("检查参与者名称失败", zap.Error(err))
			return nil, err
		}
		if taken {
			return nil, ErrParticipantNameTaken
		}
		p.Name = name
	}
	if req.Contact != nil {
		contact, err := normalizeContact(*req.Contact)
		if err != nil {
			return nil, err
		}
		p.Contact = contact
	}
	p.UpdatedBy = &callerID

	if err := s.repo.Participant.Update(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrParticipantNameTaken
		}
		s.logger.Error("更新参与者失败", zap.String("participant_id", participantID), zap.Error(err))
		return nil, err
	}

	s.inv.invalidate(ctx, p.GroupID)
	resp := toParticipantResponse(p)
	return &resp, nil
}

// ────────────────────── Deactivate / Reactivate ──────────────────────

func (s *participantService) Deactivate(ctx context.Context, participantID string, callerID string) error {
	return s.setActive(ctx, participantID, false, callerID)
}

func (s *participantService) Reactivate(ctx context.Context, participantID string, callerID string) error {
	return s.setActive(ctx, participantID, true, callerID)
}

func (s *participantService) setActive(ctx context.Context, participantID string, active bool, callerID string) error {
	p, err := s.getParticipant(ctx, participantID)
	if err != nil {
		return err
	}
	if p.IsActive == active {
		return nil
	}

	p.IsActive = active
	p.UpdatedBy = &callerID
	if err := s.repo.Participant.Update(ctx, p); err != nil {
		s.logger.Error("更新参与者状态失败",
			zap.String("participant_id", participantID),
			zap.Bool("active", active),
			zap.Error(err),
		)
		return err
	}
	s.inv.invalidate(ctx, p.GroupID)
	return nil
}

func (s *participantService) GroupID(ctx context.Context, participantID string) (string, error) {
	p, err := s.getParticipant(ctx, participantID)
	if err != nil {
		return "", err
	}
	return p.GroupID, nil
}

// ── 内部辅助方法 ──

type enrollInput struct {
	name    string
	contact *string
}

func normalizeEnrollInput(req *dto.CreateParticipantRequest) (enrollInput, error) {
	name, err := validateParticipantName(req.Name)
	if err != nil {
		return enrollInput{}, err
	}
	var contact *string
	if req.Contact != nil {
		contact, err = normalizeContact(*req.Contact)
		if err != nil {
			return enrollInput{}, err
		}
	}
	return enrollInput{name: name, contact: contact}, nil
}

func validateParticipantName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrParticipantNameEmpty
	}
	if n := utf8.RuneCountInString(name); n < participantNameMin || n > participantNameMax {
		return "", ErrParticipantNameLength
	}
	return name, nil
}

// normalizeContact 空字符串表示清除联系方式
func normalizeContact(raw string) (*string, error) {
	number, err := whatsapp.NormalizeAndValidate(raw)
	if err != nil {
		return nil, ErrInvalidContact
	}
	if number == "" {
		return nil, nil
	}
	return &number, nil
}

func (s *participantService) getParticipant(ctx context.Context, participantID string) (*model.Participant, error) {
	p, err := s.repo.Participant.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		s.logger.Error("查询参与者失败", zap.String("participant_id", participantID), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *participantService) recordEnrolled(result []dto.EnrollResponse) {
	assigned := 0
	for _, r := range result {
		if r.Assignment != nil {
			assigned++
		}
	}
	s.metrics.ParticipantsEnrolled(len(result))
	s.metrics.AssignmentsCreated(metrics.SourceEnrolled, assigned)
}

func (s *participantService) logFailure(msg, groupID string, err error) {
	if pkgerrors.KindOf(err) != "" {
		return
	}
	s.logger.Error(msg, zap.String("group_id", groupID), zap.Error(err))
}

func toParticipantResponse(p *model.Participant) dto.ParticipantResponse {
	resp := dto.ParticipantResponse{
		ID:        p.ParticipantID,
		GroupID:   p.GroupID,
		Name:      p.Name,
		IsActive:  p.IsActive,
		CreatedAt: formatTime(p.CreatedAt),
	}
	if p.Contact != nil {
		resp.Contact = *p.Contact
		resp.ReminderLink = whatsapp.ReminderLink(*p.Contact, p.Name)
	}
	return resp
}
