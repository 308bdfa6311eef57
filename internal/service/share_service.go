package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/projectnuraya/tilawah-tracker/internal/dto"
	"github.com/projectnuraya/tilawah-tracker/internal/model"
	"github.com/projectnuraya/tilawah-tracker/internal/repository"
	"github.com/projectnuraya/tilawah-tracker/internal/rotation"
	pkgerrors "github.com/projectnuraya/tilawah-tracker/pkg/errors"
	"github.com/projectnuraya/tilawah-tracker/pkg/whatsapp"
)

var ErrCustomMessageTooLong = pkgerrors.Validation("附加消息最多 500 个字符")

// ShareService 生成 WhatsApp 分享文本与提醒链接
type ShareService interface {
	ShareText(ctx context.Context, periodID string, req *dto.ShareRequest) (*dto.ShareResponse, error)
	// Reminders 周期内仍为 pending 且留有联系方式的参与者提醒链接
	Reminders(ctx context.Context, periodID string) (*dto.RemindersResponse, error)
}

type shareService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShareService 创建 ShareService 实例
func NewShareService(repo *repository.Repository, logger *zap.Logger) ShareService {
	return &shareService{repo: repo, logger: logger}
}

func (s *shareService) ShareText(ctx context.Context, periodID string, req *dto.ShareRequest) (*dto.ShareResponse, error) {
	period, list, err := s.load(ctx, periodID)
	if err != nil {
		return nil, err
	}
	group, err := s.repo.Group.GetByID(ctx, period.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询组失败", zap.String("group_id", period.GroupID), zap.Error(err))
		return nil, err
	}

	entries := make([]whatsapp.ShareEntry, 0, len(list))
	for _, a := range list {
		e := whatsapp.ShareEntry{Slot: a.SlotNumber}
		if a.Participant != nil {
			e.Name = a.Participant.Name
		}
		switch rotation.Status(a.Status) {
		case rotation.StatusCompleted:
			e.Mark = whatsapp.MarkCompleted
		case rotation.StatusMissed:
			e.Mark = whatsapp.MarkMissed
		}
		entries = append(entries, e)
	}

	text, err := whatsapp.ShareText(whatsapp.ShareInput{
		GroupName:     group.Name,
		PeriodNumber:  period.PeriodNumber,
		StartDate:     period.StartDate,
		EndDate:       period.EndDate,
		Entries:       entries,
		CustomMessage: req.CustomMessage,
	})
	if err != nil {
		if errors.Is(err, whatsapp.ErrCustomMessageTooLong) {
			return nil, ErrCustomMessageTooLong
		}
		return nil, err
	}
	return &dto.ShareResponse{Text: text}, nil
}

func (s *shareService) Reminders(ctx context.Context, periodID string) (*dto.RemindersResponse, error) {
	period, list, err := s.load(ctx, periodID)
	if err != nil {
		return nil, err
	}

	reminders := make([]dto.Reminder, 0)
	if !period.IsLocked() {
		for _, a := range list {
			if a.Status != string(rotation.StatusPending) || a.Participant == nil || a.Participant.Contact == nil {
				continue
			}
			reminders = append(reminders, dto.Reminder{
				AssignmentID:    a.AssignmentID,
				ParticipantName: a.Participant.Name,
				SlotNumber:      a.SlotNumber,
				Link:            whatsapp.ReminderLink(*a.Participant.Contact, a.Participant.Name),
			})
		}
	}
	return &dto.RemindersResponse{Reminders: reminders, Count: len(reminders)}, nil
}

func (s *shareService) load(ctx context.Context, periodID string) (*model.Period, []model.Assignment, error) {
	period, err := s.repo.Period.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrPeriodNotFound
		}
		s.logger.Error("查询周期失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, nil, err
	}
	list, err := s.repo.Assignment.ListByPeriod(ctx, periodID)
	if err != nil {
		s.logger.Error("查询周期分配失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, nil, err
	}
	return period, list, nil
}
