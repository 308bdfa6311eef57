package handler

import "github.com/projectnuraya/tilawah-tracker/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	Group       *GroupHandler
	Participant *ParticipantHandler
	Period      *PeriodHandler
	Progress    *ProgressHandler
	Share       *ShareHandler
	Export      *ExportHandler
	Public      *PublicHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		Group:       NewGroupHandler(svc.Group),
		Participant: NewParticipantHandler(svc.Participant, svc.Group),
		Period:      NewPeriodHandler(svc.Period, svc.Group),
		Progress:    NewProgressHandler(svc.Progress, svc.Group),
		Share:       NewShareHandler(svc.Share, svc.Period, svc.Group),
		Export:      NewExportHandler(svc.Export, svc.Period, svc.Group),
		Public:      NewPublicHandler(svc.Public),
	}
}
