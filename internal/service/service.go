package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/projectnuraya/tilawah-tracker/config"
	"github.com/projectnuraya/tilawah-tracker/internal/metrics"
	"github.com/projectnuraya/tilawah-tracker/internal/repository"
	"github.com/projectnuraya/tilawah-tracker/pkg/jwt"
	"github.com/projectnuraya/tilawah-tracker/pkg/token"
)

const dateLayout = "2006-01-02"

// Clock 时间来源，测试中可替换为固定时间
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock 返回基于系统时间的 Clock
func SystemClock() Clock { return systemClock{} }

// TokenBlacklist JWT 黑名单（由 pkg/redis.Client 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Cache JSON 缓存（由 pkg/redis.Client 实现）
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Deps Service 层的外部依赖
type Deps struct {
	Config    *config.Config
	Repo      *repository.Repository
	JWT       *jwt.Manager
	Blacklist TokenBlacklist
	Cache     Cache // 可为 nil，表示不缓存
	Metrics   *metrics.Metrics
	Clock     Clock           // 为 nil 时使用系统时间
	TokenGen  token.Generator // 为 nil 时使用 token.NewPublicToken
	Logger    *zap.Logger
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	Group       GroupService
	Participant ParticipantService
	Period      PeriodService
	Progress    ProgressService
	Public      PublicService
	Share       ShareService
	Export      ExportService
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = SystemClock()
	}
	if d.TokenGen == nil {
		d.TokenGen = token.NewPublicToken
	}
	inv := newPublicInvalidator(d.Cache, d.Logger)

	return &Service{
		Auth:        NewAuthService(d.Repo, d.JWT, d.Blacklist, d.Logger),
		Group:       NewGroupService(d.Config, d.Repo, d.TokenGen, inv, d.Logger),
		Participant: NewParticipantService(d.Config, d.Repo, d.Metrics, inv, d.Logger),
		Period:      NewPeriodService(d.Config, d.Repo, d.Clock, d.Metrics, inv, d.Logger),
		Progress:    NewProgressService(d.Repo, d.Metrics, inv, d.Logger),
		Public:      NewPublicService(d.Config, d.Repo, d.Cache, d.Logger),
		Share:       NewShareService(d.Repo, d.Logger),
		Export:      NewExportService(d.Repo, d.Logger),
	}
}

// ── 公开页缓存失效 ──

func publicOverviewKey(groupID string) string { return "public:overview:" + groupID }

// publicInvalidator 写操作后清除公开总览缓存；失败只记录日志
type publicInvalidator struct {
	cache  Cache
	logger *zap.Logger
}

func newPublicInvalidator(cache Cache, logger *zap.Logger) *publicInvalidator {
	return &publicInvalidator{cache: cache, logger: logger}
}

func (p *publicInvalidator) invalidate(ctx context.Context, groupID string) {
	if p == nil || p.cache == nil {
		return
	}
	if err := p.cache.Invalidate(ctx, publicOverviewKey(groupID)); err != nil {
		p.logger.Warn("清除公开页缓存失败", zap.String("group_id", groupID), zap.Error(err))
	}
}

func formatDate(t time.Time) string { return t.Format(dateLayout) }

func formatTime(t time.Time) string { return t.Format(time.RFC3339) }
