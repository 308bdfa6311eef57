package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/gorm"

	"github.com/projectnuraya/tilawah-tracker/config"
	"github.com/projectnuraya/tilawah-tracker/internal/model"
	"github.com/projectnuraya/tilawah-tracker/internal/repository"
	"github.com/projectnuraya/tilawah-tracker/internal/rotation"
	pkgerrors "github.com/projectnuraya/tilawah-tracker/pkg/errors"
)

// ── 内存存储 ──
//
// 所有 mock Repository 共享同一个 memStore。Transaction 持有 txMu 串行执行，
// 开始时拍快照，fn 返回错误时整体恢复，用于验证回滚语义。
// 唯一约束（组内名称、每组唯一 active 周期）与数据库一致，冲突返回 gorm.ErrDuplicatedKey。

var (
	errInjected  = errors.New("injected failure")
	errCacheMiss = errors.New("cache miss")
)

type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex
	seq  int
	base time.Time

	coordinators map[string]model.Coordinator
	memberships  map[string]bool // coordinatorID|groupID
	groups       map[string]model.Group
	participants map[string]model.Participant
	periods      map[string]model.Period
	assignments  map[string]model.Assignment

	// failAssignmentCreateAt 第 N 次创建分配时返回 errInjected，0 表示不注入
	failAssignmentCreateAt int
	assignmentCreates      int
}

func newMemStore() *memStore {
	return &memStore{
		base:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		coordinators: make(map[string]model.Coordinator),
		memberships:  make(map[string]bool),
		groups:       make(map[string]model.Group),
		participants: make(map[string]model.Participant),
		periods:      make(map[string]model.Period),
		assignments:  make(map[string]model.Assignment),
	}
}

// nextID 生成递增 ID 与创建时间，保证稳定排序
func (s *memStore) nextID(prefix string) (string, time.Time) {
	s.seq++
	return fmt.Sprintf("%s-%04d", prefix, s.seq), s.base.Add(time.Duration(s.seq) * time.Second)
}

type memSnapshot struct {
	coordinators map[string]model.Coordinator
	memberships  map[string]bool
	groups       map[string]model.Group
	participants map[string]model.Participant
	periods      map[string]model.Period
	assignments  map[string]model.Assignment
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		coordinators: copyMap(s.coordinators),
		memberships:  copyMap(s.memberships),
		groups:       copyMap(s.groups),
		participants: copyMap(s.participants),
		periods:      copyMap(s.periods),
		assignments:  copyMap(s.assignments),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coordinators = snap.coordinators
	s.memberships = snap.memberships
	s.groups = snap.groups
	s.participants = snap.participants
	s.periods = snap.periods
	s.assignments = snap.assignments
}

func (s *memStore) transaction(repo *repository.Repository) repository.TxFunc {
	return func(_ context.Context, fn func(txRepo *repository.Repository) error) error {
		s.txMu.Lock()
		defer s.txMu.Unlock()

		snap := s.snapshot()
		if err := fn(repo); err != nil {
			s.restore(snap)
			return err
		}
		return nil
	}
}

// newMemRepository 构建基于 memStore 的 Repository 聚合
func newMemRepository(s *memStore) *repository.Repository {
	repo := &repository.Repository{
		Coordinator: &memCoordinatorRepo{s: s},
		Group:       &memGroupRepo{s: s},
		Participant: &memParticipantRepo{s: s},
		Period:      &memPeriodRepo{s: s},
		Assignment:  &memAssignmentRepo{s: s},
	}
	repo.Tx = s.transaction(repo)
	return repo
}

// ── 测试数据辅助 ──

func (s *memStore) seedGroup(name string) model.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, at := s.nextID("g")
	g := model.Group{GroupID: id, Name: name, PublicToken: "tok-" + id}
	g.Version = 1
	g.CreatedAt, g.UpdatedAt = at, at
	s.groups[id] = g
	return g
}

func (s *memStore) seedParticipant(groupID, name string, active bool) model.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, at := s.nextID("p")
	p := model.Participant{ParticipantID: id, GroupID: groupID, Name: name, IsActive: active}
	p.CreatedAt, p.UpdatedAt = at, at
	s.participants[id] = p
	return p
}

func (s *memStore) seedParticipants(groupID string, n int) []model.Participant {
	out := make([]model.Participant, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.seedParticipant(groupID, fmt.Sprintf("Peserta %02d", i+1), true))
	}
	return out
}

func (s *memStore) grant(coordinatorID, groupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[coordinatorID+"|"+groupID] = true
}

// assignmentsOf 周期内全部分配，按参与者 ID 索引
func (s *memStore) assignmentsOf(periodID string) map[string]model.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]model.Assignment)
	for _, a := range s.assignments {
		if a.PeriodID == periodID {
			out[a.ParticipantID] = a
		}
	}
	return out
}

func (s *memStore) setAssignmentStatus(periodID, participantID string, status rotation.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.assignments {
		if a.PeriodID == periodID && a.ParticipantID == participantID {
			a.Status = string(status)
			s.assignments[id] = a
			return
		}
	}
}

func (s *memStore) count(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch table {
	case "groups":
		return len(s.groups)
	case "participants":
		return len(s.participants)
	case "periods":
		return len(s.periods)
	case "assignments":
		return len(s.assignments)
	}
	return 0
}

// ── Mock CoordinatorRepository ──

type memCoordinatorRepo struct{ s *memStore }

func (r *memCoordinatorRepo) Create(_ context.Context, c *model.Coordinator) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.coordinators {
		if strings.EqualFold(existing.Email, c.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	id, at := r.s.nextID("c")
	c.CoordinatorID = id
	c.CreatedAt, c.UpdatedAt = at, at
	r.s.coordinators[id] = *c
	return nil
}

func (r *memCoordinatorRepo) GetByID(_ context.Context, id string) (*model.Coordinator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.coordinators[id]; ok {
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCoordinatorRepo) GetByEmail(_ context.Context, email string) (*model.Coordinator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.coordinators {
		if strings.EqualFold(c.Email, email) {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCoordinatorRepo) AddGroup(_ context.Context, coordinatorID, groupID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.memberships[coordinatorID+"|"+groupID] = true
	return nil
}

func (r *memCoordinatorRepo) HasGroup(_ context.Context, coordinatorID, groupID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.memberships[coordinatorID+"|"+groupID], nil
}

// ── Mock GroupRepository ──

type memGroupRepo struct{ s *memStore }

func (r *memGroupRepo) Create(_ context.Context, g *model.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.groups {
		if existing.PublicToken == g.PublicToken {
			return gorm.ErrDuplicatedKey
		}
	}
	id, at := r.s.nextID("g")
	g.GroupID = id
	g.CreatedAt, g.UpdatedAt = at, at
	if g.Version == 0 {
		g.Version = 1
	}
	r.s.groups[id] = *g
	return nil
}

func (r *memGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if g, ok := r.s.groups[id]; ok {
		return &g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memGroupRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Group, error) {
	return r.GetByID(ctx, id)
}

func (r *memGroupRepo) GetByPublicToken(_ context.Context, token string) (*model.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.groups {
		if g.PublicToken == token {
			return &g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memGroupRepo) ExistsByPublicToken(ctx context.Context, token string) (bool, error) {
	_, err := r.GetByPublicToken(ctx, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *memGroupRepo) ListByCoordinator(_ context.Context, coordinatorID string) ([]repository.GroupSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []repository.GroupSummary
	for _, g := range r.s.groups {
		if !r.s.memberships[coordinatorID+"|"+g.GroupID] {
			continue
		}
		row := repository.GroupSummary{Group: g}
		for _, p := range r.s.participants {
			if p.GroupID == g.GroupID && p.IsActive {
				row.ParticipantCount++
			}
		}
		for _, pe := range r.s.periods {
			if pe.GroupID == g.GroupID {
				row.PeriodCount++
				if pe.Status == model.PeriodStatusActive {
					row.HasActivePeriod = true
				}
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

func (r *memGroupRepo) Update(_ context.Context, g *model.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.groups[g.GroupID]
	if !ok || existing.Version != g.Version {
		return pkgerrors.ErrOptimisticLock
	}
	g.Version++
	r.s.groups[g.GroupID] = *g
	return nil
}

// Delete 模拟外键级联删除
func (r *memGroupRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.groups, id)
	for key := range r.s.memberships {
		if strings.HasSuffix(key, "|"+id) {
			delete(r.s.memberships, key)
		}
	}
	for pid, p := range r.s.participants {
		if p.GroupID == id {
			delete(r.s.participants, pid)
		}
	}
	for peid, pe := range r.s.periods {
		if pe.GroupID == id {
			delete(r.s.periods, peid)
			for aid, a := range r.s.assignments {
				if a.PeriodID == peid {
					delete(r.s.assignments, aid)
				}
			}
		}
	}
	return nil
}

// ── Mock ParticipantRepository ──

type memParticipantRepo struct{ s *memStore }

func (r *memParticipantRepo) nameTaken(groupID, name, excludeID string) bool {
	for _, p := range r.s.participants {
		if p.GroupID == groupID && p.ParticipantID != excludeID && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (r *memParticipantRepo) Create(_ context.Context, p *model.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(p.GroupID, p.Name, "") {
		return gorm.ErrDuplicatedKey
	}
	id, at := r.s.nextID("p")
	p.ParticipantID = id
	p.CreatedAt, p.UpdatedAt = at, at
	r.s.participants[id] = *p
	return nil
}

func (r *memParticipantRepo) GetByID(_ context.Context, id string) (*model.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.participants[id]; ok {
		return &p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memParticipantRepo) ListByGroup(_ context.Context, groupID string, includeInactive bool) ([]model.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Participant
	for _, p := range r.s.participants {
		if p.GroupID == groupID && (includeInactive || p.IsActive) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out, nil
}

func (r *memParticipantRepo) ExistsByName(_ context.Context, groupID, name, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.nameTaken(groupID, name, excludeID), nil
}

func (r *memParticipantRepo) Update(_ context.Context, p *model.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.participants[p.ParticipantID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if r.nameTaken(p.GroupID, p.Name, p.ParticipantID) {
		return gorm.ErrDuplicatedKey
	}
	r.s.participants[p.ParticipantID] = *p
	return nil
}

// ── Mock PeriodRepository ──

type memPeriodRepo struct{ s *memStore }

func (r *memPeriodRepo) Create(_ context.Context, p *model.Period) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.periods {
		if existing.GroupID != p.GroupID {
			continue
		}
		if existing.PeriodNumber == p.PeriodNumber {
			return gorm.ErrDuplicatedKey
		}
		if existing.Status == model.PeriodStatusActive && p.Status == model.PeriodStatusActive {
			return gorm.ErrDuplicatedKey
		}
	}
	id, at := r.s.nextID("pe")
	p.PeriodID = id
	p.CreatedAt, p.UpdatedAt = at, at
	r.s.periods[id] = *p
	return nil
}

func (r *memPeriodRepo) GetByID(_ context.Context, id string) (*model.Period, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.periods[id]; ok {
		return &p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memPeriodRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Period, error) {
	return r.GetByID(ctx, id)
}

func (r *memPeriodRepo) GetActiveByGroup(_ context.Context, groupID string) (*model.Period, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.periods {
		if p.GroupID == groupID && p.Status == model.PeriodStatusActive {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memPeriodRepo) GetLatestByGroup(ctx context.Context, groupID string) (*model.Period, error) {
	list, _ := r.ListByGroup(ctx, groupID, "", 1)
	if len(list) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &list[0], nil
}

func (r *memPeriodRepo) ListByGroup(_ context.Context, groupID, status string, limit int) ([]model.Period, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Period
	for _, p := range r.s.periods {
		if p.GroupID == groupID && (status == "" || p.Status == status) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodNumber > out[j].PeriodNumber })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memPeriodRepo) MarkLocked(_ context.Context, id string, lockedAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[id]
	if !ok || p.Status != model.PeriodStatusActive {
		return false, nil
	}
	p.Status = model.PeriodStatusLocked
	p.LockedAt = &lockedAt
	r.s.periods[id] = p
	return true, nil
}

// ── Mock AssignmentRepository ──

type memAssignmentRepo struct{ s *memStore }

func (r *memAssignmentRepo) withParticipant(a model.Assignment) model.Assignment {
	if p, ok := r.s.participants[a.ParticipantID]; ok {
		a.Participant = &p
	}
	return a
}

func (r *memAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.assignmentCreates++
	if r.s.failAssignmentCreateAt > 0 && r.s.assignmentCreates == r.s.failAssignmentCreateAt {
		return errInjected
	}
	for _, existing := range r.s.assignments {
		if existing.PeriodID == a.PeriodID && existing.ParticipantID == a.ParticipantID {
			return gorm.ErrDuplicatedKey
		}
	}
	id, at := r.s.nextID("a")
	a.AssignmentID = id
	a.CreatedAt, a.UpdatedAt = at, at
	stored := *a
	stored.Participant = nil
	r.s.assignments[id] = stored
	return nil
}

func (r *memAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.assignments[id]; ok {
		a = r.withParticipant(a)
		return &a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memAssignmentRepo) ListByPeriod(_ context.Context, periodID string) ([]model.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Assignment
	for _, a := range r.s.assignments {
		if a.PeriodID == periodID {
			out = append(out, r.withParticipant(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SlotNumber != out[j].SlotNumber {
			return out[i].SlotNumber < out[j].SlotNumber
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].AssignmentID < out[j].AssignmentID
	})
	return out, nil
}

func (r *memAssignmentRepo) ListByParticipant(_ context.Context, participantID string, limit int) ([]model.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Assignment
	for _, a := range r.s.assignments {
		if a.ParticipantID == participantID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memAssignmentRepo) SlotOccupancy(_ context.Context, periodID string) (map[int]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	occ := make(map[int]int)
	for _, a := range r.s.assignments {
		if a.PeriodID == periodID {
			occ[a.SlotNumber]++
		}
	}
	return occ, nil
}

func (r *memAssignmentRepo) MarkPendingAsMissed(_ context.Context, periodID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, a := range r.s.assignments {
		if a.PeriodID == periodID && a.Status == string(rotation.StatusPending) {
			a.Status = string(rotation.StatusMissed)
			r.s.assignments[id] = a
			n++
		}
	}
	return n, nil
}

func (r *memAssignmentRepo) CountByStatus(ctx context.Context, periodID string) (repository.StatusCounts, error) {
	m, err := r.CountByStatusForPeriods(ctx, []string{periodID})
	return m[periodID], err
}

func (r *memAssignmentRepo) CountByStatusForPeriods(_ context.Context, periodIDs []string) (map[string]repository.StatusCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[string]bool, len(periodIDs))
	for _, id := range periodIDs {
		want[id] = true
	}
	out := make(map[string]repository.StatusCounts, len(periodIDs))
	for _, a := range r.s.assignments {
		if !want[a.PeriodID] {
			continue
		}
		c := out[a.PeriodID]
		c.Add(a.Status, 1)
		out[a.PeriodID] = c
	}
	return out, nil
}

func (r *memAssignmentRepo) UpdateStatus(_ context.Context, id, status string, resetStreak bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Status = status
	if resetStreak {
		a.MissedStreak = 0
	}
	r.s.assignments[id] = a
	return nil
}

func (r *memAssignmentRepo) UpdateSlot(_ context.Context, id string, slot int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.SlotNumber = slot
	r.s.assignments[id] = a
	return nil
}

// ── Mock Cache / TokenBlacklist ──

type memCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	hits        int
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) GetJSON(_ context.Context, key string, dst interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return errCacheMiss
	}
	c.hits++
	return json.Unmarshal(raw, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.invalidated = append(c.invalidated, k)
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type memBlacklist struct {
	mu   sync.Mutex
	jtis map[string]time.Duration
}

func newMemBlacklist() *memBlacklist {
	return &memBlacklist{jtis: make(map[string]time.Duration)}
}

func (b *memBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ttl > 0 {
		b.jtis[jti] = ttl
	}
	return nil
}

func (b *memBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.jtis[jti]
	return ok, nil
}

// ── 固定时钟 ──

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// manualClock 可在测试中推进的时钟
type manualClock struct{ t time.Time }

func (c *manualClock) Now() time.Time { return c.t }

func (c *manualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// ── 测试配置 ──

var (
	testSunday = "2025-01-05"
	testNow    = time.Date(2025, 1, 11, 20, 0, 0, 0, time.UTC)
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{BaseURL: "https://tilawah.example.com/"},
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-tests-0123456789",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 30 * 24 * time.Hour,
		},
		Redis: config.RedisConfig{PublicCacheTTL: time.Minute},
		Rotation: config.RotationConfig{
			StartWeekday:       "sunday",
			BulkMax:            100,
			PublicHistoryLimit: 52,
		},
	}
}
