package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shiftgrid/internal/model"
	"shiftgrid/internal/repository"
	pkgerrors "shiftgrid/pkg/errors"
)

var mockEpoch = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions map[string]*model.PlanningSession
	regs     map[string][]model.Registration
	avails   map[string][]model.Availability
	seq      int
	// 测试注入：下一次 Update 前模拟并发修改
	bumpBeforeUpdate bool
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{
		sessions: make(map[string]*model.PlanningSession),
		regs:     make(map[string][]model.Registration),
		avails:   make(map[string][]model.Availability),
	}
}

func (m *mockSessionRepo) CreateWithRoster(_ context.Context, session *model.PlanningSession, regs []model.Registration, avails []model.Availability) error {
	m.seq++
	if session.SessionID == "" {
		session.SessionID = fmt.Sprintf("sess-%d", m.seq)
	}
	session.Version = 1
	session.CreatedAt = mockEpoch.Add(time.Duration(m.seq) * time.Minute)
	stored := *session
	m.sessions[session.SessionID] = &stored
	m.storeRoster(session.SessionID, regs, avails)
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.PlanningSession, error) {
	if s, ok := m.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) List(_ context.Context, operator string, limit int) ([]model.PlanningSession, error) {
	var out []model.PlanningSession
	for i := m.seq; i >= 1 && len(out) < limit; i-- {
		s, ok := m.sessions[fmt.Sprintf("sess-%d", i)]
		if !ok || (operator != "" && s.Operator != operator) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockSessionRepo) Update(_ context.Context, session *model.PlanningSession) error {
	stored, ok := m.sessions[session.SessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if m.bumpBeforeUpdate {
		m.bumpBeforeUpdate = false
		stored.Version++
	}
	if stored.Version != session.Version {
		return pkgerrors.ErrOptimisticLock
	}
	session.Version++
	cp := *session
	m.sessions[session.SessionID] = &cp
	return nil
}

func (m *mockSessionRepo) ReplaceRoster(ctx context.Context, session *model.PlanningSession, regs []model.Registration, avails []model.Availability) error {
	if err := m.Update(ctx, session); err != nil {
		return err
	}
	m.storeRoster(session.SessionID, regs, avails)
	return nil
}

func (m *mockSessionRepo) ListRegistrations(_ context.Context, sessionID string) ([]model.Registration, error) {
	return m.regs[sessionID], nil
}

func (m *mockSessionRepo) ListAvailability(_ context.Context, sessionID string) ([]model.Availability, error) {
	return m.avails[sessionID], nil
}

func (m *mockSessionRepo) storeRoster(sessionID string, regs []model.Registration, avails []model.Availability) {
	for i := range regs {
		regs[i].SessionID = sessionID
	}
	for i := range avails {
		avails[i].SessionID = sessionID
	}
	m.regs[sessionID] = append([]model.Registration(nil), regs...)
	m.avails[sessionID] = append([]model.Availability(nil), avails...)
}

// ── Mock GenerationRepository ──

type mockGenerationRepo struct {
	gens []*model.Generation
}

func newMockGenerationRepo() *mockGenerationRepo {
	return &mockGenerationRepo{}
}

func (m *mockGenerationRepo) Create(_ context.Context, gen *model.Generation) error {
	n := len(m.gens) + 1
	gen.GenerationID = fmt.Sprintf("gen-%d", n)
	gen.CreatedAt = mockEpoch.Add(time.Duration(n) * time.Hour)
	for i := range gen.Assignments {
		gen.Assignments[i].GenerationID = gen.GenerationID
	}
	cp := *gen
	m.gens = append(m.gens, &cp)
	return nil
}

func (m *mockGenerationRepo) GetByID(_ context.Context, id string) (*model.Generation, error) {
	for _, g := range m.gens {
		if g.GenerationID == id {
			cp := *g
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGenerationRepo) GetLatestParsed(_ context.Context, sessionID string) (*model.Generation, error) {
	for i := len(m.gens) - 1; i >= 0; i-- {
		g := m.gens[i]
		if g.SessionID == sessionID && g.Status == model.GenerationStatusParsed {
			cp := *g
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGenerationRepo) ListBySession(_ context.Context, sessionID string) ([]model.Generation, error) {
	var out []model.Generation
	for i := len(m.gens) - 1; i >= 0; i-- {
		if m.gens[i].SessionID == sessionID {
			out = append(out, *m.gens[i])
		}
	}
	return out, nil
}

// ── Fake TextGenerator ──

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

// ── 聚合 ──

type testRepos struct {
	sessions    *mockSessionRepo
	generations *mockGenerationRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		sessions:    newMockSessionRepo(),
		generations: newMockGenerationRepo(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		Session:    r.sessions,
		Generation: r.generations,
	}
}
