package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"shiftgrid/internal/roster"
	"shiftgrid/pkg/redis"
)

// SelectionStore 按 (会话, 生成轮次) 保存手动选择
// 新一轮生成使用新的键，旧选择自然失效
type SelectionStore interface {
	Load(ctx context.Context, sessionID, generationID string) (roster.Selections, error)
	Save(ctx context.Context, sessionID, generationID string, sel roster.Selections) error
	// Clear 删除会话下所有轮次的选择（重新登记时调用）
	Clear(ctx context.Context, sessionID string) error
}

// NewSelectionStore rdb 为 nil 时退化为进程内存储
func NewSelectionStore(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) SelectionStore {
	mem := newMemorySelectionStore()
	if rdb == nil {
		logger.Warn("Redis 不可用，手动选择仅保存在进程内存中")
		return mem
	}
	return &redisSelectionStore{rdb: rdb, ttl: ttl, fallback: mem, logger: logger}
}

// ── Redis 实现 ──

type redisSelectionStore struct {
	rdb      *redis.Client
	ttl      time.Duration
	fallback *memorySelectionStore
	logger   *zap.Logger
}

func (s *redisSelectionStore) Load(ctx context.Context, sessionID, generationID string) (roster.Selections, error) {
	fields, err := s.rdb.LoadHash(ctx, redis.SelectionKey(sessionID, generationID))
	if err != nil {
		s.logger.Warn("读取手动选择失败，使用内存降级", zap.String("session_id", sessionID), zap.Error(err))
		return s.fallback.Load(ctx, sessionID, generationID)
	}
	return decodeSelections(fields, s.logger), nil
}

func (s *redisSelectionStore) Save(ctx context.Context, sessionID, generationID string, sel roster.Selections) error {
	// 内存副本与 Redis 同步写入
	_ = s.fallback.Save(ctx, sessionID, generationID, sel)
	if err := s.rdb.ReplaceHash(ctx, redis.SelectionKey(sessionID, generationID), encodeSelections(sel), s.ttl); err != nil {
		s.logger.Warn("写入手动选择失败，仅保存在内存中", zap.String("session_id", sessionID), zap.Error(err))
	}
	return nil
}

func (s *redisSelectionStore) Clear(ctx context.Context, sessionID string) error {
	_ = s.fallback.Clear(ctx, sessionID)
	if err := s.rdb.DeleteKeys(ctx, redis.SessionSelectionPrefix(sessionID)); err != nil {
		s.logger.Warn("清理手动选择失败", zap.String("session_id", sessionID), zap.Error(err))
	}
	return nil
}

func encodeSelections(sel roster.Selections) map[string]string {
	out := make(map[string]string, len(sel))
	for k, v := range sel {
		out[k.String()] = v
	}
	return out
}

func decodeSelections(fields map[string]string, logger *zap.Logger) roster.Selections {
	out := make(roster.Selections, len(fields))
	for field, v := range fields {
		key, err := roster.ParseSelectionKey(field)
		if err != nil {
			logger.Warn("忽略无法解析的选择键", zap.String("field", field))
			continue
		}
		out[key] = v
	}
	return out
}

// ── 内存实现 ──

type memorySelectionStore struct {
	mu   sync.RWMutex
	data map[string]map[string]roster.Selections // session → generation → selections
}

func newMemorySelectionStore() *memorySelectionStore {
	return &memorySelectionStore{data: make(map[string]map[string]roster.Selections)}
}

func (s *memorySelectionStore) Load(_ context.Context, sessionID, generationID string) (roster.Selections, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sel, ok := s.data[sessionID][generationID]; ok {
		return sel.Clone(), nil
	}
	return roster.Selections{}, nil
}

func (s *memorySelectionStore) Save(_ context.Context, sessionID, generationID string, sel roster.Selections) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// 只保留当前轮次
	s.data[sessionID] = map[string]roster.Selections{generationID: sel.Clone()}
	return nil
}

func (s *memorySelectionStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}
