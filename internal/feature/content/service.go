package content

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"seasonal-cms/internal/domain"
	"seasonal-cms/pkg/utils"
)

// keyMutex 按内容 key 串行化 upsert，堵住"先查后写"窗口里并发同 key 写入
// 造成重复行的问题（两个后端共用同一条代码路径，不依赖方言的冲突子句）。
// locks 里每个出现过的 key 留一把锁不回收：站点内容 key 是一个小而稳定的
// 集合（八个固定区块加零星自定义行），map 的上界就是这个集合的大小
type keyMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyMutex) lock(key string) *sync.Mutex {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m
}

type Service struct {
	repo domain.ContentRepository
	keys keyMutex
	log  *zap.Logger
}

func NewService(repo domain.ContentRepository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) List(ctx context.Context) ([]domain.Content, error) {
	return s.repo.List(ctx)
}

// GetByID 未命中返回 nil, nil，由调用方映射 404
func (s *Service) GetByID(ctx context.Context, id string) (*domain.Content, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByKey 未命中返回 nil, nil（"不存在"不是错误）
func (s *Service) GetByKey(ctx context.Context, key string) (*domain.Content, error) {
	return s.repo.FindByKey(ctx, key)
}

// Upsert 内容写入的核心算法：
//   - 带 id：整行覆盖（key/value/type 都换），目标不存在返回 ErrNotFound；
//   - 不带 id：按 key 查找，命中只改 value/type（key 不动），未命中插入新行。
//
// id 优先于 key（"编辑器知道在改哪一行" vs "按逻辑名幂等写入"）。
func (s *Service) Upsert(ctx context.Context, id, key, value, typ string) (*domain.Content, error) {
	if id != "" {
		c := &domain.Content{ID: id, Key: key, Value: value, Type: typ}
		if err := s.repo.Update(ctx, c); err != nil {
			return nil, err
		}
		return s.repo.FindByID(ctx, id)
	}

	m := s.keys.lock(key)
	defer m.Unlock()

	existing, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Value = value
		existing.Type = typ
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return s.repo.FindByKey(ctx, key)
	}

	c := &domain.Content{ID: utils.NewID(), Key: key, Value: value, Type: typ}
	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete 幂等删除
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}
