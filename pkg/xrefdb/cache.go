package xrefdb

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/omeyang/ipkit/pkg/xmatch"
)

// maxStoreSize 缓存最大条目数上限。
const maxStoreSize = 1 << 16

// cacheEntry 是一个文件路径的缓存记录。
// 新鲜度由两个维度共同决定：文件修改时间与装入时刻。
type cacheEntry struct {
	refs     []xmatch.RefRange
	modTime  time.Time
	loadedAt time.Time
}

// StoreOption 配置 Store。
type StoreOption func(*Store)

// WithClock 注入时钟，用于 TTL 新鲜度判定。
// 默认使用 [time.Now]，测试中可注入假时钟。
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Store 是参考范围文件的进程内缓存。
//
// 缓存由调用方持有并显式创建，不做进程级全局状态。键为文件路径，
// 命中要求文件修改时间未变且装入后未超过 TTL；任一条件失效都触发
// 重新加载。所有方法并发安全。
//
// 设计决策: 底层使用不带过期的 [lru.Cache]，TTL 对照注入时钟手工
// 判定。expirable.LRU 的过期挂在内部墙钟上，无法配合注入时钟做
// 确定性测试，而这里的 TTL 只是"取值时是否过期"一个判定点，
// 不需要后台清理 goroutine。
type Store struct {
	cache *lru.Cache[string, cacheEntry]
	ttl   time.Duration
	clock func() time.Time
	mu    sync.RWMutex
}

// NewStore 创建缓存。
// size 是路径条目上限，必须在 (0, 65536] 内。
// ttl 是缓存记录的有效期，0 表示只按文件修改时间判定，不允许负值。
func NewStore(size int, ttl time.Duration, opts ...StoreOption) (*Store, error) {
	if size <= 0 || size > maxStoreSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}

	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}

	s := &Store{
		cache: cache,
		ttl:   ttl,
		clock: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Get 返回 path 的参考范围集合，必要时重新加载。
//
// 缓存键是绝对路径，相对路径先归一化，与 [Watcher] 的失效键一致。
// 缓存命中条件：文件修改时间与缓存记录一致，且记录装入后未超过
// TTL。不满足时重新读取文件并刷新记录。文件不可读或内容无效时
// 返回错误，旧缓存记录同时失效。
func (s *Store) Get(path string) ([]xmatch.RefRange, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		s.Invalidate(path)
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	s.mu.RLock()
	entry, ok := s.cache.Get(path)
	clock := s.clock
	s.mu.RUnlock()

	if ok && s.fresh(entry, info.ModTime(), clock()) {
		return entry.refs, nil
	}

	refs, err := Load(path)
	if err != nil {
		s.Invalidate(path)
		return nil, err
	}

	s.mu.Lock()
	s.cache.Add(path, cacheEntry{
		refs:     refs,
		modTime:  info.ModTime(),
		loadedAt: clock(),
	})
	s.mu.Unlock()

	return refs, nil
}

// fresh 判定缓存记录是否仍然新鲜。
func (s *Store) fresh(entry cacheEntry, modTime, now time.Time) bool {
	if !entry.modTime.Equal(modTime) {
		return false
	}
	if s.ttl == 0 {
		return true
	}
	return now.Sub(entry.loadedAt) < s.ttl
}

// Invalidate 使 path 的缓存记录失效。
// 返回 true 表示记录存在并被移除。
func (s *Store) Invalidate(path string) bool {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Remove(path)
}

// Purge 清空所有缓存记录。
func (s *Store) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
}

// Len 返回当前缓存的路径数。
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.Len()
}
