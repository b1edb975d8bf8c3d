package xlru

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const maxSize = 1 << 24

// Config 缓存配置。TTL 为 0 表示永不过期。
type Config struct {
	Size int
	TTL  time.Duration
}

// Cache 带 TTL 的 LRU 缓存。Close 后读返回未命中，写被忽略。
type Cache[K comparable, V any] struct {
	lru       *expirable.LRU[K, V]
	closed    atomic.Bool
	closeOnce sync.Once

	loadMu  sync.Mutex
	loading map[K]*call[V]
}

type call[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// New 创建缓存。onEvicted 可为 nil，回调在上游锁内执行，不得回调 Cache 自身方法。
func New[K comparable, V any](cfg Config, onEvicted func(key K, value V)) (*Cache[K, V], error) {
	switch {
	case cfg.Size <= 0:
		return nil, ErrInvalidSize
	case cfg.Size > maxSize:
		return nil, ErrSizeExceedsMax
	case cfg.TTL < 0:
		return nil, ErrInvalidTTL
	}
	return &Cache[K, V]{
		lru:     expirable.NewLRU(cfg.Size, onEvicted, cfg.TTL),
		loading: make(map[K]*call[V]),
	}, nil
}

// Get 返回未过期的值。
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	if c.closed.Load() {
		return value, false
	}
	return c.lru.Get(key)
}

// Set 写入值，返回是否触发了淘汰。
func (c *Cache[K, V]) Set(key K, value V) bool {
	if c.closed.Load() {
		return false
	}
	return c.lru.Add(key, value)
}

// Delete 删除条目，返回 key 是否存在。
func (c *Cache[K, V]) Delete(key K) bool {
	if c.closed.Load() {
		return false
	}
	return c.lru.Remove(key)
}

// Purge 清空缓存。
func (c *Cache[K, V]) Purge() {
	if c.closed.Load() {
		return
	}
	c.lru.Purge()
}

// Len 返回条目数，可能包含已过期但尚未清理的条目。
func (c *Cache[K, V]) Len() int {
	if c.closed.Load() {
		return 0
	}
	return c.lru.Len()
}

// GetOrLoad 命中时直接返回；未命中时调用 load 并缓存成功结果。
//
// 同一 key 的并发未命中只执行一次 load，其余调用方等待并共享结果。
// load 返回的错误不会被缓存。
//
// load 进行期间调用 Delete 或 Purge 不会取消这次加载，加载完成后结果仍会写入缓存，
// 即可能重新缓存失效前读到的旧值，直到下一次失效或 TTL 过期。
func (c *Cache[K, V]) GetOrLoad(key K, load func(K) (V, error)) (V, error) {
	var zero V
	if load == nil {
		return zero, ErrNilLoader
	}
	if c.closed.Load() {
		return zero, ErrClosed
	}
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}

	c.loadMu.Lock()
	if inflight, ok := c.loading[key]; ok {
		c.loadMu.Unlock()
		<-inflight.done
		return inflight.value, inflight.err
	}
	cl := &call[V]{done: make(chan struct{}), err: ErrLoadPanicked}
	c.loading[key] = cl
	c.loadMu.Unlock()

	// load panic 时等待方收到 ErrLoadPanicked，panic 继续传给本调用方。
	defer func() {
		c.loadMu.Lock()
		delete(c.loading, key)
		c.loadMu.Unlock()
		close(cl.done)
	}()

	value, err := load(key)
	cl.value, cl.err = value, err
	if err == nil {
		c.Set(key, value)
	}
	return value, err
}

// Close 清空缓存并停止后台过期清理，可重复调用。
func (c *Cache[K, V]) Close() {
	c.closed.Store(true)
	c.closeOnce.Do(func() {
		c.lru.Purge()
		stopCleanupGoroutine(c.lru)
	})
}

// stopCleanupGoroutine 关闭 expirable.LRU 未导出的 done 通道，使其清理 goroutine 退出。
//
// 设计决策: golang-lru v2.0.7 在 TTL > 0 时启动的 deleteExpired goroutine 没有公开的
// 停止方法（上游 Close 被注释掉）。这里通过反射定位 done 字段；上游结构变化时
// 返回 false 而非 panic，TestStopCleanupGoroutine 负责在升级时暴露问题。
func stopCleanupGoroutine(lru any) (stopped bool) {
	defer func() {
		if recover() != nil {
			stopped = false
		}
	}()

	v := reflect.ValueOf(lru)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return false
	}
	field := v.Elem().FieldByName("done")
	if !field.IsValid() || field.Type() != reflect.TypeFor[chan struct{}]() || field.IsNil() {
		return false
	}
	done := *(*chan struct{})(unsafe.Pointer(field.UnsafeAddr())) //nolint:gosec // 访问上游未导出字段
	close(done)
	return true
}
