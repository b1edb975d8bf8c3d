package xsampling

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

var (
	// ErrInvalidRate 采样比率不在 [0, 1] 内。
	ErrInvalidRate = errors.New("xsampling: rate must be in [0.0, 1.0]")

	// ErrNilKeyFunc KeyBased 缺少 key 提取函数。
	ErrNilKeyFunc = errors.New("xsampling: keyFunc must not be nil")
)

// Sampler 采样策略。ctx 不得为 nil。
type Sampler interface {
	ShouldSample(ctx context.Context) bool
}

type constSampler bool

func (s constSampler) ShouldSample(context.Context) bool { return bool(s) }

// Always 总是采样。
func Always() Sampler { return constSampler(true) }

// Never 从不采样。
func Never() Sampler { return constSampler(false) }

// KeyFunc 从 ctx 提取采样 key。
type KeyFunc func(ctx context.Context) string

// KeyBasedSampler 按 key 的 xxhash 做一致性采样。
type KeyBasedSampler struct {
	rate    float64
	keyFunc KeyFunc
}

// KeyBased 创建一致性采样器。
func KeyBased(rate float64, keyFunc KeyFunc) (*KeyBasedSampler, error) {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return nil, ErrInvalidRate
	}
	if keyFunc == nil {
		return nil, ErrNilKeyFunc
	}
	return &KeyBasedSampler{rate: rate, keyFunc: keyFunc}, nil
}

// ShouldSample 实现 Sampler。
func (s *KeyBasedSampler) ShouldSample(ctx context.Context) bool {
	switch {
	case s.rate <= 0:
		return false
	case s.rate >= 1:
		return true
	}
	key := s.keyFunc(ctx)
	if key == "" {
		return rand.Float64() < s.rate //nolint:gosec // 采样不需要密码学随机
	}
	// hash == MaxUint64 时归一化结果可能为 1.0，rate < 1 时仍判为不采样。
	return float64(xxhash.Sum64String(key))/float64(math.MaxUint64) < s.rate
}

// Rate 返回采样比率。
func (s *KeyBasedSampler) Rate() float64 {
	return s.rate
}
