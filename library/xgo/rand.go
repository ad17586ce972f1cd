package xgo

import (
	"math/rand"
	"sync"
	"time"

	"golang.org/x/exp/constraints"
)

var (
	mu    sync.Mutex
	srand = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// IsHitFloat 命中概率 v (0~1)
func IsHitFloat(v float64) bool {
	return RandFloat(0, 1.0) <= v
}

func RandFloat[T constraints.Float](min T, max T) T {
	if max <= min {
		return min
	}
	mu.Lock()
	defer mu.Unlock()
	return T(srand.Float64())*(max-min) + min
}

// RandInt 返回 [min, max)
func RandInt[T constraints.Integer](min T, max T) T {
	if max <= min {
		return min
	}
	mu.Lock()
	defer mu.Unlock()
	return T(srand.Int63n(int64(max-min))) + min
}

// RandIntInclusive 返回 [min, max]
func RandIntInclusive[T constraints.Integer](min T, max T) T {
	return RandInt(min, max+1)
}
