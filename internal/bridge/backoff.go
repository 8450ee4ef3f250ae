package bridge

import (
	"math/rand"
	"time"
)

// Backoff 计算第 attempt 次重连前的等待时间：指数增长，封顶，带抖动。
type Backoff struct {
	Base   time.Duration
	Cap    time.Duration
	Jitter float64
	// Rand 返回 [0,1) 的随机数，测试里注入固定值。
	Rand func() float64
}

func (b Backoff) withDefaults() Backoff {
	if b.Base <= 0 {
		b.Base = time.Second
	}
	if b.Cap <= 0 {
		b.Cap = 30 * time.Second
	}
	if b.Cap < b.Base {
		b.Cap = b.Base
	}
	if b.Jitter < 0 || b.Jitter >= 1 {
		b.Jitter = 0.2
	}
	if b.Rand == nil {
		b.Rand = rand.Float64
	}
	return b
}

// Delay 返回 attempt（从 1 开始）对应的等待时间，结果落在 [Base*(1-Jitter), Cap]。
func (b Backoff) Delay(attempt int) time.Duration {
	b = b.withDefaults()
	if attempt < 1 {
		attempt = 1
	}
	d := b.Base
	for i := 1; i < attempt && d < b.Cap; i++ {
		d *= 2
	}
	if d > b.Cap {
		d = b.Cap
	}
	if b.Jitter > 0 {
		factor := 1 + b.Jitter*(2*b.Rand()-1)
		d = time.Duration(float64(d) * factor)
	}
	if d > b.Cap {
		d = b.Cap
	}
	return d
}
