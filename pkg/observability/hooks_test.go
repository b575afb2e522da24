package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	a := NoopAlignHooks{}
	a.OnAlignComplete(ctx, "p1", "p2", 4, false, time.Millisecond, nil)
	a.OnMergeComplete(ctx, 3, 12, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "align")
	c.OnCacheMiss(ctx, "align")
	c.OnCacheSet(ctx, "align", 1024)

	NoopServerHooks{}.OnResponse(ctx, "POST", "/v1/merge", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Align().(NoopAlignHooks); !ok {
		t.Error("Align() should return NoopAlignHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	prom := NewPrometheus(prometheus.NewRegistry())
	SetAlignHooks(prom)
	SetCacheHooks(prom)
	SetServerHooks(prom)
	if Align() != AlignHooks(prom) || Cache() != CacheHooks(prom) || Server() != ServerHooks(prom) {
		t.Error("setters should install the given hooks")
	}

	SetAlignHooks(nil)
	if Align() != AlignHooks(prom) {
		t.Error("SetAlignHooks(nil) should be ignored")
	}

	Reset()
	if _, ok := Align().(NoopAlignHooks); !ok {
		t.Error("Reset() should restore NoopAlignHooks")
	}
}

func TestPrometheus(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.OnAlignComplete(ctx, "p1", "p2", 5, true, 10*time.Millisecond, nil)
	p.OnAlignComplete(ctx, "p1", "p3", 0, false, time.Millisecond, errors.New("boom"))
	p.OnMergeComplete(ctx, 3, 14, time.Second, nil)
	p.OnCacheHit(ctx, "align")
	p.OnCacheMiss(ctx, "align")
	p.OnCacheSet(ctx, "align", 100)
	p.OnResponse(ctx, "POST", "/v1/align", 200, time.Millisecond)

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"align ok", p.alignTotal.WithLabelValues("ok"), 1},
		{"align error", p.alignTotal.WithLabelValues("error"), 1},
		{"degenerate", p.degenerateTotal, 1},
		{"merge ok", p.mergeTotal.WithLabelValues("ok"), 1},
		{"cache hit", p.cacheTotal.WithLabelValues("align", "hit"), 1},
		{"cache miss", p.cacheTotal.WithLabelValues("align", "miss"), 1},
		{"cache bytes", p.cacheBytes, 100},
		{"http", p.httpTotal.WithLabelValues("POST", "/v1/align", "200"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.c); got != tt.want {
				t.Errorf("value = %v, want %v", got, tt.want)
			}
		})
	}

	if n, err := testutil.GatherAndCount(reg); err != nil || n == 0 {
		t.Errorf("GatherAndCount() = %d, %v; want registered metrics", n, err)
	}
}
