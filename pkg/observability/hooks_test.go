package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Resolution hooks
	r := NoopResolutionHooks{}
	r.OnResolveStart(ctx, "/about-us", "en")
	r.OnResolveComplete(ctx, "/about-us", true, true, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "page:abc")
	c.OnCacheMiss(ctx, "page:abc")
	c.OnCacheSet(ctx, "page:abc", 1024)
	c.OnInvalidate(ctx, []string{"node:1"})
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Resolution().(NoopResolutionHooks); !ok {
		t.Error("Resolution() should return NoopResolutionHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	// Set custom hooks
	customResolution := &testResolutionHooks{}
	SetResolutionHooks(customResolution)
	if Resolution() != customResolution {
		t.Error("SetResolutionHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Resolution().(NoopResolutionHooks); !ok {
		t.Error("Reset() should restore NoopResolutionHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testResolutionHooks{}
	SetResolutionHooks(custom)

	// Setting nil should be ignored
	SetResolutionHooks(nil)

	if Resolution() != custom {
		t.Error("SetResolutionHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testResolutionHooks struct{ NoopResolutionHooks }
type testCacheHooks struct{ NoopCacheHooks }
