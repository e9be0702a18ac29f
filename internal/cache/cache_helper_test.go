package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, prefix string) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, prefix), mr
}

type cachedSurvey struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func TestCacheHelper_SetAndGet(t *testing.T) {
	helper, _ := newTestCache(t, "survey:")
	ctx := context.Background()

	in := cachedSurvey{ID: 1, Title: "Course Feedback"}
	if err := helper.Set(ctx, "id:1", in, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var out cachedSurvey
	if err := helper.Get(ctx, "id:1", &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestCacheHelper_GetMissing(t *testing.T) {
	helper, _ := newTestCache(t, "survey:")

	var out cachedSurvey
	err := helper.Get(context.Background(), "id:404", &out)
	if err != ErrCacheNotFound {
		t.Errorf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheHelper_KeysArePrefixed(t *testing.T) {
	helper, mr := newTestCache(t, "survey:")

	if err := helper.Set(context.Background(), "id:1", cachedSurvey{ID: 1}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !mr.Exists("survey:id:1") {
		t.Errorf("expected prefixed key, have %v", mr.Keys())
	}
}

func TestCacheHelper_Expiry(t *testing.T) {
	helper, mr := newTestCache(t, "survey:")
	ctx := context.Background()

	if err := helper.Set(ctx, "id:1", cachedSurvey{ID: 1}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	var out cachedSurvey
	if err := helper.Get(ctx, "id:1", &out); err != ErrCacheNotFound {
		t.Errorf("expected expiry, got %v", err)
	}
}

func TestCacheHelper_Delete(t *testing.T) {
	helper, _ := newTestCache(t, "survey:")
	ctx := context.Background()

	for _, key := range []string{"id:1", "id:2", "id:3"} {
		if err := helper.Set(ctx, key, cachedSurvey{}, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := helper.Delete(ctx, "id:1", "id:2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if ok, _ := helper.Exists(ctx, "id:1"); ok {
		t.Error("id:1 should be gone")
	}
	if ok, _ := helper.Exists(ctx, "id:3"); !ok {
		t.Error("id:3 should survive")
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, _ := newTestCache(t, "question:")
	ctx := context.Background()

	if err := helper.Set(ctx, "survey:1:list", []uint{1, 2}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := helper.Set(ctx, "survey:1:count", 2, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := helper.Set(ctx, "survey:2:list", []uint{3}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := helper.InvalidatePattern(ctx, "survey:1:*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	if ok, _ := helper.Exists(ctx, "survey:1:list"); ok {
		t.Error("survey:1:list should be invalidated")
	}
	if ok, _ := helper.Exists(ctx, "survey:1:count"); ok {
		t.Error("survey:1:count should be invalidated")
	}
	if ok, _ := helper.Exists(ctx, "survey:2:list"); !ok {
		t.Error("survey:2:list should survive")
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper, _ := newTestCache(t, "survey:")
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedSurvey{ID: 7, Title: "fetched"}, nil
	}

	var out cachedSurvey
	if err := helper.CacheOrExecute(ctx, "id:7", &out, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls)
	}
	if out.Title != "fetched" {
		t.Errorf("got %+v", out)
	}

	// The write-back is asynchronous; wait for it before asserting the hit.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if ok, _ := helper.Exists(ctx, "id:7"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("cached value never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}

	var again cachedSurvey
	if err := helper.CacheOrExecute(ctx, "id:7", &again, time.Minute, fetch); err != nil {
		t.Fatalf("second CacheOrExecute failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("cache hit should skip fetch, calls = %d", calls)
	}
	if again.ID != 7 {
		t.Errorf("got %+v", again)
	}
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "survey:")
	ctx := context.Background()

	if err := helper.Set(ctx, "id:1", cachedSurvey{}, time.Minute); err != nil {
		t.Errorf("Set without client should be a no-op, got %v", err)
	}
	if err := helper.Delete(ctx, "id:1"); err != nil {
		t.Errorf("Delete without client should be a no-op, got %v", err)
	}
	if err := helper.InvalidatePattern(ctx, "*"); err != nil {
		t.Errorf("InvalidatePattern without client should be a no-op, got %v", err)
	}

	var out cachedSurvey
	if err := helper.Get(ctx, "id:1", &out); err != ErrCacheNotAvailable {
		t.Errorf("Get without client should report ErrCacheNotAvailable, got %v", err)
	}

	// CacheOrExecute still serves the fetched value.
	calls := 0
	err := helper.CacheOrExecute(ctx, "id:1", &out, time.Minute, func() (interface{}, error) {
		calls++
		return cachedSurvey{ID: 9}, nil
	})
	if err != nil {
		t.Fatalf("CacheOrExecute without client failed: %v", err)
	}
	if calls != 1 || out.ID != 9 {
		t.Errorf("fetch fallback broken: calls=%d out=%+v", calls, out)
	}
}

func TestCacheManager_NilClient(t *testing.T) {
	cm := NewCacheManager(nil)

	if err := cm.HealthCheck(context.Background()); err != ErrCacheNotAvailable {
		t.Errorf("expected ErrCacheNotAvailable, got %v", err)
	}
	if err := cm.ClearAll(context.Background()); err != nil {
		t.Errorf("ClearAll without client should be a no-op, got %v", err)
	}
}

func TestInvalidateSurveyCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cm := NewCacheManager(client)
	ctx := context.Background()

	if err := cm.Survey.Set(ctx, "id:1", cachedSurvey{ID: 1}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cm.Survey.Set(ctx, "list:page:0", []uint{1}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cm.Stats.Set(ctx, "survey:1:submissions", 5, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cm.Survey.Set(ctx, "id:2", cachedSurvey{ID: 2}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	InvalidateSurveyCache(ctx, cm, 1)

	for _, gone := range []string{"survey:id:1", "survey:list:page:0", "stats:survey:1:submissions"} {
		if mr.Exists(gone) {
			t.Errorf("%s should be invalidated", gone)
		}
	}
	if !mr.Exists("survey:id:2") {
		t.Error("unrelated survey cache should survive")
	}
}
