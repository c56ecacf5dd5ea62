package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/service-booking/internal/model"
)

func exerciseCaptchaStore(t *testing.T, s CaptchaStore) {
	t.Helper()
	ctx := context.Background()
	c := model.Captcha{ID: "abc123", Question: "What is 2 + 3?", Answer: 5, CreatedAt: time.Now().UTC()}

	if err := s.Set(ctx, c); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := s.Get(ctx, c.ID)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if got.Answer != 5 || got.Question != c.Question {
		t.Errorf("Get() = %+v", got)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, l := range list {
		if l.ID == c.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("List() does not contain %s", c.ID)
	}

	if err := s.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, c.ID); ok {
		t.Errorf("Get() after Delete() still found")
	}
}

func TestMemoryCaptchaStore(t *testing.T) {
	exerciseCaptchaStore(t, NewMemoryCaptchaStore())
}

// Runs against a real server when REDIS_TEST_ADDR is set.
func TestRedisCaptchaStore_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	exerciseCaptchaStore(t, NewRedisCaptchaStore(rdb, time.Minute))
}
