package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/iliyamo/service-booking/internal/repository"
)

var questionRe = regexp.MustCompile(`^What is (\d+) \+ (\d+)\?$`)

func newTestCaptcha(t *testing.T) (*CaptchaService, *time.Time) {
	t.Helper()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	s := NewCaptchaService(repository.NewMemoryCaptchaStore(), 5*time.Minute)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestCaptchaNew(t *testing.T) {
	s, _ := newTestCaptcha(t)
	for i := 0; i < 50; i++ {
		c, err := s.New(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(c.ID) != 32 {
			t.Errorf("ID = %q, want 32 hex chars", c.ID)
		}
		m := questionRe.FindStringSubmatch(c.Question)
		if m == nil {
			t.Fatalf("Question = %q", c.Question)
		}
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		if a < 1 || a > 10 || b < 1 || b > 10 {
			t.Errorf("terms %d, %d out of range", a, b)
		}
		if c.Answer != a+b {
			t.Errorf("Answer = %d, want %d", c.Answer, a+b)
		}
	}
}

func TestCaptchaVerifyIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestCaptcha(t)
	c, _ := s.New(ctx)
	answer := fmt.Sprint(c.Answer)

	ok, err := s.Verify(ctx, c.ID, " "+answer+" ")
	if err != nil || !ok {
		t.Fatalf("Verify(correct) = %v, %v", ok, err)
	}
	if ok, _ := s.Verify(ctx, c.ID, answer); ok {
		t.Errorf("captcha accepted twice")
	}
}

func TestCaptchaVerifyFailures(t *testing.T) {
	ctx := context.Background()
	s, now := newTestCaptcha(t)

	wrong, _ := s.New(ctx)
	if ok, _ := s.Verify(ctx, wrong.ID, fmt.Sprint(wrong.Answer+1)); ok {
		t.Errorf("wrong answer accepted")
	}
	// a failed attempt still burns the challenge
	if ok, _ := s.Verify(ctx, wrong.ID, fmt.Sprint(wrong.Answer)); ok {
		t.Errorf("challenge reusable after a failed attempt")
	}

	nonNumeric, _ := s.New(ctx)
	if ok, _ := s.Verify(ctx, nonNumeric.ID, "seven"); ok {
		t.Errorf("non-numeric answer accepted")
	}

	if ok, _ := s.Verify(ctx, "", "3"); ok {
		t.Errorf("empty id accepted")
	}
	if ok, _ := s.Verify(ctx, "does-not-exist", "3"); ok {
		t.Errorf("unknown id accepted")
	}

	expired, _ := s.New(ctx)
	*now = now.Add(6 * time.Minute)
	if ok, _ := s.Verify(ctx, expired.ID, fmt.Sprint(expired.Answer)); ok {
		t.Errorf("expired challenge accepted")
	}
}

func TestCaptchaCleanup(t *testing.T) {
	ctx := context.Background()
	s, now := newTestCaptcha(t)

	old, _ := s.New(ctx)
	*now = now.Add(4 * time.Minute)
	fresh, _ := s.New(ctx)
	*now = now.Add(2 * time.Minute)

	removed, err := s.Cleanup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("Cleanup() removed %d, want 1", removed)
	}
	if _, ok, _ := s.store.Get(ctx, old.ID); ok {
		t.Errorf("old challenge survived cleanup")
	}
	if _, ok, _ := s.store.Get(ctx, fresh.ID); !ok {
		t.Errorf("fresh challenge was removed")
	}
}
