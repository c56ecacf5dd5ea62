package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/service-booking/internal/model"
	"github.com/iliyamo/service-booking/internal/repository"
)

const (
	captchaIDBytes = 16
	captchaMaxTerm = 10

	DefaultCaptchaTTL = 5 * time.Minute
)

// CaptchaService issues and checks the arithmetic challenge that gates
// booking submission.  Challenges are single use and expire after TTL.
type CaptchaService struct {
	store repository.CaptchaStore
	ttl   time.Duration
	now   func() time.Time
}

func NewCaptchaService(store repository.CaptchaStore, ttl time.Duration) *CaptchaService {
	if ttl <= 0 {
		ttl = DefaultCaptchaTTL
	}
	return &CaptchaService{store: store, ttl: ttl, now: time.Now}
}

// New stores and returns a fresh "What is a + b?" challenge with a and b
// in [1, 10].
func (s *CaptchaService) New(ctx context.Context) (model.Captcha, error) {
	a, err := randTerm()
	if err != nil {
		return model.Captcha{}, err
	}
	b, err := randTerm()
	if err != nil {
		return model.Captcha{}, err
	}
	raw := make([]byte, captchaIDBytes)
	if _, err := rand.Read(raw); err != nil {
		return model.Captcha{}, err
	}
	c := model.Captcha{
		ID:        hex.EncodeToString(raw),
		Question:  fmt.Sprintf("What is %d + %d?", a, b),
		Answer:    a + b,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Set(ctx, c); err != nil {
		return model.Captcha{}, err
	}
	return c, nil
}

// Verify consumes the challenge id and reports whether answer solves it.
// The challenge is removed whatever the outcome.  Unknown, expired and
// non-numeric answers all fail.
func (s *CaptchaService) Verify(ctx context.Context, id, answer string) (bool, error) {
	if id == "" {
		return false, nil
	}
	c, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return false, err
	}
	if !ok || c.Expired(s.now(), s.ttl) {
		return false, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return false, nil
	}
	return n == c.Answer, nil
}

// Cleanup removes every challenge older than the TTL and returns how many
// were removed.
func (s *CaptchaService) Cleanup(ctx context.Context) (int, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	removed := 0
	for _, c := range all {
		if !c.Expired(now, s.ttl) {
			continue
		}
		if err := s.store.Delete(ctx, c.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func randTerm() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(captchaMaxTerm))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + 1, nil
}
