package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/service-booking/internal/model"
)

// CaptchaStore holds pending captcha challenges.
type CaptchaStore interface {
	Get(ctx context.Context, id string) (model.Captcha, bool, error)
	Set(ctx context.Context, c model.Captcha) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Captcha, error)
}

// MemoryCaptchaStore keeps challenges in process memory.
type MemoryCaptchaStore struct {
	mu    sync.Mutex
	items map[string]model.Captcha
}

func NewMemoryCaptchaStore() *MemoryCaptchaStore {
	return &MemoryCaptchaStore{items: make(map[string]model.Captcha)}
}

func (s *MemoryCaptchaStore) Get(_ context.Context, id string) (model.Captcha, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	return c, ok, nil
}

func (s *MemoryCaptchaStore) Set(_ context.Context, c model.Captcha) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[c.ID] = c
	return nil
}

func (s *MemoryCaptchaStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *MemoryCaptchaStore) List(_ context.Context) ([]model.Captcha, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Captcha, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, c)
	}
	return out, nil
}

const captchaKeyPrefix = "captcha:"

// RedisCaptchaStore keeps challenges in Redis so that several server
// instances share them. Keys also carry a TTL, so Redis expires entries the
// sweep never reaches.
type RedisCaptchaStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCaptchaStore(rdb *redis.Client, ttl time.Duration) *RedisCaptchaStore {
	return &RedisCaptchaStore{rdb: rdb, ttl: ttl}
}

func (s *RedisCaptchaStore) Get(ctx context.Context, id string) (model.Captcha, bool, error) {
	bs, err := s.rdb.Get(ctx, captchaKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Captcha{}, false, nil
	}
	if err != nil {
		return model.Captcha{}, false, fmt.Errorf("%w: get captcha: %v", ErrStorage, err)
	}
	var c model.Captcha
	if err := json.Unmarshal(bs, &c); err != nil {
		return model.Captcha{}, false, fmt.Errorf("%w: decode captcha: %v", ErrStorage, err)
	}
	return c, true, nil
}

func (s *RedisCaptchaStore) Set(ctx context.Context, c model.Captcha) error {
	bs, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, captchaKeyPrefix+c.ID, bs, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set captcha: %v", ErrStorage, err)
	}
	return nil
}

func (s *RedisCaptchaStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, captchaKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("%w: delete captcha: %v", ErrStorage, err)
	}
	return nil
}

// List scans the captcha keyspace. Keys that expire between SCAN and GET
// are skipped.
func (s *RedisCaptchaStore) List(ctx context.Context) ([]model.Captcha, error) {
	out := []model.Captcha{}
	iter := s.rdb.Scan(ctx, 0, captchaKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		bs, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: list captchas: %v", ErrStorage, err)
		}
		var c model.Captcha
		if err := json.Unmarshal(bs, &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: list captchas: %v", ErrStorage, err)
	}
	return out, nil
}
