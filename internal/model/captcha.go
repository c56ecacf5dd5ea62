package model

import "time"

// Captcha is an ephemeral arithmetic challenge gating booking submission.
// Only ID and Question are ever sent to clients.
type Captcha struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    int       `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the challenge is older than ttl at now.
func (c Captcha) Expired(now time.Time, ttl time.Duration) bool {
	return c.CreatedAt.Before(now.Add(-ttl))
}
