package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/iliyamo/service-booking/internal/model"
)

// SettingsRepo reads and writes settings.json. The file is an object shared
// with the content side of the site, so keys this program does not know
// about are carried through writes unchanged.
type SettingsRepo struct {
	mu   sync.Mutex
	path string
}

func NewSettingsRepo(path string) *SettingsRepo { return &SettingsRepo{path: path} }

// Get returns the known settings. A missing file yields empty settings.
func (r *SettingsRepo) Get() (model.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.readRaw()
	if err != nil {
		return model.Settings{}, err
	}
	var s model.Settings
	s.WhatsAppNumber = rawString(raw, "whatsapp_number")
	s.ReportPassword = rawString(raw, "reportPassword")
	return s, nil
}

// SetReportPassword stores the encoded report password.
func (r *SettingsRepo) SetReportPassword(encoded string) error {
	return r.set("reportPassword", encoded)
}

// SetReportPasswordIfEmpty stores encoded only when no password is stored
// yet and returns ErrConflict otherwise.
func (r *SettingsRepo) SetReportPasswordIfEmpty(encoded string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.readRaw()
	if err != nil {
		return err
	}
	if rawString(raw, "reportPassword") != "" {
		return ErrConflict
	}
	return r.writeRaw(raw, "reportPassword", encoded)
}

func (r *SettingsRepo) set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.readRaw()
	if err != nil {
		return err
	}
	return r.writeRaw(raw, key, value)
}

func (r *SettingsRepo) readRaw() (map[string]json.RawMessage, error) {
	raw := map[string]json.RawMessage{}
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return raw, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, r.path, err)
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStorage, r.path, err)
	}
	if raw == nil {
		raw = map[string]json.RawMessage{}
	}
	return raw, nil
}

func (r *SettingsRepo) writeRaw(raw map[string]json.RawMessage, key, value string) error {
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	raw[key] = v
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStorage, r.path, err)
	}
	return writeFileAtomic(r.path, data)
}

// rawString returns raw[key] when it holds a JSON string.
func rawString(raw map[string]json.RawMessage, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}
