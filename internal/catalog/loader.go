package catalog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/iliyamo/service-booking/internal/model"
)

const serviceExt = ".md"

// Load parses every .md file in dir, in directory listing order.  An
// unreadable directory yields an empty slice; unreadable files are
// skipped.
func Load(dir string) []model.Service {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []model.Service{}
	}
	services := make([]model.Service, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), serviceExt) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		services = append(services, Parse(string(content)))
	}
	return services
}

// Find returns the service whose title equals title.
func Find(services []model.Service, title string) (model.Service, bool) {
	for _, s := range services {
		if s.Title == title {
			return s, true
		}
	}
	return model.Service{}, false
}

// Loader re-reads the catalogue directory on every call so that content
// edits are picked up without a restart.
type Loader struct {
	Dir string
}

// NewLoader returns a Loader reading from dir.
func NewLoader(dir string) *Loader { return &Loader{Dir: dir} }

// Services returns the current catalogue.
func (l *Loader) Services() []model.Service { return Load(l.Dir) }

// Service looks a service up by title.
func (l *Loader) Service(title string) (model.Service, bool) {
	return Find(l.Services(), title)
}
