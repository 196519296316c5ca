package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/stratawell/internal/domain/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// loadCheckins reads the check-in file named by --file. JSON files are
// decoded with their json tags, YAML files with their yaml tags; both carry
// the same field names.
func (o *options) loadCheckins() ([]models.CheckIn, error) {
	path := o.file()
	if path == "" {
		return nil, errors.New("no check-in file given (use --file or WELLCTL_FILE)")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var checkins []models.CheckIn
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &checkins); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &checkins); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported file type %q (use .json, .yaml or .yml)", ext)
	}

	if user := o.user(); user != "" {
		kept := checkins[:0]
		for _, c := range checkins {
			if c.UserID == user {
				kept = append(kept, c)
			}
		}
		checkins = kept
	}

	o.logger.Debug("loaded check-ins",
		zap.String("file", path),
		zap.String("user", o.user()),
		zap.Int("count", len(checkins)),
	)
	return checkins, nil
}

// resolveToday returns the date analytics treat as today: --today when set,
// otherwise the current date in --timezone.
func (o *options) resolveToday() (time.Time, error) {
	loc, err := time.LoadLocation(o.timezone())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time zone %q: %w", o.timezone(), err)
	}
	if s := o.today(); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --today %q: want YYYY-MM-DD", s)
		}
		return t, nil
	}
	return time.Now().In(loc), nil
}
