// Package settings holds the user-adjustable feed preferences.
package settings

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
)

// Preference keys.
const (
	KeyMinMagnitude = "min_magnitude"
	KeyOrderBy      = "order_by"
)

// Default preference values.
const (
	DefaultMinMagnitude = "6"
	DefaultOrderBy      = "magnitude"
)

// ErrInvalidSetting is wrapped by every validation failure from Set.
var ErrInvalidSetting = errors.New("invalid setting")

// orderings accepted by the USGS orderby parameter.
var orderings = map[string]bool{
	"time":          true,
	"time-asc":      true,
	"magnitude":     true,
	"magnitude-asc": true,
}

// Store is a concurrency-safe key-value preference store with defaults.
type Store struct {
	mu      sync.RWMutex
	values  map[string]string
	baseURL string
	limit   int
}

// NewStore creates a Store holding the defaults. baseURL and limit are fixed
// parts of every LoadConfiguration it produces.
func NewStore(baseURL string, limit int) *Store {
	return &Store{
		values: map[string]string{
			KeyMinMagnitude: DefaultMinMagnitude,
			KeyOrderBy:      DefaultOrderBy,
		},
		baseURL: baseURL,
		limit:   limit,
	}
}

// Get returns the value for key, or "" for an unknown key.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// All returns a copy of every preference.
func (s *Store) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Set validates and stores one preference.
func (s *Store) Set(key, value string) error {
	value = strings.TrimSpace(value)
	if err := validate(key, value); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// SetAll validates every entry before storing any of them.
func (s *Store) SetAll(values map[string]string) error {
	cleaned := make(map[string]string, len(values))
	for k, v := range values {
		v = strings.TrimSpace(v)
		if err := validate(k, v); err != nil {
			return err
		}
		cleaned[k] = v
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.values, cleaned)
	return nil
}

// LoadConfiguration snapshots the current preferences for one load.
func (s *Store) LoadConfiguration() domain.LoadConfiguration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.LoadConfiguration{
		BaseURL:      s.baseURL,
		MinMagnitude: s.values[KeyMinMagnitude],
		OrderBy:      s.values[KeyOrderBy],
		Limit:        s.limit,
		Format:       "geojson",
	}
}

// LoadFile applies preferences from a YAML file of string keys and values.
// Keys not present in the file keep their current values.
func (s *Store) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read settings file: %w", err)
	}

	var file map[string]string
	if err := yaml.Unmarshal(b, &file); err != nil {
		return fmt.Errorf("parse settings file: %w", err)
	}
	if err := s.SetAll(file); err != nil {
		return fmt.Errorf("settings file %s: %w", path, err)
	}
	return nil
}

func validate(key, value string) error {
	switch key {
	case KeyMinMagnitude:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("%w: %s must be a number, got %q", ErrInvalidSetting, key, value)
		}
	case KeyOrderBy:
		if !orderings[value] {
			return fmt.Errorf("%w: %s must be one of time, time-asc, magnitude, magnitude-asc, got %q", ErrInvalidSetting, key, value)
		}
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalidSetting, key)
	}
	return nil
}
