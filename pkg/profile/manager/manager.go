// Package manager loads mapping profiles from disk and storage, keeps
// an in-memory registry of parsed profiles, and reloads them when the
// underlying files change.
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"caliper-hq/dccbridge/pkg/profile/ast"
	"caliper-hq/dccbridge/pkg/profile/parser"
	"caliper-hq/dccbridge/pkg/profile/store"
)

// Gauge receives the current number of loaded profiles after each
// registry swap.
type Gauge interface {
	SetProfilesLoaded(count int)
}

// Config contains configuration for the profile manager.
type Config struct {
	// Dir is the directory containing profile JSON files.
	// Empty disables directory loading.
	Dir string

	// Parser parses profile documents. Required.
	Parser *parser.Parser

	// Store is the optional persistent backend for API-managed
	// profiles. Profiles from the store take precedence over
	// same-named profiles from the directory.
	Store store.Store

	// Logger receives structured load and reload events.
	Logger *slog.Logger

	// Gauge receives the loaded-profile count. Optional.
	Gauge Gauge
}

// Manager maintains the registry of parsed mapping profiles.
// All methods are safe for concurrent use.
type Manager struct {
	dir    string
	parser *parser.Parser
	store  store.Store
	logger *slog.Logger
	gauge  Gauge

	mu       sync.RWMutex
	profiles map[string]*ast.Profile
}

// New creates a profile manager. It does not load anything; call
// LoadAll to populate the registry.
func New(cfg Config) (*Manager, error) {
	if cfg.Parser == nil {
		return nil, fmt.Errorf("profile parser is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		dir:      cfg.Dir,
		parser:   cfg.Parser,
		store:    cfg.Store,
		logger:   logger.With("component", "profile.manager"),
		gauge:    cfg.Gauge,
		profiles: make(map[string]*ast.Profile),
	}, nil
}

// LoadAll scans the profile directory and the store, parses every
// document, and atomically replaces the registry. A profile that fails
// to parse is logged and skipped; it never blocks the others.
func (m *Manager) LoadAll(ctx context.Context) error {
	loaded := make(map[string]*ast.Profile)

	if m.dir != "" {
		if err := m.loadDir(loaded); err != nil {
			return err
		}
	}
	if m.store != nil {
		if err := m.loadStore(ctx, loaded); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.profiles = loaded
	count := len(loaded)
	m.mu.Unlock()

	if m.gauge != nil {
		m.gauge.SetProfilesLoaded(count)
	}
	m.logger.Info("profiles loaded", "count", count)
	return nil
}

// loadDir parses every .json file in the profile directory into dst.
func (m *Manager) loadDir(dst map[string]*ast.Profile) error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Warn("profile directory does not exist", "dir", m.dir)
			return nil
		}
		return fmt.Errorf("reading profile directory %q: %w", m.dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		path := filepath.Join(m.dir, entry.Name())
		profile, err := m.parser.Parse(path)
		if err != nil {
			m.logger.Error("profile failed to parse, skipping",
				"path", path,
				"error", err,
			)
			continue
		}
		if existing, ok := dst[profile.Name]; ok {
			m.logger.Warn("duplicate profile name, keeping later file",
				"name", profile.Name,
				"kept", path,
				"shadowed", existing.SourceFile,
			)
		}
		dst[profile.Name] = profile
	}
	return nil
}

// loadStore parses every stored profile document into dst.
func (m *Manager) loadStore(ctx context.Context, dst map[string]*ast.Profile) error {
	records, err := m.store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing stored profiles: %w", err)
	}
	for _, record := range records {
		profile, err := m.parser.ParseBytes(record.Data, "store:"+record.Name)
		if err != nil {
			m.logger.Error("stored profile failed to parse, skipping",
				"name", record.Name,
				"error", err,
			)
			continue
		}
		dst[profile.Name] = profile
	}
	return nil
}

// Get returns the parsed profile with the given name.
func (m *Manager) Get(name string) (*ast.Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile, ok := m.profiles[name]
	return profile, ok
}

// List returns all loaded profiles ordered by name.
func (m *Manager) List() []*ast.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()

	profiles := make([]*ast.Profile, 0, len(m.profiles))
	for _, profile := range m.profiles {
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles
}

// Count returns the number of loaded profiles.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.profiles)
}

// Parse validates a profile document without registering it. Used for
// inline profiles supplied with a single conversion request.
func (m *Manager) Parse(data []byte) (*ast.Profile, error) {
	return m.parser.ParseBytes(data, "inline")
}

// Upsert validates a profile document, persists it to the store, and
// registers the parsed profile. The parsed profile is returned so
// callers can report what was accepted.
func (m *Manager) Upsert(ctx context.Context, data []byte) (*ast.Profile, error) {
	profile, err := m.parser.ParseBytes(data, "api")
	if err != nil {
		return nil, err
	}

	if m.store != nil {
		record := &store.Record{
			Name:        profile.Name,
			Data:        data,
			Description: profile.Description,
		}
		if err := m.store.Put(ctx, record); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	m.profiles[profile.Name] = profile
	count := len(m.profiles)
	m.mu.Unlock()

	if m.gauge != nil {
		m.gauge.SetProfilesLoaded(count)
	}
	m.logger.Info("profile registered", "name", profile.Name, "rules", profile.RuleCount())
	return profile, nil
}

// Delete removes a profile from the registry and the store.
// Returns store.ErrNotFound when the profile does not exist anywhere.
func (m *Manager) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	_, inRegistry := m.profiles[name]
	delete(m.profiles, name)
	count := len(m.profiles)
	m.mu.Unlock()

	var storeErr error
	if m.store != nil {
		storeErr = m.store.Delete(ctx, name)
		if storeErr == store.ErrNotFound && inRegistry {
			// Directory-loaded profile with no stored copy.
			storeErr = nil
		}
	} else if !inRegistry {
		storeErr = store.ErrNotFound
	}
	if storeErr != nil {
		return storeErr
	}

	if m.gauge != nil {
		m.gauge.SetProfilesLoaded(count)
	}
	m.logger.Info("profile removed", "name", name)
	return nil
}
