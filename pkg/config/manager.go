package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ChangeListener is notified around every configuration section change.
// The property is the section name (see the Property* constants) and the
// value is the section's new content.
type ChangeListener interface {
	BeforeConfigurationChange(property string, value any)
	AfterConfigurationChange(property string, value any)
}

// Manager owns the current configuration snapshot and fans out change events
type Manager struct {
	mu        sync.RWMutex
	current   *Config
	listeners []ChangeListener
	viper     *viper.Viper
}

// NewManager creates a manager around an already loaded configuration
func NewManager(cfg *Config) *Manager {
	return &Manager{current: cfg}
}

// LoadManager loads configuration the same way Load does and keeps the
// underlying source so the manager can reload and watch it.
func LoadManager(path string, flags *pflag.FlagSet) (*Manager, error) {
	v, err := newViper(path, flags)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	return &Manager{current: cfg, viper: v}, nil
}

// Current returns the active snapshot. Callers must treat it as read-only.
func (m *Manager) Current() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// AddChangeListener registers a listener for subsequent changes
func (m *Manager) AddChangeListener(listener ChangeListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, listener)
}

type sectionChange struct {
	property string
	value    any
}

// Update installs a new snapshot and notifies listeners about every section
// that differs from the previous one. It returns the changed property names.
func (m *Manager) Update(next *Config) []string {
	m.mu.Lock()
	changes := diffSections(m.current, next)
	listeners := append([]ChangeListener(nil), m.listeners...)
	m.mu.Unlock()

	if len(changes) == 0 {
		return nil
	}

	for _, c := range changes {
		for _, l := range listeners {
			l.BeforeConfigurationChange(c.property, c.value)
		}
	}

	m.mu.Lock()
	m.current = next
	m.mu.Unlock()

	properties := make([]string, 0, len(changes))
	for _, c := range changes {
		for _, l := range listeners {
			l.AfterConfigurationChange(c.property, c.value)
		}
		properties = append(properties, c.property)
	}

	log.Info().Strs("properties", properties).Msg("configuration changed")
	return properties
}

// Reload re-reads the configuration source and applies it with Update
func (m *Manager) Reload() ([]string, error) {
	if m.viper == nil {
		return nil, fmt.Errorf("configuration was not loaded from a file")
	}
	if err := m.viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to re-read configuration: %w", err)
	}
	cfg, err := decode(m.viper)
	if err != nil {
		return nil, err
	}
	return m.Update(cfg), nil
}

// Watch reloads the configuration whenever the backing file changes
func (m *Manager) Watch() error {
	if m.viper == nil {
		return fmt.Errorf("configuration was not loaded from a file")
	}
	m.viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := decode(m.viper)
		if err != nil {
			log.Error().Err(err).Str("file", e.Name).Msg("ignoring invalid configuration change")
			return
		}
		m.Update(cfg)
	})
	m.viper.WatchConfig()
	log.Info().Str("file", m.viper.ConfigFileUsed()).Msg("watching configuration file")
	return nil
}

func diffSections(prev, next *Config) []sectionChange {
	if prev == nil {
		prev = &Config{}
	}
	sections := []struct {
		property   string
		prev, next any
	}{
		{PropertyServer, prev.Server, next.Server},
		{PropertyDatabase, prev.Database, next.Database},
		{PropertyRedis, prev.Redis, next.Redis},
		{PropertyStorage, prev.Storage, next.Storage},
		{PropertyAuth, prev.Auth, next.Auth},
		{PropertyLogging, prev.Logging, next.Logging},
		{PropertyIndex, prev.Index, next.Index},
		{PropertyManagedRepositories, prev.ManagedRepositories, next.ManagedRepositories},
		{PropertyRemoteRepositories, prev.RemoteRepositories, next.RemoteRepositories},
	}

	var changes []sectionChange
	for _, s := range sections {
		if !reflect.DeepEqual(s.prev, s.next) {
			changes = append(changes, sectionChange{property: s.property, value: s.next})
		}
	}
	return changes
}
