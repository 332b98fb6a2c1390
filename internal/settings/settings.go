// Package settings keeps the storefront's site settings sections. Each
// section starts at its default and is replaced by whatever the API returns.
package settings

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
	"github.com/classiccarrry/classic-carrry-admin/internal/storefront"
)

// Remote reads and writes settings sections.
type Remote interface {
	Settings(ctx context.Context, section models.SettingsSection) (models.Resource, error)
	UpdateSettings(ctx context.Context, section models.SettingsSection, body models.Resource) error
}

// Notifier receives update outcomes.
type Notifier interface {
	Success(message string) models.Notification
	Error(message string) models.Notification
}

var sections = []models.SettingsSection{models.SectionGeneral, models.SectionAppearance, models.SectionContact}

// Service holds the current value of every section.
type Service struct {
	remote   Remote
	notifier Notifier
	logger   *zap.Logger

	mu      sync.RWMutex
	current map[models.SettingsSection]models.Resource
}

// New creates a Service holding the defaults.
func New(remote Remote, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		remote:   remote,
		notifier: notifier,
		logger:   logger,
		current:  models.DefaultSettings(),
	}
}

// Load fetches every section concurrently. A section that fails to load
// keeps its previous value; Load itself never fails.
func (s *Service) Load(ctx context.Context) {
	var g errgroup.Group
	for _, sec := range sections {
		sec := sec
		g.Go(func() error {
			s.refresh(ctx, sec)
			return nil
		})
	}
	_ = g.Wait()
}

// Get returns a copy of one section.
func (s *Service) Get(section models.SettingsSection) (models.Resource, error) {
	if !section.Valid() {
		return nil, storefront.Invalid("section", "Unknown settings section %q", section)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current[section].Clone(), nil
}

// All returns a copy of every section.
func (s *Service) All() map[models.SettingsSection]models.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[models.SettingsSection]models.Resource, len(s.current))
	for k, v := range s.current {
		out[k] = v.Clone()
	}
	return out
}

// Update replaces one section on the API, announces the outcome and
// re-reads the section on success.
func (s *Service) Update(ctx context.Context, section models.SettingsSection, body models.Resource) error {
	if !section.Valid() {
		return storefront.Invalid("section", "Unknown settings section %q", section)
	}
	label := section.Label()
	if err := s.remote.UpdateSettings(ctx, section, body.Writable()); err != nil {
		s.logger.Warn("settings update failed", zap.String("section", string(section)), zap.Error(err))
		s.notifier.Error(storefront.UserMessage(err, "Failed to update "+strings.ToLower(label)))
		return fmt.Errorf("updating %s settings: %w", section, err)
	}
	s.notifier.Success(label + " updated successfully")
	s.refresh(ctx, section)
	return nil
}

func (s *Service) refresh(ctx context.Context, section models.SettingsSection) {
	data, err := s.remote.Settings(ctx, section)
	if err != nil {
		s.logger.Warn("loading settings failed", zap.String("section", string(section)), zap.Error(err))
		return
	}
	if data == nil {
		return
	}
	s.mu.Lock()
	s.current[section] = data
	s.mu.Unlock()
}
