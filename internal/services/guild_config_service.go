package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"invite-tracker/internal/models"
	"invite-tracker/internal/storage"
)

// GuildConfigService owns the generator and social embed configuration documents
type GuildConfigService struct {
	store   storage.DocumentStore
	catalog models.Catalog

	mu        sync.RWMutex
	generator *models.GeneratorDoc
	social    *models.SocialDoc
}

func NewGuildConfigService(store storage.DocumentStore, catalog models.Catalog) *GuildConfigService {
	return &GuildConfigService{
		store:     store,
		catalog:   catalog,
		generator: &models.GeneratorDoc{Version: models.DocumentVersion, Guilds: make(map[string]models.GeneratorConfig)},
		social:    &models.SocialDoc{Version: models.DocumentVersion, Guilds: make(map[string]models.SocialConfig)},
	}
}

// Load reads both configuration documents; missing documents start empty
func (s *GuildConfigService) Load(ctx context.Context) error {
	gen := &models.GeneratorDoc{}
	if err := storage.LoadJSON(ctx, s.store, models.GeneratorDocument, gen); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to load generator config: %w", err)
	}
	if gen.Guilds == nil {
		gen.Guilds = make(map[string]models.GeneratorConfig)
	}
	gen.Version = models.DocumentVersion

	soc := &models.SocialDoc{}
	if err := storage.LoadJSON(ctx, s.store, models.SocialDocument, soc); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to load social config: %w", err)
	}
	if soc.Guilds == nil {
		soc.Guilds = make(map[string]models.SocialConfig)
	}
	soc.Version = models.DocumentVersion

	s.mu.Lock()
	s.generator = gen
	s.social = soc
	s.mu.Unlock()
	return nil
}

// Catalog returns the service catalog
func (s *GuildConfigService) Catalog() models.Catalog {
	return s.catalog
}

// Generator returns the guild's generator embed, or the default
func (s *GuildConfigService) Generator(guildID string) models.GeneratorConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cfg, ok := s.generator.Guilds[guildID]; ok {
		return cfg
	}
	return models.DefaultGeneratorConfig()
}

// UpdateGenerator replaces the guild's generator embed
func (s *GuildConfigService) UpdateGenerator(ctx context.Context, guildID string, cfg models.GeneratorConfig) error {
	cfg.Title = strings.TrimSpace(cfg.Title)
	cfg.Text = strings.TrimSpace(cfg.Text)
	cfg.Image = strings.TrimSpace(cfg.Image)
	if cfg.Title == "" || cfg.Text == "" {
		return fmt.Errorf("%w: title and text are required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.generator.Guilds[guildID]
	s.generator.Guilds[guildID] = cfg
	if err := storage.SaveJSON(ctx, s.store, models.GeneratorDocument, s.generator); err != nil {
		if had {
			s.generator.Guilds[guildID] = prev
		} else {
			delete(s.generator.Guilds, guildID)
		}
		return fmt.Errorf("failed to save generator config: %w", err)
	}
	return nil
}

// Social returns the guild's social config, or the default
func (s *GuildConfigService) Social(guildID string) models.SocialConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cfg, ok := s.social.Guilds[guildID]; ok {
		return cfg
	}
	return models.DefaultSocialConfig()
}

func (s *GuildConfigService) updateSocial(ctx context.Context, guildID string, fn func(cfg *models.SocialConfig) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.social.Guilds[guildID]
	cfg := models.DefaultSocialConfig()
	if had {
		cfg = prev
		// copy nested maps so a failed save leaves prev intact
		platforms := make(map[string]map[string]models.ServiceOverride, len(prev.Platforms))
		for p, svcs := range prev.Platforms {
			inner := make(map[string]models.ServiceOverride, len(svcs))
			for k, v := range svcs {
				inner[k] = v
			}
			platforms[p] = inner
		}
		cfg.Platforms = platforms
	}

	if err := fn(&cfg); err != nil {
		return err
	}

	s.social.Guilds[guildID] = cfg
	if err := storage.SaveJSON(ctx, s.store, models.SocialDocument, s.social); err != nil {
		if had {
			s.social.Guilds[guildID] = prev
		} else {
			delete(s.social.Guilds, guildID)
		}
		return fmt.Errorf("failed to save social config: %w", err)
	}
	return nil
}

// SetAPIKey stores the boost panel API key of a guild
func (s *GuildConfigService) SetAPIKey(ctx context.Context, guildID, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrNoAPIKey
	}
	return s.updateSocial(ctx, guildID, func(cfg *models.SocialConfig) error {
		cfg.APIKey = apiKey
		return nil
	})
}

// UpdateSocialEmbed replaces the text of the social embed
func (s *GuildConfigService) UpdateSocialEmbed(ctx context.Context, guildID, title, text, image string) error {
	title = strings.TrimSpace(title)
	text = strings.TrimSpace(text)
	if title == "" || text == "" {
		return fmt.Errorf("%w: title and text are required", ErrInvalidInput)
	}
	return s.updateSocial(ctx, guildID, func(cfg *models.SocialConfig) error {
		cfg.Title = title
		cfg.Text = text
		cfg.Image = strings.TrimSpace(image)
		return nil
	})
}

// SetServicePricing overrides quantity per invite and minimum invites for a service.
// The smallest possible order must still meet the panel's per-order minimum.
func (s *GuildConfigService) SetServicePricing(ctx context.Context, guildID, platform, service string, perInvite, minInvites int) error {
	spec, ok := s.catalog.Lookup(platform, service)
	if !ok {
		return ErrUnknownService
	}
	if perInvite < 1 || minInvites < 1 {
		return fmt.Errorf("%w: values must be positive", ErrInvalidAmount)
	}
	if perInvite*minInvites < spec.OrderMin {
		return fmt.Errorf("%w: the minimum quantity per order for this service is %d", ErrInvalidAmount, spec.OrderMin)
	}

	return s.updateSocial(ctx, guildID, func(cfg *models.SocialConfig) error {
		if cfg.Platforms[platform] == nil {
			cfg.Platforms[platform] = make(map[string]models.ServiceOverride)
		}
		cfg.Platforms[platform][service] = models.ServiceOverride{PerInvite: perInvite, MinInvites: minInvites}
		return nil
	})
}

// Pricing returns the catalog spec of a service with the guild's overrides applied
func (s *GuildConfigService) Pricing(guildID, platform, service string) (models.ServiceSpec, error) {
	spec, ok := s.catalog.Lookup(platform, service)
	if !ok {
		return models.ServiceSpec{}, ErrUnknownService
	}
	if o, ok := s.Social(guildID).Override(platform, service); ok {
		spec.PerInvite = o.PerInvite
		spec.MinInvites = o.MinInvites
	}
	return spec, nil
}
