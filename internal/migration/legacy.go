package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"invite-tracker/internal/models"
	"invite-tracker/internal/services"
	"invite-tracker/internal/storage"
)

// Report summarises what a migration run converted
type Report struct {
	Invites      bool
	Users        int
	Members      int
	Stocks       bool
	Accounts     int
	Generator    bool
	Social       bool
	AccountsFile string
}

// Migrator converts pre-versioned documents into the per-guild schema
type Migrator struct {
	store       storage.DocumentStore
	mainGuildID string
}

func NewMigrator(store storage.DocumentStore, mainGuildID string) *Migrator {
	return &Migrator{store: store, mainGuildID: mainGuildID}
}

// legacyID accepts ids stored either as JSON numbers or strings
type legacyID string

func (id *legacyID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = legacyID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*id = legacyID(n.String())
	}
	if *id == "0" {
		*id = ""
	}
	return nil
}

type legacyMember struct {
	Inviter  legacyID `json:"inviter"`
	JoinedAt string   `json:"joined_at"`
	LeftAt   string   `json:"left_at"`
}

type legacySettings struct {
	ChannelID    legacyID `json:"channel_id"`
	JoinTemplate string   `json:"join_template"`
}

type legacyBucket struct {
	Users       map[string]models.InviteStats `json:"users"`
	Members     map[string]legacyMember       `json:"members"`
	InviteCache map[string]int                `json:"invite_cache"`
	Settings    legacySettings                `json:"settings"`
}

// legacyInvites covers both the global layout (inviters/members) and the
// unversioned per-server layout (servers)
type legacyInvites struct {
	Inviters map[string]models.InviteStats `json:"inviters"`
	Members  map[string]legacyMember       `json:"members"`
	Servers  map[string]legacyBucket       `json:"servers"`
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999"}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func (m legacyMember) record() models.MemberRecord {
	var rec models.MemberRecord
	if m.Inviter != "" {
		inviter := string(m.Inviter)
		rec.InviterID = &inviter
	}
	if t, ok := parseTime(m.JoinedAt); ok {
		rec.JoinedAt = t
	}
	if t, ok := parseTime(m.LeftAt); ok {
		rec.LeftAt = &t
	}
	return rec
}

func fillBucket(b *models.GuildBucket, users map[string]models.InviteStats, members map[string]legacyMember) {
	for id, stats := range users {
		b.Users[id] = stats
	}
	for id, m := range members {
		b.Members[id] = m.record()
	}
}

// load returns the raw document and whether it still needs converting
func (m *Migrator) load(ctx context.Context, name string) ([]byte, bool, error) {
	var probe struct{}
	err := storage.LoadJSON(ctx, m.store, name, &probe)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, false, nil
	case errors.Is(err, storage.ErrLegacySchema):
		data, lerr := m.store.Load(ctx, name)
		return data, true, lerr
	case err != nil:
		return nil, false, err
	}
	return nil, false, nil
}

// Run converts every legacy document it finds. Documents already in the
// current schema are left alone, so running twice is harmless.
// accountsFile lines are appended to the main guild's stock when it exists.
func (m *Migrator) Run(ctx context.Context, accountsFile string) (*Report, error) {
	if m.mainGuildID == "" {
		return nil, fmt.Errorf("MAIN_GUILD_ID is required to migrate global data")
	}

	report := &Report{AccountsFile: accountsFile}
	steps := []func(context.Context, *Report) error{
		m.migrateInvites,
		m.migrateStocks,
		m.migrateGenerator,
		m.migrateSocial,
	}
	for _, step := range steps {
		if err := step(ctx, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (m *Migrator) migrateInvites(ctx context.Context, report *Report) error {
	data, legacy, err := m.load(ctx, models.InvitesDocument)
	if err != nil || !legacy {
		return err
	}

	var old legacyInvites
	if err := json.Unmarshal(data, &old); err != nil {
		return fmt.Errorf("failed to decode legacy %s: %w", models.InvitesDocument, err)
	}

	doc := models.NewInvitesDoc()
	for guildID, lb := range old.Servers {
		b := doc.Bucket(guildID)
		fillBucket(b, lb.Users, lb.Members)
		for code, uses := range lb.InviteCache {
			b.InviteCache[code] = uses
		}
		b.Settings = models.GuildSettings{
			ChannelID:    string(lb.Settings.ChannelID),
			JoinTemplate: lb.Settings.JoinTemplate,
		}
		report.Users += len(lb.Users)
		report.Members += len(lb.Members)
	}
	if len(old.Inviters) > 0 || len(old.Members) > 0 {
		fillBucket(doc.Bucket(m.mainGuildID), old.Inviters, old.Members)
		report.Users += len(old.Inviters)
		report.Members += len(old.Members)
	}

	if err := storage.SaveJSON(ctx, m.store, models.InvitesDocument, doc); err != nil {
		return err
	}
	report.Invites = true
	log.Printf("[Migrate] Converted %s: %d users, %d members", models.InvitesDocument, report.Users, report.Members)
	return nil
}

func (m *Migrator) migrateStocks(ctx context.Context, report *Report) error {
	doc := models.NewStocksDoc()
	err := storage.LoadJSON(ctx, m.store, models.StocksDocument, doc)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		err = nil
	case errors.Is(err, storage.ErrLegacySchema):
		data, lerr := m.store.Load(ctx, models.StocksDocument)
		if lerr != nil {
			return lerr
		}
		doc = models.NewStocksDoc()
		if err := json.Unmarshal(data, &doc.Guilds); err != nil {
			return fmt.Errorf("failed to decode legacy %s: %w", models.StocksDocument, err)
		}
		report.Stocks = true
		err = nil
	}
	if err != nil {
		return err
	}
	if doc.Guilds == nil {
		doc.Guilds = make(map[string][]string)
	}

	if report.AccountsFile != "" {
		lines, ferr := services.ReadAccountsFile(report.AccountsFile)
		if ferr != nil {
			log.Printf("[Migrate] Skipping accounts file: %v", ferr)
		}
		existing := make(map[string]bool)
		for _, acc := range doc.Guilds[m.mainGuildID] {
			existing[acc] = true
		}
		for _, ln := range lines {
			if !existing[ln] {
				doc.Guilds[m.mainGuildID] = append(doc.Guilds[m.mainGuildID], ln)
				existing[ln] = true
				report.Accounts++
			}
		}
	}

	if !report.Stocks && report.Accounts == 0 {
		return nil
	}
	if err := storage.SaveJSON(ctx, m.store, models.StocksDocument, doc); err != nil {
		return err
	}
	log.Printf("[Migrate] Wrote %s (%d accounts imported from file)", models.StocksDocument, report.Accounts)
	return nil
}

func (m *Migrator) migrateGenerator(ctx context.Context, report *Report) error {
	data, legacy, err := m.load(ctx, models.GeneratorDocument)
	if err != nil || !legacy {
		return err
	}

	doc := &models.GeneratorDoc{Version: models.DocumentVersion}
	if err := json.Unmarshal(data, &doc.Guilds); err != nil {
		return fmt.Errorf("failed to decode legacy %s: %w", models.GeneratorDocument, err)
	}
	if err := storage.SaveJSON(ctx, m.store, models.GeneratorDocument, doc); err != nil {
		return err
	}
	report.Generator = true
	log.Printf("[Migrate] Converted %s for %d guilds", models.GeneratorDocument, len(doc.Guilds))
	return nil
}

func (m *Migrator) migrateSocial(ctx context.Context, report *Report) error {
	data, legacy, err := m.load(ctx, models.SocialDocument)
	if err != nil || !legacy {
		return err
	}

	doc := &models.SocialDoc{Version: models.DocumentVersion}
	if err := json.Unmarshal(data, &doc.Guilds); err != nil {
		return fmt.Errorf("failed to decode legacy %s: %w", models.SocialDocument, err)
	}
	for guildID, cfg := range doc.Guilds {
		cfg.APIKey = strings.TrimSpace(cfg.APIKey)
		doc.Guilds[guildID] = cfg
	}
	if err := storage.SaveJSON(ctx, m.store, models.SocialDocument, doc); err != nil {
		return err
	}
	report.Social = true
	log.Printf("[Migrate] Converted %s for %d guilds", models.SocialDocument, len(doc.Guilds))
	return nil
}
