package models

// DocumentVersion tags every persisted document
const DocumentVersion = 2

// Document names
const (
	InvitesDocument   = "invites.json"
	StocksDocument    = "stocks.json"
	GeneratorDocument = "generator_config.json"
	SocialDocument    = "social_config.json"
)

// Template placeholders understood by join notifications
const (
	PlaceholderJoinerName     = "<joinerName>"
	PlaceholderJoinerMention  = "<joinerMention>"
	PlaceholderInviterName    = "<inviterName>"
	PlaceholderInviterMention = "<inviterMention>"
	PlaceholderAmount         = "<amount>"
)

const DefaultJoinTemplate = "**<joinerName>** just joined.\n**<inviterName>** now has a **<amount> invites**!\nKeep inviting for better rewards!"

const DefaultNoCreditTemplate = "**<joinerName>** just joined through an invite from **<inviterName>**, which does not earn credit."

// GuildSettings configures join notifications for one guild
type GuildSettings struct {
	ChannelID        string `json:"channel_id,omitempty"`
	JoinTemplate     string `json:"join_template,omitempty"`
	NoCreditTemplate string `json:"no_credit_template,omitempty"`
}

// JoinMessage returns the configured join template or the default
func (s GuildSettings) JoinMessage() string {
	if s.JoinTemplate == "" {
		return DefaultJoinTemplate
	}
	return s.JoinTemplate
}

// NoCreditMessage returns the configured no-credit template or the default
func (s GuildSettings) NoCreditMessage() string {
	if s.NoCreditTemplate == "" {
		return DefaultNoCreditTemplate
	}
	return s.NoCreditTemplate
}

// GuildBucket holds every invite-related record of one guild
type GuildBucket struct {
	Users       map[string]InviteStats  `json:"users"`
	Members     map[string]MemberRecord `json:"members"`
	InviteCache InviteSnapshot          `json:"invite_cache"`
	Settings    GuildSettings           `json:"settings"`
	Orders      map[string][]Order      `json:"orders"`
}

// NewGuildBucket returns an empty bucket with all maps allocated
func NewGuildBucket() *GuildBucket {
	b := &GuildBucket{}
	b.ensure()
	return b
}

func (b *GuildBucket) ensure() {
	if b.Users == nil {
		b.Users = make(map[string]InviteStats)
	}
	if b.Members == nil {
		b.Members = make(map[string]MemberRecord)
	}
	if b.InviteCache == nil {
		b.InviteCache = make(InviteSnapshot)
	}
	if b.Orders == nil {
		b.Orders = make(map[string][]Order)
	}
}

// Clone returns a copy that shares no maps or slices with b
func (b *GuildBucket) Clone() *GuildBucket {
	out := &GuildBucket{
		Users:       make(map[string]InviteStats, len(b.Users)),
		Members:     make(map[string]MemberRecord, len(b.Members)),
		InviteCache: b.InviteCache.Clone(),
		Settings:    b.Settings,
		Orders:      make(map[string][]Order, len(b.Orders)),
	}
	for id, stats := range b.Users {
		out.Users[id] = stats
	}
	for id, rec := range b.Members {
		out.Members[id] = rec
	}
	for id, orders := range b.Orders {
		out.Orders[id] = append([]Order(nil), orders...)
	}
	out.ensure()
	return out
}

// InvitesDoc is the persisted shape of invites.json
type InvitesDoc struct {
	Version int                     `json:"version"`
	Servers map[string]*GuildBucket `json:"servers"`
}

// NewInvitesDoc returns an empty, current-version invites document
func NewInvitesDoc() *InvitesDoc {
	return &InvitesDoc{
		Version: DocumentVersion,
		Servers: make(map[string]*GuildBucket),
	}
}

// Normalize allocates any maps left nil by decoding
func (d *InvitesDoc) Normalize() {
	if d.Servers == nil {
		d.Servers = make(map[string]*GuildBucket)
	}
	for id, b := range d.Servers {
		if b == nil {
			d.Servers[id] = NewGuildBucket()
			continue
		}
		b.ensure()
	}
}

// Bucket returns the bucket for a guild, creating it when absent
func (d *InvitesDoc) Bucket(guildID string) *GuildBucket {
	b, ok := d.Servers[guildID]
	if !ok || b == nil {
		b = NewGuildBucket()
		d.Servers[guildID] = b
	}
	return b
}

// StocksDoc is the persisted shape of stocks.json
type StocksDoc struct {
	Version int                 `json:"version"`
	Guilds  map[string][]string `json:"guilds"`
}

// NewStocksDoc returns an empty, current-version stocks document
func NewStocksDoc() *StocksDoc {
	return &StocksDoc{
		Version: DocumentVersion,
		Guilds:  make(map[string][]string),
	}
}
