package models

const (
	DefaultGeneratorTitle = "Earn Fortnite Accounts"
	DefaultGeneratorText  = "Earn __FREE__ Exclusive Fortnite Accounts by inviting people to the server!\n# 1 Invite = 1 Account"
	DefaultSocialTitle    = "Social Media Rewards"
	DefaultSocialText     = "Boost your social media accounts for __FREE__ by inviting people!\n\nChoose your favorite platform below."
)

// GeneratorConfig is the embed shown by the account generator panel
type GeneratorConfig struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// DefaultGeneratorConfig returns the stock generator embed
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Title: DefaultGeneratorTitle,
		Text:  DefaultGeneratorText,
	}
}

// ServiceOverride replaces catalog pricing for one service in one guild
type ServiceOverride struct {
	PerInvite  int `json:"per_invite"`
	MinInvites int `json:"min_invites"`
}

// SocialConfig is the per-guild boost panel configuration
type SocialConfig struct {
	APIKey    string                                `json:"api_key,omitempty"`
	Title     string                                `json:"title"`
	Text      string                                `json:"text"`
	Image     string                                `json:"image,omitempty"`
	Platforms map[string]map[string]ServiceOverride `json:"platforms,omitempty"`
}

// DefaultSocialConfig returns the stock boost embed with no API key
func DefaultSocialConfig() SocialConfig {
	return SocialConfig{
		Title:     DefaultSocialTitle,
		Text:      DefaultSocialText,
		Platforms: make(map[string]map[string]ServiceOverride),
	}
}

// Override returns the guild's pricing override for a service, if any
func (c SocialConfig) Override(platform, service string) (ServiceOverride, bool) {
	svcs, ok := c.Platforms[platform]
	if !ok {
		return ServiceOverride{}, false
	}
	o, ok := svcs[service]
	return o, ok
}

// GeneratorDoc is the persisted shape of generator_config.json
type GeneratorDoc struct {
	Version int                        `json:"version"`
	Guilds  map[string]GeneratorConfig `json:"guilds"`
}

// SocialDoc is the persisted shape of social_config.json
type SocialDoc struct {
	Version int                     `json:"version"`
	Guilds  map[string]SocialConfig `json:"guilds"`
}
