package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInviteStatsValid(t *testing.T) {
	cases := []struct {
		stats InviteStats
		want  int
	}{
		{InviteStats{}, 0},
		{InviteStats{Regular: 5, Fake: 2, Bonus: 1}, 4},
		{InviteStats{Regular: 1, Bonus: -3}, -2},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.stats.Valid())
		assert.Equal(t, c.want, BalanceOf(c.stats).Valid)
	}
}

func TestLinkMatchesPlatform(t *testing.T) {
	assert.True(t, LinkMatchesPlatform("youtube", "https://youtu.be/abc"))
	assert.True(t, LinkMatchesPlatform("youtube", "https://www.YouTube.com/watch?v=1"))
	assert.True(t, LinkMatchesPlatform("tiktok", "https://tiktok.com/@me"))
	assert.False(t, LinkMatchesPlatform("twitter", "https://x.com/me"))
	assert.False(t, LinkMatchesPlatform("myspace", "https://myspace.com"))
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	spec, ok := c.Lookup("tiktok", "followers")
	assert.True(t, ok)
	assert.Equal(t, 9124, spec.ServiceID)
	assert.Equal(t, 30, spec.RefillDays)

	_, ok = c.Lookup("tiktok", "subscribers")
	assert.False(t, ok)

	assert.Equal(t, []string{"instagram", "tiktok", "twitch", "twitter", "youtube"}, c.Platforms())
	assert.Equal(t, []string{"followers", "likes", "shares"}, c.RefillableServices("tiktok"))
	assert.Empty(t, c.RefillableServices("twitter"))
}

func TestInvitesDocNormalize(t *testing.T) {
	doc := &InvitesDoc{Servers: map[string]*GuildBucket{"g1": nil, "g2": {}}}
	doc.Normalize()

	assert.NotNil(t, doc.Servers["g1"].Users)
	assert.NotNil(t, doc.Servers["g2"].InviteCache)
	assert.NotNil(t, doc.Bucket("g3").Orders)
}

func TestSettingsDefaults(t *testing.T) {
	var s GuildSettings
	assert.Equal(t, DefaultJoinTemplate, s.JoinMessage())
	s.JoinTemplate = "custom"
	assert.Equal(t, "custom", s.JoinMessage())
}
