package models

import (
	"sort"
	"strings"
)

// Link types a service accepts
const (
	LinkProfile = "profile"
	LinkVideo   = "video"
	LinkShort   = "short"
	LinkPost    = "post"
	LinkReel    = "reel"
	LinkClip    = "clip"
	LinkStream  = "stream"
	LinkTweet   = "tweet"
)

// ServiceSpec describes one boost service offered through the panel
type ServiceSpec struct {
	ServiceID  int    `json:"service_id"`
	PerInvite  int    `json:"per_invite"`
	MinInvites int    `json:"min_invites"`
	LinkType   string `json:"link_type"`
	// OrderMin is the smallest quantity the panel accepts for one order
	OrderMin int `json:"order_min"`
	// RefillDays is the refill window; zero means the service is not refillable
	RefillDays int `json:"refill_days,omitempty"`
}

// Catalog maps platform -> service name -> spec
type Catalog map[string]map[string]ServiceSpec

// DefaultCatalog returns the services offered out of the box
func DefaultCatalog() Catalog {
	return Catalog{
		"tiktok": {
			"followers": {ServiceID: 9124, PerInvite: 25, MinInvites: 4, LinkType: LinkProfile, OrderMin: 10, RefillDays: 30},
			"likes":     {ServiceID: 11989, PerInvite: 100, MinInvites: 1, LinkType: LinkVideo, OrderMin: 10, RefillDays: 7},
			"views":     {ServiceID: 3612, PerInvite: 10000, MinInvites: 1, LinkType: LinkVideo, OrderMin: 100},
			"shares":    {ServiceID: 3395, PerInvite: 200, MinInvites: 1, LinkType: LinkVideo, OrderMin: 10, RefillDays: 30},
		},
		"youtube": {
			"subscribers": {ServiceID: 6810, PerInvite: 20, MinInvites: 5, LinkType: LinkProfile, OrderMin: 20, RefillDays: 30},
			"likes":       {ServiceID: 273, PerInvite: 100, MinInvites: 1, LinkType: LinkVideo, OrderMin: 10, RefillDays: 30},
			"views":       {ServiceID: 8190, PerInvite: 125, MinInvites: 4, LinkType: LinkVideo, OrderMin: 500},
			"short likes": {ServiceID: 9593, PerInvite: 50, MinInvites: 1, LinkType: LinkShort, OrderMin: 10},
		},
		"instagram": {
			"followers":   {ServiceID: 9086, PerInvite: 25, MinInvites: 4, LinkType: LinkProfile, OrderMin: 10, RefillDays: 30},
			"likes":       {ServiceID: 8173, PerInvite: 250, MinInvites: 1, LinkType: LinkPost, OrderMin: 10},
			"views":       {ServiceID: 11762, PerInvite: 1000, MinInvites: 1, LinkType: LinkReel, OrderMin: 100},
			"shares":      {ServiceID: 11875, PerInvite: 750, MinInvites: 2, LinkType: LinkPost, OrderMin: 100},
			"story views": {ServiceID: 6323, PerInvite: 10000, MinInvites: 1, LinkType: LinkProfile, OrderMin: 100},
		},
		"twitch": {
			"followers":          {ServiceID: 11122, PerInvite: 200, MinInvites: 1, LinkType: LinkProfile, OrderMin: 10},
			"clip views":         {ServiceID: 11121, PerInvite: 300, MinInvites: 1, LinkType: LinkClip, OrderMin: 10, RefillDays: 30},
			"livestream viewers": {ServiceID: 1500, PerInvite: 25, MinInvites: 4, LinkType: LinkStream, OrderMin: 5},
		},
		"twitter": {
			"followers":   {ServiceID: 9924, PerInvite: 100, MinInvites: 1, LinkType: LinkProfile, OrderMin: 10},
			"likes":       {ServiceID: 10670, PerInvite: 250, MinInvites: 1, LinkType: LinkTweet, OrderMin: 100},
			"retweet":     {ServiceID: 10671, PerInvite: 250, MinInvites: 1, LinkType: LinkTweet, OrderMin: 100},
			"tweet views": {ServiceID: 11719, PerInvite: 10000, MinInvites: 1, LinkType: LinkTweet, OrderMin: 100},
		},
	}
}

// Lookup returns the spec for platform/service
func (c Catalog) Lookup(platform, service string) (ServiceSpec, bool) {
	svcs, ok := c[platform]
	if !ok {
		return ServiceSpec{}, false
	}
	spec, ok := svcs[service]
	return spec, ok
}

// Platforms returns platform names in a stable order
func (c Catalog) Platforms() []string {
	out := make([]string, 0, len(c))
	for p := range c {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Services returns the service names of a platform in a stable order
func (c Catalog) Services(platform string) []string {
	svcs := c[platform]
	out := make([]string, 0, len(svcs))
	for s := range svcs {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// RefillableServices returns the services of a platform that support refills
func (c Catalog) RefillableServices(platform string) []string {
	var out []string
	for _, s := range c.Services(platform) {
		if c[platform][s].RefillDays > 0 {
			out = append(out, s)
		}
	}
	return out
}

// LinkMatchesPlatform reports whether link plausibly points at the platform
func LinkMatchesPlatform(platform, link string) bool {
	l := strings.ToLower(link)
	switch platform {
	case "tiktok":
		return strings.Contains(l, "tiktok")
	case "youtube":
		return strings.Contains(l, "youtube") || strings.Contains(l, "youtu.be")
	case "instagram":
		return strings.Contains(l, "instagram")
	case "twitch":
		return strings.Contains(l, "twitch")
	case "twitter":
		return strings.Contains(l, "twitter")
	}
	return false
}
