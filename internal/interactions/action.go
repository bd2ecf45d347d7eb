package interactions

import (
	"strings"

	"invite-tracker/internal/models"

	"github.com/gosimple/slug"
)

const actionSep = ":"

// NewActionID builds a component id of the form prefix:arg:arg with slugged args
func NewActionID(prefix string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, prefix)
	for _, a := range args {
		parts = append(parts, slug.Make(a))
	}
	return strings.Join(parts, actionSep)
}

// ParseActionID splits a component id into its prefix and args
func ParseActionID(id string) (string, []string) {
	parts := strings.Split(id, actionSep)
	return parts[0], parts[1:]
}

// resolveService maps slugged platform and service args back to catalog names
func resolveService(catalog models.Catalog, args []string) (string, string, bool) {
	if len(args) < 2 {
		return "", "", false
	}
	platform, ok := resolvePlatform(catalog, args[:1])
	if !ok {
		return "", "", false
	}
	for _, svc := range catalog.Services(platform) {
		if slug.Make(svc) == args[1] {
			return platform, svc, true
		}
	}
	return "", "", false
}

func resolvePlatform(catalog models.Catalog, args []string) (string, bool) {
	if len(args) < 1 {
		return "", false
	}
	for _, p := range catalog.Platforms() {
		if slug.Make(p) == args[0] {
			return p, true
		}
	}
	return "", false
}
