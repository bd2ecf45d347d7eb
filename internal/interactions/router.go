package interactions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"

	"invite-tracker/internal/bulkmedya"
	"invite-tracker/internal/services"
	"invite-tracker/internal/vaultcord"
)

// Kind is the type of an incoming interaction
type Kind int

const (
	KindCommand Kind = iota
	KindAction
	KindModal
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindAction:
		return "action"
	case KindModal:
		return "modal"
	}
	return "unknown"
}

// Request is a platform-neutral view of one interaction
type Request struct {
	GuildID  string
	UserID   string
	UserName string
	Admin    bool

	// Options holds slash command options by name
	Options map[string]string
	// Args are the action id arguments after the prefix
	Args []string
	// Values holds submitted modal inputs by input id
	Values map[string]string
}

// HandlerFunc answers one interaction
type HandlerFunc func(ctx context.Context, req *Request) (*Reply, error)

type route struct {
	handler HandlerFunc
	admin   bool
	// deferred routes are acknowledged first and answered with a private follow-up
	deferred bool
}

// Router dispatches commands, button actions and modal submits through fixed tables
type Router struct {
	routes map[Kind]map[string]route
}

func NewRouter() *Router {
	return &Router{
		routes: map[Kind]map[string]route{
			KindCommand: {},
			KindAction:  {},
			KindModal:   {},
		},
	}
}

func (r *Router) add(kind Kind, name string, rt route) {
	if _, dup := r.routes[kind][name]; dup {
		panic(fmt.Sprintf("duplicate %s route %q", kind, name))
	}
	r.routes[kind][name] = rt
}

// Command registers a slash command handler
func (r *Router) Command(name string, admin bool, h HandlerFunc) {
	r.add(KindCommand, name, route{handler: h, admin: admin})
}

// Action registers a button handler for an action id prefix
func (r *Router) Action(prefix string, admin bool, h HandlerFunc) {
	r.add(KindAction, prefix, route{handler: h, admin: admin})
}

// SlowAction registers a button handler that talks to external services
func (r *Router) SlowAction(prefix string, h HandlerFunc) {
	r.add(KindAction, prefix, route{handler: h, deferred: true})
}

// Modal registers a modal submit handler for an action id prefix
func (r *Router) Modal(prefix string, admin bool, h HandlerFunc) {
	r.add(KindModal, prefix, route{handler: h, admin: admin})
}

// SlowModal registers a modal submit handler that talks to external services
func (r *Router) SlowModal(prefix string, h HandlerFunc) {
	r.add(KindModal, prefix, route{handler: h, deferred: true})
}

// Deferred reports whether the interaction should be acknowledged before handling
func (r *Router) Deferred(kind Kind, id string) bool {
	name := id
	if kind != KindCommand {
		name, _ = ParseActionID(id)
	}
	return r.routes[kind][name].deferred
}

// Dispatch runs the handler for id. It never returns nil and never panics.
func (r *Router) Dispatch(ctx context.Context, kind Kind, id string, req *Request) (reply *Reply) {
	name := id
	if kind != KindCommand {
		name, req.Args = ParseActionID(id)
	}

	rt, ok := r.routes[kind][name]
	if !ok {
		log.Printf("[Interactions] Unknown %s %q", kind, id)
		return private("❌ This action is no longer available.")
	}
	if rt.admin && !req.Admin {
		return private("❌ You need administrator rights.")
	}

	defer func() {
		if p := recover(); p != nil {
			log.Printf("[Interactions] Panic in %s %q: %v\n%s", kind, id, p, debug.Stack())
			reply = private(genericFailure)
		}
	}()

	reply, err := rt.handler(ctx, req)
	if err != nil {
		return private(userMessage(kind, id, err))
	}
	if reply == nil {
		return private("✅ Done.")
	}
	return reply
}

const genericFailure = "❌ Something went wrong. Please try again later."

// userMessage turns a handler error into the text shown to the user.
// Unexpected errors are logged and reported opaquely.
func userMessage(kind Kind, id string, err error) string {
	var panelErr *bulkmedya.APIError
	var farmErr *vaultcord.APIError

	switch {
	case errors.Is(err, services.ErrInsufficientInvites):
		return "❌ Not enough invites."
	case errors.Is(err, services.ErrNoAccounts):
		return "❌ No accounts available!"
	case errors.Is(err, services.ErrInvalidLink):
		return "❌ Invalid link."
	case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, services.ErrInvalidInput):
		return "❌ " + err.Error()
	case errors.Is(err, services.ErrUnknownService):
		return "❌ Unknown service."
	case errors.Is(err, services.ErrNoAPIKey):
		return "❌ No API key configured—run /setup-social first."
	case errors.Is(err, services.ErrNoOrders):
		return "No recent orders."
	case errors.Is(err, services.ErrInvalidServerID):
		return "❌ Invalid server ID."
	case errors.Is(err, services.ErrBotNotInServer):
		return "The PULL bot is not added to that server yet. Please add it first."
	case errors.Is(err, services.ErrSweepInProgress):
		return "⏳ An invite cleanup is already running for this server."
	case errors.Is(err, services.ErrPlatformUnavailable):
		return "❌ Discord is not responding right now. Please try again later."
	case errors.As(err, &panelErr):
		return "❌ " + panelErr.Message
	case errors.As(err, &farmErr):
		return "❌ " + farmErr.Message
	}

	log.Printf("[Interactions] %s %q failed: %v", kind, id, err)
	return genericFailure
}
