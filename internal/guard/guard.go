// Package guard decides whether a session may enter a route. Decisions are
// pure functions of already-resolved session state; no I/O happens here.
package guard

import (
	"github.com/shirkaty/portal/internal/model"
	"github.com/shirkaty/portal/internal/session"
)

// Access is the protection level a route requires.
type Access int

const (
	// Public routes are open to everyone.
	Public Access = iota
	// Protected routes require an authenticated session.
	Protected
	// AdminOnly routes additionally require the admin role.
	AdminOnly
)

// Verdict is the outcome of a guard check.
type Verdict int

const (
	// Allow admits the session to the route.
	Allow Verdict = iota
	// RedirectLogin sends the visitor to sign in; Decision.ReturnTo carries
	// the route they were trying to reach.
	RedirectLogin
	// RedirectHome sends an authenticated non-admin away from an admin
	// route. The admin content is never shown.
	RedirectHome
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Decision is the guard's answer for one route visit.
type Decision struct {
	Verdict Verdict
	// ReturnTo is the originally requested route, set on RedirectLogin so
	// the visitor lands back where they started after signing in.
	ReturnTo string
}

// Check evaluates whether the session may enter route with the given access
// level.
func Check(snap session.Snapshot, access Access, route string) Decision {
	if access == Public {
		return Decision{Verdict: Allow}
	}
	if snap.State != session.Authenticated {
		return Decision{Verdict: RedirectLogin, ReturnTo: route}
	}
	if access == AdminOnly && snap.Role() != model.RoleAdmin {
		return Decision{Verdict: RedirectHome}
	}
	return Decision{Verdict: Allow}
}
