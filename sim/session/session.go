// Package session holds the learner's sign-in state and the gate that decides
// whether protected simulation forms render.
//
// The session value is written only through Service.Login and Service.Logout;
// every other component receives a read-only copy.
package session

import (
	"github.com/eduwrench/simclient/sim"
)

// AuthorizedFlag is the only stored flag value that counts as signed in.
const AuthorizedFlag = "true"

// SignInPrompt is shown in place of a form when the gate denies access.
const SignInPrompt = "Sign in to run simulations: simclient login --email <address>"

// Session is the sign-in state as seen by the gate and the request builder.
type Session struct {
	Authorized bool
	Identity   sim.Identity
}

// FromRecord converts a persisted record into a session. Any flag other than
// exactly "true" (including a missing one) is unauthorized.
func FromRecord(rec Record) Session {
	if rec.Login != AuthorizedFlag {
		return Session{}
	}
	return Session{Authorized: true, Identity: sim.IdentityFromEmail(rec.CurrentUser)}
}

// Decision is the outcome of evaluating the gate.
type Decision int

const (
	Unauthorized Decision = iota
	Authorized
)

func (d Decision) String() string {
	if d == Authorized {
		return "authorized"
	}
	return "unauthorized"
}

// Evaluate decides whether protected content renders. It has no side effects
// and caches nothing; callers evaluate it on every render or poll tick so a
// sign-in elsewhere is observed within one cycle. A nil session is unauthorized.
func Evaluate(s *Session) Decision {
	if s == nil || !s.Authorized {
		return Unauthorized
	}
	return Authorized
}
