// Package access decides whether a request may reach a protected operation.
//
// A protected route declares a Chain of gates. The chain runs before the
// handler body; the first gate that does not allow ends evaluation. Gates
// only read the request identity and never mutate state.
package access

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// Outcome is the verdict of a gate.
type Outcome int

const (
	Allow Outcome = iota
	// Redirect sends the client to log in. Recoverable.
	Redirect
	// Forbidden ends the request. Terminal.
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decision is an Outcome plus, for Redirect, where to go.
type Decision struct {
	Outcome  Outcome
	Location string
}

func allow() Decision     { return Decision{Outcome: Allow} }
func forbidden() Decision { return Decision{Outcome: Forbidden} }

// Request is what gates see of an inbound request.
type Request struct {
	// Identity is the resolved current user, nil when anonymous.
	Identity *models.User
	// ReturnTo is the originally requested operation, passed to the login
	// entry point so the client can come back after logging in.
	ReturnTo string
	// TargetID is the identity the operation acts on, if any.
	TargetID string
}

// Gate evaluates one access rule.
type Gate func(ctx context.Context, req *Request) Decision

// RequireAuthenticated redirects anonymous requests to loginPath.
func RequireAuthenticated(loginPath string) Gate {
	return func(_ context.Context, req *Request) Decision {
		if req.Identity != nil {
			return allow()
		}
		location := loginPath
		if req.ReturnTo != "" {
			location += "?" + url.Values{"next": {req.ReturnTo}}.Encode()
		}
		return Decision{Outcome: Redirect, Location: location}
	}
}

// RequireRole allows identities whose role is one of roles. Membership is
// exact: listing RoleTester does not admit RoleAdmin.
func RequireRole(roles ...models.Role) Gate {
	allowed := append([]models.Role(nil), roles...)
	return func(_ context.Context, req *Request) Decision {
		if req.Identity == nil || !req.Identity.Role.In(allowed...) {
			return forbidden()
		}
		return allow()
	}
}

// RequireSelfOrRole allows the identity named by TargetID, or any identity
// holding one of roles.
func RequireSelfOrRole(roles ...models.Role) Gate {
	allowed := append([]models.Role(nil), roles...)
	return func(_ context.Context, req *Request) Decision {
		if req.Identity == nil {
			return forbidden()
		}
		if req.TargetID != "" && req.Identity.ID == req.TargetID {
			return allow()
		}
		if req.Identity.Role.In(allowed...) {
			return allow()
		}
		return forbidden()
	}
}

// Chain is an ordered list of gates.
type Chain []Gate

// Evaluate runs the gates left to right and returns the first decision
// that is not Allow. An empty chain allows.
func (c Chain) Evaluate(ctx context.Context, req *Request) Decision {
	for _, gate := range c {
		if d := gate(ctx, req); d.Outcome != Allow {
			return d
		}
	}
	return allow()
}
