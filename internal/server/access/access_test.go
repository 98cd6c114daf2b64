package access

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
)

var (
	alice = &models.User{ID: "1", Role: models.RoleUser, Active: true}
	tess  = &models.User{ID: "2", Role: models.RoleTester, Active: true}
	root  = &models.User{ID: "3", Role: models.RoleAdmin, Active: true}
)

func TestRequireAuthenticated(t *testing.T) {
	ctx := context.Background()
	gate := RequireAuthenticated("/login")

	d := gate(ctx, &Request{ReturnTo: "/manage"})
	assert.Equal(t, Redirect, d.Outcome)
	assert.Equal(t, "/login?next=%2Fmanage", d.Location)

	d = gate(ctx, &Request{})
	assert.Equal(t, Decision{Outcome: Redirect, Location: "/login"}, d)

	assert.Equal(t, Allow, gate(ctx, &Request{Identity: alice}).Outcome)
}

func TestRequireRole_ExactMembership(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		roles []models.Role
		who   *models.User
		want  Outcome
	}{
		{"admin allowed", []models.Role{models.RoleAdmin}, root, Allow},
		{"user denied admin route", []models.Role{models.RoleAdmin}, alice, Forbidden},
		{"admin not implied by tester", []models.Role{models.RoleTester}, root, Forbidden},
		{"tester in set", []models.Role{models.RoleTester, models.RoleAdmin}, tess, Allow},
		{"anonymous", []models.Role{models.RoleAdmin}, nil, Forbidden},
		{"empty set", nil, root, Forbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequireRole(tt.roles...)(ctx, &Request{Identity: tt.who})
			assert.Equal(t, tt.want, got.Outcome)
			assert.Empty(t, got.Location)
		})
	}
}

func TestRequireSelfOrRole(t *testing.T) {
	ctx := context.Background()
	gate := RequireSelfOrRole(models.RoleAdmin)

	assert.Equal(t, Allow, gate(ctx, &Request{Identity: alice, TargetID: "1"}).Outcome)
	assert.Equal(t, Forbidden, gate(ctx, &Request{Identity: alice, TargetID: "3"}).Outcome)
	assert.Equal(t, Allow, gate(ctx, &Request{Identity: root, TargetID: "1"}).Outcome)
	assert.Equal(t, Forbidden, gate(ctx, &Request{Identity: tess, TargetID: ""}).Outcome)
	assert.Equal(t, Forbidden, gate(ctx, &Request{TargetID: "1"}).Outcome)
}

func TestChain_ShortCircuits(t *testing.T) {
	ctx := context.Background()
	var calls []string
	record := func(name string, out Outcome) Gate {
		return func(context.Context, *Request) Decision {
			calls = append(calls, name)
			return Decision{Outcome: out}
		}
	}

	d := Chain{record("a", Allow), record("b", Forbidden), record("c", Allow)}.Evaluate(ctx, &Request{})
	assert.Equal(t, Forbidden, d.Outcome)
	assert.Equal(t, []string{"a", "b"}, calls)

	calls = nil
	d = Chain{record("a", Allow), record("b", Allow)}.Evaluate(ctx, &Request{})
	assert.Equal(t, Allow, d.Outcome)
	assert.Equal(t, []string{"a", "b"}, calls)

	assert.Equal(t, Allow, Chain(nil).Evaluate(ctx, &Request{}).Outcome)
}

func TestChain_AnonymousIsRedirectedNotForbidden(t *testing.T) {
	ctx := context.Background()
	chain := Chain{
		RequireAuthenticated("/login"),
		RequireRole(models.RoleAdmin),
		RequireSelfOrRole(models.RoleAdmin),
	}

	d := chain.Evaluate(ctx, &Request{ReturnTo: "/users"})
	assert.Equal(t, Redirect, d.Outcome)

	d = chain.Evaluate(ctx, &Request{Identity: alice, ReturnTo: "/users"})
	assert.Equal(t, Forbidden, d.Outcome)

	d = chain.Evaluate(ctx, &Request{Identity: root, TargetID: "1"})
	assert.Equal(t, Allow, d.Outcome)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "redirect", Redirect.String())
	assert.Equal(t, "forbidden", Forbidden.String())
	assert.Equal(t, "unknown", Outcome(9).String())
}
