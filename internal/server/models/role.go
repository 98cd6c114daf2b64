package models

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

// Role is a privilege level. The set is closed and totally ordered:
// RoleAnonymous < RoleUser < RoleTester < RoleAdmin.
//
// Authorization never compares roles by order; gates list every permitted
// role explicitly.
type Role int

const (
	RoleAnonymous Role = iota
	RoleUser
	RoleTester
	RoleAdmin
)

type roleInfo struct {
	name        string
	description string
}

var roleTable = [...]roleInfo{
	RoleAnonymous: {name: "anonymous", description: "Anonymous"},
	RoleUser:      {name: "user", description: "Normal user"},
	RoleTester:    {name: "tester", description: "Tester"},
	RoleAdmin:     {name: "admin", description: "Admin"},
}

// Roles returns every role in ascending order.
func Roles() []Role {
	return []Role{RoleAnonymous, RoleUser, RoleTester, RoleAdmin}
}

// ParseRole maps a machine name back to its Role.
func ParseRole(name string) (Role, error) {
	for i, info := range roleTable {
		if info.name == name {
			return Role(i), nil
		}
	}
	return RoleAnonymous, fmt.Errorf("%w: %q", common.ErrUnknownRole, name)
}

func (r Role) valid() bool {
	return r >= RoleAnonymous && int(r) < len(roleTable)
}

// String returns the machine name used in storage and JSON.
func (r Role) String() string {
	if !r.valid() {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleTable[r].name
}

// Description returns the human readable label.
func (r Role) Description() string {
	if !r.valid() {
		return ""
	}
	return roleTable[r].description
}

// Less reports whether r ranks below other.
func (r Role) Less(other Role) bool {
	return r < other
}

// In reports exact membership of r in roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}

func (r Role) MarshalJSON() ([]byte, error) {
	if !r.valid() {
		return nil, fmt.Errorf("%w: %d", common.ErrUnknownRole, int(r))
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	parsed, err := ParseRole(name)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
