package models

import "fmt"

// Role is the ordered permission level attached to a grant or public link.
// Owner is never stored in a grant row; it is implied by a resource's
// owner_email and always outranks every grantable role.
type Role int

const (
	RoleNone   Role = 0
	RoleViewer Role = 1
	RoleEditor Role = 2
	RoleAdmin  Role = 3
	RoleOwner  Role = 4
)

var roleNames = map[Role]string{
	RoleViewer: "viewer",
	RoleEditor: "editor",
	RoleAdmin:  "admin",
	RoleOwner:  "owner",
}

var rolesByName = map[string]Role{
	"viewer": RoleViewer,
	"editor": RoleEditor,
	"admin":  RoleAdmin,
	"owner":  RoleOwner,
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "none"
}

// Satisfies reports whether r grants at least the required level. Every
// authorization check in the codebase goes through this comparison; there is
// no second rank table anywhere.
func (r Role) Satisfies(required Role) bool {
	if r == RoleNone || required == RoleNone {
		return false
	}
	return r >= required
}

// Grantable reports whether r may appear in a grant or public link row.
func (r Role) Grantable() bool {
	return r >= RoleViewer && r <= RoleAdmin
}

// ParseRole maps a wire-level role name to its Role. Unknown names return
// RoleNone and an error.
func ParseRole(name string) (Role, error) {
	if r, ok := rolesByName[name]; ok {
		return r, nil
	}
	return RoleNone, fmt.Errorf("unknown role %q", name)
}

// RolesAtOrAbove returns the grantable role names whose rank satisfies
// required. Used to build a single grant-table scan instead of per-resource
// role resolution.
func RolesAtOrAbove(required Role) []string {
	var names []string
	for r := RoleViewer; r <= RoleAdmin; r++ {
		if r.Satisfies(required) {
			names = append(names, r.String())
		}
	}
	return names
}
