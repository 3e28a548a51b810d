package models

import "testing"

func TestRoleSatisfies(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		required Role
		want     bool
	}{
		{"viewer satisfies viewer", RoleViewer, RoleViewer, true},
		{"viewer does not satisfy editor", RoleViewer, RoleEditor, false},
		{"editor satisfies viewer", RoleEditor, RoleViewer, true},
		{"admin satisfies editor", RoleAdmin, RoleEditor, true},
		{"admin does not satisfy owner", RoleAdmin, RoleOwner, false},
		{"owner satisfies admin", RoleOwner, RoleAdmin, true},
		{"owner satisfies owner", RoleOwner, RoleOwner, true},
		{"none satisfies nothing", RoleNone, RoleViewer, false},
		{"none does not satisfy none", RoleNone, RoleNone, false},
		{"viewer does not satisfy none", RoleViewer, RoleNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.Satisfies(tt.required); got != tt.want {
				t.Errorf("Satisfies(%v, %v) = %v, want %v", tt.role, tt.required, got, tt.want)
			}
		})
	}
}

func TestRoleGrantable(t *testing.T) {
	grantable := map[Role]bool{
		RoleNone:   false,
		RoleViewer: true,
		RoleEditor: true,
		RoleAdmin:  true,
		RoleOwner:  false,
	}
	for role, want := range grantable {
		if got := role.Grantable(); got != want {
			t.Errorf("%v.Grantable() = %v, want %v", role, got, want)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, name := range []string{"viewer", "editor", "admin", "owner"} {
		role, err := ParseRole(name)
		if err != nil {
			t.Fatalf("ParseRole(%q) returned error: %v", name, err)
		}
		if role.String() != name {
			t.Errorf("ParseRole(%q).String() = %q", name, role.String())
		}
	}

	for _, name := range []string{"", "none", "Viewer", "superuser"} {
		if _, err := ParseRole(name); err == nil {
			t.Errorf("ParseRole(%q) should fail", name)
		}
	}
}

func TestRolesAtOrAbove(t *testing.T) {
	tests := []struct {
		required Role
		want     []string
	}{
		{RoleViewer, []string{"viewer", "editor", "admin"}},
		{RoleEditor, []string{"editor", "admin"}},
		{RoleAdmin, []string{"admin"}},
		{RoleOwner, nil},
	}

	for _, tt := range tests {
		got := RolesAtOrAbove(tt.required)
		if len(got) != len(tt.want) {
			t.Fatalf("RolesAtOrAbove(%v) = %v, want %v", tt.required, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("RolesAtOrAbove(%v)[%d] = %q, want %q", tt.required, i, got[i], tt.want[i])
			}
		}
	}
}
