package enums

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "user", want: RoleUser},
		{in: " ADMIN ", want: RoleAdmin},
		{in: "owner", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("expected %s got %s", tt.want, got)
		}
	}
}

func TestNewRoleSetDedupesAndDropsUnknown(t *testing.T) {
	set := NewRoleSet(RoleUser, RoleAdmin, RoleUser, Role("root"))
	if len(set) != 2 {
		t.Fatalf("expected two roles, got %v", set)
	}
	if set[0] != RoleAdmin || set[1] != RoleUser {
		t.Fatalf("expected sorted set, got %v", set)
	}
}

func TestRoleSetIntersects(t *testing.T) {
	userOnly := DefaultRoles()
	admins := NewRoleSet(RoleAdmin)
	both := NewRoleSet(RoleUser, RoleAdmin)

	if userOnly.Intersects(admins) {
		t.Fatalf("plain user should not intersect admin")
	}
	if !both.Intersects(admins) {
		t.Fatalf("admin user should intersect admin")
	}
	if userOnly.Intersects(RoleSet{}) {
		t.Fatalf("empty allowed set never intersects")
	}
}

func TestParseRoleSetRejectsUnknown(t *testing.T) {
	if _, err := ParseRoleSet([]string{"user", "superuser"}); err == nil {
		t.Fatal("expected unknown role to be rejected")
	}
	set, err := ParseRoleSet([]string{"admin", "user"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.String() != "admin, user" {
		t.Fatalf("unexpected set string %q", set.String())
	}
}

func TestRoleSetOrDefault(t *testing.T) {
	if got := RoleSet(nil).OrDefault(); !got.Has(RoleUser) || len(got) != 1 {
		t.Fatalf("expected default user role, got %v", got)
	}
}
