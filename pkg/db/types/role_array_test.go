package dbtypes

import (
	"testing"

	"github.com/angelmondragon/restaurant-reviews/pkg/enums"
)

func TestRoleArrayValue(t *testing.T) {
	v, err := RoleArray{enums.RoleUser, enums.RoleAdmin}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != "{user,admin}" {
		t.Fatalf("unexpected literal %v", v)
	}

	empty, err := RoleArray(nil).Value()
	if err != nil || empty != "{}" {
		t.Fatalf("expected empty literal, got %v (%v)", empty, err)
	}

	if _, err := (RoleArray{enums.Role("root")}).Value(); err == nil {
		t.Fatal("expected invalid role to fail")
	}
}

func TestRoleArrayScan(t *testing.T) {
	var roles RoleArray
	if err := roles.Scan([]byte(`{"admin",user}`)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	set := roles.Set()
	if !set.Has(enums.RoleAdmin) || !set.Has(enums.RoleUser) {
		t.Fatalf("unexpected roles %v", set)
	}

	if err := roles.Scan("{}"); err != nil || len(roles) != 0 {
		t.Fatalf("expected empty scan, got %v (%v)", roles, err)
	}
	if err := roles.Scan(nil); err != nil || len(roles) != 0 {
		t.Fatalf("expected nil scan to reset, got %v (%v)", roles, err)
	}
	if err := roles.Scan("{owner}"); err == nil {
		t.Fatal("expected unknown role to fail scan")
	}
	if err := roles.Scan(42); err == nil {
		t.Fatal("expected unsupported type to fail")
	}
}
