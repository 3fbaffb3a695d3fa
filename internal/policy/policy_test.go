package policy

import (
	"testing"

	"github.com/pharmatrust/docvault/internal/model"
)

func TestCanMutateDraft(t *testing.T) {
	cases := []struct {
		name      string
		actor     model.Actor
		creatorID string
		allow     bool
	}{
		{name: "creator edits own draft", actor: model.Actor{ID: "u1", Role: model.RoleLab}, creatorID: "u1", allow: true},
		{name: "other lab user denied", actor: model.Actor{ID: "u2", Role: model.RoleLab}, creatorID: "u1", allow: false},
		{name: "management denied on foreign draft", actor: model.Actor{ID: "m1", Role: model.RoleManagement}, creatorID: "u1", allow: false},
		{name: "admin bypasses ownership", actor: model.Actor{ID: "a1", Role: model.RoleAdmin}, creatorID: "u1", allow: true},
		{name: "empty actor id denied", actor: model.Actor{ID: "", Role: model.RoleLab}, creatorID: "", allow: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanMutateDraft(tc.actor, tc.creatorID); got != tc.allow {
				t.Fatalf("CanMutateDraft(%+v, %q) = %v, want %v", tc.actor, tc.creatorID, got, tc.allow)
			}
		})
	}
}

func TestCanDecideMergeRequest(t *testing.T) {
	cases := []struct {
		role  model.Role
		allow bool
	}{
		{model.RoleAdmin, true},
		{model.RoleManagement, true},
		{model.RoleProduction, false},
		{model.RoleLab, false},
		{model.Role("unknown"), false},
	}
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			if got := CanDecideMergeRequest(model.Actor{ID: "x", Role: tc.role}); got != tc.allow {
				t.Fatalf("CanDecideMergeRequest(%q) = %v, want %v", tc.role, got, tc.allow)
			}
		})
	}
}

func TestCanAdminister(t *testing.T) {
	if !CanAdminister(model.Actor{ID: "a", Role: model.RoleAdmin}) {
		t.Fatal("admin should administer")
	}
	for _, role := range []model.Role{model.RoleManagement, model.RoleProduction, model.RoleLab} {
		if CanAdminister(model.Actor{ID: "u", Role: role}) {
			t.Fatalf("%q should not administer", role)
		}
	}
}
