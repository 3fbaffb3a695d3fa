// Package policy is the pure access predicate for the approval workflow.
// It never touches storage and never returns errors; callers translate a
// deny into a forbidden error at the service boundary.
package policy

import "github.com/pharmatrust/docvault/internal/model"

// CanMutateDraft reports whether the actor may edit or delete a draft owned
// by creatorID. Drafts are exclusively owned by their creator; admin bypasses.
func CanMutateDraft(actor model.Actor, creatorID string) bool {
	if actor.Role == model.RoleAdmin {
		return true
	}
	return actor.ID != "" && actor.ID == creatorID
}

// CanDecideMergeRequest reports whether the actor may approve or reject merge
// requests.
func CanDecideMergeRequest(actor model.Actor) bool {
	return actor.Role == model.RoleManagement || actor.Role == model.RoleAdmin
}

// CanAdminister covers document/user administration and audit log access.
func CanAdminister(actor model.Actor) bool {
	return actor.Role == model.RoleAdmin
}

// CanBeApprover reports whether a user may be designated as the approver of a
// merge request. Mirrors CanDecideMergeRequest so a request can never be
// assigned to someone who could not later decide it.
func CanBeApprover(role model.Role) bool {
	return role == model.RoleManagement || role == model.RoleAdmin
}
