package task

import "taskops-controlplane/services/identity"

// Permission rules are pure and stateless: they map (actor, task) to a
// yes/no and raise nothing. The HTTP boundary re-checks every mutation and
// rejects with Forbidden; views merely hide controls.

// CanCreate allows any authenticated identity to create a task. The author
// field is always forced to the actor's display name, never caller-supplied.
func CanCreate(actor identity.Identity) bool {
	return actor.Username != ""
}

// CanEdit covers description, client, target date and assignee. Status has
// its own rule and author is never editable by anyone.
func CanEdit(actor identity.Identity, t Task) bool {
	if actor.IsManager() {
		return true
	}
	return t.Assignee == actor.DisplayName
}

// CanChangeStatus is a lighter-weight action than full edit: Managers may
// flip status on any task, Operators only on tasks assigned to them.
func CanChangeStatus(actor identity.Identity, t Task) bool {
	if actor.IsManager() {
		return true
	}
	return actor.Role == identity.RoleOperator && t.Assignee == actor.DisplayName
}

// CanDelete is Manager-only, regardless of status or assignee.
func CanDelete(actor identity.Identity) bool {
	return actor.IsManager()
}

// CanComment allows any authenticated identity viewing the task.
func CanComment(actor identity.Identity) bool {
	return actor.Username != ""
}
