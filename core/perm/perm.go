// Package perm decides whether an actor may perform an action on a resource.
// It is pure: no I/O, no side effects, and it never errors; every ambiguous
// or unauthenticated case evaluates to false. The API layer enforces these
// verdicts; the web client mirrors the same rules for UI gating.
package perm

// Roles are the sole capability dimension.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Action string

const (
	Read   Action = "read"
	Create Action = "create"
	Edit   Action = "edit"
	Delete Action = "delete"
)

// Actor is the authenticated user performing a request.
type Actor struct {
	ID   int
	Role string
}

func (a *Actor) IsAdmin() bool { return a != nil && a.Role == RoleAdmin }

// Owned is any resource exposing an owner-identifying field.
// ok reports whether the owner is identifiable at all.
type Owned interface {
	OwnerID() (id int, ok bool)
}

// Can evaluates the generic ownership rule (topics and other ownable
// resources). A nil res means "no specific instance", as used for
// collection-level checks.
func Can(actor *Actor, action Action, res Owned) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if res == nil {
		return action == Read || action == Create
	}
	ownerID, ok := res.OwnerID()
	if !ok {
		return action == Read || action == Create
	}
	return ownerID == actor.ID || action == Read || action == Create
}

// CanSession evaluates the session rule: anyone may read, only admins may
// create, and only the presenter or an admin may edit/delete.
func CanSession(actor *Actor, action Action, presenterID int) bool {
	if actor == nil {
		return false
	}
	if action == Read {
		return true
	}
	if action == Create {
		return actor.IsAdmin()
	}
	if actor.IsAdmin() {
		return true
	}
	return presenterID == actor.ID && (action == Edit || action == Delete)
}

// CanInteraction evaluates the interaction rule: anyone may read or create,
// only the author or an admin may edit. Deletion is admin-only; authors
// cannot delete their own interactions.
func CanInteraction(actor *Actor, action Action, authorID int) bool {
	if actor == nil {
		return false
	}
	if action == Read || action == Create {
		return true
	}
	if action == Delete {
		return actor.IsAdmin()
	}
	if actor.IsAdmin() {
		return true
	}
	return authorID == actor.ID && action == Edit
}
