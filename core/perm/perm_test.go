package perm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type ownedRes struct {
	ownerID int
	known   bool
}

func (r ownedRes) OwnerID() (int, bool) { return r.ownerID, r.known }

var (
	admin    = &Actor{ID: 1, Role: RoleAdmin}
	owner    = &Actor{ID: 2, Role: RoleUser}
	stranger = &Actor{ID: 3, Role: RoleUser}

	allActions = []Action{Read, Create, Edit, Delete}
)

func TestCan(t *testing.T) {
	owned := ownedRes{ownerID: owner.ID, known: true}
	orphan := ownedRes{known: false}

	tests := []struct {
		name   string
		actor  *Actor
		action Action
		res    Owned
		want   bool
	}{
		{name: "nil actor denied", actor: nil, action: Read, res: owned, want: false},
		{name: "admin may edit others", actor: admin, action: Edit, res: owned, want: true},
		{name: "admin may delete others", actor: admin, action: Delete, res: owned, want: true},
		{name: "no instance: read ok", actor: stranger, action: Read, res: nil, want: true},
		{name: "no instance: create ok", actor: stranger, action: Create, res: nil, want: true},
		{name: "no instance: edit denied", actor: stranger, action: Edit, res: nil, want: false},
		{name: "no instance: delete denied", actor: stranger, action: Delete, res: nil, want: false},
		{name: "no owner: read ok", actor: stranger, action: Read, res: orphan, want: true},
		{name: "no owner: delete denied", actor: stranger, action: Delete, res: orphan, want: false},
		{name: "owner may edit", actor: owner, action: Edit, res: owned, want: true},
		{name: "owner may delete", actor: owner, action: Delete, res: owned, want: true},
		{name: "stranger may read", actor: stranger, action: Read, res: owned, want: true},
		{name: "stranger may not edit", actor: stranger, action: Edit, res: owned, want: false},
		{name: "stranger may not delete", actor: stranger, action: Delete, res: owned, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.actor, tt.action, tt.res))
		})
	}
}

func TestCan_readUniversallyPermitted(t *testing.T) {
	// any authenticated actor may read any resource, owned or not
	for _, actor := range []*Actor{admin, owner, stranger} {
		assert.True(t, Can(actor, Read, ownedRes{ownerID: owner.ID, known: true}))
		assert.True(t, Can(actor, Read, nil))
		assert.True(t, CanSession(actor, Read, owner.ID))
		assert.True(t, CanInteraction(actor, Read, owner.ID))
	}
}

func TestCanSession(t *testing.T) {
	tests := []struct {
		name   string
		actor  *Actor
		action Action
		want   bool
	}{
		{name: "nil actor denied", actor: nil, action: Read, want: false},
		{name: "anyone reads", actor: stranger, action: Read, want: true},
		{name: "admin creates", actor: admin, action: Create, want: true},
		{name: "presenter cannot create", actor: owner, action: Create, want: false},
		{name: "stranger cannot create", actor: stranger, action: Create, want: false},
		{name: "admin edits", actor: admin, action: Edit, want: true},
		{name: "admin deletes", actor: admin, action: Delete, want: true},
		{name: "presenter edits", actor: owner, action: Edit, want: true},
		{name: "presenter deletes", actor: owner, action: Delete, want: true},
		{name: "stranger cannot edit", actor: stranger, action: Edit, want: false},
		{name: "stranger cannot delete", actor: stranger, action: Delete, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanSession(tt.actor, tt.action, owner.ID))
		})
	}
}

func TestCanSession_nonPresenterEditEqualsDelete(t *testing.T) {
	// for non-admins that are not the presenter, edit and delete agree (both false)
	for _, action := range []Action{Edit, Delete} {
		assert.False(t, CanSession(stranger, action, owner.ID))
	}
}

func TestCanInteraction(t *testing.T) {
	tests := []struct {
		name   string
		actor  *Actor
		action Action
		want   bool
	}{
		{name: "nil actor denied", actor: nil, action: Create, want: false},
		{name: "anyone reads", actor: stranger, action: Read, want: true},
		{name: "anyone creates", actor: stranger, action: Create, want: true},
		{name: "author edits", actor: owner, action: Edit, want: true},
		{name: "stranger cannot edit", actor: stranger, action: Edit, want: false},
		{name: "admin edits", actor: admin, action: Edit, want: true},
		{name: "admin deletes", actor: admin, action: Delete, want: true},
		{name: "author cannot delete own", actor: owner, action: Delete, want: false},
		{name: "stranger cannot delete", actor: stranger, action: Delete, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanInteraction(tt.actor, tt.action, owner.ID))
		})
	}
}

func TestCanInteraction_deleteIsAdminOnly(t *testing.T) {
	// delete verdict depends on the role alone, never on authorship
	for _, actor := range []*Actor{owner, stranger} {
		assert.Equal(t, actor.IsAdmin(), CanInteraction(actor, Delete, actor.ID))
	}
	assert.True(t, CanInteraction(admin, Delete, admin.ID))
}

func TestActor_IsAdmin(t *testing.T) {
	assert.True(t, admin.IsAdmin())
	assert.False(t, owner.IsAdmin())
	assert.False(t, (*Actor)(nil).IsAdmin())

	var actions []bool
	for _, action := range allActions {
		actions = append(actions, Can(admin, action, ownedRes{ownerID: stranger.ID, known: true}))
	}
	assert.NotContains(t, actions, false) // admin passes everything
}
