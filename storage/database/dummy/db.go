package dummydb

import (
	"sync"

	"github.com/trezcool/darasa/core/interaction"
	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/core/topic"
	"github.com/trezcool/darasa/core/user"
)

// DB is an in-memory stand-in for the real database, used in tests.
// A single lock guards all tables so cross-table operations (cascading
// deletes, content counts) stay consistent.
type DB struct {
	sync.RWMutex

	users        map[int]*user.User
	topics       map[int]*topic.Topic
	topicMembers map[int][]int // topicID -> userIDs, in join order
	sessions     map[int]*session.Session
	interactions map[int]*interaction.Interaction

	userPK, topicPK, sessionPK, interactionPK int
}

func Open() (*DB, error) {
	db := &DB{
		users:        make(map[int]*user.User),
		topics:       make(map[int]*topic.Topic),
		topicMembers: make(map[int][]int),
		sessions:     make(map[int]*session.Session),
		interactions: make(map[int]*interaction.Interaction),
	}
	return db, nil
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []int, id int) []int {
	out := make([]int, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
