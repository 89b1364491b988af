package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/core/topic"
)

type topicRepository struct {
	db *DB
}

var _ topic.Repository = (*topicRepository)(nil) // interface compliance check

func NewTopicRepository(db *DB) topic.Repository {
	return &topicRepository{db: db}
}

func (repo *topicRepository) CreateTopic(ctx context.Context, tpc topic.Topic, attendees []int) (topic.Topic, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.topicPK++
	tpc.ID = repo.db.topicPK
	repo.db.topics[tpc.ID] = &tpc

	members := make([]int, 0, len(attendees))
	for _, id := range attendees {
		if !contains(members, id) {
			members = append(members, id)
		}
	}
	repo.db.topicMembers[tpc.ID] = members

	return repo.assemble(tpc), nil
}

func (repo *topicRepository) QueryAllTopics(ctx context.Context) ([]topic.Topic, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	topics := make([]topic.Topic, 0, len(repo.db.topics))
	for _, tpc := range repo.db.topics {
		topics = append(topics, repo.assemble(*tpc))
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].CreatedAt.Equal(topics[j].CreatedAt.Time) {
			return topics[i].ID > topics[j].ID
		}
		return topics[i].CreatedAt.After(topics[j].CreatedAt.Time)
	})
	return topics, nil
}

func (repo *topicRepository) GetTopicByID(ctx context.Context, id int) (topic.Topic, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tpc, ok := repo.db.topics[id]; ok {
		return repo.assemble(*tpc), nil
	}
	return topic.Topic{}, topic.ErrNotFound
}

func (repo *topicRepository) UpdateTopic(ctx context.Context, tpc topic.Topic, attendees []int) (topic.Topic, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.topics[tpc.ID]; !ok {
		return topic.Topic{}, topic.ErrNotFound
	}
	repo.db.topics[tpc.ID] = &tpc

	if attendees != nil {
		members := make([]int, 0, len(attendees))
		for _, id := range attendees {
			if !contains(members, id) {
				members = append(members, id)
			}
		}
		repo.db.topicMembers[tpc.ID] = members
	}
	return repo.assemble(tpc), nil
}

func (repo *topicRepository) DeleteTopicByID(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.topics[id]; !ok {
		return topic.ErrNotFound
	}
	delete(repo.db.topics, id)
	delete(repo.db.topicMembers, id)

	// cascade to the topic's sessions and their interactions
	for sessID, sess := range repo.db.sessions {
		if sess.TopicID != id {
			continue
		}
		delete(repo.db.sessions, sessID)
		for itrID, itr := range repo.db.interactions {
			if itr.SessionID == sessID {
				delete(repo.db.interactions, itrID)
			}
		}
	}
	return nil
}

func (repo *topicRepository) AddAttendee(ctx context.Context, topicID, userID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.topics[topicID]; !ok {
		return topic.ErrNotFound
	}
	members := repo.db.topicMembers[topicID]
	if contains(members, userID) {
		return topic.ErrAlreadyJoined
	}
	repo.db.topicMembers[topicID] = append(members, userID)
	return nil
}

func (repo *topicRepository) RemoveAttendee(ctx context.Context, topicID, userID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	members := repo.db.topicMembers[topicID]
	if !contains(members, userID) {
		return topic.ErrNotMember
	}
	repo.db.topicMembers[topicID] = remove(members, userID)
	return nil
}

// assemble attaches the membership and nested sessions. Callers must hold the lock.
func (repo *topicRepository) assemble(tpc topic.Topic) topic.Topic {
	members := repo.db.topicMembers[tpc.ID]
	tpc.Attendees = append([]int{}, members...)

	tpc.Sessions = []session.Session{}
	for _, sess := range repo.db.sessions {
		if sess.TopicID == tpc.ID {
			tpc.Sessions = append(tpc.Sessions, *sess)
		}
	}
	sort.Slice(tpc.Sessions, func(i, j int) bool {
		if tpc.Sessions[i].StartDateTime.Equal(tpc.Sessions[j].StartDateTime.Time) {
			return tpc.Sessions[i].ID < tpc.Sessions[j].ID
		}
		return tpc.Sessions[i].StartDateTime.Before(tpc.Sessions[j].StartDateTime.Time)
	})
	return tpc
}
