package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/session"
)

type sessionRepository struct {
	db *DB
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *DB) session.Repository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.sessionPK++
	sess.ID = repo.db.sessionPK
	if sess.Attendees == nil {
		sess.Attendees = []int{}
	}
	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *sessionRepository) QueryAllSessions(ctx context.Context) ([]session.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := repo.query(func(session.Session) bool { return true })
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].StartDateTime.Equal(sessions[j].StartDateTime.Time) {
			return sessions[i].ID > sessions[j].ID
		}
		return sessions[i].StartDateTime.After(sessions[j].StartDateTime.Time)
	})
	return sessions, nil
}

func (repo *sessionRepository) QuerySessionsByTopic(ctx context.Context, topicID int) ([]session.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := repo.query(func(sess session.Session) bool { return sess.TopicID == topicID })
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].StartDateTime.Equal(sessions[j].StartDateTime.Time) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].StartDateTime.Before(sessions[j].StartDateTime.Time)
	})
	return sessions, nil
}

func (repo *sessionRepository) GetSessionByID(ctx context.Context, id int) (session.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sess, ok := repo.db.sessions[id]; ok {
		return *sess, nil
	}
	return session.Session{}, session.ErrNotFound
}

func (repo *sessionRepository) UpdateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.sessions[sess.ID]; !ok {
		return session.Session{}, session.ErrNotFound
	}
	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *sessionRepository) DeleteSessionByID(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.sessions[id]; !ok {
		return session.ErrNotFound
	}
	delete(repo.db.sessions, id)

	// cascade to the session's interactions
	for itrID, itr := range repo.db.interactions {
		if itr.SessionID == id {
			delete(repo.db.interactions, itrID)
		}
	}
	return nil
}

func (repo *sessionRepository) query(keep func(session.Session) bool) []session.Session {
	sessions := make([]session.Session, 0, len(repo.db.sessions))
	for _, sess := range repo.db.sessions {
		if keep(*sess) {
			sessions = append(sessions, *sess)
		}
	}
	return sessions
}
