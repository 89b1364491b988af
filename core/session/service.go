package session

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("session not found")

type (
	Repository interface {
		CreateSession(ctx context.Context, sess Session) (Session, error)
		// QueryAllSessions returns all sessions, most recent start time first.
		QueryAllSessions(ctx context.Context) ([]Session, error)
		// QuerySessionsByTopic returns a topic's sessions in chronological order.
		QuerySessionsByTopic(ctx context.Context, topicID int) ([]Session, error)
		GetSessionByID(ctx context.Context, id int) (Session, error)
		UpdateSession(ctx context.Context, sess Session) (Session, error)
		DeleteSessionByID(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewSession) (Session, error) {
	sess := Session{
		TopicID:       ns.TopicID,
		PresenterID:   ns.PresenterID,
		StartDateTime: ns.StartDateTime,
		Scope:         ns.Scope,
		Outline:       ns.Outline,
		NoteLinks:     ns.NoteLinks,
		References:    ns.References,
	}
	if sess.NoteLinks == nil {
		sess.NoteLinks = []string{}
	}
	if sess.References == nil {
		sess.References = []ReferenceLink{}
	}
	return svc.repo.CreateSession(ctx, sess)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Session, error) {
	return svc.repo.QueryAllSessions(ctx)
}

func (svc *Service) QueryByTopic(ctx context.Context, topicID int) ([]Session, error) {
	return svc.repo.QuerySessionsByTopic(ctx, topicID)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Session, error) {
	return svc.repo.GetSessionByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateSession) (Session, error) {
	sess, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	return svc.repo.UpdateSession(ctx, us.apply(sess))
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteSessionByID(ctx, id)
}
