package topic

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
)

var (
	// errors
	ErrNotFound      = errors.New("topic not found")
	ErrAlreadyJoined = errors.New("Already joined this topic")
	ErrNotMember     = errors.New("Not a member of this topic")
)

type (
	Repository interface {
		// CreateTopic stores the topic and its initial membership atomically.
		CreateTopic(ctx context.Context, tpc Topic, attendees []int) (Topic, error)
		// QueryAllTopics returns all topics with nested sessions, newest first.
		QueryAllTopics(ctx context.Context) ([]Topic, error)
		GetTopicByID(ctx context.Context, id int) (Topic, error)
		// UpdateTopic rewrites the topic; a non-nil attendees replaces the membership.
		UpdateTopic(ctx context.Context, tpc Topic, attendees []int) (Topic, error)
		// DeleteTopicByID cascades to the topic's sessions and their interactions.
		DeleteTopicByID(ctx context.Context, id int) error
		// AddAttendee returns ErrAlreadyJoined on a duplicate (topic, user) pair,
		// including when a concurrent join wins the race.
		AddAttendee(ctx context.Context, topicID, userID int) error
		// RemoveAttendee returns ErrNotMember when no membership exists.
		RemoveAttendee(ctx context.Context, topicID, userID int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new topic owned by createdBy. The creator is always an
// attendee, whether or not the caller listed them.
func (svc *Service) Create(ctx context.Context, nt NewTopic, createdBy int) (Topic, error) {
	tpc := Topic{
		Title:         nt.Title,
		StartDate:     nt.StartDate,
		EndDate:       nt.EndDate,
		IntervalType:  nt.IntervalType,
		Outline:       nt.Outline,
		ReferenceURLs: nt.ReferenceURLs,
		Keywords:      nt.Keywords,
		CreatedBy:     createdBy,
		CreatedAt:     core.NewDate(time.Now()),
		Sessions:      []session.Session{},
	}
	if tpc.ReferenceURLs == nil {
		tpc.ReferenceURLs = []string{}
	}
	if tpc.Keywords == nil {
		tpc.Keywords = []string{}
	}

	attendees := make([]int, 0, len(nt.Attendees)+1)
	attendees = append(attendees, createdBy)
	for _, id := range nt.Attendees {
		if id != createdBy {
			attendees = append(attendees, id)
		}
	}
	return svc.repo.CreateTopic(ctx, tpc, attendees)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Topic, error) {
	return svc.repo.QueryAllTopics(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Topic, error) {
	return svc.repo.GetTopicByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, ut UpdateTopic) (Topic, error) {
	tpc, err := svc.repo.GetTopicByID(ctx, id)
	if err != nil {
		return Topic{}, err
	}
	return svc.repo.UpdateTopic(ctx, ut.apply(tpc), ut.Attendees)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteTopicByID(ctx, id)
}

func (svc *Service) Join(ctx context.Context, topicID, userID int) error {
	if err := svc.repo.AddAttendee(ctx, topicID, userID); err != nil {
		if errors.Cause(err) == ErrAlreadyJoined {
			return core.NewValidationError(ErrAlreadyJoined)
		}
		return err
	}
	return nil
}

func (svc *Service) Leave(ctx context.Context, topicID, userID int) error {
	return svc.repo.RemoveAttendee(ctx, topicID, userID)
}
