package interaction

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
)

var ErrNotFound = errors.New("interaction not found")

type (
	Repository interface {
		CreateInteraction(ctx context.Context, itr Interaction) (Interaction, error)
		// QueryAllInteractions returns all interactions, newest first.
		QueryAllInteractions(ctx context.Context) ([]Interaction, error)
		// QueryInteractionsBySession returns a session's interactions in creation order.
		QueryInteractionsBySession(ctx context.Context, sessionID int) ([]Interaction, error)
		GetInteractionByID(ctx context.Context, id int) (Interaction, error)
		UpdateInteraction(ctx context.Context, itr Interaction) (Interaction, error)
		DeleteInteractionByID(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create records an interaction authored by the acting user. Only the
// variant's own fields are stored.
func (svc *Service) Create(ctx context.Context, ni NewInteraction, authorID int) (Interaction, error) {
	itr := Interaction{
		Kind:      ni.Kind,
		SessionID: ni.SessionID,
		AuthorID:  authorID,
		CreatedAt: core.NewDateTime(time.Now()),
	}
	if ni.Kind.IsLink() {
		itr.Label = ni.Label
		itr.Description = ni.Description
		itr.URL = ni.URL
		if ni.Kind.IsReference() {
			itr.Category = ni.Category
			if itr.Category == "" {
				itr.Category = session.CategoryWeb
			}
		}
	} else {
		itr.Content = ni.Content
	}
	return svc.repo.CreateInteraction(ctx, itr)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Interaction, error) {
	return svc.repo.QueryAllInteractions(ctx)
}

func (svc *Service) QueryBySession(ctx context.Context, sessionID int) ([]Interaction, error) {
	return svc.repo.QueryInteractionsBySession(ctx, sessionID)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Interaction, error) {
	return svc.repo.GetInteractionByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, ui UpdateInteraction) (Interaction, error) {
	itr, err := svc.repo.GetInteractionByID(ctx, id)
	if err != nil {
		return Interaction{}, err
	}
	return svc.repo.UpdateInteraction(ctx, ui.apply(itr))
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteInteractionByID(ctx, id)
}
