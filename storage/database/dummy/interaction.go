package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/interaction"
)

type interactionRepository struct {
	db *DB
}

var _ interaction.Repository = (*interactionRepository)(nil) // interface compliance check

func NewInteractionRepository(db *DB) interaction.Repository {
	return &interactionRepository{db: db}
}

func (repo *interactionRepository) CreateInteraction(ctx context.Context, itr interaction.Interaction) (interaction.Interaction, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.interactionPK++
	itr.ID = repo.db.interactionPK
	repo.db.interactions[itr.ID] = &itr
	return itr, nil
}

func (repo *interactionRepository) QueryAllInteractions(ctx context.Context) ([]interaction.Interaction, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	itrs := repo.query(func(interaction.Interaction) bool { return true })
	sort.Slice(itrs, func(i, j int) bool {
		if itrs[i].CreatedAt.Equal(itrs[j].CreatedAt.Time) {
			return itrs[i].ID > itrs[j].ID
		}
		return itrs[i].CreatedAt.After(itrs[j].CreatedAt.Time)
	})
	return itrs, nil
}

func (repo *interactionRepository) QueryInteractionsBySession(ctx context.Context, sessionID int) ([]interaction.Interaction, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	itrs := repo.query(func(itr interaction.Interaction) bool { return itr.SessionID == sessionID })
	sort.Slice(itrs, func(i, j int) bool {
		if itrs[i].CreatedAt.Equal(itrs[j].CreatedAt.Time) {
			return itrs[i].ID < itrs[j].ID
		}
		return itrs[i].CreatedAt.Before(itrs[j].CreatedAt.Time)
	})
	return itrs, nil
}

func (repo *interactionRepository) GetInteractionByID(ctx context.Context, id int) (interaction.Interaction, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if itr, ok := repo.db.interactions[id]; ok {
		return *itr, nil
	}
	return interaction.Interaction{}, interaction.ErrNotFound
}

func (repo *interactionRepository) UpdateInteraction(ctx context.Context, itr interaction.Interaction) (interaction.Interaction, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.interactions[itr.ID]; !ok {
		return interaction.Interaction{}, interaction.ErrNotFound
	}
	repo.db.interactions[itr.ID] = &itr
	return itr, nil
}

func (repo *interactionRepository) DeleteInteractionByID(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.interactions[id]; !ok {
		return interaction.ErrNotFound
	}
	delete(repo.db.interactions, id)
	return nil
}

func (repo *interactionRepository) query(keep func(interaction.Interaction) bool) []interaction.Interaction {
	itrs := make([]interaction.Interaction, 0, len(repo.db.interactions))
	for _, itr := range repo.db.interactions {
		if keep(*itr) {
			itrs = append(itrs, *itr)
		}
	}
	return itrs
}
