package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/interaction"
	"github.com/trezcool/darasa/core/session"
)

type interactionRepository struct {
	db *sqlx.DB
}

var _ interaction.Repository = (*interactionRepository)(nil) // interface compliance check

func NewInteractionRepository(db *sqlx.DB) *interactionRepository {
	return &interactionRepository{db: db}
}

type dbInteraction struct {
	ID          int         `db:"id"`
	Kind        string      `db:"kind"`
	SessionID   int         `db:"session_id"`
	AuthorID    int         `db:"author_id"`
	Content     null.String `db:"content"`
	Label       null.String `db:"label"`
	Description null.String `db:"description"`
	URL         null.String `db:"url"`
	Category    null.String `db:"category"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (i dbInteraction) toInteraction() interaction.Interaction {
	return interaction.Interaction{
		ID:          i.ID,
		Kind:        interaction.Kind(i.Kind),
		SessionID:   i.SessionID,
		AuthorID:    i.AuthorID,
		Content:     i.Content.String,
		Label:       i.Label.String,
		Description: i.Description.String,
		URL:         i.URL.String,
		Category:    session.Category(i.Category.String),
		CreatedAt:   core.NewDateTime(i.CreatedAt),
	}
}

func (repo interactionRepository) CreateInteraction(ctx context.Context, itr interaction.Interaction) (interaction.Interaction, error) {
	q := `
		INSERT INTO interaction (kind, session_id, author_id, content, label, description, url, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := repo.db.QueryRowContext(
		ctx, q,
		string(itr.Kind), itr.SessionID, itr.AuthorID,
		null.NewString(itr.Content, itr.Content != ""),
		null.NewString(itr.Label, itr.Label != ""),
		null.NewString(itr.Description, itr.Description != ""),
		null.NewString(itr.URL, itr.URL != ""),
		null.NewString(string(itr.Category), itr.Category != ""),
		itr.CreatedAt.UTC(),
	).Scan(&itr.ID)
	if err != nil {
		return interaction.Interaction{}, errors.Wrap(err, "creating interaction")
	}
	return itr, nil
}

func (repo interactionRepository) QueryAllInteractions(ctx context.Context) ([]interaction.Interaction, error) {
	q := `SELECT * FROM interaction ORDER BY created_at DESC, id DESC`
	return repo.queryInteractions(ctx, q)
}

func (repo interactionRepository) QueryInteractionsBySession(ctx context.Context, sessionID int) ([]interaction.Interaction, error) {
	q := `SELECT * FROM interaction WHERE session_id = $1 ORDER BY created_at ASC, id ASC`
	return repo.queryInteractions(ctx, q, sessionID)
}

func (repo interactionRepository) GetInteractionByID(ctx context.Context, id int) (interaction.Interaction, error) {
	var row dbInteraction
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM interaction WHERE id = $1`, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return interaction.Interaction{}, interaction.ErrNotFound
		}
		return interaction.Interaction{}, errors.Wrap(err, "finding interaction by ID")
	}
	return row.toInteraction(), nil
}

func (repo interactionRepository) UpdateInteraction(ctx context.Context, itr interaction.Interaction) (interaction.Interaction, error) {
	q := `
		UPDATE interaction
		SET content = $1, label = $2, description = $3, url = $4, category = $5
		WHERE id = $6`
	res, err := repo.db.ExecContext(
		ctx, q,
		null.NewString(itr.Content, itr.Content != ""),
		null.NewString(itr.Label, itr.Label != ""),
		null.NewString(itr.Description, itr.Description != ""),
		null.NewString(itr.URL, itr.URL != ""),
		null.NewString(string(itr.Category), itr.Category != ""),
		itr.ID,
	)
	if err != nil {
		return interaction.Interaction{}, errors.Wrap(err, "updating interaction")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return interaction.Interaction{}, interaction.ErrNotFound
	}
	return itr, nil
}

func (repo interactionRepository) DeleteInteractionByID(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM interaction WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting interaction")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return interaction.ErrNotFound
	}
	return nil
}

func (repo interactionRepository) queryInteractions(ctx context.Context, query string, args ...interface{}) ([]interaction.Interaction, error) {
	var rows []dbInteraction
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying interactions")
	}
	itrs := make([]interaction.Interaction, 0, len(rows))
	for _, row := range rows {
		itrs = append(itrs, row.toInteraction())
	}
	return itrs, nil
}
