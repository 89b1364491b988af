package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/core/topic"
)

// psql error codes
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

type topicRepository struct {
	db *sqlx.DB
}

var _ topic.Repository = (*topicRepository)(nil) // interface compliance check

func NewTopicRepository(db *sqlx.DB) *topicRepository {
	return &topicRepository{db: db}
}

type dbTopic struct {
	ID            int            `db:"id"`
	Title         string         `db:"title"`
	StartDate     time.Time      `db:"start_date"`
	EndDate       time.Time      `db:"end_date"`
	IntervalType  string         `db:"interval_type"`
	Outline       string         `db:"outline"`
	ReferenceURLs pq.StringArray `db:"reference_urls"`
	Keywords      pq.StringArray `db:"keywords"`
	CreatedBy     int            `db:"created_by"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (t dbTopic) toTopic() topic.Topic {
	return topic.Topic{
		ID:            t.ID,
		Title:         t.Title,
		StartDate:     core.NewDate(t.StartDate),
		EndDate:       core.NewDate(t.EndDate),
		IntervalType:  topic.Interval(t.IntervalType),
		Outline:       t.Outline,
		ReferenceURLs: []string(t.ReferenceURLs),
		Keywords:      []string(t.Keywords),
		Attendees:     []int{},
		CreatedBy:     t.CreatedBy,
		CreatedAt:     core.NewDate(t.CreatedAt),
		Sessions:      []session.Session{},
	}
}

func (repo topicRepository) CreateTopic(ctx context.Context, tpc topic.Topic, attendees []int) (topic.Topic, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return topic.Topic{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := `
		INSERT INTO topic (title, start_date, end_date, interval_type, outline, reference_urls, keywords, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err = tx.QueryRowContext(
		ctx, q,
		tpc.Title, tpc.StartDate.UTC(), tpc.EndDate.UTC(), string(tpc.IntervalType),
		tpc.Outline, // outline is NOT NULL; "" means none
		pq.StringArray(tpc.ReferenceURLs), pq.StringArray(tpc.Keywords),
		tpc.CreatedBy, tpc.CreatedAt.UTC(),
	).Scan(&tpc.ID)
	if err != nil {
		return topic.Topic{}, errors.Wrap(err, "creating topic")
	}

	if err := insertAttendees(ctx, tx, tpc.ID, attendees); err != nil {
		return topic.Topic{}, err
	}
	if err := tx.Commit(); err != nil {
		return topic.Topic{}, errors.Wrap(err, "committing transaction")
	}

	tpc.Attendees = attendees
	return tpc, nil
}

func (repo topicRepository) QueryAllTopics(ctx context.Context) ([]topic.Topic, error) {
	var rows []dbTopic
	q := `SELECT * FROM topic ORDER BY created_at DESC, id DESC`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying topics")
	}

	topics := make([]topic.Topic, 0, len(rows))
	for _, row := range rows {
		tpc, err := repo.assemble(ctx, row)
		if err != nil {
			return nil, err
		}
		topics = append(topics, tpc)
	}
	return topics, nil
}

func (repo topicRepository) GetTopicByID(ctx context.Context, id int) (topic.Topic, error) {
	var row dbTopic
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM topic WHERE id = $1`, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return topic.Topic{}, topic.ErrNotFound
		}
		return topic.Topic{}, errors.Wrap(err, "finding topic by ID")
	}
	return repo.assemble(ctx, row)
}

func (repo topicRepository) UpdateTopic(ctx context.Context, tpc topic.Topic, attendees []int) (topic.Topic, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return topic.Topic{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := `
		UPDATE topic
		SET title = $1, start_date = $2, end_date = $3, interval_type = $4, outline = $5, reference_urls = $6, keywords = $7
		WHERE id = $8`
	res, err := tx.ExecContext(
		ctx, q,
		tpc.Title, tpc.StartDate.UTC(), tpc.EndDate.UTC(), string(tpc.IntervalType),
		tpc.Outline,
		pq.StringArray(tpc.ReferenceURLs), pq.StringArray(tpc.Keywords),
		tpc.ID,
	)
	if err != nil {
		return topic.Topic{}, errors.Wrap(err, "updating topic")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return topic.Topic{}, topic.ErrNotFound
	}

	// a non-nil attendees replaces the membership wholesale
	if attendees != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM topic_attendee WHERE topic_id = $1`, tpc.ID); err != nil {
			return topic.Topic{}, errors.Wrap(err, "clearing topic attendees")
		}
		if err := insertAttendees(ctx, tx, tpc.ID, attendees); err != nil {
			return topic.Topic{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return topic.Topic{}, errors.Wrap(err, "committing transaction")
	}

	return repo.GetTopicByID(ctx, tpc.ID)
}

func (repo topicRepository) DeleteTopicByID(ctx context.Context, id int) error {
	// sessions and their interactions cascade via FK
	res, err := repo.db.ExecContext(ctx, `DELETE FROM topic WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting topic")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return topic.ErrNotFound
	}
	return nil
}

func (repo topicRepository) AddAttendee(ctx context.Context, topicID, userID int) error {
	q := `INSERT INTO topic_attendee (topic_id, user_id) VALUES ($1, $2)`
	if _, err := repo.db.ExecContext(ctx, q, topicID, userID); err != nil {
		// the unique (topic_id, user_id) constraint settles concurrent joins:
		// the loser gets the same error as a sequential duplicate
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
			switch string(pqErr.Code) {
			case pqUniqueViolation:
				return topic.ErrAlreadyJoined
			case pqForeignKeyViolation:
				return topic.ErrNotFound
			}
		}
		return errors.Wrap(err, "adding topic attendee")
	}
	return nil
}

func (repo topicRepository) RemoveAttendee(ctx context.Context, topicID, userID int) error {
	q := `DELETE FROM topic_attendee WHERE topic_id = $1 AND user_id = $2`
	res, err := repo.db.ExecContext(ctx, q, topicID, userID)
	if err != nil {
		return errors.Wrap(err, "removing topic attendee")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return topic.ErrNotMember
	}
	return nil
}

// assemble attaches the membership and nested sessions to a topic row.
func (repo topicRepository) assemble(ctx context.Context, row dbTopic) (topic.Topic, error) {
	tpc := row.toTopic()

	rows, err := repo.db.QueryContext(ctx, `SELECT user_id FROM topic_attendee WHERE topic_id = $1`, tpc.ID)
	if err != nil {
		return topic.Topic{}, errors.Wrap(err, "querying topic attendees")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var userID int
		if err := rows.Scan(&userID); err != nil {
			return topic.Topic{}, errors.Wrap(err, "scanning topic attendee")
		}
		tpc.Attendees = append(tpc.Attendees, userID)
	}
	if err := rows.Err(); err != nil {
		return topic.Topic{}, errors.Wrap(err, "querying topic attendees")
	}

	sessions, err := querySessions(ctx, repo.db, `SELECT * FROM session WHERE topic_id = $1 ORDER BY start_date_time ASC, id ASC`, tpc.ID)
	if err != nil {
		return topic.Topic{}, err
	}
	tpc.Sessions = sessions
	return tpc, nil
}

func insertAttendees(ctx context.Context, tx *sqlx.Tx, topicID int, attendees []int) error {
	for _, userID := range attendees {
		q := `INSERT INTO topic_attendee (topic_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := tx.ExecContext(ctx, q, topicID, userID); err != nil {
			return errors.Wrap(err, "adding topic attendee")
		}
	}
	return nil
}
