package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
)

type sessionRepository struct {
	db *sqlx.DB
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *sqlx.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

// refLinksJSON maps []session.ReferenceLink onto a JSONB column.
type refLinksJSON []session.ReferenceLink

func (r refLinksJSON) Value() (driver.Value, error) {
	if r == nil {
		r = refLinksJSON{}
	}
	return json.Marshal(r)
}

func (r *refLinksJSON) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return errors.Errorf("scanning reference links: unexpected type %T", src)
	}
	return json.Unmarshal(b, r)
}

type dbSession struct {
	ID            int            `db:"id"`
	TopicID       int            `db:"topic_id"`
	PresenterID   int            `db:"presenter_id"`
	StartDateTime time.Time      `db:"start_date_time"`
	Scope         string         `db:"scope"`
	Outline       string         `db:"outline"`
	NoteLinks     pq.StringArray `db:"note_links"`
	References    refLinksJSON   `db:"reference_links"`
}

func (s dbSession) toSession() session.Session {
	refs := []session.ReferenceLink(s.References)
	if refs == nil {
		refs = []session.ReferenceLink{}
	}
	return session.Session{
		ID:            s.ID,
		TopicID:       s.TopicID,
		PresenterID:   s.PresenterID,
		StartDateTime: core.NewDateTime(s.StartDateTime),
		Scope:         s.Scope,
		Outline:       s.Outline,
		NoteLinks:     []string(s.NoteLinks),
		References:    refs,
		Attendees:     []int{},
	}
}

func (repo sessionRepository) CreateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	q := `
		INSERT INTO session (topic_id, presenter_id, start_date_time, scope, outline, note_links, reference_links)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := repo.db.QueryRowContext(
		ctx, q,
		sess.TopicID, sess.PresenterID, sess.StartDateTime.UTC(),
		sess.Scope, sess.Outline, // outline is NOT NULL; "" means none
		pq.StringArray(sess.NoteLinks), refLinksJSON(sess.References),
	).Scan(&sess.ID)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "creating session")
	}
	if sess.Attendees == nil {
		sess.Attendees = []int{}
	}
	return sess, nil
}

func (repo sessionRepository) QueryAllSessions(ctx context.Context) ([]session.Session, error) {
	return querySessions(ctx, repo.db, `SELECT * FROM session ORDER BY start_date_time DESC, id DESC`)
}

func (repo sessionRepository) QuerySessionsByTopic(ctx context.Context, topicID int) ([]session.Session, error) {
	return querySessions(ctx, repo.db, `SELECT * FROM session WHERE topic_id = $1 ORDER BY start_date_time ASC, id ASC`, topicID)
}

func (repo sessionRepository) GetSessionByID(ctx context.Context, id int) (session.Session, error) {
	var row dbSession
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM session WHERE id = $1`, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, errors.Wrap(err, "finding session by ID")
	}
	sess := row.toSession()
	attendees, err := querySessionAttendees(ctx, repo.db, id)
	if err != nil {
		return session.Session{}, err
	}
	sess.Attendees = attendees[id]
	if sess.Attendees == nil {
		sess.Attendees = []int{}
	}
	return sess, nil
}

func (repo sessionRepository) UpdateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	q := `
		UPDATE session
		SET presenter_id = $1, start_date_time = $2, scope = $3, outline = $4, note_links = $5, reference_links = $6
		WHERE id = $7`
	res, err := repo.db.ExecContext(
		ctx, q,
		sess.PresenterID, sess.StartDateTime.UTC(), sess.Scope, sess.Outline,
		pq.StringArray(sess.NoteLinks), refLinksJSON(sess.References),
		sess.ID,
	)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "updating session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return session.Session{}, session.ErrNotFound
	}
	return sess, nil
}

func (repo sessionRepository) DeleteSessionByID(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM session WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return session.ErrNotFound
	}
	return nil
}

// querySessions loads sessions plus their attendee sets. Shared with the
// topic repository for nested session assembly.
func querySessions(ctx context.Context, db *sqlx.DB, query string, args ...interface{}) ([]session.Session, error) {
	var rows []dbSession
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}

	sessions := make([]session.Session, 0, len(rows))
	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toSession())
		ids = append(ids, row.ID)
	}
	if len(ids) == 0 {
		return sessions, nil
	}

	attendees, err := querySessionAttendees(ctx, db, ids...)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if a := attendees[sessions[i].ID]; a != nil {
			sessions[i].Attendees = a
		}
	}
	return sessions, nil
}

func querySessionAttendees(ctx context.Context, db *sqlx.DB, sessionIDs ...int) (map[int][]int, error) {
	q, args, err := sqlx.In(`SELECT session_id, user_id FROM session_attendee WHERE session_id IN (?)`, sessionIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building session attendees query")
	}
	rows, err := db.QueryContext(ctx, db.Rebind(q), args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying session attendees")
	}
	defer func() { _ = rows.Close() }()

	attendees := make(map[int][]int, len(sessionIDs))
	for rows.Next() {
		var sessionID, userID int
		if err := rows.Scan(&sessionID, &userID); err != nil {
			return nil, errors.Wrap(err, "scanning session attendee")
		}
		attendees[sessionID] = append(attendees[sessionID], userID)
	}
	return attendees, errors.Wrap(rows.Err(), "querying session attendees")
}
