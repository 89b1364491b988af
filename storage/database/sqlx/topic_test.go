package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/topic"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening mock db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

// outline is optional on the API but NOT NULL in the schema; an empty value
// must reach the driver as '' rather than NULL.
func Test_topicRepository_CreateTopic_emptyOutline(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepository(db)

	now := time.Now()
	tpc := topic.Topic{
		Title:         "Go Generics",
		StartDate:     core.NewDate(now),
		EndDate:       core.NewDate(now.AddDate(0, 1, 0)),
		IntervalType:  topic.IntervalWeekly,
		ReferenceURLs: []string{},
		Keywords:      []string{},
		CreatedBy:     7,
		CreatedAt:     core.NewDate(now),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO topic \(`).
		WithArgs(
			tpc.Title, sqlmock.AnyArg(), sqlmock.AnyArg(), "WEEKLY",
			"", // not nil
			sqlmock.AnyArg(), sqlmock.AnyArg(), tpc.CreatedBy, sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO topic_attendee`).
		WithArgs(1, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.CreateTopic(context.Background(), tpc, []int{7})
	if err != nil {
		t.Fatalf("CreateTopic() failed: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("CreateTopic() returned ID %d; expected 1", got.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func Test_topicRepository_UpdateTopic_emptyOutline(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepository(db)

	now := time.Now()
	tpc := topic.Topic{
		ID:            3,
		Title:         "Go Generics",
		StartDate:     core.NewDate(now),
		EndDate:       core.NewDate(now.AddDate(0, 1, 0)),
		IntervalType:  topic.IntervalBiweekly,
		ReferenceURLs: []string{},
		Keywords:      []string{},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE topic`).
		WithArgs(
			tpc.Title, sqlmock.AnyArg(), sqlmock.AnyArg(), "BIWEEKLY",
			"", // not nil
			sqlmock.AnyArg(), sqlmock.AnyArg(), tpc.ID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// reload after commit
	mock.ExpectQuery(`SELECT \* FROM topic WHERE id`).
		WithArgs(tpc.ID).
		WillReturnRows(
			sqlmock.NewRows([]string{
				"id", "title", "start_date", "end_date", "interval_type",
				"outline", "reference_urls", "keywords", "created_by", "created_at",
			}).AddRow(tpc.ID, tpc.Title, now, now.AddDate(0, 1, 0), "BIWEEKLY", "", "{}", "{}", 7, now),
		)
	mock.ExpectQuery(`SELECT user_id FROM topic_attendee`).
		WithArgs(tpc.ID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	mock.ExpectQuery(`SELECT \* FROM session WHERE topic_id`).
		WithArgs(tpc.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := repo.UpdateTopic(context.Background(), tpc, nil)
	if err != nil {
		t.Fatalf("UpdateTopic() failed: %v", err)
	}
	if got.Outline != "" {
		t.Errorf("UpdateTopic() returned outline %q; expected empty", got.Outline)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
