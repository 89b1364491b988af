package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
)

func Test_sessionRepository_CreateSession_emptyOutline(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	sess := session.Session{
		TopicID:       1,
		PresenterID:   7,
		StartDateTime: core.NewDateTime(time.Now()),
		Scope:         "Range clauses",
		NoteLinks:     []string{},
		References:    []session.ReferenceLink{},
	}

	mock.ExpectQuery(`INSERT INTO session \(`).
		WithArgs(
			sess.TopicID, sess.PresenterID, sqlmock.AnyArg(), sess.Scope,
			"", // not nil
			sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	got, err := repo.CreateSession(context.Background(), sess)
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	if got.ID != 5 {
		t.Errorf("CreateSession() returned ID %d; expected 5", got.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func Test_sessionRepository_UpdateSession_emptyOutline(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	sess := session.Session{
		ID:            5,
		TopicID:       1,
		PresenterID:   7,
		StartDateTime: core.NewDateTime(time.Now()),
		Scope:         "Range clauses",
		NoteLinks:     []string{},
		References:    []session.ReferenceLink{},
	}

	mock.ExpectExec(`UPDATE session`).
		WithArgs(
			sess.PresenterID, sqlmock.AnyArg(), sess.Scope,
			"", // not nil
			sqlmock.AnyArg(), sqlmock.AnyArg(), sess.ID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if _, err := repo.UpdateSession(context.Background(), sess); err != nil {
		t.Fatalf("UpdateSession() failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
