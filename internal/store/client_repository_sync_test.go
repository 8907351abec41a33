package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSyncRepo(t *testing.T) (*localSyncRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &localSyncRepository{
		db:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func TestSaveOp_CoalescesByNoteID(t *testing.T) {
	repo, mock, db := newTestSyncRepo(t)
	defer db.Close()

	op := models.SyncOp{
		RequestID:           "r1",
		Op:                  models.OpUpsert,
		NoteID:              "n1",
		BaseVersion:         2,
		Note:                &models.Note{ID: "n1", Title: "edited"},
		ClientChangedFields: []string{models.FieldTitle},
	}

	mock.ExpectExec("INSERT INTO pending_ops").
		WithArgs("n1", "r1", models.OpUpsert, int64(2),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.SaveOp(context.Background(), op)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllOps_DecodesPayloads(t *testing.T) {
	repo, mock, db := newTestSyncRepo(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"note_id", "request_id", "op", "base_version",
		"note", "changed_fields", "base_note", "auto_merge_attempted",
	}).
		AddRow("n1", "r1", models.OpUpsert, int64(2),
			`{"id":"n1","title":"edited","kind":"capture","created_at":"2026-08-01T00:00:00Z","updated_at":"2026-08-01T00:00:00Z","version":2,"is_processed":false,"is_completed":false,"is_archived":false,"is_pinned":false,"priority":0,"content":""}`,
			`["title"]`, nil, false).
		AddRow("n2", "r2", models.OpDelete, int64(4),
			nil, `[]`, nil, true)

	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	ops, err := repo.GetAllOps(context.Background())
	require.NoError(t, err)
	require.Len(t, ops, 2)

	assert.Equal(t, "r1", ops[0].RequestID)
	require.NotNil(t, ops[0].Note)
	assert.Equal(t, "edited", ops[0].Note.Title)
	assert.Equal(t, []string{models.FieldTitle}, ops[0].ClientChangedFields)

	assert.Equal(t, models.OpDelete, ops[1].Op)
	assert.Nil(t, ops[1].Note)
	assert.True(t, ops[1].AutoMergeAttempted)
}

func TestSaveConflict_RoundTrip(t *testing.T) {
	repo, mock, db := newTestSyncRepo(t)
	defer db.Close()

	conflict := models.SyncConflict{
		RequestID:      "r9",
		NoteID:         "n9",
		BaseVersion:    1,
		CurrentVersion: 3,
		ServerNote:     models.Note{ID: "n9", Title: "server wins"},
		ChangedFields:  []string{models.FieldTitle, models.FieldContent},
		DetectedAt:     time.Now(),
	}

	mock.ExpectExec("INSERT INTO conflicts").
		WithArgs("r9", "n9", int64(1), int64(3),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SaveConflict(context.Background(), conflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMeta_NotFound(t *testing.T) {
	repo, mock, db := newTestSyncRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM sync_meta").
		WithArgs(MetaCursor).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetMeta(context.Background(), MetaCursor)
	if !errors.Is(err, ErrMetaNotFound) {
		t.Fatalf("expected ErrMetaNotFound, got %v", err)
	}
}
