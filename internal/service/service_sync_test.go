package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bananahana720/pocket-brain-sub000/internal/config"
	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/mock"
	"github.com/bananahana720/pocket-brain-sub000/internal/store"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

type syncMocks struct {
	notes        *mock.MockNoteRepository
	changeLog    *mock.MockChangeLogRepository
	pushRequests *mock.MockPushRequestRepository
	users        *mock.MockUserRepository
}

func newTestSyncService(t *testing.T, ctrl *gomock.Controller, retention int) (SyncService, syncMocks, EventsService) {
	t.Helper()

	m := syncMocks{
		notes:        mock.NewMockNoteRepository(ctrl),
		changeLog:    mock.NewMockChangeLogRepository(ctrl),
		pushRequests: mock.NewMockPushRequestRepository(ctrl),
		users:        mock.NewMockUserRepository(ctrl),
	}

	repos := &store.Repositories{
		UserRepository:        m.users,
		NoteRepository:        m.notes,
		ChangeLogRepository:   m.changeLog,
		PushRequestRepository: m.pushRequests,
		DeviceRepository:      mock.NewMockDeviceRepository(ctrl),
	}

	events := NewEventsService(config.Auth{TicketDuration: time.Minute}, logger.Nop())
	svc := NewSyncService(repos, config.DB{ChangeLogRetention: retention}, events, logger.Nop())
	return svc, m, events
}

func TestSyncService_Push_Applied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m, events := newTestSyncService(t, ctrl, 500)
	ctx := context.Background()

	notifications, cancel := events.Subscribe(1)
	defer cancel()

	note := models.Note{ID: "n1", Title: "hello", Kind: models.NoteKindCapture}
	op := models.SyncOp{RequestID: "req-1", Op: models.OpUpsert, NoteID: "n1", BaseVersion: 0, Note: &note}

	committed := note.Clone()
	committed.Version = 1

	m.pushRequests.EXPECT().GetApplied(ctx, int64(1), "req-1").Return(models.AppliedOp{}, false, nil)
	m.notes.EXPECT().UpsertNoteVersioned(ctx, int64(1), gomock.Any(), int64(0)).Return(committed, models.Cursor(11), nil)
	m.pushRequests.EXPECT().RecordApplied(ctx, int64(1), gomock.Any()).Return(nil)
	m.changeLog.EXPECT().Prune(ctx, int64(1), 500).Return(nil)

	resp, err := svc.Push(ctx, 1, models.PushRequest{Operations: []models.SyncOp{op}})
	require.NoError(t, err)

	require.Len(t, resp.Applied, 1)
	assert.Equal(t, "req-1", resp.Applied[0].RequestID)
	assert.Equal(t, int64(1), resp.Applied[0].Note.Version)
	assert.Equal(t, models.Cursor(11), resp.NextCursor)
	assert.Empty(t, resp.Conflicts)

	select {
	case cursor := <-notifications:
		assert.Equal(t, models.Cursor(11), cursor)
	default:
		t.Fatal("expected a cursor broadcast after an applied push")
	}
}

func TestSyncService_Push_IdempotentReplay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m, _ := newTestSyncService(t, ctrl, 0)
	ctx := context.Background()

	recorded := models.AppliedOp{
		RequestID: "req-1",
		Note:      models.Note{ID: "n1", Version: 4},
		Cursor:    9,
	}
	m.pushRequests.EXPECT().GetApplied(ctx, int64(1), "req-1").Return(recorded, true, nil)

	op := models.SyncOp{RequestID: "req-1", Op: models.OpUpsert, NoteID: "n1", Note: &models.Note{ID: "n1"}}
	resp, err := svc.Push(ctx, 1, models.PushRequest{Operations: []models.SyncOp{op}})
	require.NoError(t, err)

	require.Len(t, resp.Applied, 1)
	assert.Equal(t, recorded, resp.Applied[0], "a replayed request returns its original result")
}

func TestSyncService_Push_Conflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m, _ := newTestSyncService(t, ctrl, 0)
	ctx := context.Background()

	base := models.Note{ID: "n1", Title: "old", Version: 2}
	intended := base.Clone()
	intended.Title = "mine"
	op := models.SyncOp{
		RequestID:           "req-1",
		Op:                  models.OpUpsert,
		NoteID:              "n1",
		BaseVersion:         2,
		Note:                &intended,
		ClientChangedFields: []string{models.FieldTitle},
		BaseNote:            &base,
	}

	current := base.Clone()
	current.IsPinned = true
	current.Version = 5

	m.pushRequests.EXPECT().GetApplied(ctx, int64(1), "req-1").Return(models.AppliedOp{}, false, nil)
	m.notes.EXPECT().UpsertNoteVersioned(ctx, int64(1), gomock.Any(), int64(2)).
		Return(models.Note{}, models.Cursor(0), store.ErrVersionConflict)
	m.notes.EXPECT().GetNote(ctx, int64(1), "n1").Return(current, nil)

	resp, err := svc.Push(ctx, 1, models.PushRequest{Operations: []models.SyncOp{op}})
	require.NoError(t, err)

	assert.Empty(t, resp.Applied)
	require.Len(t, resp.Conflicts, 1)
	conflict := resp.Conflicts[0]
	assert.Equal(t, "req-1", conflict.RequestID)
	assert.Equal(t, int64(5), conflict.CurrentVersion)
	assert.Equal(t, []string{models.FieldIsPinned}, conflict.ChangedFields,
		"server-side diff is computed against the client's base snapshot")
	assert.True(t, current.Version == conflict.ServerNote.Version)
}

func TestSyncService_Push_DeleteMissingNote(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m, _ := newTestSyncService(t, ctrl, 0)
	ctx := context.Background()

	op := models.SyncOp{RequestID: "req-1", Op: models.OpDelete, NoteID: "n1", BaseVersion: 0}

	m.pushRequests.EXPECT().GetApplied(ctx, int64(1), "req-1").Return(models.AppliedOp{}, false, nil)
	m.notes.EXPECT().DeleteNoteVersioned(ctx, int64(1), "n1", int64(0)).
		Return(models.Note{}, models.Cursor(0), store.ErrNoteNotFound)
	m.pushRequests.EXPECT().RecordApplied(ctx, int64(1), gomock.Any()).Return(nil)

	resp, err := svc.Push(ctx, 1, models.PushRequest{Operations: []models.SyncOp{op}})
	require.NoError(t, err)

	require.Len(t, resp.Applied, 1)
	assert.True(t, resp.Applied[0].Note.IsTombstone(), "deleting an unknown note acks as a no-op")
}

func TestSyncService_Push_MissingIdentifiers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestSyncService(t, ctrl, 0)

	_, err := svc.Push(context.Background(), 1, models.PushRequest{
		Operations: []models.SyncOp{{Op: models.OpUpsert, NoteID: "n1"}},
	})
	require.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestSyncService_Pull_Incremental(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m, _ := newTestSyncService(t, ctrl, 0)
	ctx := context.Background()

	changes := []models.Change{
		{Op: models.OpUpsert, Note: models.Note{ID: "n1", Version: 3}},
	}
	m.changeLog.EXPECT().Bounds(ctx, int64(1)).Return(models.Cursor(1), models.Cursor(40), nil)
	m.changeLog.EXPECT().ChangesSince(ctx, int64(1), models.Cursor(10), pullPageLimit).
		Return(changes, models.Cursor(11), nil)

	resp, err := svc.Pull(ctx, 1, 10, 0)
	require.NoError(t, err)

	assert.False(t, resp.ResetRequired)
	assert.Equal(t, changes, resp.Changes)
	assert.Equal(t, models.Cursor(11), resp.NextCursor)
	assert.Equal(t, models.Cursor(40), resp.LatestCursor)
}

func TestSyncService_Pull_EmptyFeedKeepsCursor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m, _ := newTestSyncService(t, ctrl, 0)
	ctx := context.Background()

	m.changeLog.EXPECT().Bounds(ctx, int64(1)).Return(models.Cursor(1), models.Cursor(40), nil)
	m.changeLog.EXPECT().ChangesSince(ctx, int64(1), models.Cursor(40), pullPageLimit).
		Return(nil, models.Cursor(0), nil)

	resp, err := svc.Pull(ctx, 1, 40, 0)
	require.NoError(t, err)
	assert.Equal(t, models.Cursor(40), resp.NextCursor)
}

func TestSyncService_Pull_StaleCursor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m, _ := newTestSyncService(t, ctrl, 0)
	ctx := context.Background()

	// entries below 50 were pruned; a cursor at 10 lost history
	m.changeLog.EXPECT().Bounds(ctx, int64(1)).Return(models.Cursor(50), models.Cursor(120), nil)

	resp, err := svc.Pull(ctx, 1, 10, 0)
	require.NoError(t, err)

	assert.True(t, resp.ResetRequired)
	assert.Equal(t, models.Cursor(50), resp.OldestAvailableCursor)
	assert.Equal(t, models.Cursor(120), resp.LatestCursor)
	assert.Empty(t, resp.Changes)
}

func TestStaleCursor(t *testing.T) {
	tests := []struct {
		name                   string
		cursor, oldest, latest models.Cursor
		want                   bool
	}{
		{"fresh log from zero", 0, 0, 0, false},
		{"full log from zero", 0, 1, 30, false},
		{"pruned log from zero", 0, 5, 30, true},
		{"cursor at horizon", 4, 5, 30, false},
		{"cursor behind horizon", 3, 5, 30, true},
		{"cursor at latest", 30, 5, 30, false},
		{"cursor past latest", 31, 5, 30, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, staleCursor(tt.cursor, tt.oldest, tt.latest))
		})
	}
}

func TestSyncService_Snapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m, _ := newTestSyncService(t, ctrl, 0)
	ctx := context.Background()

	notes := []models.Note{{ID: "n1", Version: 2}, {ID: "n2", Version: 1}}
	m.changeLog.EXPECT().Bounds(ctx, int64(1)).Return(models.Cursor(1), models.Cursor(3), nil)
	m.notes.EXPECT().ListNotes(ctx, int64(1), true).Return(notes, nil)

	resp, err := svc.Snapshot(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, notes, resp.Notes)
	assert.Equal(t, models.Cursor(3), resp.Cursor)
}

func TestSyncService_Bootstrap_FirstImport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m, _ := newTestSyncService(t, ctrl, 0)
	ctx := context.Background()

	req := models.BootstrapRequest{
		Notes:             []models.Note{{ID: "n1"}, {ID: "n2"}},
		SourceFingerprint: "fp-1",
	}

	m.users.EXPECT().GetBootstrapFingerprint(ctx, int64(1)).Return("", nil)
	m.notes.EXPECT().ImportNotes(ctx, int64(1), req.Notes).Return(models.Cursor(2), nil)
	m.users.EXPECT().SetBootstrapFingerprint(ctx, int64(1), "fp-1").Return(nil)

	resp, err := svc.Bootstrap(ctx, 1, req)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Imported)
	assert.False(t, resp.AlreadyBootstrapped)
	assert.Equal(t, models.Cursor(2), resp.Cursor)
}

func TestSyncService_Bootstrap_SameFingerprintIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m, _ := newTestSyncService(t, ctrl, 0)
	ctx := context.Background()

	m.users.EXPECT().GetBootstrapFingerprint(ctx, int64(1)).Return("fp-1", nil)
	m.changeLog.EXPECT().Bounds(ctx, int64(1)).Return(models.Cursor(1), models.Cursor(2), nil)

	resp, err := svc.Bootstrap(ctx, 1, models.BootstrapRequest{SourceFingerprint: "fp-1"})
	require.NoError(t, err)
	assert.True(t, resp.AlreadyBootstrapped)
	assert.Zero(t, resp.Imported)
	assert.Equal(t, models.Cursor(2), resp.Cursor)
}

func TestSyncService_Bootstrap_ForeignFingerprintRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m, _ := newTestSyncService(t, ctrl, 0)
	ctx := context.Background()

	m.users.EXPECT().GetBootstrapFingerprint(ctx, int64(1)).Return("fp-other", nil)

	_, err := svc.Bootstrap(ctx, 1, models.BootstrapRequest{SourceFingerprint: "fp-1"})
	require.ErrorIs(t, err, store.ErrAlreadyBootstrapped)
}
