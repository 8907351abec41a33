package engine

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/bananahana720/pocket-brain-sub000/internal/adapter"
	"github.com/bananahana720/pocket-brain-sub000/internal/store"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

// fakeServer is a scriptable in-memory ServerAdapter. Unset hooks fall
// back to a trivially agreeable server: pushes apply at base+1, pulls
// return nothing new.
type fakeServer struct {
	mu sync.Mutex

	pushFn      func(req models.PushRequest) (models.PushResponse, error)
	pullFn      func(cursor models.Cursor) (models.PullResponse, error)
	snapshotFn  func() (models.SnapshotResponse, error)
	bootstrapFn func(req models.BootstrapRequest) (models.BootstrapResponse, error)

	pushes     []models.PushRequest
	bootstraps []models.BootstrapRequest
}

func (f *fakeServer) SetToken(string) {}
func (f *fakeServer) Token() string   { return "test-token" }

func (f *fakeServer) Register(context.Context, models.User) (models.Token, error) {
	return models.Token{}, errors.New("not scripted")
}

func (f *fakeServer) Login(context.Context, models.User) (models.Token, error) {
	return models.Token{}, errors.New("not scripted")
}

func (f *fakeServer) Snapshot(context.Context, bool) (models.SnapshotResponse, error) {
	f.mu.Lock()
	fn := f.snapshotFn
	f.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return models.SnapshotResponse{}, nil
}

func (f *fakeServer) Pull(_ context.Context, cursor models.Cursor) (models.PullResponse, error) {
	f.mu.Lock()
	fn := f.pullFn
	f.mu.Unlock()
	if fn != nil {
		return fn(cursor)
	}
	return models.PullResponse{NextCursor: cursor}, nil
}

func (f *fakeServer) Push(_ context.Context, req models.PushRequest) (models.PushResponse, error) {
	f.mu.Lock()
	f.pushes = append(f.pushes, req)
	fn := f.pushFn
	f.mu.Unlock()
	if fn != nil {
		return fn(req)
	}

	var resp models.PushResponse
	for _, op := range req.Operations {
		note := models.Note{ID: op.NoteID}
		if op.Note != nil {
			note = op.Note.Clone()
		} else if op.BaseNote != nil {
			note = op.BaseNote.Clone()
			now := time.Now().UTC()
			note.DeletedAt = &now
		}
		note.Version = op.BaseVersion + 1
		resp.Applied = append(resp.Applied, models.AppliedOp{
			RequestID: op.RequestID,
			Note:      note,
		})
	}
	return resp, nil
}

func (f *fakeServer) Bootstrap(_ context.Context, req models.BootstrapRequest) (models.BootstrapResponse, error) {
	f.mu.Lock()
	f.bootstraps = append(f.bootstraps, req)
	fn := f.bootstrapFn
	f.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return models.BootstrapResponse{Imported: len(req.Notes), Cursor: models.Cursor(len(req.Notes))}, nil
}

func (f *fakeServer) Devices(context.Context) (models.DevicesResponse, error) {
	return models.DevicesResponse{}, nil
}

func (f *fakeServer) RevokeDevice(context.Context, string) (models.RevokeDeviceResponse, error) {
	return models.RevokeDeviceResponse{}, nil
}

func (f *fakeServer) EventsTicket(context.Context) (models.TicketResponse, error) {
	return models.TicketResponse{}, errors.New("not scripted")
}

func (f *fakeServer) OpenEvents(context.Context, string) (adapter.EventStream, error) {
	return nil, errors.New("not scripted")
}

func (f *fakeServer) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushes)
}

// memNotes is an in-memory LocalNoteRepository.
type memNotes struct {
	mu    sync.Mutex
	notes map[string]models.Note
}

func newMemNotes() *memNotes {
	return &memNotes{notes: make(map[string]models.Note)}
}

func (m *memNotes) SaveNotes(_ context.Context, notes ...models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, note := range notes {
		m.notes[note.ID] = note.Clone()
	}
	return nil
}

func (m *memNotes) GetNote(_ context.Context, noteID string) (models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	note, ok := m.notes[noteID]
	if !ok {
		return models.Note{}, store.ErrNoteNotFound
	}
	return note.Clone(), nil
}

func (m *memNotes) GetAllNotes(_ context.Context, includeTombstones bool) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Note
	for _, note := range m.notes {
		if note.IsTombstone() && !includeTombstones {
			continue
		}
		out = append(out, note.Clone())
	}
	slices.SortFunc(out, func(a, b models.Note) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

func (m *memNotes) PurgeNote(_ context.Context, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notes, noteID)
	return nil
}

func (m *memNotes) ReplaceAll(_ context.Context, notes []models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = make(map[string]models.Note, len(notes))
	for _, note := range notes {
		m.notes[note.ID] = note.Clone()
	}
	return nil
}

// memState is an in-memory LocalSyncRepository. Set saveOpErr via
// failSaveOps to simulate a store that rejects op writes.
type memState struct {
	mu        sync.Mutex
	opOrder   []string
	ops       map[string]models.SyncOp
	conflicts map[string]models.SyncConflict
	meta      map[string]string
	saveOpErr error
}

func newMemState() *memState {
	return &memState{
		ops:       make(map[string]models.SyncOp),
		conflicts: make(map[string]models.SyncConflict),
		meta:      make(map[string]string),
	}
}

func (m *memState) failSaveOps(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveOpErr = err
}

func (m *memState) SaveOp(_ context.Context, op models.SyncOp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveOpErr != nil {
		return m.saveOpErr
	}
	if _, ok := m.ops[op.NoteID]; !ok {
		m.opOrder = append(m.opOrder, op.NoteID)
	}
	m.ops[op.NoteID] = op
	return nil
}

func (m *memState) DeleteOp(_ context.Context, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ops, noteID)
	if i := slices.Index(m.opOrder, noteID); i >= 0 {
		m.opOrder = slices.Delete(m.opOrder, i, i+1)
	}
	return nil
}

func (m *memState) GetAllOps(_ context.Context) ([]models.SyncOp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.SyncOp, 0, len(m.opOrder))
	for _, noteID := range m.opOrder {
		out = append(out, m.ops[noteID])
	}
	return out, nil
}

func (m *memState) SaveConflict(_ context.Context, conflict models.SyncConflict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts[conflict.RequestID] = conflict
	return nil
}

func (m *memState) DeleteConflict(_ context.Context, requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conflicts, requestID)
	return nil
}

func (m *memState) GetAllConflicts(_ context.Context) ([]models.SyncConflict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.SyncConflict, 0, len(m.conflicts))
	for _, c := range m.conflicts {
		out = append(out, c)
	}
	return out, nil
}

func (m *memState) GetMeta(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.meta[key]
	if !ok {
		return "", store.ErrMetaNotFound
	}
	return value, nil
}

func (m *memState) SetMeta(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta[key] = value
	return nil
}

func (m *memState) DeleteMeta(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.meta, key)
	return nil
}

func (m *memState) metaValue(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.meta[key]
	return value, ok
}
