package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bananahana720/pocket-brain-sub000/models"
)

func TestBuildUpsertOp_NewNote(t *testing.T) {
	note := models.Note{
		ID:      "n1",
		Title:   "buy milk",
		Kind:    models.NoteKindCapture,
		Version: 0,
	}

	op := buildUpsertOp(nil, note)

	assert.NotEmpty(t, op.RequestID)
	assert.Equal(t, models.OpUpsert, op.Op)
	assert.Equal(t, "n1", op.NoteID)
	assert.Zero(t, op.BaseVersion, "a brand-new note bases on version 0")
	assert.Nil(t, op.BaseNote)
	require.NotNil(t, op.Note)
	assert.Equal(t, "buy milk", op.Note.Title)
	assert.Contains(t, op.ClientChangedFields, models.FieldTitle)
	assert.Contains(t, op.ClientChangedFields, models.FieldKind)
}

func TestBuildUpsertOp_Edit(t *testing.T) {
	prev := models.Note{ID: "n1", Title: "buy milk", Kind: models.NoteKindCapture, Version: 3}
	next := prev.Clone()
	next.Title = "buy oat milk"
	next.IsPinned = true

	op := buildUpsertOp(&prev, next)

	assert.Equal(t, int64(3), op.BaseVersion)
	require.NotNil(t, op.BaseNote)
	assert.Equal(t, "buy milk", op.BaseNote.Title)
	assert.Equal(t, []string{models.FieldTitle, models.FieldIsPinned}, op.ClientChangedFields)

	// the op must snapshot, not alias, the notes it was built from
	prev.Title = "mutated"
	next.Title = "also mutated"
	assert.Equal(t, "buy milk", op.BaseNote.Title)
	assert.Equal(t, "buy oat milk", op.Note.Title)
}

func TestBuildDeleteOp(t *testing.T) {
	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	prev := models.Note{ID: "n1", Title: "old", Version: 5, DueDate: &due}

	op := buildDeleteOp(prev)

	assert.Equal(t, models.OpDelete, op.Op)
	assert.Equal(t, "n1", op.NoteID)
	assert.Equal(t, int64(5), op.BaseVersion)
	assert.Nil(t, op.Note)
	require.NotNil(t, op.BaseNote)
	assert.Equal(t, "old", op.BaseNote.Title)
	assert.Empty(t, op.ClientChangedFields)
}
