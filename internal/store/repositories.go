package store

import "github.com/bananahana720/pocket-brain-sub000/internal/logger"

// Repositories bundles the server-side repository set handed to the
// service layer.
type Repositories struct {
	UserRepository        UserRepository
	NoteRepository        NoteRepository
	ChangeLogRepository   ChangeLogRepository
	PushRequestRepository PushRequestRepository
	DeviceRepository      DeviceRepository
}

// NewRepositories wires every server repository onto the shared database
// handle.
func NewRepositories(db *DB, logger *logger.Logger) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(db, logger),
		NoteRepository:        NewNoteRepository(db, logger),
		ChangeLogRepository:   NewChangeLogRepository(db, logger),
		PushRequestRepository: NewPushRequestRepository(db, logger),
		DeviceRepository:      NewDeviceRepository(db, logger),
	}
}
