package store

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

const (
	createUser = `
		INSERT INTO users (login, password_hash)
		VALUES ($1, $2)
		RETURNING user_id, login, password_hash, created_at;`

	findUserByLogin = `
		SELECT user_id, login, password_hash, created_at
		FROM users
		WHERE login = $1;`

	getBootstrapFingerprint = `
		SELECT bootstrap_fingerprint FROM users WHERE user_id = $1;`

	setBootstrapFingerprint = `
		UPDATE users SET bootstrap_fingerprint = $2 WHERE user_id = $1;`

	getServerNote = `
		SELECT
			id, title, content, tags, kind,
			is_processed, is_completed, is_archived, is_pinned,
			due_date, priority, analysis_state,
			created_at, updated_at, version, deleted_at
		FROM notes
		WHERE user_id = $1 AND id = $2;`

	lockServerNote = `
		SELECT version FROM notes
		WHERE user_id = $1 AND id = $2
		FOR UPDATE;`

	insertServerNote = `
		INSERT INTO notes (
			user_id, id, title, content, tags, kind,
			is_processed, is_completed, is_archived, is_pinned,
			due_date, priority, analysis_state,
			created_at, updated_at, version, deleted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);`

	updateServerNote = `
		UPDATE notes SET
			title          = $3,
			content        = $4,
			tags           = $5,
			kind           = $6,
			is_processed   = $7,
			is_completed   = $8,
			is_archived    = $9,
			is_pinned      = $10,
			due_date       = $11,
			priority       = $12,
			analysis_state = $13,
			updated_at     = $14,
			version        = $15,
			deleted_at     = $16
		WHERE user_id = $1 AND id = $2;`

	tombstoneServerNote = `
		UPDATE notes SET
			deleted_at = $3,
			updated_at = $3,
			version    = $4
		WHERE user_id = $1 AND id = $2
		RETURNING
			id, title, content, tags, kind,
			is_processed, is_completed, is_archived, is_pinned,
			due_date, priority, analysis_state,
			created_at, updated_at, version, deleted_at;`

	appendChangeLog = `
		INSERT INTO change_log (user_id, note_id, op)
		VALUES ($1, $2, $3)
		RETURNING seq;`

	changeLogBounds = `
		SELECT COALESCE(MIN(seq), 0), COALESCE(MAX(seq), 0)
		FROM change_log
		WHERE user_id = $1;`

	pruneChangeLog = `
		DELETE FROM change_log
		WHERE user_id = $1 AND seq NOT IN (
			SELECT seq FROM change_log
			WHERE user_id = $1
			ORDER BY seq DESC
			LIMIT $2
		);`

	getAppliedPushRequest = `
		SELECT request_id, note, cursor
		FROM push_requests
		WHERE user_id = $1 AND request_id = $2;`

	recordAppliedPushRequest = `
		INSERT INTO push_requests (user_id, request_id, note, cursor)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, request_id) DO NOTHING;`

	touchDevice = `
		INSERT INTO devices (id, user_id, label, platform, last_seen_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id, id) DO UPDATE SET
			label        = excluded.label,
			platform     = excluded.platform,
			last_seen_at = now()
		WHERE devices.revoked_at IS NULL
		RETURNING last_seen_at;`

	getDevice = `
		SELECT id, user_id, label, platform, last_seen_at, created_at, revoked_at
		FROM devices
		WHERE user_id = $1 AND id = $2;`

	revokeDevice = `
		UPDATE devices SET revoked_at = now()
		WHERE user_id = $1 AND id = $2 AND revoked_at IS NULL;`
)

var serverNoteColumns = []string{
	"id", "title", "content", "tags", "kind",
	"is_processed", "is_completed", "is_archived", "is_pinned",
	"due_date", "priority", "analysis_state",
	"created_at", "updated_at", "version", "deleted_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildListNotesQuery builds the snapshot query for a user's collection,
// optionally filtering out tombstones.
func buildListNotesQuery(userID int64, includeDeleted bool) (string, []any, error) {
	builder := psql.
		Select(serverNoteColumns...).
		From("notes").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("updated_at DESC", "id")

	if !includeDeleted {
		builder = builder.Where(sq.Eq{"deleted_at": nil})
	}

	return builder.ToSql()
}

// buildChangesSinceQuery builds the incremental pull feed: change-log
// entries after cursor joined with the current state of each note.
func buildChangesSinceQuery(userID int64, cursor models.Cursor, limit int) (string, []any, error) {
	cols := make([]string, 0, len(serverNoteColumns)+2)
	cols = append(cols, "cl.seq", "cl.op")
	for _, c := range serverNoteColumns {
		cols = append(cols, "n."+c)
	}

	return psql.
		Select(cols...).
		From("change_log cl").
		Join("notes n ON n.user_id = cl.user_id AND n.id = cl.note_id").
		Where(sq.Eq{"cl.user_id": userID}).
		Where(sq.Gt{"cl.seq": int64(cursor)}).
		OrderBy("cl.seq").
		Limit(uint64(limit)).
		ToSql()
}

// buildListDevicesQuery builds the device-session listing for an account,
// active sessions first.
func buildListDevicesQuery(userID int64) (string, []any, error) {
	return psql.
		Select("id", "user_id", "label", "platform", "last_seen_at", "created_at", "revoked_at").
		From("devices").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("revoked_at NULLS FIRST", "last_seen_at DESC").
		ToSql()
}
