package store

const createClientSchema = `
	CREATE TABLE IF NOT EXISTS notes (
		id             TEXT PRIMARY KEY,
		title          TEXT NOT NULL DEFAULT '',
		content        TEXT NOT NULL DEFAULT '',
		tags           TEXT NOT NULL DEFAULT '[]',
		kind           TEXT NOT NULL DEFAULT 'capture',
		is_processed   INTEGER NOT NULL DEFAULT 0,
		is_completed   INTEGER NOT NULL DEFAULT 0,
		is_archived    INTEGER NOT NULL DEFAULT 0,
		is_pinned      INTEGER NOT NULL DEFAULT 0,
		due_date       TIMESTAMP,
		priority       INTEGER NOT NULL DEFAULT 0,
		analysis_state TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMP NOT NULL,
		updated_at     TIMESTAMP NOT NULL,
		version        INTEGER NOT NULL DEFAULT 0,
		deleted_at     TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS pending_ops (
		note_id              TEXT PRIMARY KEY,
		request_id           TEXT NOT NULL,
		op                   TEXT NOT NULL,
		base_version         INTEGER NOT NULL,
		note                 TEXT,
		changed_fields       TEXT NOT NULL DEFAULT '[]',
		base_note            TEXT,
		auto_merge_attempted INTEGER NOT NULL DEFAULT 0,
		queued_at            TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS conflicts (
		request_id      TEXT PRIMARY KEY,
		note_id         TEXT NOT NULL,
		base_version    INTEGER NOT NULL,
		current_version INTEGER NOT NULL,
		server_note     TEXT NOT NULL,
		changed_fields  TEXT NOT NULL DEFAULT '[]',
		detected_at     TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sync_meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`

const (
	saveLocalNote = `
		INSERT INTO notes (
			id, title, content, tags, kind,
			is_processed, is_completed, is_archived, is_pinned,
			due_date, priority, analysis_state,
			created_at, updated_at, version, deleted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			title          = excluded.title,
			content        = excluded.content,
			tags           = excluded.tags,
			kind           = excluded.kind,
			is_processed   = excluded.is_processed,
			is_completed   = excluded.is_completed,
			is_archived    = excluded.is_archived,
			is_pinned      = excluded.is_pinned,
			due_date       = excluded.due_date,
			priority       = excluded.priority,
			analysis_state = excluded.analysis_state,
			created_at     = excluded.created_at,
			updated_at     = excluded.updated_at,
			version        = excluded.version,
			deleted_at     = excluded.deleted_at;`

	getLocalNote = `
		SELECT
			id, title, content, tags, kind,
			is_processed, is_completed, is_archived, is_pinned,
			due_date, priority, analysis_state,
			created_at, updated_at, version, deleted_at
		FROM notes
		WHERE id = $1;`

	getAllLocalNotes = `
		SELECT
			id, title, content, tags, kind,
			is_processed, is_completed, is_archived, is_pinned,
			due_date, priority, analysis_state,
			created_at, updated_at, version, deleted_at
		FROM notes
		WHERE deleted_at IS NULL
		ORDER BY updated_at DESC;`

	getAllLocalNotesWithTombstones = `
		SELECT
			id, title, content, tags, kind,
			is_processed, is_completed, is_archived, is_pinned,
			due_date, priority, analysis_state,
			created_at, updated_at, version, deleted_at
		FROM notes
		ORDER BY updated_at DESC;`

	purgeLocalNote = `
		DELETE FROM notes WHERE id = $1;`

	deleteAllLocalNotes = `
		DELETE FROM notes;`

	savePendingOp = `
		INSERT INTO pending_ops (
			note_id, request_id, op, base_version,
			note, changed_fields, base_note, auto_merge_attempted
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (note_id) DO UPDATE SET
			request_id           = excluded.request_id,
			op                   = excluded.op,
			base_version         = excluded.base_version,
			note                 = excluded.note,
			changed_fields       = excluded.changed_fields,
			base_note            = excluded.base_note,
			auto_merge_attempted = excluded.auto_merge_attempted;`

	deletePendingOp = `
		DELETE FROM pending_ops WHERE note_id = $1;`

	getAllPendingOps = `
		SELECT
			note_id, request_id, op, base_version,
			note, changed_fields, base_note, auto_merge_attempted
		FROM pending_ops
		ORDER BY queued_at, rowid;`

	saveSyncConflict = `
		INSERT INTO conflicts (
			request_id, note_id, base_version, current_version,
			server_note, changed_fields, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (request_id) DO UPDATE SET
			note_id         = excluded.note_id,
			base_version    = excluded.base_version,
			current_version = excluded.current_version,
			server_note     = excluded.server_note,
			changed_fields  = excluded.changed_fields,
			detected_at     = excluded.detected_at;`

	deleteSyncConflict = `
		DELETE FROM conflicts WHERE request_id = $1;`

	getAllSyncConflicts = `
		SELECT
			request_id, note_id, base_version, current_version,
			server_note, changed_fields, detected_at
		FROM conflicts
		ORDER BY detected_at;`

	getSyncMeta = `
		SELECT value FROM sync_meta WHERE key = $1;`

	setSyncMeta = `
		INSERT INTO sync_meta (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value;`

	deleteSyncMeta = `
		DELETE FROM sync_meta WHERE key = $1;`
)
