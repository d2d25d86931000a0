package storage

// Database schema queries
const (
	queryCreateClientStateTable = `CREATE TABLE IF NOT EXISTS client_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`

	queryCreateConversationsTable = `CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		title TEXT,
		local_title TEXT,
		last_message_preview TEXT,
		hidden INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		cached_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`

	queryCreateConversationsFTS = `CREATE VIRTUAL TABLE IF NOT EXISTS conversations_fts USING fts5(
		title,
		local_title,
		last_message_preview,
		content=conversations,
		content_rowid=rowid
	)`

	queryCreateIndexConversationsUpdated = `CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at)`
	queryCreateIndexConversationsHidden  = `CREATE INDEX IF NOT EXISTS idx_conversations_hidden ON conversations(hidden)`

	queryCreateConversationsInsertTrigger = `CREATE TRIGGER IF NOT EXISTS conversations_ai AFTER INSERT ON conversations
	BEGIN
		INSERT INTO conversations_fts(rowid, title, local_title, last_message_preview)
		VALUES (new.rowid, new.title, new.local_title, new.last_message_preview);
	END`

	queryCreateConversationsDeleteTrigger = `CREATE TRIGGER IF NOT EXISTS conversations_ad AFTER DELETE ON conversations
	BEGIN
		INSERT INTO conversations_fts(conversations_fts, rowid, title, local_title, last_message_preview)
		VALUES ('delete', old.rowid, old.title, old.local_title, old.last_message_preview);
	END`

	queryCreateConversationsUpdateTrigger = `CREATE TRIGGER IF NOT EXISTS conversations_au AFTER UPDATE ON conversations
	BEGIN
		INSERT INTO conversations_fts(conversations_fts, rowid, title, local_title, last_message_preview)
		VALUES ('delete', old.rowid, old.title, old.local_title, old.last_message_preview);
		INSERT INTO conversations_fts(rowid, title, local_title, last_message_preview)
		VALUES (new.rowid, new.title, new.local_title, new.last_message_preview);
	END`

	querySelectState = `SELECT value FROM client_state WHERE key = ?`

	queryInsertStateIfMissing = `INSERT OR IGNORE INTO client_state (key, value) VALUES (?, ?)`

	queryUpsertState = `INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	queryDeleteState = `DELETE FROM client_state WHERE key = ?`

	queryUpsertConversation = `INSERT INTO conversations (id, title, last_message_preview, created_at, updated_at, cached_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			last_message_preview = excluded.last_message_preview,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			cached_at = excluded.cached_at`

	querySelectConversation = `SELECT id, COALESCE(local_title, title), last_message_preview, hidden, created_at, updated_at
		FROM conversations WHERE id = ?`

	queryListConversations = `SELECT id, COALESCE(local_title, title), last_message_preview, created_at, updated_at
		FROM conversations WHERE hidden = 0
		ORDER BY updated_at DESC, id
		LIMIT ? OFFSET ?`

	queryRenameConversation = `UPDATE conversations SET local_title = ? WHERE id = ?`

	queryInsertRenamedConversation = `INSERT OR IGNORE INTO conversations (id, local_title) VALUES (?, ?)`

	queryHideConversation = `UPDATE conversations SET hidden = 1 WHERE id = ?`

	queryInsertHiddenConversation = `INSERT OR IGNORE INTO conversations (id, hidden) VALUES (?, 1)`

	querySearchConversations = `
		SELECT
			c.id, COALESCE(c.local_title, c.title), c.last_message_preview, c.created_at, c.updated_at,
			snippet(conversations_fts, -1, '[', ']', '...', 12), bm25(conversations_fts) AS score
		FROM conversations_fts
		JOIN conversations c ON conversations_fts.rowid = c.rowid
		WHERE conversations_fts MATCH ? AND c.hidden = 0
		ORDER BY score
		LIMIT ?`

	queryCountConversations = `SELECT COUNT(*) FROM conversations WHERE hidden = 0`
)
