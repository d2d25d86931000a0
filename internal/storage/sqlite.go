// Package storage keeps the client's local state in sqlite: the client
// identifier, the preferences blob and a searchable cache of the
// conversation list.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jasperwreed/astroguide/internal/models"
)

const (
	keyClientID    = "client_id"
	keyPreferences = "preferences"
)

type SQLiteStore struct {
	writeDB *sql.DB // Single connection for writes
	readDB  *sql.DB // Pool of connections for reads
	dbPath  string
	now     func() time.Time
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".astroguide", "client.db")
	}
	cfg := DefaultConfig(dbPath)

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	writeDB, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open write database: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	// Not opened read-only: the file may not exist until the writer creates it.
	readDB, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("failed to open read database: %w", err)
	}
	readDB.SetMaxOpenConns(cfg.MaxReadConns)
	readDB.SetMaxIdleConns(cfg.MaxReadConns)

	store := &SQLiteStore{
		writeDB: writeDB,
		readDB:  readDB,
		dbPath:  cfg.Path,
		now:     time.Now,
	}

	if err := store.initializeDB(cfg); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := store.createTables(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) Path() string {
	return s.dbPath
}

func (s *SQLiteStore) initializeDB(cfg *Config) error {
	for _, pragma := range cfg.pragmas() {
		if _, err := s.writeDB.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set %s: %w", pragma, err)
		}
	}
	return nil
}

func (s *SQLiteStore) createTables() error {
	queries := []string{
		queryCreateClientStateTable,
		queryCreateConversationsTable,
		queryCreateIndexConversationsUpdated,
		queryCreateIndexConversationsHidden,
		queryCreateConversationsFTS,
		queryCreateConversationsInsertTrigger,
		queryCreateConversationsDeleteTrigger,
		queryCreateConversationsUpdateTrigger,
	}

	for _, query := range queries {
		if _, err := s.writeDB.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// ClientID returns the identifier sent as X-Client-Id, generating and
// persisting it on first use.
func (s *SQLiteStore) ClientID() (string, error) {
	var id string
	err := s.readDB.QueryRow(querySelectState, keyClientID).Scan(&id)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to read client id: %w", err)
	}

	if _, err := s.writeDB.Exec(queryInsertStateIfMissing, keyClientID, uuid.NewString()); err != nil {
		return "", fmt.Errorf("failed to store client id: %w", err)
	}

	// Another process may have won the insert; read back whatever is stored.
	if err := s.writeDB.QueryRow(querySelectState, keyClientID).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to read client id: %w", err)
	}
	return id, nil
}

// LoadPreferences returns the stored preferences. A missing blob gives the
// defaults; a malformed one is removed and the defaults are returned.
func (s *SQLiteStore) LoadPreferences() (models.Preferences, error) {
	var raw string
	err := s.readDB.QueryRow(querySelectState, keyPreferences).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.DefaultPreferences(), fmt.Errorf("failed to read preferences: %w", err)
	}

	prefs, parseErr := models.ParsePreferences([]byte(raw))
	if parseErr != nil {
		slog.Warn("discarding malformed preferences", "error", parseErr)
		if _, err := s.writeDB.Exec(queryDeleteState, keyPreferences); err != nil {
			return prefs, fmt.Errorf("failed to remove malformed preferences: %w", err)
		}
	}
	return prefs, nil
}

func (s *SQLiteStore) SavePreferences(prefs models.Preferences) error {
	payload, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if _, err := s.writeDB.Exec(queryUpsertState, keyPreferences, string(payload), s.now()); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// UpsertConversations refreshes cached list items. Local renames and
// deletions survive the refresh.
func (s *SQLiteStore) UpsertConversations(items []models.ConversationListItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(queryUpsertConversation)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	cachedAt := s.now()
	for _, item := range items {
		_, err := stmt.Exec(
			item.ID, nullString(item.Title), nullString(item.LastMessagePreview),
			item.CreatedAt, item.UpdatedAt, cachedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to cache conversation %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// ApplyLocalEdits drops locally deleted items and swaps in local titles.
func (s *SQLiteStore) ApplyLocalEdits(items []models.ConversationListItem) ([]models.ConversationListItem, error) {
	out := make([]models.ConversationListItem, 0, len(items))
	for _, item := range items {
		cached, hidden, err := s.GetConversation(item.ID)
		if err != nil {
			return nil, err
		}
		if hidden {
			continue
		}
		if cached != nil && cached.Title != nil {
			item.Title = models.Ptr(*cached.Title)
		}
		out = append(out, item)
	}
	return out, nil
}

// GetConversation returns the cached item, or nil when it is not cached.
func (s *SQLiteStore) GetConversation(id string) (*models.ConversationListItem, bool, error) {
	var (
		item    models.ConversationListItem
		title   sql.NullString
		preview sql.NullString
		hidden  bool
		created sql.NullTime
		updated sql.NullTime
	)

	err := s.readDB.QueryRow(querySelectConversation, id).Scan(
		&item.ID, &title, &preview, &hidden, &created, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached conversation: %w", err)
	}

	item.Title = stringPtr(title)
	item.LastMessagePreview = stringPtr(preview)
	item.CreatedAt = created.Time
	item.UpdatedAt = updated.Time
	return &item, hidden, nil
}

func (s *SQLiteStore) ListConversations(limit, offset int) ([]models.ConversationListItem, error) {
	rows, err := s.readDB.Query(queryListConversations, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ConversationListItem
	for rows.Next() {
		var (
			item    models.ConversationListItem
			title   sql.NullString
			preview sql.NullString
			created sql.NullTime
			updated sql.NullTime
		)
		if err := rows.Scan(&item.ID, &title, &preview, &created, &updated); err != nil {
			return nil, err
		}
		item.Title = stringPtr(title)
		item.LastMessagePreview = stringPtr(preview)
		item.CreatedAt = created.Time
		item.UpdatedAt = updated.Time
		items = append(items, item)
	}

	return items, rows.Err()
}

// RenameConversation stores a local title. The server is not told.
func (s *SQLiteStore) RenameConversation(id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title must not be empty")
	}

	tx, err := s.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(queryInsertRenamedConversation, id, title); err != nil {
		return fmt.Errorf("failed to rename conversation: %w", err)
	}
	if _, err := tx.Exec(queryRenameConversation, title, id); err != nil {
		return fmt.Errorf("failed to rename conversation: %w", err)
	}
	return tx.Commit()
}

// DeleteConversation hides a conversation locally. The row stays as a
// tombstone so a later list refresh does not bring it back.
func (s *SQLiteStore) DeleteConversation(id string) error {
	tx, err := s.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(queryInsertHiddenConversation, id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if _, err := tx.Exec(queryHideConversation, id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return tx.Commit()
}

// SearchConversations runs a full-text query over cached titles and
// previews. Each whitespace-separated term is matched as a prefix.
func (s *SQLiteStore) SearchConversations(query string, limit int) ([]models.SearchResult, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	rows, err := s.readDB.Query(querySearchConversations, match, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var (
			result  models.SearchResult
			title   sql.NullString
			preview sql.NullString
			created sql.NullTime
			updated sql.NullTime
			snippet sql.NullString
		)

		err := rows.Scan(
			&result.Conversation.ID, &title, &preview, &created, &updated,
			&snippet, &result.Score,
		)
		if err != nil {
			return nil, err
		}

		result.Conversation.Title = stringPtr(title)
		result.Conversation.LastMessagePreview = stringPtr(preview)
		result.Conversation.CreatedAt = created.Time
		result.Conversation.UpdatedAt = updated.Time
		result.Snippet = truncateContent(snippet.String, 200)
		results = append(results, result)
	}

	return results, rows.Err()
}

func (s *SQLiteStore) CountConversations() (int, error) {
	var n int
	if err := s.readDB.QueryRow(queryCountConversations).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	var errs []error

	if _, err := s.writeDB.Exec("PRAGMA optimize"); err != nil {
		errs = append(errs, fmt.Errorf("failed to optimize: %w", err))
	}

	if err := s.readDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close read db: %w", err))
	}

	if err := s.writeDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close write db: %w", err))
	}

	return errors.Join(errs...)
}

// ftsQuery quotes each term so user input cannot inject FTS5 syntax.
func ftsQuery(query string) string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, `"`+strings.ReplaceAll(f, `"`, `""`)+`"*`)
	}
	return strings.Join(terms, " ")
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return models.Ptr(ns.String)
}

func truncateContent(content string, maxLen int) string {
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return strings.TrimSpace(string(runes[:maxLen])) + "..."
}
