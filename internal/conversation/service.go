// Package conversation keeps the paginated conversation list and the local
// rename and delete edits made to it.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jasperwreed/astroguide/internal/client"
	"github.com/jasperwreed/astroguide/internal/logger"
	"github.com/jasperwreed/astroguide/internal/models"
)

// API is the part of the transport the list needs.
type API interface {
	ListConversations(ctx context.Context, cursor string, limit int) (*client.ConversationList, error)
	CreateConversation(ctx context.Context, title string) (*models.Conversation, error)
}

// Cache persists list pages and local edits.
type Cache interface {
	UpsertConversations(items []models.ConversationListItem) error
	ApplyLocalEdits(items []models.ConversationListItem) ([]models.ConversationListItem, error)
	RenameConversation(id, title string) error
	DeleteConversation(id string) error
}

type Notifier interface {
	NotifyError(err error)
}

type Service struct {
	api      API
	cache    Cache
	notifier Notifier
	pageSize int

	mu         sync.Mutex
	items      []models.ConversationListItem
	nextCursor *string
	loaded     bool
	loading    bool
}

func NewService(api API, cache Cache, notifier Notifier, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Service{api: api, cache: cache, notifier: notifier, pageSize: pageSize}
}

// FetchList loads the first page when reset is set, otherwise the next page.
// It does nothing while a fetch is running or when no page is left.
func (s *Service) FetchList(ctx context.Context, reset bool) error {
	s.mu.Lock()
	if s.loading || (!reset && s.loaded && s.nextCursor == nil) {
		s.mu.Unlock()
		return nil
	}
	cursor := ""
	if !reset && s.nextCursor != nil {
		cursor = *s.nextCursor
	}
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "astroguide.conversation.list"})
	page, err := s.api.ListConversations(ctx, cursor, s.pageSize)
	if err != nil {
		s.notifier.NotifyError(err)
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	if err := s.cache.UpsertConversations(page.Items); err != nil {
		slog.WarnContext(ctx, "failed to cache conversation list", "error", err)
	}
	visible, err := s.cache.ApplyLocalEdits(page.Items)
	if err != nil {
		slog.WarnContext(ctx, "failed to apply local edits", "error", err)
		visible = page.Items
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if reset {
		s.items = nil
	}
	s.items = appendUnique(s.items, visible)
	s.nextCursor = page.NextCursor
	if s.nextCursor != nil && *s.nextCursor == "" {
		s.nextCursor = nil
	}
	s.loaded = true

	slog.DebugContext(ctx, "conversation page loaded", "items", len(visible), "has_more", s.nextCursor != nil)
	return nil
}

// Create starts a conversation on the server and puts it at the top of the
// list.
func (s *Service) Create(ctx context.Context, title string) (*models.Conversation, error) {
	conv, err := s.api.CreateConversation(ctx, strings.TrimSpace(title))
	if err != nil {
		s.notifier.NotifyError(err)
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	item := models.ConversationListItem{Conversation: *conv}
	if err := s.cache.UpsertConversations([]models.ConversationListItem{item}); err != nil {
		slog.WarnContext(ctx, "failed to cache new conversation", "error", err)
	}

	s.mu.Lock()
	s.items = append([]models.ConversationListItem{item}, s.items...)
	s.mu.Unlock()
	return conv, nil
}

// RenameLocal changes the title shown in this client only.
func (s *Service) RenameLocal(id, title string) error {
	title = strings.TrimSpace(title)
	if err := s.cache.RenameConversation(id, title); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Title = models.Ptr(title)
		}
	}
	return nil
}

// DeleteLocal removes a conversation from this client's list only.
func (s *Service) DeleteLocal(id string) error {
	if err := s.cache.DeleteConversation(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, it := range s.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	s.items = kept
	return nil
}

func (s *Service) Items() []models.ConversationListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ConversationListItem{}, s.items...)
}

func (s *Service) NextCursor() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nextCursor == nil {
		return nil
	}
	return models.Ptr(*s.nextCursor)
}

func (s *Service) HasMore() bool {
	return s.NextCursor() != nil
}

func appendUnique(existing, page []models.ConversationListItem) []models.ConversationListItem {
	seen := make(map[string]bool, len(existing))
	for _, it := range existing {
		seen[it.ID] = true
	}
	for _, it := range page {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		existing = append(existing, it)
	}
	return existing
}
