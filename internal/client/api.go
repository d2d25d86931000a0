package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jasperwreed/astroguide/internal/models"
)

func (c *Client) CreateConversation(ctx context.Context, title string) (*models.Conversation, error) {
	body := map[string]string{}
	if title != "" {
		body["title"] = title
	}

	var conv models.Conversation
	if err := c.do(ctx, http.MethodPost, "/conversations", nil, body, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations fetches one page; an empty cursor requests the first.
func (c *Client) ListConversations(ctx context.Context, cursor string, limit int) (*ConversationList, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var list ConversationList
	if err := c.do(ctx, http.MethodGet, "/conversations", query, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetConversation fetches a conversation with the page of messages older than
// before, or the newest page when before is empty.
func (c *Client) GetConversation(ctx context.Context, conversationID, before string, limit int) (*ConversationDetail, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if before != "" {
		query.Set("before", before)
	}

	var detail ConversationDetail
	if err := c.do(ctx, http.MethodGet, "/conversations/"+url.PathEscape(conversationID), query, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) SubmitMessage(ctx context.Context, conversationID string, req SubmitMessageRequest) (*SubmitMessageResponse, error) {
	var resp SubmitMessageResponse
	path := "/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) LookupConcept(ctx context.Context, q ConceptQuery) (*models.Concept, error) {
	query := url.Values{}
	query.Set("type", string(q.Type))
	query.Set("lang", string(q.Language))
	query.Set("key", q.Key)

	var concept models.Concept
	if err := c.do(ctx, http.MethodGet, "/concepts/lookup", query, nil, &concept); err != nil {
		return nil, err
	}
	return &concept, nil
}
