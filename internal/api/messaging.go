package api

import (
	"context"

	"github.com/cumulus-dev/cumulus/internal/transport"
)

// CreateEmail creates an email message. Without Draft or ScheduledAt it is
// sent right away.
func (c *client) CreateEmail(ctx context.Context, params CreateEmailParams) (*Message, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	var msg Message
	err := c.call(ctx, transport.MethodPost, "/messaging/messages/email", compact(map[string]any{
		"messageId":   params.MessageID,
		"subject":     params.Subject,
		"content":     params.Content,
		"topics":      params.Topics,
		"users":       params.Users,
		"targets":     params.Targets,
		"cc":          params.CC,
		"bcc":         params.BCC,
		"draft":       params.Draft,
		"html":        params.HTML,
		"scheduledAt": params.ScheduledAt,
	}), &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *client) ListMessages(ctx context.Context, queries []string, search string) (*MessageList, error) {
	var list MessageList
	if err := c.call(ctx, transport.MethodGet, "/messaging/messages", listParams(queries, search), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *client) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	if err := requireAll(param{"messageId", messageID}); err != nil {
		return nil, err
	}
	var msg Message
	if err := c.call(ctx, transport.MethodGet, pathf("/messaging/messages/%s", messageID), nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
