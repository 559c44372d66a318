// Package send accepts user-authored messages, shows them optimistically,
// and reconciles or rolls them back against the server outcome.
package send

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"free-chat-client/internal/domain"
)

// Conversation is the slice of the message store the coordinator mutates.
type Conversation interface {
	AppendPending(sender, content string) string
	MarkFailed(localID string) bool
}

// Sessions is the slice of the session manager the coordinator needs.
type Sessions interface {
	Session() *domain.Session
	Logout()
}

// Refresher triggers an immediate reconciling poll after a successful
// submit. Optional.
type Refresher interface {
	RefreshNow() error
}

type Coordinator struct {
	transport domain.Transport
	sessions  Sessions
	conv      Conversation
	refresher Refresher
	logger    *zap.Logger
}

func NewCoordinator(transport domain.Transport, sessions Sessions, conv Conversation, refresher Refresher, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		transport: transport,
		sessions:  sessions,
		conv:      conv,
		refresher: refresher,
		logger:    logger.Named("send"),
	}
}

// Send validates content, appends a pending entry, and submits it. The local
// id is returned even on submit failure so the caller can address the failed
// entry. Concurrent sends are independent; each gets its own pending entry in
// call order.
func (c *Coordinator) Send(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", domain.ErrEmptyContent
	}

	sess := c.sessions.Session()
	if sess == nil {
		return "", domain.ErrNoSession
	}

	localID := c.conv.AppendPending(sess.User.Username, content)

	if _, err := c.transport.PostMessage(ctx, sess.Token, sess.User.Username, content); err != nil {
		c.conv.MarkFailed(localID)
		if domain.IsAuth(err) {
			c.logger.Warn("send rejected, terminating session", zap.Error(err))
			c.sessions.Logout()
		} else {
			c.logger.Warn("send failed", zap.String("local_id", localID), zap.Error(err))
		}
		return localID, fmt.Errorf("send: %w", err)
	}

	// The next poll replaces the pending entry with server truth; kick one
	// off now rather than waiting out the period.
	if c.refresher != nil {
		if err := c.refresher.RefreshNow(); err != nil {
			c.logger.Debug("immediate refresh skipped", zap.Error(err))
		}
	}
	return localID, nil
}
