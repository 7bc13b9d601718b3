// ABOUTME: Conversation thread handle held by the agent service
// ABOUTME: Release is idempotent so callers can defer it unconditionally
package agent

import (
	"context"
	"fmt"
)

// Thread is an opaque conversation handle. It carries forward between turns.
type Thread struct {
	ID             string
	ConversationID string

	svc      Service
	released bool
}

// Delete releases the thread on the service. Calling it on a nil or
// already released thread is a no-op.
func (t *Thread) Delete(ctx context.Context) error {
	if t == nil || t.released {
		return nil
	}
	if _, err := t.svc.DeleteThread(ctx, t.ID); err != nil {
		return fmt.Errorf("deleting thread %s: %w", t.ID, err)
	}
	t.released = true
	return nil
}

// Released reports whether Delete has succeeded
func (t *Thread) Released() bool {
	return t != nil && t.released
}
