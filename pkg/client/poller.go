package client

import (
	"context"
	"log"
	"time"

	"github.com/campuscart/backend/internal/models"
)

const (
	ConversationPollInterval = 10 * time.Second
	UnreadPollInterval       = 30 * time.Second
)

// Poll calls fetch right away and then every interval until ctx is done,
// handing each successful result to deliver. Failed fetches are logged and
// skipped. Poll blocks; run it in a goroutine, or use StartPoller.
//
// deliver always runs on the polling goroutine, and ctx is checked right
// before each call, so a fetch that finishes after cancellation is
// discarded. Cancelling from another goroutine can still race with a
// deliver that has already started; once Poll returns nothing more is
// delivered.
func Poll[T any](ctx context.Context, interval time.Duration, fetch func(context.Context) (T, error), deliver func(T)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		v, err := fetch(ctx)
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			log.Printf("[client] poll err=%v", err)
		default:
			if ctx.Err() != nil {
				return
			}
			deliver(v)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poller is a Poll loop running in its own goroutine.
type Poller struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartPoller runs Poll in the background until Stop is called or parent
// is done.
func StartPoller[T any](parent context.Context, interval time.Duration, fetch func(context.Context) (T, error), deliver func(T)) *Poller {
	ctx, cancel := context.WithCancel(parent)
	p := &Poller{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		Poll(ctx, interval, fetch, deliver)
	}()
	return p
}

// Stop cancels the loop and waits for it to exit. After Stop returns
// deliver is never called again. Calling Stop from inside deliver
// deadlocks.
func (p *Poller) Stop() {
	p.cancel()
	<-p.done
}

// PollConversations refreshes the chat partner list.
func (c *Client) PollConversations(ctx context.Context, deliver func([]models.Conversation)) *Poller {
	return StartPoller(ctx, ConversationPollInterval, c.Conversations, deliver)
}

// PollUnreadCount refreshes the unread message badge.
func (c *Client) PollUnreadCount(ctx context.Context, deliver func(int)) *Poller {
	return StartPoller(ctx, UnreadPollInterval, c.UnreadCount, deliver)
}
