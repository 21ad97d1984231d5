package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// notifyChannel is the Postgres NOTIFY channel the backend's row-change
// triggers publish to. Every watched table shares it; the payload names the
// table.
const notifyChannel = "row_changes"

const subscriberBuffer = 64

// Listener implements Feed over Postgres LISTEN/NOTIFY. Run must be started
// before events flow; Subscribe may be called at any time.
type Listener struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger

	mu     sync.Mutex
	subs   map[int]*subscription
	nextID int
	closed bool
}

type subscription struct {
	table  string
	userID string
	ch     chan Event
}

// NewListener creates a change-feed listener on the provided pool.
func NewListener(pool *pgxpool.Pool, logger zerolog.Logger) *Listener {
	return &Listener{
		pool:   pool,
		logger: logger.With().Str("component", "realtime-listener").Logger(),
		subs:   make(map[int]*subscription),
	}
}

// Subscribe registers interest in a table's changes, optionally filtered to
// one user's rows.
func (l *Listener) Subscribe(table, userID string) (<-chan Event, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if l.closed {
		close(ch)
		return ch, func() {}
	}

	id := l.nextID
	l.nextID++
	l.subs[id] = &subscription{table: table, userID: userID, ch: ch}

	cancel := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if sub, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(sub.ch)
		}
	}

	return ch, cancel
}

// Run listens for notifications until the context is cancelled, reconnecting
// with a short delay after connection loss.
func (l *Listener) Run(ctx context.Context) error {
	defer l.shutdown()

	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Error().Err(err).Msg("listen loop ended, reconnecting")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}

	l.logger.Info().Str("channel", notifyChannel).Msg("listening for row changes")

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var event Event
		if err := json.Unmarshal([]byte(notification.Payload), &event); err != nil {
			l.logger.Warn().Err(err).Msg("discarding malformed change payload")
			continue
		}

		l.dispatch(event)
	}
}

func (l *Listener) dispatch(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, sub := range l.subs {
		if sub.table != event.Table {
			continue
		}
		if sub.userID != "" && sub.userID != event.UserID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			l.logger.Warn().
				Str("table", event.Table).
				Msg("subscriber buffer full, dropping event")
		}
	}
}

func (l *Listener) shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	for id, sub := range l.subs {
		delete(l.subs, id)
		close(sub.ch)
	}
}
