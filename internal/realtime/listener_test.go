package realtime

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListener_DispatchFiltersByTable(t *testing.T) {
	l := NewListener(nil, zerolog.Nop())

	products, cancelProducts := l.Subscribe("products", "")
	defer cancelProducts()
	orders, cancelOrders := l.Subscribe("orders", "")
	defer cancelOrders()

	l.dispatch(Event{Table: "products", Type: EventUpdate, New: json.RawMessage(`{"id":"p1"}`)})

	select {
	case event := <-products:
		assert.Equal(t, "products", event.Table)
	default:
		t.Fatal("expected a product event")
	}

	select {
	case <-orders:
		t.Fatal("order subscriber must not receive product events")
	default:
	}
}

func TestListener_DispatchFiltersByUser(t *testing.T) {
	l := NewListener(nil, zerolog.Nop())

	mine, cancelMine := l.Subscribe("cart_items", "user-1")
	defer cancelMine()
	theirs, cancelTheirs := l.Subscribe("cart_items", "user-2")
	defer cancelTheirs()
	all, cancelAll := l.Subscribe("cart_items", "")
	defer cancelAll()

	l.dispatch(Event{Table: "cart_items", Type: EventInsert, UserID: "user-1"})

	assert.Len(t, mine, 1)
	assert.Len(t, theirs, 0)
	// An empty user filter sees every row
	assert.Len(t, all, 1)
}

func TestListener_CancelClosesChannel(t *testing.T) {
	l := NewListener(nil, zerolog.Nop())

	events, cancel := l.Subscribe("products", "")
	cancel()

	_, open := <-events
	assert.False(t, open)

	// Cancelling twice is safe
	cancel()
}

func TestListener_ShutdownClosesSubscribers(t *testing.T) {
	l := NewListener(nil, zerolog.Nop())

	events, _ := l.Subscribe("products", "")
	l.shutdown()

	_, open := <-events
	require.False(t, open)

	// Subscriptions after shutdown come back already closed
	late, _ := l.Subscribe("orders", "")
	_, open = <-late
	assert.False(t, open)
}

func TestListener_FullBufferDropsEvent(t *testing.T) {
	l := NewListener(nil, zerolog.Nop())

	events, cancel := l.Subscribe("products", "")
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		l.dispatch(Event{Table: "products", Type: EventInsert})
	}

	// The buffer holds its capacity; the overflow was dropped, not blocked on
	assert.Len(t, events, subscriberBuffer)
}
