package ws

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	acme  = "11222333000181"
	other = "45723174000110"
)

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case got := <-c.Send:
		return got
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting %s", c.ID)
		return nil
	}
}

func TestHub_PublishToFollowers(t *testing.T) {
	h := NewHub(slog.Default())
	go h.Run()
	defer h.Stop()

	all := &Client{Send: make(chan []byte, 2)}
	acmeOnly := &Client{CNPJ: acme, Send: make(chan []byte, 2)}
	otherOnly := &Client{CNPJ: other, Send: make(chan []byte, 2)}
	h.Register(all)
	h.Register(acmeOnly)
	h.Register(otherOnly)

	h.Publish(Message{CNPJ: acme, Body: []byte("hello")})

	assert.Equal(t, "hello", string(recv(t, all)))
	assert.Equal(t, "hello", string(recv(t, acmeOnly)))

	select {
	case got := <-otherOnly.Send:
		t.Fatalf("other client got %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SlowClientDropped(t *testing.T) {
	h := NewHub(slog.Default())
	go h.Run()
	defer h.Stop()

	slow := &Client{Send: make(chan []byte, 1)}
	slow.Send <- []byte("pending") // buffer full, never read
	h.Register(slow)
	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, 10*time.Millisecond)

	h.Publish(Message{CNPJ: acme, Body: []byte("x")})

	require.Eventually(t, func() bool { return h.Count() == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "pending", string(<-slow.Send))
	_, ok := <-slow.Send
	assert.False(t, ok, "Send must be closed after drop")
}

func TestHub_UnregisterTwiceIsSafe(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	c := &Client{Send: make(chan []byte, 1)}
	h.Register(c)
	h.Unregister(c)
	h.Unregister(c)

	assert.Eventually(t, func() bool { return h.Count() == 0 }, time.Second, 10*time.Millisecond)
}

// depois do Stop nenhuma chamada pode travar a goroutine do socket
func TestHub_CallsAfterStopReturn(t *testing.T) {
	h := NewHub(nil)
	go h.Run()

	c := &Client{Send: make(chan []byte, 1)}
	h.Register(c)
	h.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Unregister(c)
		h.Publish(Message{CNPJ: acme, Body: []byte("late")})
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Unregister/Publish blocked after Stop")
	}

	late := &Client{Send: make(chan []byte, 1)}
	h.Register(late)
	_, ok := <-late.Send
	assert.False(t, ok, "Send of a client registered after Stop must be closed")
	assert.Equal(t, 0, h.Count())
}
