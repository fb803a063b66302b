package ws

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Client is one websocket connection. A client with an empty CNPJ follows
// every company; otherwise only events for that canonical cnpj reach it.
type Client struct {
	ID   string
	CNPJ string
	Send chan []byte
}

func (c *Client) follows(cnpj string) bool {
	return c.CNPJ == "" || c.CNPJ == cnpj
}

// Message is a company event ready to be written to sockets.
type Message struct {
	CNPJ string
	Body []byte
}

// Hub fans company events out to connected clients. All client bookkeeping
// happens on the Run goroutine; the mutex only guards reads from Count.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client // id -> client
	register chan *Client
	unreg    chan *Client
	events   chan Message

	log     *slog.Logger
	stop    chan struct{}
	stopped chan struct{}

	nextID atomic.Uint64
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		events:   make(chan Message, 1024),
		log:      log.With("cmp", "ws.hub"),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (h *Hub) newID() string {
	id := h.nextID.Add(1)
	return fmt.Sprintf("c%d", id)
}

func (h *Hub) Run() {
	h.log.Info("hub_run_start")
	defer close(h.stopped)

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.ID] = c
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client_registered", "id", c.ID, "cnpj", c.CNPJ, "total", total)

		case c := <-h.unreg:
			if c == nil || c.ID == "" {
				continue
			}
			if h.drop(c.ID) {
				h.log.Info("client_unregistered", "id", c.ID, "total", h.Count())
			}

		case m := <-h.events:
			h.deliver(m)

		case <-h.stop:
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			h.log.Info("hub_run_stop")
			return
		}
	}
}

// deliver never blocks: a client whose buffer is full is disconnected.
func (h *Hub) deliver(m Message) {
	var slow []string
	h.mu.RLock()
	for id, c := range h.clients {
		if !c.follows(m.CNPJ) {
			continue
		}
		select {
		case c.Send <- m.Body:
		default:
			slow = append(slow, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range slow {
		if h.drop(id) {
			h.log.Warn("client_dropped_slow", "id", id)
		}
	}
}

func (h *Hub) drop(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[id]
	if !ok {
		return false
	}
	delete(h.clients, id)
	close(c.Send)
	return true
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Stop() {
	close(h.stop)
	<-h.stopped
}

// Register assigns an ID to c when it has none, before handing it to Run.
// After Stop the client is not registered and its Send channel is closed, so
// the writer side ends the same way it does on shutdown.
func (h *Hub) Register(c *Client) {
	if c.ID == "" {
		c.ID = h.newID()
	}
	select {
	case h.register <- c:
	case <-h.stopped:
		close(c.Send)
	}
}

// Unregister and Publish return immediately once the hub has stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unreg <- c:
	case <-h.stopped:
	}
}

func (h *Hub) Publish(m Message) {
	select {
	case h.events <- m:
	case <-h.stopped:
	}
}
