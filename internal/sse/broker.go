// Package sse implements a Server-Sent Events broker for live-reload updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types sent to clients.
const (
	EventDocumentCreated = "document.created"
	EventDocumentUpdated = "document.updated"
	EventManifestUpdated = "manifest.updated"
	EventCorpusUpdated   = "corpus.updated"
)

// Change kinds accepted by PublishDocumentEvent.
const (
	KindCreated  = "created"
	KindUpdated  = "updated"
	KindManifest = "manifest"
)

const (
	// DefaultCorpusThrottle is the minimum gap between corpus.updated events.
	DefaultCorpusThrottle = 2 * time.Second
	// DefaultKeepAlive is the interval between comment frames on idle streams.
	DefaultKeepAlive = 30 * time.Second

	clientBuffer = 64
	retryMillis  = 3000
)

var kindEvents = map[string]string{
	KindCreated:  EventDocumentCreated,
	KindUpdated:  EventDocumentUpdated,
	KindManifest: EventManifestUpdated,
}

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// PathData is the payload of document and manifest events.
type PathData struct {
	Path string `json:"path"`
}

type change struct {
	kind string
	path string
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithKeepAlive sets the idle keep-alive interval of ServeHTTP.
func WithKeepAlive(d time.Duration) BrokerOption {
	return func(b *Broker) {
		b.keepAlive = d
	}
}

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop goroutine owns the client set, the event counter and
// the corpus throttle; public methods talk to it over channels.
type Broker struct {
	corpusMin time.Duration
	keepAlive time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changeCh      chan change
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker with the given corpus throttle interval.
func NewBroker(corpusThrottle time.Duration, opts ...BrokerOption) *Broker {
	if corpusThrottle <= 0 {
		corpusThrottle = DefaultCorpusThrottle
	}

	b := &Broker{
		corpusMin:     corpusThrottle,
		keepAlive:     DefaultKeepAlive,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changeCh:      make(chan change, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.loop()
	return b
}

// loopState is owned by the event loop goroutine.
type loopState struct {
	clients    map[chan []byte]struct{}
	nextID     uint64
	lastCorpus time.Time
}

// frame encodes one event in the text/event-stream format.
func frame(id uint64, event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", id, event.Type, payload)), nil
}

func (s *loopState) broadcast(event Event) {
	s.nextID++
	raw, err := frame(s.nextID, event)
	if err != nil {
		return
	}
	for ch := range s.clients {
		select {
		case ch <- raw:
		default:
			// Slow client; drop rather than stall every other subscriber.
		}
	}
}

func (b *Broker) loop() {
	defer close(b.stopped)

	st := &loopState{clients: make(map[chan []byte]struct{})}

	for {
		select {
		case <-b.stopCh:
			for ch := range st.clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			st.clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := st.clients[ch]; ok {
				delete(st.clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			st.broadcast(event)

		case c := <-b.changeCh:
			if typ, ok := kindEvents[c.kind]; ok {
				st.broadcast(Event{Type: typ, Data: PathData{Path: c.path}})
			}

			if now := time.Now(); now.Sub(st.lastCorpus) >= b.corpusMin {
				st.lastCorpus = now
				st.broadcast(Event{Type: EventCorpusUpdated, Data: struct{}{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(st.clients)
		}
	}
}

// Close stops the event loop and closes every client channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel. After Close the
// returned channel is already closed.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishDocumentEvent publishes a document or manifest change followed by a
// throttled corpus.updated event. Unknown kinds only feed the throttle.
func (b *Broker) PublishDocumentEvent(kind, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- change{kind: kind, path: path}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). Idle streams get a
// comment frame every keep-alive interval so proxies keep them open.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ticker := time.NewTicker(b.keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
