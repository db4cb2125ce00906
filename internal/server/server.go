package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lao-tseu-is-alive/go-instance-flock/internal/scene"
	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/flock"
	"github.com/tochemey/goakt/v3/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // viewers are served from anywhere
	},
}

// Flock is the part of the simulation engine the server drives.
type Flock interface {
	scene.Gate
	Tick(ctx context.Context) error
	Frames() <-chan flock.Frame
	Snapshot() flock.Frame
}

// FlockServer ticks the flock on a timer and streams every frame to the connected viewers.
type FlockServer struct {
	flock  Flock
	canvas Canvas
	logger log.Logger

	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex

	// viewers hovering each boid; the gate is shared so a boid is paused on the
	// first hover and resumed when the last one goes
	holds  map[string]int
	holdMu sync.Mutex
}

// Canvas is the size viewers should draw at.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewFlockServer(f Flock, canvas Canvas, logger log.Logger) *FlockServer {
	return &FlockServer{
		flock:      f,
		canvas:     canvas,
		logger:     logger,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		holds:      make(map[string]int),
	}
}

// Run drives the simulation until ctx is done, then disconnects every viewer.
func (s *FlockServer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("flock server loop shutting down...")
			s.closeAll()
			return

		case c := <-s.register:
			s.mu.Lock()
			s.clients[c.ID] = c
			s.mu.Unlock()
			s.logger.Infof("viewer %s connected (%d online)", c.ID, s.ClientCount())

		case c := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[c.ID]; ok {
				delete(s.clients, c.ID)
				c.close()
			}
			s.mu.Unlock()
			s.logger.Infof("viewer %s disconnected", c.ID)

		case <-ticker.C:
			if err := s.flock.Tick(ctx); err != nil {
				s.logger.Errorf("tick failed: %v", err)
			}

		case fr := <-s.flock.Frames():
			s.broadcast(frameMessage(fr))
		}
	}
}

func (s *FlockServer) broadcast(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Errorf("error marshaling %s message: %v", msg.Type, err)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		c.send(data)
	}
}

func (s *FlockServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		_ = c.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutting down"),
			time.Now().Add(time.Second))
		c.close()
		delete(s.clients, id)
	}
}

// hold adds one hover on id, pausing the boid if nobody was hovering it.
func (s *FlockServer) hold(ctx context.Context, id string) (bool, error) {
	s.holdMu.Lock()
	defer s.holdMu.Unlock()
	if s.holds[id] > 0 {
		s.holds[id]++
		return false, nil
	}
	changed, err := s.flock.Pause(ctx, id)
	if err != nil {
		return false, err
	}
	s.holds[id] = 1
	return changed, nil
}

// release drops a hover on id when held is set and resumes the boid once no
// viewer holds it. A resume for a boid other viewers still hover is a no-op.
func (s *FlockServer) release(ctx context.Context, id string, held bool) (bool, error) {
	s.holdMu.Lock()
	defer s.holdMu.Unlock()
	if held && s.holds[id] > 0 {
		s.holds[id]--
	}
	if s.holds[id] > 0 {
		return false, nil
	}
	delete(s.holds, id)
	return s.flock.Resume(ctx, id)
}

func (s *FlockServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Handler exposes the websocket endpoint, the current frame and a health check.
func (s *FlockServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWebSocket)
	mux.HandleFunc("GET /frame", s.handleFrame)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// HandleWebSocket upgrades the request and starts the client pumps.
func (s *FlockServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}

	c := &Client{
		ID:     uuid.NewString(),
		Conn:   conn,
		Send:   make(chan []byte, 64),
		server: s,
		paused: make(map[string]bool),
	}

	hello, err := json.Marshal(s.helloMessage(c.ID))
	if err != nil {
		s.logger.Errorf("error marshaling hello: %v", err)
		conn.Close()
		return
	}
	c.Send <- hello

	select {
	case s.register <- c:
	case <-s.done:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

func (s *FlockServer) helloMessage(clientID string) *Message {
	fr := s.flock.Snapshot()
	boids := make([]BoidInfo, len(fr.Boids))
	for i, b := range fr.Boids {
		clr := scene.GroupColor(b.Group)
		boids[i] = BoidInfo{
			ID:      b.ID,
			Group:   b.Group,
			Color:   fmt.Sprintf("#%02x%02x%02x%02x", clr.R, clr.G, clr.B, clr.A),
			Radius:  scene.Radius(b),
			Tooltip: scene.Tooltip(b),
		}
	}
	return &Message{
		Type:     TypeHello,
		ClientID: clientID,
		Canvas:   &s.canvas,
		Boids:    boids,
		Frame:    &fr,
	}
}

func (s *FlockServer) handleFrame(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.flock.Snapshot()); err != nil {
		s.logger.Errorf("error encoding frame: %v", err)
	}
}

func (s *FlockServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"clients": s.ClientCount(),
		"seq":     s.flock.Snapshot().Seq,
	})
}
