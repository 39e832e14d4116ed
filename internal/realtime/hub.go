package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"grassmap/internal/mapview"
	"grassmap/internal/models/domain_models"
)

const (
	EventMarkerAdd    = "marker.add"
	EventMarkerUpdate = "marker.update"
	EventMarkerRemove = "marker.remove"
	EventRouteDraw    = "route.draw"
	EventRouteClear   = "route.clear"
	EventMapCenter    = "map.center"
	EventScene        = "scene"
	EventCelebrate    = "trip.celebrate"
	EventShare        = "trip.share"

	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	sendBuffer   = 64
	maxReadBytes = 4096
)

var ErrHubClosed = errors.New("realtime hub closed")

// Event is the frame pushed to websocket clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS middleware already filters origins for the HTTP API
		return true
	},
}

type client struct {
	conn *websocket.Conn
	send chan []byte

	// Until the scene frame is queued, published frames wait in pending so
	// they reach the client after the snapshot they may postdate.
	ready   bool
	pending [][]byte
}

// Hub fans session events out to every connected websocket. It is the map
// Surface of a session: renderer operations become marker/route events.
type Hub struct {
	sessionID string
	snapshot  func() interface{}
	logger    *zap.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub builds a hub. snapshot, when set, is sent to each client as an
// EventScene frame right after it connects.
func NewHub(sessionID string, snapshot func() interface{}, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		sessionID: sessionID,
		snapshot:  snapshot,
		logger:    logger.With(zap.String("session_id", sessionID)),
		clients:   make(map[*client]struct{}),
	}
}

// SetSnapshot replaces the connect-time snapshot source.
func (h *Hub) SetSnapshot(f func() interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshot = f
}

// Serve upgrades the request and blocks until the client goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return ErrHubClosed
	}
	snapshot := h.snapshot
	c.ready = snapshot == nil
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if snapshot != nil {
		frame, err := json.Marshal(Event{Type: EventScene, Data: snapshot()})
		h.mu.Lock()
		if _, ok := h.clients[c]; ok {
			delivered := err != nil || h.enqueue(c, frame)
			for _, f := range c.pending {
				if !delivered {
					break
				}
				delivered = h.enqueue(c, f)
			}
			c.ready, c.pending = true, nil
		}
		h.mu.Unlock()
	}
	h.logger.Debug("websocket client connected", zap.String("remote", r.RemoteAddr))

	go h.writePump(c)
	h.readPump(c)
	return nil
}

// readPump discards client frames; it exists to notice disconnects and pongs.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	c.conn.SetReadLimit(maxReadBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Publish queues ev for every client. Clients whose buffer is full are
// disconnected rather than blocking the caller.
func (h *Hub) Publish(ev Event) error {
	frame, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	for c := range h.clients {
		if !c.ready {
			c.pending = append(c.pending, frame)
			continue
		}
		h.enqueue(c, frame)
	}
	return nil
}

// enqueue hands frame to c without blocking. A full buffer disconnects the
// client. h.mu must be held.
func (h *Hub) enqueue(c *client, frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		h.logger.Warn("websocket client too slow, dropping")
		delete(h.clients, c)
		close(c.send)
		return false
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients. Later Publish calls return ErrHubClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) AddMarker(m mapview.Marker) error {
	return h.Publish(Event{Type: EventMarkerAdd, Data: m})
}

func (h *Hub) UpdateMarker(m mapview.Marker) error {
	return h.Publish(Event{Type: EventMarkerUpdate, Data: m})
}

func (h *Hub) RemoveMarker(pointID string) error {
	return h.Publish(Event{Type: EventMarkerRemove, Data: map[string]string{"pointId": pointID}})
}

func (h *Hub) DrawRoute(path []domain_models.Coordinates) error {
	return h.Publish(Event{Type: EventRouteDraw, Data: path})
}

func (h *Hub) ClearRoute() error {
	return h.Publish(Event{Type: EventRouteClear})
}

func (h *Hub) SetCenter(center domain_models.Coordinates) error {
	return h.Publish(Event{Type: EventMapCenter, Data: center})
}

var _ mapview.Surface = (*Hub)(nil)
