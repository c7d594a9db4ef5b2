package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"taskboard/internal/realtime"
	"taskboard/internal/store"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	// DefaultSendQueue is how many events a viewer may fall behind before
	// it is disconnected.
	DefaultSendQueue = 256
)

// EventSync is the first message on every connection. Events with a
// version at or below it are already reflected in GET /api/board.
const EventSync = "board_sync"

type syncMessage struct {
	Type    string `json:"type"`
	Version uint64 `json:"version"`
	Total   int    `json:"total"`
}

// viewer is one websocket connection. Hub broadcasts only enqueue; the
// connection is written by writeLoop alone.
type viewer struct {
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newViewer(conn *websocket.Conn, queue int) *viewer {
	return &viewer{
		conn: conn,
		send: make(chan []byte, queue),
		done: make(chan struct{}),
	}
}

// Send queues message without blocking. A viewer whose queue is full is
// closed and has to reconnect and resync.
func (v *viewer) Send(message []byte) bool {
	select {
	case <-v.done:
		return false
	default:
	}
	select {
	case v.send <- message:
		return true
	default:
		log.WithField("queued", len(v.send)).Warn("websocket viewer too slow, disconnecting")
		v.Close()
		return false
	}
}

// Close stops the writer, which then closes the connection.
func (v *viewer) Close() {
	v.closeOnce.Do(func() { close(v.done) })
}

func (v *viewer) closed() bool {
	select {
	case <-v.done:
		return true
	default:
		return false
	}
}

func (v *viewer) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = v.conn.Close()
	}()

	for {
		select {
		case <-v.done:
			_ = v.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case msg := <-v.send:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				v.Close()
				return
			}
		case <-ticker.C:
			if err := v.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				v.Close()
				return
			}
		}
	}
}

// readLoop discards client frames; it only exists to process pongs and
// notice the peer going away.
func (v *viewer) readLoop() {
	v.conn.SetReadLimit(1024)
	_ = v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !v.closed() {
				log.WithError(err).Debug("websocket viewer read failed")
			}
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled by the gin middleware
	CheckOrigin: func(r *http.Request) bool { return true },
}

type RealtimeHandler struct {
	hub   *realtime.Hub
	store *store.Store
	queue int
}

func NewRealtimeHandler(hub *realtime.Hub, s *store.Store) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, store: s, queue: DefaultSendQueue}
}

// WebSocket handles GET /ws
// Streams store events to the viewer, starting with a board_sync message.
func (h *RealtimeHandler) WebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	v := newViewer(conn, h.queue)
	go v.writeLoop()

	// register before reading the version so no event falls in between
	h.hub.Register(v)
	defer func() {
		h.hub.Unregister(v)
		v.Close()
	}()

	hello, err := sonic.Marshal(syncMessage{
		Type:    EventSync,
		Version: h.store.Version(),
		Total:   len(h.store.List()),
	})
	if err != nil {
		log.WithError(err).Warn("encode board_sync failed")
		return
	}
	v.Send(hello)

	v.readLoop()
}
