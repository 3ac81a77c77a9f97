package chat

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	eventChatMessage = "chat_message"
	eventBotResponse = "bot_response"
	eventError       = "error"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	// maxInflight caps concurrent replies per connection.
	maxInflight = 4
)

type socketMessage struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

// SocketHandler serves the websocket chat transport.
type SocketHandler struct {
	relay    Responder
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewSocketHandler(relay Responder, log *zap.Logger) *SocketHandler {
	return &SocketHandler{
		relay: relay,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *SocketHandler) RegisterRoutes(r *chi.Mux) {
	r.Get("/ws/chat", h.serve)
}

type socketClient struct {
	conn     *websocket.Conn
	send     chan socketMessage
	relay    Responder
	log      *zap.Logger
	inflight sync.WaitGroup
	slots    chan struct{}
	stopped  chan struct{} // closed when writePump exits
}

func (h *SocketHandler) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	c := &socketClient{
		conn:    conn,
		send:    make(chan socketMessage, 16),
		relay:   h.relay,
		log:     h.log,
		slots:   make(chan struct{}, maxInflight),
		stopped: make(chan struct{}),
	}

	go func() {
		defer close(c.stopped)
		c.writePump()
	}()

	c.readPump(ctx)
	cancel()
	c.inflight.Wait()
	close(c.send)
	<-c.stopped
}

// readPump answers chat_message events in their own goroutines, at most
// maxInflight at a time, until the connection fails or closes. Messages over
// the limit get an error event.
func (c *socketClient) readPump(ctx context.Context) {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg socketMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket closed", zap.Error(err))
			}
			return
		}

		if msg.Event != eventChatMessage {
			c.push(ctx, socketMessage{Event: eventError, Message: "unknown event: " + msg.Event})
			continue
		}
		if strings.TrimSpace(msg.Message) == "" {
			c.push(ctx, socketMessage{Event: eventError, Message: "message cannot be empty"})
			continue
		}

		select {
		case c.slots <- struct{}{}:
		default:
			c.push(ctx, socketMessage{Event: eventError, Message: "too many pending messages, wait for a reply"})
			continue
		}
		c.inflight.Add(1)
		go func(text string) {
			defer c.inflight.Done()
			answer := c.relay.Respond(ctx, text)
			<-c.slots
			c.push(ctx, socketMessage{Event: eventBotResponse, Message: answer})
		}(msg.Message)
	}
}

func (c *socketClient) push(ctx context.Context, msg socketMessage) {
	select {
	case c.send <- msg:
	case <-ctx.Done():
	case <-c.stopped:
	}
}

func (c *socketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
