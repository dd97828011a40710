package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/amar-rokto/api/internal/dto"
	"github.com/amar-rokto/api/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// Client is one connected operator session, scoped to a single bank room.
type Client struct {
	hub    *Hub
	bankID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans pending-queue snapshots out to the operators of each bank.
// Rooms are keyed by bank id; every moderation decision pushes the bank's
// refreshed snapshot to its room.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	logger     *zap.Logger
	mu         sync.Mutex
}

type envelope struct {
	bankID  string
	payload []byte
}

// feedMessage is the wire shape pushed to subscribers.
type feedMessage struct {
	Type    string              `json:"type"`
	BankID  string              `json:"bank_id"`
	Pending dto.PendingSnapshot `json:"pending"`
}

// NewHub constructs the hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, 16),
		logger:     logger,
	}
}

// Run drives the dispatch loop until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			room := h.rooms[client.bankID]
			if room == nil {
				room = make(map[*Client]bool)
				h.rooms[client.bankID] = room
			}
			room[client] = true
			h.mu.Unlock()
			h.logger.Debug("feed subscriber connected", zap.String("bank_id", client.bankID))
		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.bankID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.bankID)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Debug("feed subscriber disconnected", zap.String("bank_id", client.bankID))
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.rooms[msg.bankID] {
				select {
				case client.send <- msg.payload:
				default:
					close(client.send)
					delete(h.rooms[msg.bankID], client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// PublishPending pushes a refreshed pending snapshot to the bank's room.
// Implements the moderation service's feed interface.
func (h *Hub) PublishPending(bankID string, snapshot dto.PendingSnapshot) {
	payload, err := json.Marshal(feedMessage{
		Type:    "pending_snapshot",
		BankID:  bankID,
		Pending: snapshot,
	})
	if err != nil {
		h.logger.Warn("failed to encode feed message", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- envelope{bankID: bankID, payload: payload}:
	default:
		h.logger.Warn("feed broadcast buffer full, dropping snapshot", zap.String("bank_id", bankID))
	}
}

// Serve upgrades an operator connection after validating the token passed
// as a query parameter. Only the owning operator or an admin may join a
// bank's room.
func (h *Hub) Serve(c *gin.Context, validator tokenValidator) {
	bankID := c.Param("bankId")
	tokenString := c.Query("token")
	if tokenString == "" {
		tokenString = c.Query("access_token")
	}
	if tokenString == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, err := validator.ValidateToken(tokenString)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if claims.Role != models.RoleAdmin && !(claims.Role == models.RoleBloodBank && claims.UserID == bankID) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{hub: h, bankID: bankID, conn: conn, send: make(chan []byte, 256)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) writePump() {
	defer func() {
		_ = c.conn.Close()
	}()
	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		_, _ = w.Write(message)

		n := len(c.send)
		for i := 0; i < n; i++ {
			_, _ = w.Write([]byte{'\n'})
			_, _ = w.Write(<-c.send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	for {
		// Reads keep the connection alive; clients never send payloads.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
