package handlers

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/ortrace/ortrace-go/internal/domain/chat"
	"github.com/ortrace/ortrace-go/internal/state"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type ChatHandler struct {
	ready *state.Ready

	mu   sync.RWMutex
	subs map[uuid.UUID]map[*websocket.Conn]struct{}
}

type postMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// List returns a ticket's chat history in chronological order.
func (h *ChatHandler) List(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	messages, err := s.Repos.Chat.FindByTicketID(ticketID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
}

// Post records a message from a team member.
func (h *ChatHandler) Post(c *gin.Context) {
	h.post(c, chat.SenderTeam)
}

// PostCustomer records a message from the widget, unauthenticated.
func (h *ChatHandler) PostCustomer(c *gin.Context) {
	h.post(c, chat.SenderCustomer)
}

func (h *ChatHandler) post(c *gin.Context, sender string) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	if _, err := s.Repos.Ticket.FindByID(ticketID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load ticket"})
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := &chat.Message{
		TicketID: ticketID,
		Sender:   sender,
		Body:     req.Body,
	}
	if sender == chat.SenderTeam {
		if id, ok := currentUserID(c); ok {
			m.AuthorID = &id
		}
	}

	if err := s.Repos.Chat.Create(m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save message"})
		return
	}

	h.broadcast(ticketID, m)
	c.JSON(http.StatusCreated, m)
}

// Stream upgrades to a websocket that receives new messages on the ticket.
func (h *ChatHandler) Stream(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("chat: websocket upgrade: %v", err)
		return
	}

	h.subscribe(ticketID, conn)
	defer h.unsubscribe(ticketID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *ChatHandler) subscribe(ticketID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[uuid.UUID]map[*websocket.Conn]struct{})
	}
	if h.subs[ticketID] == nil {
		h.subs[ticketID] = make(map[*websocket.Conn]struct{})
	}
	h.subs[ticketID][conn] = struct{}{}
}

func (h *ChatHandler) unsubscribe(ticketID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[ticketID], conn)
	if len(h.subs[ticketID]) == 0 {
		delete(h.subs, ticketID)
	}
	conn.Close()
}

func (h *ChatHandler) broadcast(ticketID uuid.UUID, m *chat.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.subs[ticketID] {
		if err := conn.WriteJSON(m); err != nil {
			log.Printf("chat: write to subscriber: %v", err)
		}
	}
}
