package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/windoze95/saltybytes-search/internal/fetcher"
	"github.com/windoze95/saltybytes-search/internal/logger"
	"github.com/windoze95/saltybytes-search/internal/render"
	"github.com/windoze95/saltybytes-search/internal/search"
	"github.com/windoze95/saltybytes-search/internal/service"
	"github.com/windoze95/saltybytes-search/internal/util"
	"go.uber.org/zap"
)

// WebSocket message types for the search protocol.
const (
	MsgTypeSearch        = "search"         // Client submits a query
	MsgTypeConnected     = "connected"      // Connection confirmed
	MsgTypeResultsHeader = "results_header" // Match count, sent before any card
	MsgTypeCard          = "card"           // One enriched recipe
	MsgTypeNoResults     = "no_results"     // Query matched nothing
	MsgTypeDone          = "done"           // All cards for the query were sent
	MsgTypeError         = "error"          // Error message
)

// WSMessage is the envelope for all messages sent over the search WebSocket.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SearchPayload is sent by the client to run a query.
type SearchPayload struct {
	Query string `json:"query"`
}

// ConnectedPayload confirms a successful connection.
type ConnectedPayload struct {
	SessionID string `json:"session_id"`
	Recipes   int    `json:"recipes"`
}

// ResultsHeaderPayload announces how many cards will follow.
type ResultsHeaderPayload struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// QueryPayload echoes the query for no_results and done.
type QueryPayload struct {
	Query string `json:"query"`
}

// ErrorPayload carries an error message to the client.
type ErrorPayload struct {
	Message string `json:"message"`
}

// SearchSessionHandler streams search results over WebSocket.
type SearchSessionHandler struct {
	Hub            *Hub
	Service        *service.RecipeService
	AllowedOrigins []string
	SearchRPS      int

	upgrader websocket.Upgrader
}

// NewSearchSessionHandler returns a new SearchSessionHandler. Each session
// may run at most searchRPS searches per second; zero disables the limit.
func NewSearchSessionHandler(hub *Hub, recipeService *service.RecipeService, allowedOrigins []string, searchRPS int) *SearchSessionHandler {
	h := &SearchSessionHandler{
		Hub:            hub,
		Service:        recipeService,
		AllowedOrigins: allowedOrigins,
		SearchRPS:      searchRPS,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin:     h.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return h
}

// checkOrigin accepts non-browser clients, same-host pages, localhost and
// the configured origins.
func (h *SearchSessionHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	return u.Hostname() == "localhost" && strings.HasPrefix(origin, "http://")
}

// HandleSearchSession upgrades the request to a WebSocket connection and
// serves search messages until the client disconnects.
func (h *SearchSessionHandler) HandleSearchSession(c *gin.Context) {
	log := logger.FromGin(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(h.Hub, conn, uuid.New().String())
	client.SetSearchRate(h.SearchRPS)
	if !h.Hub.Add(client) {
		log.Warn("search session rejected, hub stopped", zap.String("session_id", client.SessionID))
		conn.Close()
		return
	}

	client.sendJSON(MsgTypeConnected, ConnectedPayload{
		SessionID: client.SessionID,
		Recipes:   h.Service.Size(),
	})

	go client.WritePump()
	go client.ReadPump(h.handleMessage)
}

// handleMessage parses an incoming message and routes it.
func (h *SearchSessionHandler) handleMessage(client *Client, data []byte) {
	var msg WSMessage
	if err := util.DeserializeFromJSONString(string(data), &msg); err != nil {
		client.sendError("invalid message format")
		return
	}

	switch msg.Type {
	case MsgTypeSearch:
		var payload SearchPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			client.sendError("invalid search payload")
			return
		}
		query, ok := search.NormalizeQuery(payload.Query)
		if !ok {
			client.sendError("query cannot be empty")
			return
		}
		if !client.allowSearch() {
			logger.Get().Warn("websocket search rate limit exceeded", zap.String("session_id", client.SessionID))
			client.sendError("Too many requests")
			return
		}
		if !client.searching.CompareAndSwap(false, true) {
			client.sendError("a search is already in progress")
			return
		}
		go h.runSearch(client, query)

	default:
		client.sendError("unknown message type: " + msg.Type)
	}
}

// runSearch streams one query's results to client. Cards are sent in result
// order, each as soon as it is enriched.
func (h *SearchSessionHandler) runSearch(client *Client, query string) {
	defer client.searching.Store(false)

	if loadErr := h.Service.LoadErr(); loadErr != nil {
		client.sendError(fetcher.UserMessage(loadErr))
		return
	}

	err := h.Service.Stream(client.Context(), query,
		func(count int) error {
			if count == 0 {
				return client.sendJSON(MsgTypeNoResults, QueryPayload{Query: query})
			}
			return client.sendJSON(MsgTypeResultsHeader, ResultsHeaderPayload{Query: query, Count: count})
		},
		func(card render.Card) error {
			return client.sendJSON(MsgTypeCard, card)
		},
	)
	if err != nil {
		if client.Context().Err() != nil {
			return
		}
		logger.Get().Error("streamed search failed",
			zap.String("session_id", client.SessionID),
			zap.String("query", query),
			zap.Error(err),
		)
		if errors.Is(err, service.ErrCollectionUnavailable) {
			client.sendError(service.ErrCollectionUnavailable.Error())
			return
		}
		client.sendError("search failed")
		return
	}

	client.sendJSON(MsgTypeDone, QueryPayload{Query: query})
}

// sendJSON queues a typed message. It gives up once the session is closed.
func (c *Client) sendJSON(msgType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(WSMessage{Type: msgType, Payload: raw})
	if err != nil {
		return err
	}

	select {
	case c.Send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

func (c *Client) sendError(message string) {
	c.sendJSON(MsgTypeError, ErrorPayload{Message: message})
}
