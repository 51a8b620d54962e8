// Package liveserver broadcasts Engine mutation results to connected
// viewers over websockets. It works only through the public Engine API:
// nothing in the core engine package depends on it, and it carries no
// spreadsheet semantics of its own — it applies clients' eval/delete/clear
// requests to the Engine and fans out {id, value, formula} updates.
package liveserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	sheet "sheetengine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// CellUpdate is one cell's new state, broadcast to every connected viewer
// after a mutating Engine call.
type CellUpdate struct {
	Id      string  `json:"id"`
	Value   float64 `json:"value"`
	Formula string  `json:"formula"`
}

// MutateRequest is an inbound client message: Type selects whether to set
// a cell's formula, delete the cell, or clear the sheet.
type MutateRequest struct {
	Type    string `json:"type"` // "eval", "delete", "clear"
	Id      string `json:"id"`
	Formula string `json:"formula"`
}

// Hub owns the Engine it observes and the set of connected clients.
type Hub struct {
	engine  *sheet.Engine
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
}

// NewHub constructs a Hub broadcasting mutations of engine.
func NewHub(engine *sheet.Engine) *Hub {
	return &Hub{
		engine:  engine,
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleWebSocket upgrades the connection, sends the current sheet
// snapshot, then services inbound mutation requests until the client
// disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("liveserver: upgrade error:", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	h.sendSnapshot(conn)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var req MutateRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			log.Println("liveserver: bad request:", err)
			continue
		}
		h.handleMutate(r.Context(), req)
	}
}

func (h *Hub) sendSnapshot(conn *websocket.Conn) {
	all, err := h.engine.ValueFormulas(nil)
	if err != nil {
		log.Println("liveserver: snapshot failed:", err)
		return
	}
	for id, q := range all {
		update := CellUpdate{Id: string(id), Value: q.Value, Formula: q.Formula}
		if err := conn.WriteJSON(update); err != nil {
			log.Println("liveserver: snapshot write failed:", err)
			return
		}
	}
}

func (h *Hub) handleMutate(ctx context.Context, req MutateRequest) {
	var (
		updates map[sheet.CellId]float64
		err     error
	)
	switch req.Type {
	case "eval":
		updates, err = h.engine.Eval(ctx, req.Id, req.Formula)
	case "delete":
		updates, err = h.engine.Delete(ctx, req.Id)
	case "clear":
		err = h.engine.Clear(ctx)
	default:
		log.Println("liveserver: unknown request type:", req.Type)
		return
	}
	if err != nil {
		log.Println("liveserver: mutation failed:", err)
		return
	}
	h.broadcast(updates)
}

// broadcast sends every (id, value) pair in updates to all connected
// clients, re-querying each cell for its current formula text. A client
// whose write fails is dropped immediately.
func (h *Hub) broadcast(updates map[sheet.CellId]float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range updates {
		q, err := h.engine.Query(string(id))
		if err != nil {
			continue
		}
		update := CellUpdate{Id: string(id), Value: q.Value, Formula: q.Formula}
		for client := range h.clients {
			if err := client.WriteJSON(update); err != nil {
				log.Printf("liveserver: broadcast write failed: %v", err)
				_ = client.Close()
				delete(h.clients, client)
			}
		}
	}
}
