package ws

import (
	"context"
	"encoding/json"
	"sync"

	"comandas/internal/dto"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Todos is the room of boards that follow every evento.
var Todos = uuid.Nil

// Hub maintains the set of connected order boards and broadcasts comanda
// events to them. Boards join the room of one evento or Todos.
type Hub struct {
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan dto.EventoComanda
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan dto.EventoComanda, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and returns when ctx is done, closing
// every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.cerrarTodos()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.eventoID] == nil {
				h.rooms[client.eventoID] = make(map[*Client]bool)
			}
			h.rooms[client.eventoID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.quitar(client)
			h.mu.Unlock()

		case ev := <-h.broadcast:
			message, err := json.Marshal(ev)
			if err != nil {
				log.Error().Err(err).Str("tipo", ev.Tipo).Msg("ws: no se pudo serializar evento")
				continue
			}
			eventoID, _ := uuid.Parse(ev.Comanda.EventoID)

			h.mu.Lock()
			h.enviar(eventoID, message)
			if eventoID != Todos {
				h.enviar(Todos, message)
			}
			h.mu.Unlock()
		}
	}
}

// enviar must be called with mu held. Slow clients are dropped.
func (h *Hub) enviar(room uuid.UUID, message []byte) {
	for client := range h.rooms[room] {
		select {
		case client.send <- message:
		default:
			log.Warn().Str("evento_id", room.String()).Msg("ws: cliente lento desconectado")
			h.quitar(client)
		}
	}
}

// quitar must be called with mu held.
func (h *Hub) quitar(client *Client) {
	clients, ok := h.rooms[client.eventoID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.eventoID)
	}
}

func (h *Hub) cerrarTodos() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.rooms {
		for client := range clients {
			h.quitar(client)
		}
	}
}

// Notificar queues ev for broadcast. It never blocks: when the hub is
// backed up the event is dropped, boards recover on their next list fetch.
func (h *Hub) Notificar(_ context.Context, ev dto.EventoComanda) {
	select {
	case h.broadcast <- ev:
	default:
		log.Warn().Str("tipo", ev.Tipo).Str("comanda_id", ev.Comanda.ID).Msg("ws: cola de broadcast llena, evento descartado")
	}
}

// Conectados returns the number of connected boards.
func (h *Hub) Conectados() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.rooms {
		n += len(clients)
	}
	return n
}
