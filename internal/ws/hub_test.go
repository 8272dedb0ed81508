package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"comandas/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, eventoID uuid.UUID) *Client {
	return &Client{
		hub:      hub,
		eventoID: eventoID,
		send:     make(chan []byte, 256),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func evento(eventoID uuid.UUID) dto.EventoComanda {
	return dto.EventoComanda{
		Tipo:       dto.EventoComandaCreada,
		Comanda:    dto.ComandaResponse{ID: uuid.NewString(), EventoID: eventoID.String(), Estado: "pendiente"},
		OcurridoEn: time.Now(),
	}
}

func recibir(t *testing.T, c *Client) dto.EventoComanda {
	t.Helper()
	select {
	case msg := <-c.send:
		var ev dto.EventoComanda
		require.NoError(t, json.Unmarshal(msg, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return dto.EventoComanda{}
	}
}

func nada(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message: %s", msg)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestHubRegistration(t *testing.T) {
	hub := startHub(t)
	eventoID := uuid.New()
	client := mockClient(hub, eventoID)

	hub.register <- client
	assert.Eventually(t, func() bool { return hub.Conectados() == 1 }, time.Second, 5*time.Millisecond)

	hub.unregister <- client
	assert.Eventually(t, func() bool { return hub.Conectados() == 0 }, time.Second, 5*time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	assert.Nil(t, hub.rooms[eventoID], "empty rooms are removed")
}

func TestBroadcastPorEvento(t *testing.T) {
	hub := startHub(t)
	jazz, rock := uuid.New(), uuid.New()
	cJazz := mockClient(hub, jazz)
	cRock := mockClient(hub, rock)
	cTodos := mockClient(hub, Todos)
	for _, c := range []*Client{cJazz, cRock, cTodos} {
		hub.register <- c
	}

	ev := evento(jazz)
	hub.Notificar(context.Background(), ev)

	assert.Equal(t, ev.Comanda.ID, recibir(t, cJazz).Comanda.ID)
	assert.Equal(t, ev.Comanda.ID, recibir(t, cTodos).Comanda.ID)
	nada(t, cRock)
}

func TestClienteLentoDesconectado(t *testing.T) {
	hub := startHub(t)
	eventoID := uuid.New()
	lento := &Client{hub: hub, eventoID: eventoID, send: make(chan []byte)}
	hub.register <- lento

	hub.Notificar(context.Background(), evento(eventoID))

	assert.Eventually(t, func() bool { return hub.Conectados() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-lento.send
	assert.False(t, ok, "send channel closed")
}

func TestNotificarNoBloquea(t *testing.T) {
	hub := NewHub() // not running
	done := make(chan struct{})
	go func() {
		for range cap(hub.broadcast) + 10 {
			hub.Notificar(context.Background(), evento(uuid.New()))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notificar blocked")
	}
}

func TestServeWS_EndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t)
	r := gin.New()
	r.GET("/ws", hub.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	eventoID := uuid.New()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?evento_id=" + eventoID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.Conectados() == 1 }, time.Second, 5*time.Millisecond)
	ev := evento(eventoID)
	hub.Notificar(context.Background(), ev)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got dto.EventoComanda
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, dto.EventoComandaCreada, got.Tipo)
	assert.Equal(t, ev.Comanda.ID, got.Comanda.ID)
}

func TestServeWS_EventoInvalido(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", hub.ServeWS)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ws?evento_id=x", nil))

	assert.Equal(t, 400, w.Code)
}
