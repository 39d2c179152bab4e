package realtime_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/solarcrm-api/internal/application/board"
	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
	"github.com/jhoicas/solarcrm-api/internal/infrastructure/realtime"
)

var upgrader = ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// wsServer por cada conexión llama a serve con el número de conexión (desde 1).
func wsServer(t *testing.T, serve func(n int, conn *ws.Conn)) (string, *atomic.Value) {
	t.Helper()
	var (
		count int32
		auth  atomic.Value
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		serve(int(atomic.AddInt32(&count, 1)), conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), &auth
}

func send(conn *ws.Conn, msg string) {
	_ = conn.WriteMessage(ws.TextMessage, []byte(msg))
}

// holdOpen mantiene la conexión hasta que el cliente cierre.
func holdOpen(conn *ws.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func run(t *testing.T, l *realtime.Listener) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.ErrorIs(t, l.Run(ctx), context.Canceled)
	}()
	return func() {
		stop()
		wg.Wait()
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Eventos
// ──────────────────────────────────────────────────────────────────────────────

func TestListener_AplicaEventosDeCambio(t *testing.T) {
	url, auth := wsServer(t, func(_ int, conn *ws.Conn) {
		send(conn, `{"type":"status_changed","data":{"id":"e1","status":"Design","currentAssignedPerson":"d1","enquiryBy":"s1","amount":"10","version":3}}`)
		send(conn, `{"type":"assignment_changed","data":{"id":"e1","status":"Design","currentAssignedPerson":"d2","enquiryBy":"s1","amount":"10","version":4}}`)
		send(conn, `{"type":"comment_added","data":{"id":"e1"}}`)
		holdOpen(conn)
	})
	store := board.NewStore()
	l := realtime.NewListener(realtime.Config{URL: url, Token: "svc"}, store, zerolog.Nop())
	stop := run(t, l)
	defer stop()

	require.Eventually(t, func() bool {
		e, ok := store.Get("e1")
		return ok && e.CurrentAssignedPerson == "d2"
	}, 2*time.Second, 10*time.Millisecond)

	e, _ := store.Get("e1")
	assert.Equal(t, workflow.StatusDesign, e.Status)
	assert.Equal(t, int64(4), e.Version)
	assert.Equal(t, "Bearer svc", auth.Load())
	assert.True(t, l.Connected())
	assert.Equal(t, int64(2), l.Stats().Applied)
}

func TestListener_EventoViejoNoPisaRespuestaNueva(t *testing.T) {
	store := board.NewStore()
	store.Apply(&entity.Enquiry{ID: "e1", Status: workflow.StatusBOQ, CurrentAssignedPerson: "s1", Version: 9})

	l := realtime.NewListener(realtime.Config{URL: "ws://unused"}, store, zerolog.Nop())
	l.Handle([]byte(`{"type":"status_changed","data":{"id":"e1","status":"Design","currentAssignedPerson":"d1","version":8}}`))

	e, _ := store.Get("e1")
	assert.Equal(t, workflow.StatusBOQ, e.Status)
	assert.Equal(t, realtime.Stats{Stale: 1}, l.Stats())
}

func TestListener_MensajesInvalidos(t *testing.T) {
	store := board.NewStore()
	l := realtime.NewListener(realtime.Config{URL: "ws://unused"}, store, zerolog.Nop())

	l.Handle([]byte(`no-json`))
	l.Handle([]byte(`{"type":"status_changed","data":{"status":"Design"}}`))
	l.Handle([]byte(`{"type":"status_changed","data":"texto"}`))

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, int64(3), l.Stats().Rejected)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconexión
// ──────────────────────────────────────────────────────────────────────────────

func TestListener_ReconectaTrasCierre(t *testing.T) {
	url, _ := wsServer(t, func(n int, conn *ws.Conn) {
		if n == 1 {
			return // cierra de inmediato
		}
		send(conn, `{"type":"status_changed","data":{"id":"e9","status":"Hotdip","currentAssignedPerson":"p1","version":1}}`)
		holdOpen(conn)
	})
	store := board.NewStore()
	l := realtime.NewListener(realtime.Config{URL: url, MinBackoff: 10 * time.Millisecond, MaxBackoff: 20 * time.Millisecond}, store, zerolog.Nop())
	stop := run(t, l)
	defer stop()

	require.Eventually(t, func() bool {
		_, ok := store.Get("e9")
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestListener_ServidorCaidoSeCancelaLimpio(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	l := realtime.NewListener(realtime.Config{URL: url, MinBackoff: 5 * time.Millisecond}, board.NewStore(), zerolog.Nop())
	stop := run(t, l)
	time.Sleep(50 * time.Millisecond)
	assert.False(t, l.Connected())
	stop()
}
