// Package realtime escucha los eventos WebSocket del backend del CRM y los aplica al
// tablero local.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
	"github.com/jhoicas/solarcrm-api/internal/infrastructure/crmapi"
)

// Tipos de evento que reemplazan la solicitud local.
const (
	EventStatusChanged     = "status_changed"
	EventAssignmentChanged = "assignment_changed"
)

// Applier recibe las instantáneas; board.Store lo implementa.
type Applier interface {
	Apply(e *entity.Enquiry) bool
}

// Event sobre JSON que emite el backend.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Config parámetros de la conexión.
type Config struct {
	URL         string
	Token       string
	MinBackoff  time.Duration // espera inicial entre reconexiones (1 s si es 0)
	MaxBackoff  time.Duration // tope de la espera (30 s si es 0)
	ReadTimeout time.Duration // sin mensajes ni pings en este lapso se reconecta (60 s si es 0)
}

// Stats contadores del listener.
type Stats struct {
	Applied  int64 `json:"applied"`
	Stale    int64 `json:"stale"`
	Rejected int64 `json:"rejected"`
}

// Listener mantiene la conexión y reconecta con backoff exponencial acotado.
type Listener struct {
	cfg    Config
	store  Applier
	log    zerolog.Logger
	dialer *ws.Dialer

	connected atomic.Bool
	applied   atomic.Int64
	stale     atomic.Int64
	rejected  atomic.Int64
}

// NewListener construye el listener; no abre la conexión hasta Run.
func NewListener(cfg Config, store Applier, log zerolog.Logger) *Listener {
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = cfg.MinBackoff
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 60 * time.Second
	}
	return &Listener{
		cfg:    cfg,
		store:  store,
		log:    log.With().Str("component", "realtime").Logger(),
		dialer: &ws.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Connected informa si hay una conexión abierta.
func (l *Listener) Connected() bool { return l.connected.Load() }

// Stats devuelve los contadores acumulados.
func (l *Listener) Stats() Stats {
	return Stats{Applied: l.applied.Load(), Stale: l.stale.Load(), Rejected: l.rejected.Load()}
}

// Run conecta y procesa eventos hasta que ctx se cancele. Siempre devuelve ctx.Err().
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.cfg.MinBackoff
	for {
		connectedOnce, err := l.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connectedOnce {
			backoff = l.cfg.MinBackoff
		}
		l.log.Warn().Err(err).Dur("retry_in", backoff).Msg("ws: conexión perdida")

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		backoff *= 2
		if backoff > l.cfg.MaxBackoff {
			backoff = l.cfg.MaxBackoff
		}
	}
}

// session abre una conexión y lee hasta que falle. connected indica si el handshake
// llegó a completarse.
func (l *Listener) session(ctx context.Context) (connected bool, err error) {
	header := http.Header{}
	if l.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+l.cfg.Token)
	}
	conn, resp, err := l.dialer.DialContext(ctx, l.cfg.URL, header)
	if err != nil {
		if resp != nil {
			return false, fmt.Errorf("ws: dial HTTP %d: %w", resp.StatusCode, err)
		}
		return false, fmt.Errorf("ws: dial: %w", err)
	}
	defer conn.Close()

	l.connected.Store(true)
	defer l.connected.Store(false)
	l.log.Info().Str("url", l.cfg.URL).Msg("ws: conectado")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(ws.CloseMessage,
				ws.FormatCloseMessage(ws.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	extend := func() { _ = conn.SetReadDeadline(time.Now().Add(l.cfg.ReadTimeout)) }
	extend()
	conn.SetPingHandler(func(data string) error {
		extend()
		err := conn.WriteControl(ws.PongMessage, []byte(data), time.Now().Add(5*time.Second))
		if errors.Is(err, ws.ErrCloseSent) {
			return nil
		}
		return err
	})
	conn.SetPongHandler(func(string) error {
		extend()
		return nil
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		extend()
		l.Handle(msg)
	}
}

// Handle procesa un mensaje: los eventos de cambio reemplazan la solicitud local por ID
// (respetando la versión); el resto se ignora.
func (l *Listener) Handle(msg []byte) {
	var evt Event
	if err := json.Unmarshal(msg, &evt); err != nil {
		l.rejected.Add(1)
		l.log.Warn().Err(err).Msg("ws: mensaje no es JSON")
		return
	}
	switch evt.Type {
	case EventStatusChanged, EventAssignmentChanged:
	default:
		l.log.Debug().Str("type", evt.Type).Msg("ws: evento ignorado")
		return
	}

	e, err := crmapi.DecodeEnquiry(evt.Data)
	if err != nil {
		l.rejected.Add(1)
		l.log.Warn().Err(err).Str("type", evt.Type).Msg("ws: payload inválido")
		return
	}
	if l.store.Apply(e) {
		l.applied.Add(1)
		l.log.Debug().Str("type", evt.Type).Str("enquiry_id", e.ID).Int64("version", e.Version).Msg("ws: solicitud actualizada")
		return
	}
	l.stale.Add(1)
	l.log.Debug().Str("type", evt.Type).Str("enquiry_id", e.ID).Int64("version", e.Version).Msg("ws: evento más antiguo que el tablero, descartado")
}
