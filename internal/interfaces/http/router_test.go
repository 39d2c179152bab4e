package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/solarcrm-api/internal/application/board"
	"github.com/jhoicas/solarcrm-api/internal/application/dto"
	"github.com/jhoicas/solarcrm-api/internal/application/ports/portstest"
	"github.com/jhoicas/solarcrm-api/internal/application/session"
	"github.com/jhoicas/solarcrm-api/internal/application/transition"
	"github.com/jhoicas/solarcrm-api/internal/domain"
	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
	apphttp "github.com/jhoicas/solarcrm-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// App completa sobre el backend en memoria
// ──────────────────────────────────────────────────────────────────────────────

var directory = []entity.User{
	{ID: "s1", Name: "Sara", Role: workflow.RoleSalesman, Active: true},
	{ID: "d1", Name: "Diego", Role: workflow.RoleDesigner, Active: true},
	{ID: "p1", Name: "Pablo", Role: workflow.RoleProduction, Active: true},
	{ID: "x1", Name: "Xavier", Role: workflow.RoleDirector, Active: true},
}

type testAPI struct {
	app *fiber.App
	gw  *portstest.Gateway
}

func newAPI(t *testing.T) testAPI {
	t.Helper()
	gw := portstest.NewGateway(directory,
		&entity.Enquiry{ID: "e1", Status: workflow.StatusDesign, CurrentAssignedPerson: "d1", EnquiryBy: "s1", Amount: decimal.NewFromInt(500), Version: 1},
		&entity.Enquiry{ID: "e2", Status: workflow.StatusEnquiry, CurrentAssignedPerson: "s1", EnquiryBy: "s1", Amount: decimal.NewFromInt(700), Version: 1},
	)
	store := board.NewStore()
	boardUC := board.NewUseCase(store, gw)
	_, err := boardUC.Load(context.Background())
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Board:      boardUC,
		Store:      store,
		Controller: transition.NewController(store, gw, gw, nil, zerolog.Nop()),
		Sessions:   session.NewResolver(gw, time.Minute),
		JWTSecret:  testJWTSecret,
	})
	return testAPI{app: app, gw: gw}
}

func (a testAPI) call(t *testing.T, method, path, userID, role, body string) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", bearer(t, userID, role))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesión y tablero
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_MeDevuelveEstadosResueltos(t *testing.T) {
	api := newAPI(t)
	code, raw := api.call(t, http.MethodGet, "/api/me", "p1", "production", "")
	require.Equal(t, http.StatusOK, code)

	out := decode[dto.SessionResponse](t, raw)
	assert.Equal(t, "p1", out.User.ID)
	assert.Equal(t, []string{"ReadyForProduction", "InProduction", "ProductionComplete", "Hotdip"}, out.ResolvedStatuses)
}

func TestRouter_UsuarioFueraDelDirectorio(t *testing.T) {
	api := newAPI(t)
	code, _ := api.call(t, http.MethodGet, "/api/board", "ghost", "salesman", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_RolDelTokenDesactualizado(t *testing.T) {
	api := newAPI(t)
	code, raw := api.call(t, http.MethodGet, "/api/board", "d1", "director", "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, raw).Code)
}

func TestRouter_TableroDelDisenador(t *testing.T) {
	api := newAPI(t)
	code, raw := api.call(t, http.MethodGet, "/api/board", "d1", "designer", "")
	require.Equal(t, http.StatusOK, code)

	out := decode[dto.BoardResponse](t, raw)
	assert.Equal(t, "designer", out.Role)
	require.Len(t, out.Columns, 1)
	require.Len(t, out.Columns[0].Cards, 1)
	assert.Equal(t, "e1", out.Columns[0].Cards[0].ID)
}

func TestRouter_ResumenDelDirector(t *testing.T) {
	api := newAPI(t)
	code, raw := api.call(t, http.MethodGet, "/api/board/summary", "x1", "director", "")
	require.Equal(t, http.StatusOK, code)

	out := decode[dto.BoardSummaryDTO](t, raw)
	assert.Equal(t, 2, out.TotalCount)
	assert.True(t, decimal.NewFromInt(1200).Equal(out.TotalAmount))
}

func TestRouter_RecargaSoloElevados(t *testing.T) {
	api := newAPI(t)

	code, _ := api.call(t, http.MethodPost, "/api/board/reload", "s1", "salesman", "")
	assert.Equal(t, http.StatusForbidden, code)

	code, raw := api.call(t, http.MethodPost, "/api/board/reload", "x1", "director", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, decode[dto.ReloadResponse](t, raw).Total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_MoveDevolucionDelDisenador(t *testing.T) {
	api := newAPI(t)
	code, raw := api.call(t, http.MethodPost, "/api/enquiries/e1/move", "d1", "designer", `{"from":"Design","to":"BOQ"}`)
	require.Equal(t, http.StatusOK, code, string(raw))

	out := decode[dto.MoveResponse](t, raw)
	assert.Equal(t, "return", out.Result)
	require.NotNil(t, out.Enquiry)
	assert.Equal(t, "BOQ", out.Enquiry.Status)
	assert.Equal(t, "s1", out.Enquiry.CurrentAssignedPerson)
}

func TestRouter_MoveNoop(t *testing.T) {
	api := newAPI(t)
	code, raw := api.call(t, http.MethodPost, "/api/enquiries/e2/move", "s1", "salesman", `{"from":"Enquiry","to":"Enquiry"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "noop", decode[dto.MoveResponse](t, raw).Result)
	assert.Empty(t, api.gw.Calls())
}

func TestRouter_MapeoDeErrores(t *testing.T) {
	cases := []struct {
		name   string
		method string
		path   string
		user   string
		role   string
		body   string
		status int
		code   string
	}{
		{"sin permiso", http.MethodPost, "/api/enquiries/e2/move", "d1", "designer", `{"from":"Enquiry","to":"Design"}`, http.StatusForbidden, "FORBIDDEN"},
		{"estado desconocido", http.MethodPost, "/api/enquiries/e2/move", "s1", "salesman", `{"from":"Enquiry","to":"Shipped"}`, http.StatusBadRequest, "VALIDATION"},
		{"sin destino", http.MethodPost, "/api/enquiries/e2/move", "s1", "salesman", `{"from":"Enquiry"}`, http.StatusBadRequest, "VALIDATION"},
		{"cuerpo inválido", http.MethodPost, "/api/enquiries/e2/move", "s1", "salesman", `{`, http.StatusBadRequest, "INVALID_BODY"},
		{"solicitud inexistente", http.MethodPost, "/api/enquiries/e9/move", "s1", "salesman", `{"to":"Design"}`, http.StatusNotFound, "NOT_FOUND"},
		{"responsable no elegible", http.MethodPut, "/api/enquiries/e2/status", "s1", "salesman", `{"status":"Design","assignee_id":"p1"}`, http.StatusUnprocessableEntity, "INELIGIBLE_ASSIGNEE"},
		{"reasignación sin permiso", http.MethodPut, "/api/enquiries/e1/assign", "d1", "designer", `{"assignee_id":"d1"}`, http.StatusForbidden, "FORBIDDEN"},
		{"devolución del vendedor", http.MethodPost, "/api/enquiries/e2/return", "s1", "salesman", "", http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := newAPI(t)
			code, raw := api.call(t, tc.method, tc.path, tc.user, tc.role, tc.body)
			assert.Equal(t, tc.status, code, string(raw))
			assert.Equal(t, tc.code, decode[dto.ErrorResponse](t, raw).Code)
			assert.Empty(t, api.gw.Calls())
		})
	}
}

func TestRouter_ErrorDelBackendEs502(t *testing.T) {
	api := newAPI(t)
	api.gw.Err = domain.ErrBackend

	code, raw := api.call(t, http.MethodPut, "/api/enquiries/e2/status", "s1", "salesman", `{"status":"Design","note":"listo"}`)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "BACKEND_ERROR", decode[dto.ErrorResponse](t, raw).Code)
}

func TestRouter_FormularioYReasignacion(t *testing.T) {
	api := newAPI(t)

	code, raw := api.call(t, http.MethodPut, "/api/enquiries/e2/status", "s1", "salesman", `{"status":"Design","note":"planos"}`)
	require.Equal(t, http.StatusOK, code, string(raw))
	out := decode[dto.MoveResponse](t, raw)
	assert.Equal(t, "blanket", out.Result)
	assert.Equal(t, "d1", out.Enquiry.CurrentAssignedPerson)

	code, raw = api.call(t, http.MethodPut, "/api/enquiries/e2/assign", "x1", "director", `{"assignee_id":"p1"}`)
	require.Equal(t, http.StatusOK, code, string(raw))
	out = decode[dto.MoveResponse](t, raw)
	assert.Equal(t, "assign", out.Result)
	assert.Equal(t, "p1", out.Enquiry.CurrentAssignedPerson)
}

func TestRouter_CandidatosEHistorial(t *testing.T) {
	api := newAPI(t)

	code, raw := api.call(t, http.MethodGet, "/api/enquiries/e2/candidates?status=Design", "s1", "salesman", "")
	require.Equal(t, http.StatusOK, code)
	list := decode[[]dto.CandidateDTO](t, raw)
	require.Len(t, list, 1)
	assert.Equal(t, "d1", list[0].ID)
	assert.True(t, list[0].Default)

	code, raw = api.call(t, http.MethodGet, "/api/enquiries/e2/history", "s1", "salesman", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(raw))
}

// ──────────────────────────────────────────────────────────────────────────────
// Health
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth_ReportaCanalDegradado(t *testing.T) {
	store := board.NewStore()
	store.Apply(&entity.Enquiry{ID: "e1", Status: workflow.StatusEnquiry, Version: 1})

	app := fiber.New()
	app.Get("/health", apphttp.Health(apphttp.HealthDeps{
		Service:  "solarcrm-api",
		Store:    store,
		Realtime: func() dto.RealtimeStatus { return dto.RealtimeStatus{Connected: false, Applied: 3} },
	}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	out := decode[dto.HealthResponse](t, raw)
	assert.Equal(t, "degraded", out.Status)
	assert.Equal(t, 1, out.Enquiries)
	assert.False(t, out.JournalEnabled)
	require.NotNil(t, out.Realtime)
	assert.Equal(t, int64(3), out.Realtime.Applied)
}

func TestHealth_SinCanalEsOK(t *testing.T) {
	app := fiber.New()
	app.Get("/health", apphttp.Health(apphttp.HealthDeps{Service: "solarcrm-api", Store: board.NewStore(), JournalEnabled: true}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	out := decode[dto.HealthResponse](t, raw)
	assert.Equal(t, "ok", out.Status)
	assert.True(t, out.JournalEnabled)
	assert.Nil(t, out.Realtime)
}

func TestRouter_HistorialYCandidatosDeTarjetaAjena(t *testing.T) {
	api := newAPI(t)

	code, raw := api.call(t, http.MethodGet, "/api/enquiries/e2/history", "d1", "designer", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, raw).Code)

	code, _ = api.call(t, http.MethodGet, "/api/enquiries/e2/candidates?status=Design", "d1", "designer", "")
	assert.Equal(t, http.StatusNotFound, code)
}
