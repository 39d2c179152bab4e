// Package crmapi es el adaptador REST hacia el backend del CRM.
package crmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/solarcrm-api/internal/application/ports"
	"github.com/jhoicas/solarcrm-api/internal/domain"
	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
)

// Verificar en tiempo de compilación que Client implementa los puertos.
var (
	_ ports.EnquiryGateway = (*Client)(nil)
	_ ports.UserDirectory  = (*Client)(nil)
)

const maxResponseBytes = 4 << 20

// Config parámetros del adaptador.
type Config struct {
	BaseURL      string        // p. ej. https://crm.example.com/api
	ServiceToken string        // token propio, usado cuando la llamada no trae el del usuario
	Timeout      time.Duration // timeout de red por llamada
}

// Client implementa EnquiryGateway y UserDirectory sobre net/http.
type Client struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

// NewClient construye el adaptador. Timeout <= 0 usa 15 s.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		serviceToken: cfg.ServiceToken,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// apiError respuesta no exitosa del backend.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("CRM HTTP %d: %s", e.status, e.message)
}

func (e *apiError) Unwrap() error { return domain.ErrBackend }

// ── Implementación de los puertos ─────────────────────────────────────────────

func (c *Client) UpdateEnquiryStatus(ctx context.Context, enquiryID string, status workflow.Status, assigneeID, note string) (*entity.Enquiry, error) {
	var out EnquiryJSON
	body := statusRequest{Status: status.String(), AssignedTo: assigneeID, Note: note}
	if err := c.do(ctx, http.MethodPut, "/enquiries/"+url.PathEscape(enquiryID)+"/status", body, &out); err != nil {
		return nil, err
	}
	return returned(&out)
}

func (c *Client) AssignEnquiry(ctx context.Context, enquiryID, assigneeID string) (*entity.Enquiry, error) {
	var out EnquiryJSON
	body := assignRequest{AssignedTo: assigneeID}
	if err := c.do(ctx, http.MethodPut, "/enquiries/"+url.PathEscape(enquiryID)+"/assign", body, &out); err != nil {
		return nil, err
	}
	return returned(&out)
}

func (c *Client) StartProductionWorkflow(ctx context.Context, workflowID string) error {
	return c.do(ctx, http.MethodPost, "/production/"+url.PathEscape(workflowID)+"/start", nil, nil)
}

func (c *Client) CompleteProductionWorkflow(ctx context.Context, workflowID string) (*entity.Enquiry, error) {
	var out completeResponse
	if err := c.do(ctx, http.MethodPost, "/production/"+url.PathEscape(workflowID)+"/complete", nil, &out); err != nil {
		return nil, err
	}
	if out.Enquiry == nil {
		return nil, fmt.Errorf("%w: completar producción sin solicitud en la respuesta", domain.ErrBackend)
	}
	return returned(out.Enquiry)
}

func (c *Client) ListEnquiries(ctx context.Context) ([]*entity.Enquiry, error) {
	var out []EnquiryJSON
	if err := c.do(ctx, http.MethodGet, "/enquiries", nil, &out); err != nil {
		return nil, err
	}
	list := make([]*entity.Enquiry, 0, len(out))
	for i := range out {
		list = append(list, out[i].ToEntity())
	}
	return list, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]entity.User, error) {
	var out []userJSON
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	users := make([]entity.User, 0, len(out))
	for i := range out {
		users = append(users, out[i].toEntity())
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*entity.User, error) {
	var out userJSON
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &out); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.status == http.StatusNotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u := out.toEntity()
	return &u, nil
}

// returned valida la instantánea que devuelve una llamada mutante.
func returned(j *EnquiryJSON) (*entity.Enquiry, error) {
	if j.ID == "" {
		return nil, fmt.Errorf("%w: respuesta sin solicitud", domain.ErrBackend)
	}
	return j.ToEntity(), nil
}

// ── Transporte ────────────────────────────────────────────────────────────────

// do envía in como JSON y decodifica el campo data del sobre en out (si no es nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: CRM_API_BASE_URL no configurado", domain.ErrBackend)
	}

	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("CRM: serializar request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("CRM: crear HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: timeout o cancelación: %w", domain.ErrBackend, ctx.Err())
		}
		return fmt.Errorf("%w: llamada HTTP fallida: %w", domain.ErrBackend, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: leer respuesta: %w", domain.ErrBackend, err)
	}

	var env envelope
	jsonErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(raw))
		if jsonErr == nil && env.Message != "" {
			msg = env.Message
		}
		return &apiError{status: resp.StatusCode, message: msg}
	}
	if jsonErr != nil {
		return fmt.Errorf("%w: respuesta no es JSON: %w", domain.ErrBackend, jsonErr)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "success=false"
		}
		return &apiError{status: resp.StatusCode, message: msg}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: deserializar data: %w", domain.ErrBackend, err)
	}
	return nil
}

func (c *Client) token(ctx context.Context) string {
	if tok := ports.BearerToken(ctx); tok != "" {
		return tok
	}
	return c.serviceToken
}
