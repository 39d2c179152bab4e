package dto

import "github.com/shopspring/decimal"

// BoardColumnDTO columna del tablero Kanban.
type BoardColumnDTO struct {
	Status string            `json:"status"`
	Cards  []EnquiryResponse `json:"cards"`
}

// BoardResponse tablero visible para el usuario autenticado.
type BoardResponse struct {
	Role    string           `json:"role"`
	Columns []BoardColumnDTO `json:"columns"`
}

// ColumnSummaryDTO totales de una columna.
type ColumnSummaryDTO struct {
	Status string          `json:"status"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// BoardSummaryDTO totales por columna y generales.
type BoardSummaryDTO struct {
	Columns     []ColumnSummaryDTO `json:"columns"`
	TotalCount  int                `json:"total_count"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
}

// ReloadResponse resultado de recargar el tablero desde el backend.
type ReloadResponse struct {
	Applied int `json:"applied"`
	Total   int `json:"total"`
}
