package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse estado del servicio para GET /health.
type HealthResponse struct {
	Status         string          `json:"status"`
	Service        string          `json:"service"`
	Enquiries      int             `json:"enquiries"`
	JournalEnabled bool            `json:"journal_enabled"`
	Realtime       *RealtimeStatus `json:"realtime,omitempty"`
}

// RealtimeStatus estado del canal WebSocket.
type RealtimeStatus struct {
	Connected bool  `json:"connected"`
	Applied   int64 `json:"applied"`
	Stale     int64 `json:"stale"`
	Rejected  int64 `json:"rejected"`
}
