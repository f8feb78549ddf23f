package models

// Requests for the admission HTTP endpoints. Defined in domain for consistency and reuse.

type EvaluateRequest struct {
	Signals []Signal `json:"signals" validate:"required,min=1,max=1000,dive"`
}

type EvaluateResponse struct {
	Admitted []*Signal      `json:"admitted"`
	Rejected int            `json:"rejected"`
	Stats    *PipelineStats `json:"stats,omitempty"`
}

type ResetRequest struct {
	Target   string `json:"target" default:"stats" validate:"oneof=stats monitor ratelimit cooldown"`
	ClientID string `json:"client_id,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}
