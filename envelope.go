package outlet

import (
	"encoding/json"

	"github.com/neoidea/outlet/core"
)

// Envelope is the response wrapper every portal endpoint shares:
// a success flag, an optional payload, and optional human-readable
// error fields.
type Envelope struct {
	OK          bool            `json:"retorno"`
	Data        json.RawMessage `json:"dados,omitempty"`
	Description string          `json:"descricao,omitempty"`
	ErrorCode   string          `json:"erro,omitempty"`
}

// DecodeEnvelope parses a raw response body.
func DecodeEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// Message picks the error text to surface: the service description wins,
// then the error code, then the caller's fallback.
func (e Envelope) Message(fallback string) string {
	if e.Description != "" {
		return e.Description
	}
	if e.ErrorCode != "" {
		return e.ErrorCode
	}
	return fallback
}

// Err returns nil for a successful envelope, otherwise a *core.ServiceError
// carrying the surfaced message.
func (e Envelope) Err(fallback string) error {
	if e.OK {
		return nil
	}
	return &core.ServiceError{Message: e.Message(fallback)}
}

// SessionPayload is the `dados` object of a successful authentication.
type SessionPayload struct {
	Token     string      `json:"token"`
	Code      json.Number `json:"codigo"`
	Name      string      `json:"nome"`
	Email     string      `json:"email"`
	Activated int         `json:"ativado,omitempty"`
	EULA      int         `json:"eula,omitempty"`
}

// Identity converts the payload to a domain identity.
func (p SessionPayload) Identity() core.Identity {
	return core.Identity{
		ID:    p.Code.String(),
		Name:  p.Name,
		Email: p.Email,
	}
}

// ChallengePayload is the `dados` object of a challenge-generation call.
type ChallengePayload struct {
	Challenge string `json:"desafio"`
}
