package transport

import (
	"bytes"
	"encoding/json"

	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/pkg/obfuscate"
)

type RegisterRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type LoginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

type ListTitleRequest struct {
	Title string `json:"title"`
}

type TaskTextRequest struct {
	Text string `json:"text"`
}

// TaskPatchRequest carries a partial task update. Each slot is applied only
// when present in the body; Completed distinguishes an explicit null from an
// absent field.
type TaskPatchRequest struct {
	Text      *string        `json:"text"`
	Status    *string        `json:"status"`
	Completed OptionalString `json:"completed"`
	MoveTo    *int64         `json:"move_to"`
	KeepOrder bool           `json:"keep_order"`
}

// OptionalString is a tri-state JSON field: absent, explicit null, or a value.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// envelopeProbe detects the obfuscated body variant {"data": "..."}.
type envelopeProbe struct {
	Data *string `json:"data"`
}

// DecodeBody unmarshals a request body into v. Bodies may arrive either as
// plain JSON or wrapped as {"data": <obfuscated JSON>}; the plain form is
// kept for backward compatibility with older clients.
func DecodeBody(codec *obfuscate.Codec, body []byte, v any) error {
	var probe envelopeProbe
	if err := json.Unmarshal(body, &probe); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
	}
	raw := body
	if probe.Data != nil {
		plain, err := codec.DecodeString(*probe.Data)
		if err != nil {
			return err
		}
		raw = []byte(plain)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
	}
	return nil
}
