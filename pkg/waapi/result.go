package waapi

import (
	"encoding/json"
	"fmt"
)

// Result is the decoded JSON object returned by the platform. It is passed
// through untouched; the helpers below only read from it.
type Result map[string]any

// Data returns the "data" object, or nil when absent or not an object.
func (r Result) Data() map[string]any {
	data, _ := r["data"].(map[string]any)
	return data
}

// ID returns data.id as a string, if present.
func (r Result) ID() string {
	data := r.Data()
	if data == nil {
		return ""
	}
	switch v := data["id"].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}

// Pagination is the paging block attached to list responses.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// Pagination decodes data.pagination. ok is false when the block is absent.
func (r Result) Pagination() (Pagination, bool) {
	data := r.Data()
	if data == nil {
		return Pagination{}, false
	}
	raw, ok := data["pagination"]
	if !ok {
		return Pagination{}, false
	}
	var p Pagination
	if err := remarshal(raw, &p); err != nil {
		return Pagination{}, false
	}
	return p, true
}

// Decode copies the result into v through a JSON round trip.
func (r Result) Decode(v any) error {
	return remarshal(map[string]any(r), v)
}

func remarshal(in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("waapi: encode result: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("waapi: decode result: %w", err)
	}
	return nil
}
