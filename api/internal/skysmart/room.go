package skysmart

import (
	"context"
	"encoding/json"
	"net/http"
)

type roomRequest struct {
	TaskHash string `json:"taskHash"`
}

// ResolveTaskSet returns the step uuids of a room in server order.
// Non-string entries of meta.stepUuids are skipped.
func (s *Session) ResolveTaskSet(ctx context.Context, hash string) ([]string, error) {
	raw, err := s.Do(ctx, http.MethodPost, s.endpoints.Room, roomRequest{TaskHash: hash})
	if err != nil {
		return nil, &ResolutionError{Hash: hash, Reason: "room request failed", Err: err}
	}

	var out struct {
		Meta *struct {
			StepUUIDs json.RawMessage `json:"stepUuids"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ResolutionError{Hash: hash, Reason: "malformed room response", Err: err}
	}
	if out.Meta == nil || len(out.Meta.StepUUIDs) == 0 || string(out.Meta.StepUUIDs) == "null" {
		return nil, &ResolutionError{Hash: hash, Reason: "meta.stepUuids not found"}
	}

	var items []any
	if err := json.Unmarshal(out.Meta.StepUUIDs, &items); err != nil {
		return nil, &ResolutionError{Hash: hash, Reason: "meta.stepUuids is not an array", Err: err}
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if id, ok := it.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
