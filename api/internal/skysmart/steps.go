package skysmart

import (
	"context"
	"encoding/json"
	"net/http"
)

// FetchTaskMarkup returns the pre-rendered markup of one step, verbatim.
func (s *Session) FetchTaskMarkup(ctx context.Context, taskID string) (string, error) {
	raw, err := s.Do(ctx, http.MethodGet, s.endpoints.Steps+taskID, nil)
	if err != nil {
		return "", &FetchError{TaskID: taskID, Err: err}
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &FetchError{TaskID: taskID, Err: err}
	}
	field, ok := out["content"]
	if !ok || string(field) == "null" {
		return "", &MissingContentError{TaskID: taskID}
	}
	var content string
	if err := json.Unmarshal(field, &content); err != nil {
		return "", &MissingContentError{TaskID: taskID}
	}
	return content, nil
}
