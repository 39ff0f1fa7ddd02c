package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"sky-answers-bot/api/internal/answers"
)

type AnswersRequest struct {
	Link     string `json:"link,omitempty"`
	TaskHash string `json:"task_hash,omitempty"`
}

type AnswersResponse struct {
	TaskHash string               `json:"task_hash"`
	Tasks    []answers.TaskAnswer `json:"tasks"`
}

// Answers accepts a student link or a bare hash and returns the task answers.
// An unknown room is not an error: tasks is just empty.
func (h *Handle) Answers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req AnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}

	in := strings.TrimSpace(req.TaskHash)
	if in == "" {
		in = req.Link
	}
	hash, err := answers.ParseTaskHash(in)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	writeJSON(w, http.StatusOK, AnswersResponse{TaskHash: hash, Tasks: h.svc.GetAnswers(ctx, hash)})
}
