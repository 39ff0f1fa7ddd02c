package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"sky-answers-bot/api/internal/answers"
)

// AnswerService is satisfied by *answers.Service.
type AnswerService interface {
	GetAnswers(ctx context.Context, hash string) []answers.TaskAnswer
}

type Handle struct {
	svc     AnswerService
	timeout time.Duration
}

func New(svc AnswerService, timeout time.Duration) *Handle {
	return &Handle{svc: svc, timeout: timeout}
}

// Register mounts the JSON API on mux.
func (h *Handle) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/answers", h.Answers)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
