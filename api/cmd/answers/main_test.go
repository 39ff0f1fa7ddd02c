package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sky-answers-bot/api/internal/answers"
)

func fakeSkysmart(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"jwtToken":"t"}`))
	})
	mux.HandleFunc("/room", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"meta":{"stepUuids":["one","broken","two"]}}`))
	})
	mux.HandleFunc("/steps/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/steps/one":
			_, _ = w.Write([]byte(`{"content":"<p>Pick</p><vim-select-item correct=\"true\">yes</vim-select-item>"}`))
		case "/steps/two":
			_, _ = w.Write([]byte(`{"content":"<vim-groups-item text=\"SGVsbG8=\"></vim-groups-item>"}`))
		default:
			http.Error(w, "gone", http.StatusGone)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetCommand(t *testing.T) {
	srv := fakeSkysmart(t)
	t.Setenv("SKYSMART_AUTH_URL", srv.URL+"/auth")
	t.Setenv("SKYSMART_ROOM_URL", srv.URL+"/room")
	t.Setenv("SKYSMART_STEPS_URL", srv.URL+"/steps/")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"get", "https://edu.skysmart.ru/student/abcdefg", "--log-level", "disabled"})
	require.NoError(t, cmd.Execute())

	var got []answers.TaskAnswer
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, answers.TaskAnswer{TaskNumber: 1, StepUUID: "one", Question: "Pickyes", Answers: []string{"yes"}}, got[0])
	assert.Equal(t, 2, got[1].TaskNumber)
	assert.Equal(t, "two", got[1].StepUUID)
	assert.Equal(t, []string{"Hello"}, got[1].Answers)
}

func TestHashCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"hash", "edu.skysmart.ru/student/xivokunafe"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "xivokunafe\n", out.String())

	cmd = newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"hash", "nope"})
	assert.Error(t, cmd.Execute())
}
