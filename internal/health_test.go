package internal

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthHandler_ReportsStatusAndEnvironment(t *testing.T) {
	req := require.New(t)
	state := NewHealthState("staging")
	state.SetProcess(ProcessStats{CPUPercent: 1.5, RSSBytes: 2048, Status: "S"})

	handler := HealthHandler(state, func() (int, int) { return 3, 2 })

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest("GET", "/healthz", nil))

	req.Equal(200, recorder.Code)
	req.Equal("application/json", recorder.Header().Get("Content-Type"))

	var body map[string]any
	req.NoError(json.Unmarshal(recorder.Body.Bytes(), &body))
	req.Equal("ok", body["status"])
	req.Equal("staging", body["environment"])
	req.EqualValues(3, body["connections"])
	req.EqualValues(2, body["rooms"])

	process, ok := body["process"].(map[string]any)
	req.True(ok)
	req.EqualValues(2048, process["rss"])
}
