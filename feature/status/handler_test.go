package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"horror-tracker/core/server"
	"horror-tracker/core/storage"
	"horror-tracker/feature/archive"
	"horror-tracker/feature/orchestrator"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReports struct{ latest *orchestrator.Report }

func (f *fakeReports) Latest() *orchestrator.Report { return f.latest }

type fakeSnapshots struct {
	data map[string][]byte
	err  error
}

func (f *fakeSnapshots) Load(_ context.Context, runID, name string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.data[runID+"/"+name]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("failed to read runs/%s/%s.json: %w", runID, name, storage.ErrNotFound)
}

func setupTestApp(reports *fakeReports, snaps Snapshots, apiKey string) *fiber.App {
	app := fiber.New()
	f := NewFeature(server.Config{Enabled: true, ApiKey: apiKey}, reports, snaps, zap.NewNop())
	_ = f.Load(app)
	return app
}

func decode(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestHandleHealth(t *testing.T) {
	reports := &fakeReports{}
	app := setupTestApp(reports, nil, "secret")

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "ok", decode(t, resp.Body)["status"])

	reports.latest = &orchestrator.Report{RunID: "r1", FinishedAt: time.Now()}
	resp, err = app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	body := decode(t, resp.Body)
	assert.Equal(t, "r1", body["last_run"])
	assert.Equal(t, false, body["last_run_failed"])
}

func TestHandleLatest(t *testing.T) {
	reports := &fakeReports{}
	app := setupTestApp(reports, nil, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/runs/latest", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	reports.latest = &orchestrator.Report{RunID: "r2", Tasks: []orchestrator.TaskReport{
		{Name: orchestrator.TaskUpcoming, Status: orchestrator.StatusOK, Duration: time.Second},
	}}
	resp, err = app.Test(httptest.NewRequest("GET", "/runs/latest", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decode(t, resp.Body)
	assert.Equal(t, "r2", body["run_id"])
	tasks := body["tasks"].([]any)
	assert.Equal(t, "1s", tasks[0].(map[string]any)["duration"])
}

func TestRuns_RequireAPIKey(t *testing.T) {
	app := setupTestApp(&fakeReports{latest: &orchestrator.Report{RunID: "r"}}, nil, "secret")

	resp, err := app.Test(httptest.NewRequest("GET", "/runs/latest", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req := httptest.NewRequest("GET", "/runs/latest", nil)
	req.Header.Set("X-API-Key", "secret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestHandleSnapshot(t *testing.T) {
	snaps := &fakeSnapshots{data: map[string][]byte{"r1/upcoming": []byte(`[{"id":1}]`)}}
	app := setupTestApp(&fakeReports{}, snaps, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/runs/r1/snapshots/upcoming", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, fiber.MIMEApplicationJSON, resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `[{"id":1}]`, string(raw))

	resp, err = app.Test(httptest.NewRequest("GET", "/runs/r1/snapshots/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleSnapshot_Errors(t *testing.T) {
	cases := []struct {
		name   string
		snaps  Snapshots
		status int
	}{
		{"No Archive", nil, 404},
		{"Disabled", &fakeSnapshots{err: archive.ErrDisabled}, 404},
		{"Invalid Name", &fakeSnapshots{err: archive.ErrInvalidName}, 400},
		{"Storage Down", &fakeSnapshots{err: errors.New("connection refused")}, 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := setupTestApp(&fakeReports{}, tc.snaps, "")
			resp, err := app.Test(httptest.NewRequest("GET", "/runs/r1/snapshots/report", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestFeature(t *testing.T) {
	f := NewFeature(server.Config{Enabled: false}, &fakeReports{}, nil, zap.NewNop())
	assert.Equal(t, "status", f.Name())
	assert.False(t, f.IsEnabled())
}
