package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/spritestage/component"
	"github.com/lixenwraith/spritestage/engine"
	"github.com/lixenwraith/spritestage/render"
)

func newTestServer(t *testing.T, program string) (*engine.Engine, *httptest.Server) {
	t.Helper()
	store := engine.NewActorStore([]component.Actor{
		{ID: "a", Name: "cat", X: 10, Y: 10, Visible: true},
		{ID: "b", Name: "dog", X: 50, Y: 50, Visible: true},
	})
	e := engine.New(store, engine.DefaultConfig(), engine.WithProgram(program))
	ts := httptest.NewServer(NewHandler(e, nil))
	t.Cleanup(ts.Close)
	return e, ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_Health(t *testing.T) {
	_, ts := newTestServer(t, "")
	resp := do(t, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Actors(t *testing.T) {
	e, ts := newTestServer(t, "")

	resp := do(t, http.MethodGet, ts.URL+"/actors", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var actors []component.Actor
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&actors))
	require.Len(t, actors, 2)
	assert.Equal(t, "cat", actors[0].Name)

	resp = do(t, http.MethodPatch, ts.URL+"/actors/b", `{"x": 200, "color": "#00ff00"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var b component.Actor
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&b))
	assert.Equal(t, 200.0, b.X)
	assert.Equal(t, 50.0, b.Y)

	got, _ := e.Store().Get("b")
	assert.Equal(t, "#00ff00", got.Color)

	assert.Equal(t, http.StatusNotFound, do(t, http.MethodPatch, ts.URL+"/actors/zz", `{"x": 1}`).StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, http.MethodGet, ts.URL+"/actors/zz", "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPatch, ts.URL+"/actors/a", `{"speed": 1}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPatch, ts.URL+"/actors/a", `{"actionState": "flying"}`).StatusCode)
}

func TestServer_PatchRejectsInvalidFields(t *testing.T) {
	e, ts := newTestServer(t, "")
	before, _ := e.Store().Get("a")

	tests := []struct {
		name string
		body string
	}{
		{"zero size", `{"size": 0}`},
		{"negative size", `{"size": -4}`},
		{"empty color", `{"color": ""}`},
		{"blank color", `{"color": "  "}`},
		{"negative wait", `{"waitUntilFrame": -1}`},
		{"negative index", `{"currentActionIndex": -2}`},
		{"valid x with bad size", `{"x": 300, "size": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPatch, ts.URL+"/actors/a", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	after, _ := e.Store().Get("a")
	assert.Equal(t, before, after, "rejected patches leave the actor untouched")

	resp := do(t, http.MethodPatch, ts.URL+"/actors/a", `{"size": 12.5, "color": "#123456"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, _ := e.Store().Get("a")
	assert.Equal(t, 12.5, got.Size)
	assert.Equal(t, "#123456", got.Color)
}

func TestServer_ControlAndProgram(t *testing.T) {
	e, ts := newTestServer(t, "")

	resp := do(t, http.MethodPut, ts.URL+"/program", `function draw(frame, sprites) { sprites[0].x = 77; }`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/program", "")
	text, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(text), "sprites[0].x = 77")

	resp = do(t, http.MethodPost, ts.URL+"/control/start", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st StateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "running", st.State)
	assert.Equal(t, "draw", st.Backend)
	assert.Equal(t, 2, st.Actors)

	e.Frame()
	a, _ := e.Store().Get("a")
	assert.Equal(t, 77.0, a.X)

	resp = do(t, http.MethodPost, ts.URL+"/control/pause", "")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "paused", st.State)
	assert.Equal(t, int64(1), st.Frame)

	assert.Equal(t, http.StatusNotFound, do(t, http.MethodPost, ts.URL+"/control/explode", "").StatusCode)
}

func TestServer_Backend(t *testing.T) {
	e, ts := newTestServer(t, "")
	assert.Equal(t, http.StatusNoContent, do(t, http.MethodPut, ts.URL+"/backend", `{"backend": "physics"}`).StatusCode)
	assert.True(t, e.Capabilities().Has(render.CapPhysicsDrag))
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPut, ts.URL+"/backend", `{"backend": "webgl"}`).StatusCode)
}

func TestServer_DiagnosticsAndMetrics(t *testing.T) {
	e, ts := newTestServer(t, `function draw() { throw new Error("bad frame"); }`)
	e.Start()
	e.Frame()

	resp := do(t, http.MethodGet, ts.URL+"/diagnostics", "")
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "bad frame")

	resp = do(t, http.MethodGet, ts.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "spritestage_engine_errors")
	assert.Contains(t, string(body), `engine_id="`+e.ID()+`"`)
}

func TestServer_EventStream(t *testing.T) {
	e, ts := newTestServer(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	require.True(t, sc.Scan())
	assert.Equal(t, "event: ping", sc.Text())

	// Subscription is live once the ping arrived
	require.NoError(t, e.Store().Update("a", component.PositionPatch(5, 6), engine.SourceUI))

	var data string
	for sc.Scan() {
		if line := sc.Text(); strings.HasPrefix(line, "data: {") {
			data = strings.TrimPrefix(line, "data: ")
			break
		}
	}
	require.NotEmpty(t, data)
	var msg updateMessage
	require.NoError(t, json.Unmarshal([]byte(data), &msg))
	assert.Equal(t, "a", msg.ID)
	assert.Equal(t, "ui", msg.Source)
	require.NotNil(t, msg.Patch.X)
	assert.Equal(t, 5.0, *msg.Patch.X)
}

func TestHTTPService_StartStop(t *testing.T) {
	e := engine.New(engine.NewActorStore(nil), engine.DefaultConfig())
	svc := NewService("127.0.0.1:0", e, nil)
	require.NoError(t, svc.Start(context.Background()))

	resp, err := http.Get("http://" + svc.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, svc.Stop())
	require.NoError(t, svc.Stop())
}
