package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pokeproxy/internal/common/logging"
	"pokeproxy/internal/forwarder"
	"pokeproxy/internal/models"
	"pokeproxy/internal/pipeline"
	"pokeproxy/internal/signature"
	"pokeproxy/internal/stats"
)

var testSecret = base64.StdEncoding.EncodeToString([]byte("handlers-secret"))

const psyduckJSON = `{"number":54,"name":"Psyduck","type_one":"Water","total":320,"hit_points":50,` +
	`"attack":52,"defense":48,"special_attack":65,"special_defense":50,"speed":55,"generation":1,"legendary":false}`

// MockForwarder records Forward calls
type MockForwarder struct {
	mock.Mock
}

func (m *MockForwarder) Forward(ctx context.Context, record *models.Pokemon, rule *models.Rule, inbound http.Header) (*forwarder.UpstreamResponse, error) {
	args := m.Called(ctx, record, rule, inbound)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forwarder.UpstreamResponse), args.Error(1)
}

func newTestHandlers(t *testing.T, fwd forwarder.Forwarder, rules []models.Rule, maxBody int64) (*Handlers, *stats.Registry) {
	t.Helper()
	logger, err := logging.NewZapLogger(logging.LogConfig{Level: logging.ErrorLevel, Output: io.Discard})
	require.NoError(t, err)

	registry := stats.NewRegistry()
	p := pipeline.New(pipeline.Config{Secret: testSecret, Rules: rules}, fwd, registry, logger)
	return New(p, registry, maxBody, logger), registry
}

func signedStreamRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	sig, err := signature.Sign([]byte(body), testSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/stream", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signature.Header, sig)
	return req
}

func getStats(t *testing.T, h *Handlers) map[string]stats.EndpointStats {
	t.Helper()
	rec := httptest.NewRecorder()
	h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot map[string]stats.EndpointStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	return snapshot
}

func TestHandleStream_MissingSignatureIsCounted(t *testing.T) {
	fwd := new(MockForwarder)
	h, _ := newTestHandlers(t, fwd, []models.Rule{{URL: "https://a.example", Reason: "r", Match: []string{"generation==1"}}}, 0)

	rec := httptest.NewRecorder()
	h.HandleStream(rec, httptest.NewRequest(http.MethodPost, "/stream", strings.NewReader(psyduckJSON)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Missing signature header"}`, rec.Body.String())
	fwd.AssertNotCalled(t, "Forward", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	s := getStats(t, h)[pipeline.EndpointStream]
	assert.Equal(t, int64(1), s.RequestCount)
	assert.Equal(t, int64(1), s.ErrorCount)
	assert.Equal(t, int64(len(psyduckJSON)), s.IncomingBytes)
	assert.Equal(t, int64(0), s.OutgoingBytes)
}

func TestHandleStream_NoRouteMatched(t *testing.T) {
	fwd := new(MockForwarder)
	h, _ := newTestHandlers(t, fwd, []models.Rule{{URL: "https://a.example", Reason: "fire", Match: []string{"type_one==Fire"}}}, 0)

	rec := httptest.NewRecorder()
	h.HandleStream(rec, signedStreamRequest(t, psyduckJSON))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"No matching rule found"}`, rec.Body.String())
	fwd.AssertNotCalled(t, "Forward", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	s := getStats(t, h)[pipeline.EndpointStream]
	assert.Equal(t, int64(1), s.RequestCount)
	assert.Equal(t, int64(1), s.ErrorCount)
	assert.Equal(t, 1.0, s.ErrorRate)
	assert.Equal(t, int64(0), s.OutgoingBytes)
}

func TestHandleStream_RelaysUpstream(t *testing.T) {
	rules := []models.Rule{
		{URL: "https://water.example/in", Reason: "water", Match: []string{"type_one==Water", "speed>50"}},
		{URL: "https://gen1.example/in", Reason: "gen one", Match: []string{"generation==1"}},
	}

	upstreamHeader := http.Header{}
	upstreamHeader.Set("Content-Type", "application/json")
	upstreamHeader.Set("X-Destination", "water")

	fwd := new(MockForwarder)
	fwd.On("Forward",
		mock.Anything,
		mock.MatchedBy(func(p *models.Pokemon) bool { return p.Name == "Psyduck" }),
		mock.MatchedBy(func(r *models.Rule) bool { return r.Reason == "water" }),
		mock.MatchedBy(func(h http.Header) bool { return h.Get("X-Client") == "trainer-red" }),
	).Return(&forwarder.UpstreamResponse{
		StatusCode: http.StatusAccepted,
		Header:     upstreamHeader,
		Body:       []byte(`{"ok":true}`),
	}, nil).Once()

	h, _ := newTestHandlers(t, fwd, rules, 1<<20)

	req := signedStreamRequest(t, psyduckJSON)
	req.Header.Set("X-Client", "trainer-red")
	rec := httptest.NewRecorder()
	h.HandleStream(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "water", rec.Header().Get("X-Destination"))
	fwd.AssertExpectations(t)

	s := getStats(t, h)[pipeline.EndpointStream]
	assert.Equal(t, int64(1), s.RequestCount)
	assert.Equal(t, int64(0), s.ErrorCount)
	assert.Equal(t, int64(len(`{"ok":true}`)), s.OutgoingBytes)
}

func TestHandleStream_BodyLimit(t *testing.T) {
	fwd := new(MockForwarder)
	h, _ := newTestHandlers(t, fwd, nil, 16)

	rec := httptest.NewRecorder()
	h.HandleStream(rec, signedStreamRequest(t, psyduckJSON))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceeds 16 bytes")
}

func TestGetStats_Shape(t *testing.T) {
	h, registry := newTestHandlers(t, new(MockForwarder), nil, 0)
	registry.Record(pipeline.EndpointStream, 100, 20, 500*time.Millisecond, false)
	registry.Record(pipeline.EndpointStream, 50, 0, 1500*time.Millisecond, true)

	rec := httptest.NewRecorder()
	h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var raw map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Contains(t, raw, "stream")

	entry := raw["stream"]
	for _, key := range []string{"request_count", "error_count", "error_rate", "incoming_bytes", "outgoing_bytes", "average_response_time", "uptime_seconds"} {
		assert.Contains(t, entry, key)
	}
	assert.Equal(t, float64(2), entry["request_count"])
	assert.Equal(t, 0.5, entry["error_rate"])
	assert.Equal(t, float64(150), entry["incoming_bytes"])
	assert.Equal(t, 1.0, entry["average_response_time"])
}

func TestGetStats_StreamPreRegistered(t *testing.T) {
	h, _ := newTestHandlers(t, new(MockForwarder), nil, 0)

	s, ok := getStats(t, h)[pipeline.EndpointStream]
	require.True(t, ok)
	assert.Zero(t, s.RequestCount)
	assert.Zero(t, s.ErrorRate)
	assert.Zero(t, s.AverageResponseTime)
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestHandlers(t, new(MockForwarder), nil, 0)

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
