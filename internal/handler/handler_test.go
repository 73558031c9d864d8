package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oggyb/wa-autoreply/internal/domain/botconfig"
	"github.com/oggyb/wa-autoreply/internal/domain/message"
	"github.com/oggyb/wa-autoreply/internal/handler"
	"github.com/oggyb/wa-autoreply/internal/repository/memory"
	"github.com/oggyb/wa-autoreply/internal/request"
	"github.com/oggyb/wa-autoreply/internal/response"
	routes "github.com/oggyb/wa-autoreply/internal/router"
	"github.com/oggyb/wa-autoreply/internal/server"
	"github.com/oggyb/wa-autoreply/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu    sync.Mutex
	sid   string
	sends []string
}

func (g *fakeGateway) Send(_ context.Context, to, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sends = append(g.sends, to)
	return g.sid, nil
}

func (g *fakeGateway) Health(context.Context) error { return nil }

func (g *fakeGateway) PhoneNumber(context.Context) (string, error) { return "+14155238886", nil }

type testApp struct {
	handler   http.Handler
	store     *memory.Store
	autoReply service.AutoReplyService
	status    service.StatusService
	gateway   *fakeGateway
}

// failingStore accepts config reads but refuses to persist messages.
type failingStore struct {
	*memory.Store
}

func (failingStore) Create(context.Context, *message.Message) error {
	return errors.New("connection refused")
}

func newTestApp(t *testing.T, cfg botconfig.Config) *testApp {
	t.Helper()
	store := memory.NewStore(cfg)
	return newTestAppWithRepo(t, store, store)
}

func newTestAppWithRepo(t *testing.T, store *memory.Store, repo message.Repository) *testApp {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := &fakeGateway{sid: "SM123"}

	msgSvc := service.NewMessageService(repo, store)
	autoReply := service.NewAutoReplyService(repo, store, gw, nil, log, time.Second)
	status := service.NewStatusService(gw, log)
	validate := request.NewValidator()

	deps := routes.AppDeps{
		Home:    handler.NewHomeHandler(status),
		Message: handler.NewMessageHandler(msgSvc, log),
		Config:  handler.NewConfigHandler(msgSvc, validate, log),
		Webhook: handler.NewWebhookHandler(autoReply, validate, log),
	}

	return &testApp{
		handler:   server.NewHandler(deps, log),
		store:     store,
		autoReply: autoReply,
		status:    status,
		gateway:   gw,
	}
}

func (a *testApp) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.autoReply.Shutdown(ctx))
}

func webhookForm(v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/whatsapp", strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestWebhook_EndToEnd(t *testing.T) {
	app := newTestApp(t, botconfig.Config{
		AutoReplyEnabled:     true,
		AutoReplyMessage:     "Thanks!",
		ResponseDelaySeconds: 0,
	})

	rec := app.do(t, webhookForm(url.Values{
		"From":       {"whatsapp:+15551234567"},
		"To":         {"whatsapp:+14155238886"},
		"Body":       {"Hello"},
		"MessageSid": {"SM1"},
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, response.EmptyTwiML, rec.Body.String())

	app.drain(t)

	rec = app.do(t, httptest.NewRequest(http.MethodGet, "/api/messages", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	msgs := decode[[]response.MessageDTO](t, rec)
	require.Len(t, msgs, 2)

	byDir := map[string]response.MessageDTO{}
	for _, m := range msgs {
		byDir[m.Direction] = m
	}

	in := byDir["inbound"]
	assert.Equal(t, "received", in.Status)
	assert.Equal(t, "whatsapp:+15551234567", in.From)
	require.NotNil(t, in.TwilioMessageSid)
	assert.Equal(t, "SM1", *in.TwilioMessageSid)

	out := byDir["outbound"]
	assert.Equal(t, "sent", out.Status)
	assert.Equal(t, "Thanks!", out.Body)
	assert.Equal(t, "whatsapp:+14155238886", out.From)
	assert.Equal(t, "whatsapp:+15551234567", out.To)
	require.NotNil(t, out.TwilioMessageSid)
	assert.Equal(t, "SM123", *out.TwilioMessageSid)

	rec = app.do(t, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[response.StatsDTO](t, rec)
	assert.Equal(t, response.StatsDTO{TotalReceived24h: 1, TotalSent24h: 1, TotalReceived7d: 1, TotalSent7d: 1}, stats)
}

func TestWebhook_InvalidPayload(t *testing.T) {
	app := newTestApp(t, botconfig.Default())

	for name, form := range map[string]url.Values{
		"missing from": {"Body": {"Hello"}},
		"missing body": {"From": {"whatsapp:+1"}},
		"blank body":   {"From": {"whatsapp:+1"}, "Body": {"   "}},
	} {
		rec := app.do(t, webhookForm(form))
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.Equal(t, "Bad Request: Invalid payload", rec.Body.String(), name)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/whatsapp", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := app.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	app.drain(t)
	all, err := app.store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, app.gateway.sends)
}

func TestWebhook_NoSidIsNull(t *testing.T) {
	app := newTestApp(t, botconfig.Config{AutoReplyEnabled: false})

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/whatsapp",
		strings.NewReader(`{"From":"whatsapp:+1","Body":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, http.StatusOK, app.do(t, req).Code)
	app.drain(t)

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/api/messages", nil))
	assert.Contains(t, rec.Body.String(), `"twilioMessageSid":null`)
	assert.Contains(t, rec.Body.String(), `"to":""`)
}

func TestMessages_LimitAndGet(t *testing.T) {
	app := newTestApp(t, botconfig.Config{AutoReplyEnabled: false})

	for i := 0; i < 3; i++ {
		rec := app.do(t, webhookForm(url.Values{"From": {"whatsapp:+1"}, "Body": {"hi"}}))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	app.drain(t)

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/api/messages?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	msgs := decode[[]response.MessageDTO](t, rec)
	require.Len(t, msgs, 2)

	for _, q := range []string{"", "?limit=abc", "?limit=0", "?limit=-4"} {
		rec = app.do(t, httptest.NewRequest(http.MethodGet, "/api/messages"+q, nil))
		assert.Len(t, decode[[]response.MessageDTO](t, rec), 3, q)
	}

	rec = app.do(t, httptest.NewRequest(http.MethodGet, "/api/messages/"+msgs[0].ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, msgs[0].ID, decode[response.MessageDTO](t, rec).ID)

	rec = app.do(t, httptest.NewRequest(http.MethodGet, "/api/messages/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "message not found", decode[response.ErrorResponse](t, rec).Error)
}

func TestMessages_EmptyIsArray(t *testing.T) {
	app := newTestApp(t, botconfig.Default())

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/api/messages", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = app.do(t, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.JSONEq(t, `{"totalReceived24h":0,"totalSent24h":0,"totalReceived7d":0,"totalSent7d":0}`, rec.Body.String())
}

func TestConfig_GetAndPartialPatch(t *testing.T) {
	app := newTestApp(t, botconfig.Default())

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	before := decode[response.ConfigDTO](t, rec)
	assert.True(t, before.AutoReplyEnabled)
	assert.Equal(t, botconfig.DefaultAutoReplyMessage, before.AutoReplyMessage)
	assert.Equal(t, 0, before.ResponseDelaySeconds)
	assert.NotEmpty(t, before.ID)

	rec = app.do(t, httptest.NewRequest(http.MethodPatch, "/api/config", strings.NewReader(`{"autoReplyEnabled":false}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	after := decode[response.ConfigDTO](t, rec)
	assert.False(t, after.AutoReplyEnabled)
	assert.Equal(t, before.AutoReplyMessage, after.AutoReplyMessage)
	assert.Equal(t, before.ID, after.ID)

	rec = app.do(t, httptest.NewRequest(http.MethodPatch, "/api/config", strings.NewReader(`{"responseDelaySeconds":"5"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decode[response.ConfigDTO](t, rec).ResponseDelaySeconds)

	rec = app.do(t, httptest.NewRequest(http.MethodPatch, "/api/config", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	same := decode[response.ConfigDTO](t, rec)
	assert.False(t, same.AutoReplyEnabled)
	assert.Equal(t, 5, same.ResponseDelaySeconds)
}

func TestConfig_PatchRejectsBadInput(t *testing.T) {
	app := newTestApp(t, botconfig.Default())

	for _, body := range []string{
		`not json`,
		`{"responseDelaySeconds":-1}`,
		`{"responseDelaySeconds":"later"}`,
		`{"responseDelaySeconds":9223372037}`,
		`{"responseDelaySeconds":86401}`,
	} {
		rec := app.do(t, httptest.NewRequest(http.MethodPatch, "/api/config", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.NotEmpty(t, decode[response.ErrorResponse](t, rec).Error, body)
	}

	cfg, err := app.store.GetConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.ResponseDelaySeconds)
}

func TestWebhook_StoreFailureReturns500(t *testing.T) {
	store := memory.NewStore(botconfig.Default())
	app := newTestAppWithRepo(t, store, failingStore{Store: store})

	rec := app.do(t, webhookForm(url.Values{
		"From": {"whatsapp:+15551234567"},
		"To":   {"whatsapp:+14155238886"},
		"Body": {"Hello"},
	}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", strings.TrimSpace(rec.Body.String()))

	app.drain(t)
	assert.Empty(t, app.gateway.sends)
}

func TestHealthAndStatus(t *testing.T) {
	app := newTestApp(t, botconfig.Default())

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[response.HealthResponse](t, rec)
	assert.Equal(t, "ok", health.Status)
	_, err := time.Parse(time.RFC3339Nano, health.Timestamp)
	assert.NoError(t, err)

	rec = app.do(t, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[response.StatusDTO](t, rec)
	assert.True(t, st.Connected)
	assert.Equal(t, "render", st.Platform)
	assert.Equal(t, service.StubStatusMessage, st.Message)

	require.NoError(t, app.status.Run(context.Background()))
	rec = app.do(t, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	st = decode[response.StatusDTO](t, rec)
	assert.True(t, st.Connected)
	assert.Equal(t, "+14155238886", st.PhoneNumber)
	assert.NotNil(t, st.CheckedAt)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, botconfig.Default())

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route not found", decode[response.ErrorResponse](t, rec).Error)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, botconfig.Default())
	app.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `wa_autoreply_http_requests_total{method="GET",path="GET /api/health",status_code="200"}`)
}
