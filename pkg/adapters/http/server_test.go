package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/parley"
	httpadapter "github.com/aretw0/parley/pkg/adapters/http"
	"github.com/aretw0/parley/pkg/adapters/redis"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/rules"
	"github.com/aretw0/parley/pkg/rules/villagegp"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts ...httpadapter.Option) (http.Handler, *parley.Engine) {
	t.Helper()
	eng, err := parley.New()
	require.NoError(t, err)
	return httpadapter.NewHandler(eng, opts...), eng
}

func chat(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, domain.Reply) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chatbot", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var reply domain.Reply
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	}
	return rec, reply
}

func TestChat_Conversation(t *testing.T) {
	h, _ := newServer(t)

	rec, r1 := chat(t, h, `{"input": "I have a headache"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, r1.SessionID)
	assert.Equal(t, villagegp.StateHeadacheSeverity, r1.State)

	_, r2 := chat(t, h, `{"input": "9", "session_id": "`+r1.SessionID+`"}`)
	assert.Equal(t, r1.SessionID, r2.SessionID)
	assert.Contains(t, r2.Response, "A severity of 9 is severe")
	assert.Equal(t, domain.StateInitial, r2.State)
}

func TestChat_EmptyBodyAndMissingInput(t *testing.T) {
	h, _ := newServer(t)

	for _, body := range []string{"", "{}", `{"session_id": ""}`} {
		rec, reply := chat(t, h, body)
		require.Equal(t, http.StatusOK, rec.Code, "body %q", body)
		assert.Equal(t, villagegp.Fallback, reply.Response)
		assert.NotEmpty(t, reply.SessionID)
	}
}

func TestChat_InvalidJSON(t *testing.T) {
	h, _ := newServer(t)
	rec, _ := chat(t, h, `{"input": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_InputTooLarge(t *testing.T) {
	h, _ := newServer(t, httpadapter.WithMaxInputSize(16))

	rec, _ := chat(t, h, `{"input": "`+strings.Repeat("a", 17)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec, _ = chat(t, h, strings.Repeat(" ", 4096))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec, reply := chat(t, h, `{"input": "\u001b[1mHELLO\u001b[0m"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, villagegp.Greeting, reply.Response)
}

func TestChat_NonStringInput(t *testing.T) {
	h, _ := newServer(t)

	_, first := chat(t, h, `{"input": "fever"}`)
	rec, reply := chat(t, h, `{"input": 5, "session_id": "`+first.SessionID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, reply.Response, "A fever of 5 days")

	for _, body := range []string{`{"input": null}`, `{"input": true}`, `{"input": [1, 2]}`} {
		rec, reply := chat(t, h, body)
		require.Equal(t, http.StatusOK, rec.Code, "body %q", body)
		assert.Equal(t, villagegp.Fallback, reply.Response, "body %q", body)
	}

	// Objects are read as their JSON text.
	rec, reply = chat(t, h, `{"input": {"text": "hello"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, villagegp.Greeting, reply.Response)
}

func TestChat_StaleSessionReplaced(t *testing.T) {
	h, _ := newServer(t)
	rec, reply := chat(t, h, `{"input": "hello", "session_id": "expired"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "expired", reply.SessionID)
	assert.Equal(t, villagegp.Greeting, reply.Response)
}

func TestSessions_GetAndDelete(t *testing.T) {
	h, eng := newServer(t)
	reply, err := eng.Turn(context.Background(), "", "fever")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+reply.SessionID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var sess domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, villagegp.StateFeverDuration, sess.State)
	assert.Equal(t, 1, sess.Turns)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+reply.SessionID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+reply.SessionID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// Session paths that look like store bookkeeping keys must reach nothing but sessions.
func TestSessions_RedisBookkeepingUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := redis.NewFromClient(client)

	eng, err := parley.New(parley.WithStore(store), parley.WithLocker(redis.NewLocker(client, redis.DefaultPrefix)))
	require.NoError(t, err)
	h := httpadapter.NewHandler(eng)

	ctx := context.Background()
	a, err := eng.Turn(ctx, "", "fever")
	require.NoError(t, err)
	_, err = eng.Turn(ctx, "", "cough")
	require.NoError(t, err)

	for _, id := range []string{"index", "lock:" + a.SessionID, "session:" + a.SessionID} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, id)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code, id)
	}

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	sess, err := eng.Session(ctx, a.SessionID)
	require.NoError(t, err)
	assert.Equal(t, villagegp.StateFeverDuration, sess.State)
}

func TestGetRules(t *testing.T) {
	h, _ := newServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rules", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Fallback string               `json:"fallback"`
		States   []rules.StateSummary `json:"states"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, villagegp.Fallback, body.Fallback)
	require.NotEmpty(t, body.States)
	assert.Equal(t, domain.StateInitial, body.States[0].Name)
	assert.Equal(t, "static", body.States[0].Rules[0].Kind)
}

func TestHealthInfoAndCORS(t *testing.T) {
	h, _ := newServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info", nil))
	assert.Contains(t, rec.Body.String(), parley.Version)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/chatbot", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestMetricsRouteOptional(t *testing.T) {
	h, _ := newServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	h, _ = newServer(t, httpadapter.WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("metrics"))
	})))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "metrics", rec.Body.String())
}

type failingEngine struct{}

func (failingEngine) Turn(context.Context, string, string) (*domain.Reply, error) {
	return nil, errors.New("redis down")
}
func (failingEngine) Session(context.Context, string) (*domain.Session, error) {
	return nil, errors.New("redis down")
}
func (failingEngine) EndSession(context.Context, string) error { return errors.New("redis down") }
func (failingEngine) Rules() *rules.Table                      { return villagegp.Table() }

func TestStoreFailuresAre500(t *testing.T) {
	h := httpadapter.NewHandler(failingEngine{})

	rec, _ := chat(t, h, `{"input": "hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis down")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSubscribeEvents_Session(t *testing.T) {
	streams := httpadapter.NewStreamManager()
	eng, err := parley.New(parley.WithLifecycleHooks(streams.Hooks()))
	require.NoError(t, err)
	srv := httptest.NewServer(httpadapter.NewHandler(eng, httpadapter.WithStreams(streams)))
	defer srv.Close()

	first, err := eng.Turn(context.Background(), "", "hello")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/sessions/"+first.SessionID+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	require.Eventually(t, func() bool { return streams.Subscribers(first.SessionID) == 1 }, time.Second, 10*time.Millisecond)
	_, err = eng.Turn(context.Background(), first.SessionID, "cough")
	require.NoError(t, err)

	var data []byte
	for {
		line, err := reader.ReadBytes('\n')
		require.NoError(t, err)
		if bytes.HasPrefix(line, []byte("data: {")) {
			data = bytes.TrimPrefix(bytes.TrimSpace(line), []byte("data: "))
			break
		}
	}
	var evt domain.TurnEvent
	require.NoError(t, json.Unmarshal(data, &evt))
	assert.Equal(t, villagegp.StateCoughType, evt.To)
	assert.Equal(t, first.SessionID, evt.SessionID)
}

func TestStreamManager_UnsubscribeTwice(t *testing.T) {
	sm := httpadapter.NewStreamManager()
	_, cancel := sm.Subscribe("s")
	assert.Equal(t, 1, sm.Subscribers("s"))
	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("s"))
}
