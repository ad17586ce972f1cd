package data

import (
	"context"
	"errors"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-kratos/aegis/circuitbreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yola1107/lumina-ludo/internal/biz/advisor"
	"github.com/yola1107/lumina-ludo/internal/biz/table"
	"github.com/yola1107/lumina-ludo/internal/conf"
	"github.com/yola1107/lumina-ludo/internal/model"
)

// chatServer 返回固定 content 的 chat/completions 服务
func chatServer(t *testing.T, content string, hits *int32, last *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		if last != nil {
			_ = json.Unmarshal(b, last)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestData(t *testing.T, baseURL string, profiles bool) *Data {
	t.Helper()
	bc := conf.Default()
	bc.Advisor.Enabled = baseURL != ""
	bc.Advisor.BaseURL = baseURL + "/"
	bc.Advisor.APIKey = "test-key"
	bc.Advisor.MinInterval = 0
	bc.Advisor.Profiles = profiles
	d, cleanup, err := NewData(&bc)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return d
}

func request(t *testing.T) *advisor.Request {
	t.Helper()
	b, err := model.NewBoard(model.Colors...)
	require.NoError(t, err)
	return &advisor.Request{MatchID: "m1", Color: model.Red, Name: "DiceQueen", Dice: 6, Legal: []int32{0, 1, 2, 3}, Snapshot: b.Snapshot()}
}

func TestAdviceRepo(t *testing.T) {
	var hits int32
	var body map[string]any
	srv := chatServer(t, "Sure! {\"tokenId\": 2, \"commentary\": \"Out you go\"} good luck", &hits, &body)
	d := newTestData(t, srv.URL, false)

	repo := NewAdviceRepo(d)
	require.NotNil(t, repo)
	raw, err := repo.Advise(context.Background(), request(t))
	require.NoError(t, err)
	assert.JSONEq(t, `{"tokenId": 2, "commentary": "Out you go"}`, string(raw))
	assert.EqualValues(t, 1, hits)

	assert.Equal(t, d.c.Advisor.Model, body["model"])
	rf, ok := body["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", rf["type"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	user := msgs[1].(map[string]any)["content"].(string)
	assert.Contains(t, user, "DiceQueen")
	assert.Contains(t, user, "Dice Roll: 6")
	assert.Contains(t, user, "GREEN")
}

func TestAdviceRepoThroughHeuristic(t *testing.T) {
	var hits int32
	srv := chatServer(t, `{"tokenId": 9, "commentary": "hmm"}`, &hits, nil)
	d := newTestData(t, srv.URL, false)

	h := advisor.NewHeuristic(NewAdviceRepo(d), advisor.WithTimeout(time.Second), advisor.WithExecutor(d.work))
	c := h.ChooseToken(context.Background(), request(t))
	assert.True(t, c.Fallback)
	assert.Equal(t, advisor.FallbackCommentary, c.Commentary)
	assert.Contains(t, []int32{0, 1, 2, 3}, c.TokenID)
}

func TestAdviceRepoHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	d := newTestData(t, srv.URL, false)

	_, err := NewAdviceRepo(d).Advise(context.Background(), request(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestAdviceRepoDisabled(t *testing.T) {
	d := newTestData(t, "", true)
	assert.Nil(t, NewAdviceRepo(d))
	assert.Nil(t, NewProfileRepo(d))
}

func TestProfileRepo(t *testing.T) {
	var hits int32
	var body map[string]any
	srv := chatServer(t, `{"profiles":[{"name":"SixSeeker","bio":"Always rolling."},{"name":"HomeRunner","bio":"Fast feet."}]}`, &hits, &body)
	d := newTestData(t, srv.URL, true)

	repo := NewProfileRepo(d)
	require.NotNil(t, repo)
	ps, err := repo.Generate(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "SixSeeker", ps[0].Name)
	assert.Equal(t, "Fast feet.", ps[1].Bio)

	msgs := body["messages"].([]any)
	assert.Contains(t, msgs[1].(map[string]any)["content"], "Generate 2 unique, trendy usernames")
}

func TestProfileRepoGarbage(t *testing.T) {
	var hits int32
	srv := chatServer(t, "no json here", &hits, nil)
	d := newTestData(t, srv.URL, true)

	_, err := NewProfileRepo(d).Generate(context.Background(), 3)
	assert.Error(t, err)
}

func TestChatRateLimit(t *testing.T) {
	var hits int32
	srv := chatServer(t, `{}`, &hits, nil)
	bc := conf.Default()
	bc.Advisor.BaseURL = srv.URL
	bc.Advisor.APIKey = "test-key"
	bc.Advisor.MinInterval = time.Hour
	c := newChatClient(&bc.Advisor)

	_, err := c.complete(context.Background(), "s", "u", "x", map[string]any{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.complete(ctx, "s", "u", "x", map[string]any{})
	require.Error(t, err)
	assert.EqualValues(t, 1, hits)
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSONObject("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "", extractJSONObject("nothing"))
	assert.Equal(t, "", extractJSONObject("} {"))
	assert.Equal(t, "abc...", truncate("abcdefgh", 6))
}

func TestTableRepoAndSink(t *testing.T) {
	d := newTestData(t, "", false)
	assert.Nil(t, d.rdb)

	sink := NewSink(d)
	ms, ok := sink.(table.MultiSink)
	require.True(t, ok)
	assert.Len(t, ms, 1)
	require.NoError(t, sink.Emit(context.Background(), table.Event{Kind: table.EvTurnStart}))

	repo := NewTableRepo(d, sink)
	assert.NotNil(t, repo.GetLoop())
	assert.NotNil(t, repo.GetTimer())
	assert.Same(t, &d.c.Game, repo.GetGameConfig())
	v := repo.GetDice().Roll()
	assert.True(t, v >= 1 && v <= 6)
}

func TestNewRedis(t *testing.T) {
	assert.Nil(t, NewRedis(&conf.Redis{}))
	rdb := NewRedis(&conf.Redis{Addr: "127.0.0.1:0", DialTimeout: 10 * time.Millisecond})
	require.NotNil(t, rdb)
	defer rdb.Close()

	s := &redisSink{rdb: rdb, channel: "ludo:test"}
	err := s.Emit(context.Background(), table.Event{Kind: table.EvTurnStart})
	assert.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "json"))
}

func TestNewDataRabbitUnreachable(t *testing.T) {
	bc := conf.Default()
	bc.Data.Rabbit.Enabled = true
	bc.Data.Rabbit.Conn.Host = "127.0.0.1"
	bc.Data.Rabbit.Conn.Port = "1"
	_, _, err := NewData(&bc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rabbitmq")
}

func TestChatBreakerOpens(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	bc := conf.Default()
	bc.Advisor.BaseURL = srv.URL
	bc.Advisor.MinInterval = 0
	c := newChatClient(&bc.Advisor)

	const calls = 200
	rejected := 0
	for i := 0; i < calls; i++ {
		_, err := c.complete(context.Background(), "s", "u", "x", map[string]any{})
		require.Error(t, err)
		if errors.Is(err, circuitbreaker.ErrNotAllowed) {
			rejected++
		}
	}
	assert.Positive(t, rejected)
	assert.Less(t, int(atomic.LoadInt32(&hits)), calls)
}
