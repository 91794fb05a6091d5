package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rulestore/internal/metrics"
	"github.com/mesh-intelligence/rulestore/internal/sqlite"
	"github.com/mesh-intelligence/rulestore/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *sqlite.Backend) {
	t.Helper()
	reg := prometheus.NewRegistry()
	store := sqlite.NewBackend(sqlite.WithMetrics(metrics.New(reg)))
	require.NoError(t, store.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { _ = store.Detach() })
	return NewRouter(store, Options{Gatherer: reg}), store
}

func performRequest(router *gin.Engine, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func post(t *testing.T, router *gin.Engine, path string, base int64, fields map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	body := map[string]any{"base_version": base, "client_id": "web-1"}
	for k, v := range fields {
		body[k] = v
	}
	return performRequest(router, http.MethodPost, path, body)
}

func TestGetRules_ETag(t *testing.T) {
	router, _ := newTestRouter(t)

	w := performRequest(router, http.MethodGet, "/api/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"0"`, w.Header().Get("ETag"))
	body := decode(t, w)
	assert.Equal(t, float64(0), body["version_id"])
	assert.Equal(t, []any{}, body["groups"])

	w = performRequest(router, http.MethodGet, "/api/rules", nil, "If-None-Match", "0")
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())

	post(t, router, "/api/rules/group/add", 0, map[string]any{"group_name": "fruit"})

	w = performRequest(router, http.MethodGet, "/api/rules", nil, "If-None-Match", `"0"`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"1"`, w.Header().Get("ETag"))
	body = decode(t, w)
	assert.Len(t, body["groups"], 1)
}

func TestWrite_Routes(t *testing.T) {
	router, store := newTestRouter(t)

	tests := []struct {
		path   string
		fields map[string]any
		want   map[string]any
	}{
		{"/api/rules/group/add", map[string]any{"group_name": "food"}, map[string]any{"group_id": float64(1)}},
		{"/api/rules/group/add", map[string]any{"group_name": "fruit", "is_enabled": false}, map[string]any{"group_id": float64(2)}},
		{"/api/rules/group/add", map[string]any{"group_name": "citrus"}, map[string]any{"group_id": float64(3)}},
		{"/api/rules/group/update", map[string]any{"group_id": 2, "group_name": "fruits", "is_enabled": true}, map[string]any{"affected": float64(1)}},
		{"/api/rules/group/toggle", map[string]any{"group_id": 3}, map[string]any{"is_enabled": false}},
		{"/api/rules/keyword/add", map[string]any{"group_id": 2, "keyword": "apple"}, map[string]any{"affected": float64(1)}},
		{"/api/rules/keyword/enable", map[string]any{"group_id": 2, "keyword": "apple", "is_enabled": false}, map[string]any{"affected": float64(1)}},
		{"/api/rules/hierarchy/add", map[string]any{"parent_id": 1, "child_id": 2}, map[string]any{"affected": float64(1)}},
		{"/api/rules/hierarchy/move", map[string]any{"new_parent_id": 2, "child_ids": []int{3}}, map[string]any{"moved": float64(1), "errors": []any{}}},
		{"/api/rules/hierarchy/remove", map[string]any{"parent_id": 2, "child_id": 3}, map[string]any{"affected": float64(1)}},
		{"/api/rules/keyword/remove", map[string]any{"group_id": 2, "keyword": "apple"}, map[string]any{"affected": float64(1)}},
		{"/api/rules/group/batch", map[string]any{"group_ids": []int{1, 2}, "action": "disable"}, map[string]any{"affected": float64(2)}},
		{"/api/rules/group/delete", map[string]any{"group_id": 1}, map[string]any{"deleted_count": float64(2)}},
	}

	for i, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := post(t, router, tt.path, int64(i), tt.fields)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			body := decode(t, w)
			assert.Equal(t, true, body["success"])
			assert.Equal(t, float64(i+1), body["version_id"])
			for k, v := range tt.want {
				assert.Equal(t, v, body[k], "field %s", k)
			}
		})
	}

	rules, err := store.Rules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(len(tests)), rules.VersionID)
	assert.Equal(t, []types.Group{{GroupID: 3, Name: "citrus", Enabled: false}}, rules.Groups)
}

func TestWrite_Conflict(t *testing.T) {
	router, _ := newTestRouter(t)
	post(t, router, "/api/rules/group/add", 0, map[string]any{"group_name": "foo"})

	w := post(t, router, "/api/rules/group/add", 0, map[string]any{"group_name": "bar"})
	require.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "conflict", body["error"])
	assert.Equal(t, float64(1), body["unique_modifiers"])

	latest := body["latest_data"].(map[string]any)
	assert.Equal(t, float64(1), latest["version_id"])
	groups := latest["groups"].([]any)
	require.Len(t, groups, 1)
	assert.Equal(t, "foo", groups[0].(map[string]any)["group_name"])
}

func TestWrite_BadRequests(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name string
		path string
		body any
	}{
		{"malformed json", "/api/rules/group/add", "not an object"},
		{"missing base version", "/api/rules/group/add", map[string]any{"client_id": "c", "group_name": "x"}},
		{"blank client id", "/api/rules/group/add", map[string]any{"base_version": 0, "client_id": "  ", "group_name": "x"}},
		{"blank group name", "/api/rules/group/add", map[string]any{"base_version": 0, "client_id": "c", "group_name": " "}},
		{"missing keyword", "/api/rules/keyword/add", map[string]any{"base_version": 0, "client_id": "c", "group_id": 1}},
		{"zero group id", "/api/rules/group/toggle", map[string]any{"base_version": 0, "client_id": "c", "group_id": 0}},
		{"unknown batch action", "/api/rules/group/batch", map[string]any{"base_version": 0, "client_id": "c", "group_ids": []int{1}, "action": "archive"}},
		{"empty move", "/api/rules/hierarchy/move", map[string]any{"base_version": 0, "client_id": "c", "new_parent_id": 0, "child_ids": []int{}}},
		{"missing parent", "/api/rules/hierarchy/add", map[string]any{"base_version": 0, "client_id": "c", "child_id": 1}},
		{"missing enabled flag", "/api/rules/keyword/enable", map[string]any{"base_version": 0, "client_id": "c", "group_id": 1, "keyword": "k"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Missing parameters", body["error"])
		})
	}
}

func TestWrite_Rejected(t *testing.T) {
	router, _ := newTestRouter(t)
	post(t, router, "/api/rules/group/add", 0, map[string]any{"group_name": "a"})

	w := post(t, router, "/api/rules/hierarchy/add", 1, map[string]any{"parent_id": 1, "child_id": 1})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Contains(t, body["error"], types.ErrSelfLoop.Error())
}

func TestWrite_RootParentAccepted(t *testing.T) {
	router, _ := newTestRouter(t)
	post(t, router, "/api/rules/group/add", 0, map[string]any{"group_name": "a"})

	w := post(t, router, "/api/rules/hierarchy/add", 1, map[string]any{"parent_id": 0, "child_id": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(0), decode(t, w)["affected"])
}

func TestTreeAndExpand(t *testing.T) {
	router, _ := newTestRouter(t)
	post(t, router, "/api/rules/group/add", 0, map[string]any{"group_name": "fruit"})
	post(t, router, "/api/rules/group/add", 1, map[string]any{"group_name": "citrus"})
	post(t, router, "/api/rules/hierarchy/add", 2, map[string]any{"parent_id": 1, "child_id": 2})
	post(t, router, "/api/rules/keyword/add", 3, map[string]any{"group_id": 1, "keyword": "apple"})
	post(t, router, "/api/rules/keyword/add", 4, map[string]any{"group_id": 2, "keyword": "lemon"})

	w := performRequest(router, http.MethodGet, "/api/rules/tree", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tree := decode(t, w)["tree"].([]any)
	require.Len(t, tree, 1)
	root := tree[0].(map[string]any)
	assert.Equal(t, "fruit", root["group_name"])
	assert.Len(t, root["children"], 1)

	w = performRequest(router, http.MethodGet, "/api/rules/expand?q=fruit&q=unknown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"apple", "lemon"}, decode(t, w)["keywords"])

	w = performRequest(router, http.MethodGet, "/api/rules/expand", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t)
	post(t, router, "/api/rules/group/add", 0, map[string]any{"group_name": "a"})

	w := performRequest(router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = performRequest(router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `rulestore_writes_total{op="add_group",status="ok"} 1`), w.Body.String())
	assert.Contains(t, w.Body.String(), "rulestore_version 1")
}

func TestRequestID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := performRequest(router, http.MethodGet, "/healthz", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = performRequest(router, http.MethodGet, "/healthz", nil, RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

// faultyStore fails every call.
type faultyStore struct{ types.RuleStore }

var errDisk = errors.New("disk on fire")

func (faultyStore) Version(context.Context) (types.SystemVersion, error) { return types.SystemVersion{}, errDisk }
func (faultyStore) Rules(context.Context) (*types.Rules, error)          { return nil, errDisk }
func (faultyStore) TryWrite(_ context.Context, base int64, _ string, cmd types.Command) types.WriteResult {
	return types.WriteResult{Status: types.StatusFault, Op: cmd.Op(), VersionID: base, Err: errDisk}
}

func TestFaults(t *testing.T) {
	router := NewRouter(faultyStore{}, Options{})

	w := post(t, router, "/api/rules/group/add", 0, map[string]any{"group_name": "a"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "disk on fire", decode(t, w)["error"])

	w = performRequest(router, http.MethodGet, "/api/rules", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = performRequest(router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = performRequest(router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestParseETag(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12", 12, true},
		{`"12"`, 12, true},
		{`W/"7"`, 7, true},
		{"", 0, false},
		{"*", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseETag(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
