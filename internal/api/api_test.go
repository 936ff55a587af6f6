package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/answerhub/qa-service/internal/mirror"
	"github.com/answerhub/qa-service/internal/model"
	"github.com/answerhub/qa-service/internal/responses"
	"github.com/answerhub/qa-service/internal/services"
	"github.com/answerhub/qa-service/internal/store/sqlite"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()
	st, err := sqlite.New(filepath.Join(dir, "qa.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	mir, err := mirror.New(filepath.Join(dir, "data"), zerolog.Nop())
	require.NoError(t, err)

	svc := services.New(st, mir, responses.NewStaticProvider([]string{"Certainly."}), zerolog.Nop(), 0)
	return NewRouter(svc)
}

func doAsk(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:54321"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAsk_Success(t *testing.T) {
	h := newTestRouter(t)

	rr := doAsk(t, h, `{"username":"alice","question":"will it work?"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var res model.AskResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "alice", res.Username)
	assert.Equal(t, "Certainly.", res.Answer)
	assert.GreaterOrEqual(t, res.EventID, int64(1))
	assert.NotEmpty(t, res.SessionID)
}

func TestAsk_ValidationErrors(t *testing.T) {
	h := newTestRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"missing username", `{"question":"q?"}`},
		{"missing question", `{"username":"alice"}`},
		{"whitespace only username", `{"username":"   ","question":"q?"}`},
		{"whitespace only question", `{"username":"alice","question":"   "}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doAsk(t, h, tc.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestAsk_TrimsFields(t *testing.T) {
	h := newTestRouter(t)

	rr := doAsk(t, h, `{"username":"  bob  ","question":"  spaced?  "}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var res model.AskResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "bob", res.Username)
	assert.Equal(t, "spaced?", res.Question)
}

func TestUserAnalytics_Endpoint(t *testing.T) {
	h := newTestRouter(t)

	require.Equal(t, http.StatusOK, doAsk(t, h, `{"username":"carol","question":"q?"}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/analytics/user/carol", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var a model.UserAnalytics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &a))
	assert.Equal(t, int64(1), a.Summary.TotalQuestions)
}

func TestUserAnalytics_Unknown(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/analytics/user/ghost", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSystemAnalytics_Endpoint(t *testing.T) {
	h := newTestRouter(t)

	require.Equal(t, http.StatusOK, doAsk(t, h, `{"username":"dave","question":"q?"}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/analytics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var sa model.SystemAnalytics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sa))
	assert.Equal(t, int64(1), sa.PrimaryStats.TotalEvents)
	assert.True(t, sa.SystemHealth.PrimaryOperational)
}

func TestExportUser_Endpoint(t *testing.T) {
	h := newTestRouter(t)

	require.Equal(t, http.StatusOK, doAsk(t, h, `{"username":"erin","question":"q?"}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/export/user/erin", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var exp model.UserExport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &exp))
	assert.Equal(t, "erin", exp.Username)
	require.NotNil(t, exp.PrimaryRecord)
	require.NotNil(t, exp.MirrorRecord)

	req = httptest.NewRequest(http.MethodGet, "/export/user/ghost", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDataEndpoints(t *testing.T) {
	h := newTestRouter(t)

	require.Equal(t, http.StatusOK, doAsk(t, h, `{"username":"frank","question":"q?"}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/data/validate", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var rep model.ConsistencyReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	assert.True(t, rep.OverallHealth.UsersConsistent)
	assert.True(t, rep.OverallHealth.EventsConsistent)

	req = httptest.NewRequest(http.MethodPost, "/data/backup", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var bak model.BackupReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &bak))
	assert.True(t, bak.Success)
	assert.Equal(t, 1, bak.UsersBackedUp)
}

func TestUnknownEndpoint(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
