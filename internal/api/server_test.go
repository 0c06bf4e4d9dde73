package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/intake/internal/intake/classifier"
	"github.com/Chative-core-poc-v1/intake/internal/intake/complaints"
	"github.com/Chative-core-poc-v1/intake/internal/intake/dialogue"
	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	"github.com/Chative-core-poc-v1/intake/internal/intake/prompts"
	"github.com/Chative-core-poc-v1/intake/internal/intake/registry"
	"github.com/Chative-core-poc-v1/intake/internal/intake/service"
	"github.com/Chative-core-poc-v1/intake/internal/intake/session"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

func init() { logx.Disable() }

var say = prompts.NewComposer(prompts.FirstPicker)

const adminToken = "s3cret"

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	reg := registry.NewSet(map[model.EntityKind]registry.Source{
		model.KindBroker: registry.RowsSource([]registry.Row{
			{Name: "HDFC Securities Limited", Aliases: []string{"HDFC Securities"}},
			{Name: "Zerodha Broking Limited", Aliases: []string{"Zerodha"}},
		}),
	})
	reg.Load()
	eng := dialogue.New(reg, classifier.Static("Stock Broker", "Funds Not Received"),
		complaints.NewPersister(complaints.NewMemoryRepository()), dialogue.WithComposer(say))
	svc := service.New(eng, session.NewMemoryStore(0), reg)

	dir := filepath.Join(t.TempDir(), "uploads")
	srv, err := NewServer(svc, Config{UploadDir: dir, MaxUploadMB: 1, AdminToken: adminToken})
	require.NoError(t, err)
	return srv, dir
}

func postJSON(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, chatResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out chatResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestChatJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, first := postJSON(t, srv, `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, first.CID)
	assert.Equal(t, "awaiting_description", first.Stage)
	assert.Equal(t, []string{say.Greet()}, first.Messages)

	_, second := postJSON(t, srv, `{"cid":"`+first.CID+`","message":"my broker zerodha has not released my funds"}`)
	assert.Equal(t, first.CID, second.CID)
	assert.Equal(t, "confirming", second.Stage)
	assert.Equal(t, strings.Join(second.Messages, "\n\n"), second.Response)

	rec, _ = postJSON(t, srv, `{"cid":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestChatMultipartUpload(t *testing.T) {
	srv, dir := newTestServer(t)

	body, ctype := multipartBody(t, map[string]string{"cid": "m1"}, "../../my complaint.txt",
		[]byte("My broker Zerodha has not released my funds for a month"))
	req := httptest.NewRequest(http.MethodPost, "/chat", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "m1", out.CID)
	assert.Equal(t, "confirming", out.Stage)
	assert.Equal(t, say.FileReceived(), out.Messages[0])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^[0-9a-f]{8}_my_complaint\.txt$`, entries[0].Name())
}

func TestChatRejectsDisallowedUpload(t *testing.T) {
	srv, dir := newTestServer(t)

	body, ctype := multipartBody(t, map[string]string{"cid": "m2"}, "run.exe", []byte("MZ"))
	req := httptest.NewRequest(http.MethodPost, "/chat", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unsupported file type")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSuggest(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meta/brokers/suggest?q=zerodha", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Items []suggestItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []suggestItem{{Name: "Zerodha Broking Limited"}}, out.Items)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meta/advisers/suggest?q=", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meta/planets/suggest?q=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminReload(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/registries/reload", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/registries/reload", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 2, out.Counts["broker"])
	assert.Equal(t, 0, out.Counts["company"])
}
