package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/dmitrijs2005/gophgate/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var testNow = time.Date(2025, 11, 26, 6, 0, 0, 0, time.UTC)

type fakeEntries struct {
	list []models.Entry
	err  error
}

func (f *fakeEntries) List(ctx context.Context) ([]models.Entry, error) {
	return f.list, f.err
}

type fakeRecorder struct {
	operator string
	items    []models.CheckIn
	result   *models.BatchResult
}

func (f *fakeRecorder) RecordBatch(ctx context.Context, operator string, items []models.CheckIn) *models.BatchResult {
	f.operator = operator
	f.items = items
	if f.result != nil {
		return f.result
	}
	return &models.BatchResult{Success: true, Total: len(items), Created: len(items)}
}

func newTestServer(es EntryLister, cs BatchRecorder) *HTTPServer {
	s := NewHTTPServer(":0", logging.NewNopLogger(), es, cs, testSecret)
	s.clock = timex.Fixed(testNow)
	return s
}

func bearer(t *testing.T, operator string) string {
	t.Helper()
	tok, err := auth.GenerateToken(operator, "Gate 4", []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return common.BearerPrefix + tok
}

func do(t *testing.T, s *HTTPServer, method, path, authHeader string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if authHeader != "" {
		req.Header.Set(common.AuthorizationHeaderName, authHeader)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestHealth_NoToken(t *testing.T) {
	s := newTestServer(&fakeEntries{}, &fakeRecorder{})
	rec := do(t, s, http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestScannerRoutes_RequireToken(t *testing.T) {
	s := newTestServer(&fakeEntries{}, &fakeRecorder{})

	expired, err := auth.GenerateToken("op", "", []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.GenerateToken("op", "", []byte("other"), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", "Missing bearer token"},
		{"wrong scheme", "Basic abc", "Missing bearer token"},
		{"empty bearer", "Bearer ", "Missing bearer token"},
		{"garbage", "Bearer not-a-jwt", "Invalid token"},
		{"wrong secret", "Bearer " + foreign, "Invalid token"},
		{"expired", "Bearer " + expired, "Token expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/api/scanner/entries", tt.header, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.want, detail(t, rec))
		})
	}
}

func TestListEntries(t *testing.T) {
	es := &fakeEntries{list: []models.Entry{
		{ID: 1042, Name: "Ada Lovelace", QRSignature: "SIG", Passes: models.Passes{Plenary: true}},
	}}
	s := newTestServer(es, &fakeRecorder{})

	rec := do(t, s, http.MethodGet, "/api/scanner/entries?gate_number=Gate+4&date=2025-11-26", bearer(t, "op"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.EntriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, 1, got.Count)
	assert.True(t, got.LastUpdated.Equal(testNow))
	require.Len(t, got.Entries, 1)
	assert.Equal(t, int64(1042), got.Entries[0].ID)
	assert.True(t, got.Entries[0].Passes.Plenary)
	assert.Contains(t, rec.Body.String(), `"entry_id":1042`)
}

func TestListEntries_StorageError(t *testing.T) {
	s := newTestServer(&fakeEntries{err: errors.New("db down")}, &fakeRecorder{})
	rec := do(t, s, http.MethodGet, "/api/scanner/entries", bearer(t, "op"), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Could not load entries", detail(t, rec))
}

func TestRecordBatch(t *testing.T) {
	cs := &fakeRecorder{}
	s := newTestServer(&fakeEntries{}, cs)

	body := `{"checkins":[{"entry_id":1042,"session_type":"plenary","session_name":"Plenary Hall",` +
		`"gate_number":"Gate 4","gate_location":"Hall A","check_in_time":"2025-11-26T05:30:00.000Z",` +
		`"scanner_device_id":"device-1","scanner_operator":"","verification_status":"verified"}]}`

	rec := do(t, s, http.MethodPost, "/api/scanner/checkin/batch", bearer(t, "gatekeeper"), []byte(body))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "gatekeeper", cs.operator)
	require.Len(t, cs.items, 1)
	assert.Equal(t, int64(1042), cs.items[0].EntryID)
	assert.True(t, cs.items[0].CheckInTime.Equal(time.Date(2025, 11, 26, 5, 30, 0, 0, time.UTC)))

	var got models.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, 1, got.Created)
}

func TestRecordBatch_FailedBatchStillOK(t *testing.T) {
	cs := &fakeRecorder{result: &models.BatchResult{Success: false, Total: 1, Errors: 1, Message: "Batch not stored"}}
	s := newTestServer(&fakeEntries{}, cs)

	rec := do(t, s, http.MethodPost, "/api/scanner/checkin/batch", bearer(t, "op"), []byte(`{"checkins":[]}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRecordBatch_BadBody(t *testing.T) {
	s := newTestServer(&fakeEntries{}, &fakeRecorder{})
	rec := do(t, s, http.MethodPost, "/api/scanner/checkin/batch", bearer(t, "op"), []byte(`{"checkins":`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(detail(t, rec), "Invalid batch body"))
}

func TestRecordBatch_TooLarge(t *testing.T) {
	s := newTestServer(&fakeEntries{}, &fakeRecorder{})
	big := `{"checkins":[],"pad":"` + strings.Repeat("x", maxBatchBody) + `"}`
	rec := do(t, s, http.MethodPost, "/api/scanner/checkin/batch", bearer(t, "op"), []byte(big))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	s := newTestServer(&fakeEntries{}, &fakeRecorder{})

	rec := do(t, s, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", detail(t, rec))

	tok := bearer(t, "op")
	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodPost, "/api/scanner/entries", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/scanner/checkin/batch", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/scanner/nope", http.StatusNotFound},
		{http.MethodGet, "/other", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tok, nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(&fakeEntries{}, &fakeRecorder{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
