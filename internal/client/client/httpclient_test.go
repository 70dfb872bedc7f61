package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchEntries_SendsFiltersAndToken(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(EntriesResponse{
			Success: true,
			Count:   1,
			Entries: []models.Entry{{EntryID: 42, Name: "Asha", QRSignature: "ABC123",
				Passes: models.Passes{ExhibitionDay1: true}}},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/api/", time.Second)
	resp, err := c.FetchEntries(context.Background(), "tok", EntryFilter{GateNumber: "Gate 1", Date: "2025-11-25"})
	require.NoError(t, err)

	assert.Equal(t, "/api/scanner/entries", gotPath)
	assert.Equal(t, "date=2025-11-25&gate_number=Gate+1", gotQuery)
	assert.Equal(t, "Bearer tok", gotAuth)
	require.Len(t, resp.Entries, 1)
	assert.True(t, resp.Entries[0].Passes.ExhibitionDay1)
}

func TestFetchEntries_NoFilters_NoQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"success":true,"count":0,"entries":[]}`))
	}))
	defer srv.Close()

	resp, err := NewHTTPClient(srv.URL, time.Second).FetchEntries(context.Background(), "", EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
	assert.NotNil(t, resp.Entries)
}

func TestUploadCheckIns_PostsBatch(t *testing.T) {
	var got BatchRequest
	var gotMethod, gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotCT = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"total":2,"created":1,"duplicates":1,"errors":0,"message":"ok"}`))
	}))
	defer srv.Close()

	items := []CheckIn{
		{EntryID: 1, SessionType: "plenary", GateNumber: "Gate 4", CheckInTime: "2025-11-26T09:40:00.000Z", VerificationStatus: "verified"},
		{EntryID: 2, SessionType: "plenary", GateNumber: "Gate 4", CheckInTime: "2025-11-26T09:41:00.000Z", VerificationStatus: "verified"},
	}
	resp, err := NewHTTPClient(srv.URL, time.Second).UploadCheckIns(context.Background(), "tok", items)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, items, got.CheckIns)
	assert.Equal(t, BatchResponse{Success: true, Total: 2, Created: 1, Duplicates: 1, Message: "ok"}, *resp)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantIs     error
		wantDetail string
	}{
		{"401 detail", http.StatusUnauthorized, `{"detail":"Token expired"}`, ErrUnauthorized, "Token expired"},
		{"403 message", http.StatusForbidden, `{"message":"forbidden gate"}`, ErrUnauthorized, "forbidden gate"},
		{"500 error", http.StatusInternalServerError, `{"error":"db down"}`, ErrServer, "db down"},
		{"422 list detail", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, ErrServer, `[{"msg":"field required"}]`},
		{"502 plain", http.StatusBadGateway, "bad gateway\n", ErrServer, "bad gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPClient(srv.URL, time.Second).FetchEntries(context.Background(), "tok", EntryFilter{})
			require.ErrorIs(t, err, tt.wantIs)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, time.Second).UploadCheckIns(context.Background(), "tok", nil)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url, time.Second)

	_, err := c.FetchEntries(context.Background(), "tok", EntryFilter{})
	require.ErrorIs(t, err, ErrUnavailable)

	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestCancelledContext_IsUnavailableAndCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPClient(srv.URL, time.Second).FetchEntries(ctx, "tok", EntryFilter{})
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPing_AnyResponseIsReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	require.NoError(t, NewHTTPClient(srv.URL, time.Second).Ping(context.Background()))
}
