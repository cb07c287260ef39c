package indexus

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/moodmap/internal/domain"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/collections/moods/sets/u4p", r.URL.Path)

		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode([]element{
			{Type: "item", Hash: "u4pruydqqvj", ID: "4"},
			{Type: "set", Hash: "u4pr", Count: 3, Metrics: []float64{12, 172.9, 31.2}},
			{Type: "bogus", Hash: "u4pz"},
		}))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Fetch(context.Background(), "moods", "u4p")
	require.NoError(t, err)

	assert.Equal(t, []domain.RawElement{
		domain.NewItem("u4pruydqqvj", "4"),
		domain.NewAggregate("u4pr", 3, []float64{12, 172.9, 31.2}),
	}, got)
}

func TestClient_Fetch_Root(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/moods/sets/@", r.URL.Path)
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL+"/").Fetch(context.Background(), "moods", domain.RootAddress)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_Fetch_NotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Fetch(context.Background(), "moods", "u4p")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_Fetch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"overloaded"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "moods", "u4p")
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, domain.CellAddress("u4p"), fetchErr.Address)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_Fetch_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "moods", "u4p")
	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := c.Fetch(context.Background(), "moods", "u4p")
	require.Error(t, err)
}

func TestClient_Submit_Success(t *testing.T) {
	var got itemRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/collections/moods/items", r.URL.Path)
		assert.Equal(t, contentTypeJSON, r.Header.Get(headerContentType))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := testClient(srv.URL).Submit(context.Background(), domain.Submission{
		ID:         "5f0c0b9e-1b7e-4a53-9a55-7b8d3c1f0e11",
		Collection: "moods",
		Parent:     domain.RootAddress,
		Address:    "u09tvw0f6szy",
		Metrics:    []float64{4, 48.8566, 2.3522},
		Payload:    "4",
	})
	require.NoError(t, err)

	assert.Equal(t, itemRequest{
		Parent:  "@",
		Hash:    "u09tvw0f6szy",
		Metrics: []float64{4, 48.8566, 2.3522},
		ID:      "4",
		Nonce:   "5f0c0b9e-1b7e-4a53-9a55-7b8d3c1f0e11",
	}, got)
}

func TestClient_Submit_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad hash"))
	}))
	defer srv.Close()

	err := testClient(srv.URL).Submit(context.Background(), domain.Submission{Collection: "moods", Address: "u4p"})
	var subErr *domain.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "moods", subErr.Collection)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "bad hash")
}
