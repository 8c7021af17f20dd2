package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandevgo/sazed/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	return NewClient(&config.GatewayConfig{URL: ts.URL, APIKey: "secret"}), ts
}

func TestClient_GetSendsQueryParams(t *testing.T) {
	var gotQuery, gotKey string
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("X-API-Key")
		_, _ = w.Write([]byte(`{"events":[]}`))
	})
	defer ts.Close()

	out, err := client.Call(context.Background(), http.MethodGet, "/calendar/events", map[string]any{"days": 7})
	require.NoError(t, err)
	assert.Equal(t, "days=7", gotQuery)
	assert.Equal(t, "secret", gotKey)
	assert.JSONEq(t, `{"events":[]}`, out)
}

func TestClient_PostSendsJSONBody(t *testing.T) {
	var gotBody map[string]any
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"evt_1"}`))
	})
	defer ts.Close()

	_, err := client.Call(context.Background(), http.MethodPost, "/calendar/events", map[string]any{"title": "standup"})
	require.NoError(t, err)
	assert.Equal(t, "standup", gotBody["title"])
}

func TestClient_NoContentMeansDeleted(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	defer ts.Close()

	out, err := client.Call(context.Background(), http.MethodDelete, "/calendar/events/e1", nil)
	require.NoError(t, err)
	assert.Equal(t, "Deleted successfully.", out)
}

func TestClient_NonSuccessIsAnError(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})
	defer ts.Close()

	_, err := client.Call(context.Background(), http.MethodGet, "/calendar/events", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
