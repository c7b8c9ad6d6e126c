package store_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wows-tools/wows-clan-sync/model"
	"github.com/wows-tools/wows-clan-sync/store"
)

func newStoreClient(t *testing.T, handler http.Handler) *store.HTTP {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	host, port, err := net.SplitHostPort(ts.Listener.Addr().String())
	require.NoError(t, err)
	return store.NewHTTP(host, port, zaptest.NewLogger(t).Sugar())
}

func TestHTTPLookupFound(t *testing.T) {
	client := newStoreClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/clans/TEST", r.URL.Path)
		json.NewEncoder(w).Encode(model.Clan{ID: 1, Tag: "TEST"})
	}))

	res, err := client.LookupTag(context.Background(), "TEST")

	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, model.Clan{ID: 1, Tag: "TEST"}, res.Clan)
}

func TestHTTPLookupAbsent(t *testing.T) {
	client := newStoreClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	res, err := client.LookupTag(context.Background(), "TEST")

	require.NoError(t, err, "a 404 is an absent record, not an error")
	assert.False(t, res.Found)
}

func TestHTTPLookupServerError(t *testing.T) {
	client := newStoreClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.LookupTag(context.Background(), "TEST")

	assert.Error(t, err)
}

func TestHTTPCreate(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		created bool
		wantErr bool
	}{
		{name: "new record", status: http.StatusCreated, created: true},
		{name: "already existed", status: http.StatusOK, created: false},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newStoreClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPut, r.Method)
				assert.Equal(t, "/clans", r.URL.Path)
				var clan model.Clan
				require.NoError(t, json.NewDecoder(r.Body).Decode(&clan))
				assert.Equal(t, model.Clan{ID: 1, Tag: "TEST"}, clan)
				w.WriteHeader(tc.status)
			}))

			created, err := client.Create(context.Background(), model.Clan{ID: 1, Tag: "TEST"})

			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.created, created)
		})
	}
}

func TestHTTPDelete(t *testing.T) {
	client := newStoreClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/clans", r.URL.Path)
		var clan model.Clan
		require.NoError(t, json.NewDecoder(r.Body).Decode(&clan))
		assert.Equal(t, 1, clan.ID)
		w.WriteHeader(http.StatusOK)
	}))

	err := client.Delete(context.Background(), model.Clan{ID: 1, Tag: "TEST"})

	assert.NoError(t, err)
}

func TestHTTPDeleteServerError(t *testing.T) {
	client := newStoreClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	err := client.Delete(context.Background(), model.Clan{ID: 1, Tag: "TEST"})

	assert.Error(t, err)
}
