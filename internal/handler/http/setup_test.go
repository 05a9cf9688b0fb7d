package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookshop/pkg/health"

	"github.com/bookhaven/bookshop/internal/cart"
	cartredis "github.com/bookhaven/bookshop/internal/cart/redis"
	"github.com/bookhaven/bookshop/internal/catalog"
	"github.com/bookhaven/bookshop/internal/checkout"
	"github.com/bookhaven/bookshop/internal/wishlist"
	wishlistredis "github.com/bookhaven/bookshop/internal/wishlist/redis"
)

const testSession = "sess-test"

// testServer wires the full router against a miniredis instance.
type testServer struct {
	srv     *httptest.Server
	catalog *catalog.Store
	redis   *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	store, err := catalog.NewFromEmbedded(logger)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	carts := cart.NewManager(cartredis.NewRepository(client, 24*time.Hour), nil, logger)
	t.Cleanup(carts.Close)
	wishlists := wishlist.NewManager(wishlistredis.NewRepository(client, 24*time.Hour), nil, logger)
	checkoutSvc := checkout.NewService(nil, logger)

	router := NewRouter(store, carts, wishlists, checkoutSvc, health.NewHandler(), logger, nil)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, catalog: store, redis: mr}
}

// do issues a request with the test session header and decodes the JSON body
// into out (when out is non-nil).
func (ts *testServer) do(t *testing.T, method, path string, body any, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("X-Session-ID", testSession)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// doAnon issues a request without a session header.
func (ts *testServer) doAnon(t *testing.T, method, path string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, ts.srv.URL+path, nil)
	require.NoError(t, err)

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
