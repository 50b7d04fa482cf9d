package moralis_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanhnp/moralis-gateway/internal/config"
	"github.com/thanhnp/moralis-gateway/internal/models"
	"github.com/thanhnp/moralis-gateway/internal/moralis"
)

var defaultParams = models.QueryOptions{}.Normalize()

func newClient(t *testing.T, server *httptest.Server, logger zerolog.Logger) *moralis.Client {
	t.Helper()
	return moralis.NewClientWithHTTP(server.Client(), config.MoralisConfig{
		APIKey:       "test-key",
		MaxBodyBytes: 1024,
	}, logger)
}

func TestClientForwardsHeaderAndQuery(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": []}`))
	}))
	defer server.Close()

	client := newClient(t, server, zerolog.Nop())
	params := models.Params{Chain: "eth", Format: "hex", Offset: 5, Limit: 10}

	body, err := client.Get(context.Background(), server.URL+"/0xABC/erc20", params)
	require.NoError(t, err)
	assert.Equal(t, `{"result": []}`, string(body))

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/0xABC/erc20", got.URL.Path)
	assert.Equal(t, "test-key", got.Header.Get(moralis.APIKeyHeader))
	assert.Equal(t, "eth", got.URL.Query().Get("chain"))
	assert.Equal(t, "hex", got.URL.Query().Get("format"))
	assert.Equal(t, "5", got.URL.Query().Get("offset"))
	assert.Equal(t, "10", got.URL.Query().Get("limit"))
}

func TestClientMapsFailuresToUpstreamError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		logWant string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"message":"boom"}`, logWant: "boom"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"Invalid key"}`, logWant: "Invalid key"},
		{name: "not json", status: http.StatusOK, body: `<html>gateway</html>`, logWant: "malformed"},
		{name: "invalid utf8", status: http.StatusOK, body: "\"\xff\xfe\"", logWant: "malformed"},
		{name: "too large", status: http.StatusOK, body: `"` + strings.Repeat("a", 2048) + `"`, logWant: "too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			var logs bytes.Buffer
			client := newClient(t, server, zerolog.New(&logs))

			body, err := client.Get(context.Background(), server.URL+"/0xABC/erc20", defaultParams)
			require.Error(t, err)
			assert.ErrorIs(t, err, moralis.ErrUpstream)
			assert.Nil(t, body)
			assert.Contains(t, logs.String(), tt.logWant)
		})
	}
}

func TestClientTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := moralis.NewClient(config.MoralisConfig{APIKey: "k", Timeout: time.Second}, zerolog.Nop())

	_, err := client.Get(context.Background(), url+"/0xABC/erc20", defaultParams)
	assert.ErrorIs(t, err, moralis.ErrUpstream)
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := moralis.NewClient(config.MoralisConfig{APIKey: "k", Timeout: 50 * time.Millisecond}, zerolog.Nop())

	start := time.Now()
	_, err := client.Get(context.Background(), server.URL+"/0xABC/erc20", defaultParams)
	assert.ErrorIs(t, err, moralis.ErrUpstream)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClientAttemptsOnce(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newClient(t, server, zerolog.Nop())

	_, err := client.Get(context.Background(), server.URL+"/0xABC/erc20", defaultParams)
	assert.ErrorIs(t, err, moralis.ErrUpstream)
	assert.Equal(t, 1, hits)
}

func TestOperationURL(t *testing.T) {
	const base = "https://deep-index.moralis.io/api/v2/"

	tests := []struct {
		op   moralis.Operation
		want string
	}{
		{op: moralis.WalletBalance, want: base + "0xABC/erc20"},
		{op: moralis.WalletTransfers, want: base + "0xABC/erc20/transfers"},
		{op: moralis.ContractTransfers, want: base + "erc20/0xABC/transfers"},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			got, err := tt.op.URL(base, "0xABC")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOperationURLUnknown(t *testing.T) {
	got, err := moralis.Operation("nft").URL("https://deep-index.moralis.io/api/v2/", "0xABC")

	assert.ErrorIs(t, err, moralis.ErrUnknownOperation)
	assert.Empty(t, got)
}
