package docserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/teamboardhq/teamboard/internal/config"
)

func TestCommandClientDropCache(t *testing.T) {
	var got dropCommand
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, commandPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"error":0}`))
	}))
	defer server.Close()

	client := NewCommandClient(config.DocServerConfig{URL: server.URL, Secret: "shared-secret"})
	require.NoError(t, client.DropCache(context.Background(), "12_1700000000123"))
	require.Equal(t, "drop", got.C)
	require.Equal(t, "12_1700000000123", got.Key)
	require.NotEmpty(t, got.Token)

	claims := jwtlib.MapClaims{}
	parsed, err := jwtlib.ParseWithClaims(got.Token, claims, func(token *jwtlib.Token) (interface{}, error) {
		return []byte("shared-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	require.Equal(t, "drop", claims["c"])
	require.Equal(t, "12_1700000000123", claims["key"])
}

func TestCommandClientDropCacheFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewCommandClient(config.DocServerConfig{URL: server.URL, Secret: "shared-secret"})
	require.Error(t, client.DropCache(context.Background(), "1_1"))
}
