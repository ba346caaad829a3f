package service

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-backend/wallet-backend/utils"
)

func TestAuthExchangesClientCredentials(t *testing.T) {
	var gotAuthorization string
	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotAuthorization = r.Header.Get("Authorization")
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type": "Bearer", "access_token": "abc123"}`))
	}))
	defer server.Close()

	a := &WBAuth{Issuer: server.URL, Scope: "wallet", Client: http.DefaultClient}
	response := a.Execute(utils.JSON{"client_id": "id", "client_secret": "secret"})

	require.Equal(t, "success", response.Status)
	assert.Equal(t, "Bearer abc123", response.Results)

	basic := base64.StdEncoding.EncodeToString([]byte("id:secret"))
	assert.Equal(t, "Basic "+basic, gotAuthorization)
	assert.Equal(t, []string{"client_credentials"}, gotForm["grant_type"])
	assert.Equal(t, []string{"wallet"}, gotForm["scope"])
}

func TestAuthRefusesIncompleteGrant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "invalid_client"}`))
	}))
	defer server.Close()

	a := &WBAuth{Issuer: server.URL, Client: http.DefaultClient}
	response := a.Execute(utils.JSON{"client_id": "id", "client_secret": "bad"})

	assert.Equal(t, "error", response.Status)
	assert.Equal(t, "The given client credentials were not accepted.", response.Message)
}
