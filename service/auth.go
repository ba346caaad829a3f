package service

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/wallet-backend/wallet-backend/configuration"
	"github.com/wallet-backend/wallet-backend/log"
	"github.com/wallet-backend/wallet-backend/utils"
)

// WBAuth exchanges client credentials for a bearer token at the identity
// provider's token endpoint.
type WBAuth struct {
	Issuer string
	Scope  string
	Client *http.Client
}

// NewAuthFromConfiguration reads the auth configuration section for the
// issuer and scope.
func NewAuthFromConfiguration() *WBAuth {
	a := &WBAuth{Client: http.DefaultClient}
	if c, ok := configuration.Manager.GetJSON("auth", "oauth"); ok {
		a.Issuer, _ = c[`issuer`].(string)
		a.Scope, _ = c[`scope`].(string)
	}
	return a
}

// IsAuth posts Basic-encoded client credentials with the configured scope
// and returns "token_type access_token" when the provider grants a token.
func (a *WBAuth) IsAuth(request utils.JSON) (token string, ok bool) {
	clientId := utils.ConvertToString(request["client_id"])
	clientSecret := utils.ConvertToString(request["client_secret"])

	endpoint := strings.TrimRight(a.Issuer, "/") + "/v1/token"
	basic := base64.StdEncoding.EncodeToString([]byte(clientId + ":" + clientSecret))
	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {a.Scope},
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := a.Client.Do(req)
	if err != nil {
		log.Log.Warnf("Token endpoint %s unreachable (%s)", endpoint, err.Error())
		return "", false
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err = json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	if payload.AccessToken == "" || payload.TokenType == "" {
		return "", false
	}

	return payload.TokenType + " " + payload.AccessToken, true
}

func (a *WBAuth) Name() string {
	return "auth"
}

func (a *WBAuth) Execute(request utils.JSON) WBServiceResponse {
	token, ok := a.IsAuth(request)
	if !ok {
		return Error("The given client credentials were not accepted.")
	}
	return Success("", token)
}
