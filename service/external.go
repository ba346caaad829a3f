package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/wallet-backend/wallet-backend/log"
)

// WBCallResult is the explicit outcome of one external collaborator call.
// Failure is a value, not a panic: callers branch on OK and read Message.
type WBCallResult struct {
	OK      bool
	Message string
	Err     error
}

// WBExternalCaller is an external HTTP collaborator answering a single
// status-message JSON document.
type WBExternalCaller interface {
	Call(ctx context.Context) WBCallResult
}

// WBHTTPMessageEndpoint calls a plain HTTP GET endpoint returning
// {"message": "..."} and reports the message verbatim.
type WBHTTPMessageEndpoint struct {
	URL    string
	Client *http.Client
}

func NewHTTPMessageEndpoint(url string) *WBHTTPMessageEndpoint {
	return &WBHTTPMessageEndpoint{URL: url, Client: http.DefaultClient}
}

func (e *WBHTTPMessageEndpoint) Call(ctx context.Context) (result WBCallResult) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.URL, nil)
	if err != nil {
		return WBCallResult{Err: err}
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		log.Log.Warnf("External endpoint %s unreachable (%s)", e.URL, err.Error())
		return WBCallResult{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return WBCallResult{Err: err}
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err = json.Unmarshal(body, &payload); err != nil {
		log.Log.Warnf("External endpoint %s answered malformed JSON (%s)", e.URL, err.Error())
		return WBCallResult{Err: err}
	}

	return WBCallResult{OK: true, Message: payload.Message}
}
