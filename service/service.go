package service

import (
	"github.com/wallet-backend/wallet-backend/utils"
)

// WBServiceResponse is the envelope every service hands back to the API
// layer. Failures always carry a message.
type WBServiceResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Results any    `json:"results"`
}

// WBService is one named service object reachable through the API's service
// request type.
type WBService interface {
	Name() string
	Execute(request utils.JSON) WBServiceResponse
}

func Error(message string) WBServiceResponse {
	return WBServiceResponse{Status: "error", Message: message, Results: []any{}}
}

func Success(message string, results any) WBServiceResponse {
	if results == nil {
		results = []any{}
	}
	return WBServiceResponse{Status: "success", Message: message, Results: results}
}
