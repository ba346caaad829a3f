package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/wallet-backend/wallet-backend/database/query"
	"github.com/wallet-backend/wallet-backend/log"
	"github.com/wallet-backend/wallet-backend/utils"
)

// API versions accepted on the request path.
var apiVersions = []string{"v1.0"}

// Request types accepted on the request path.
var apiRequestTypes = []string{"get", "post", "put", "delete", "service"}

// wbAPIRequest carries one request through validation, dispatch and the
// response envelope. Every response, failed validation included, goes out as
// a JSON document with status, message and results.
type wbAPIRequest struct {
	api     *WBAPI
	writer  http.ResponseWriter
	request *http.Request

	version     string
	requestType string
	object      string
	params      utils.JSON
	response    utils.JSON
	fileName    string
	pretty      bool
}

func newAPIRequest(a *WBAPI, w http.ResponseWriter, r *http.Request) *wbAPIRequest {
	ar := &wbAPIRequest{
		api:     a,
		writer:  w,
		request: r,
		params:  utils.JSON{},
		response: utils.JSON{
			"status":  "error",
			"message": "",
			"results": []any{},
		},
		fileName: "error",
	}

	segments := []string{}
	for _, s := range strings.Split(r.URL.Path, "/") {
		if strings.TrimSpace(s) != "" {
			segments = append(segments, s)
		}
	}
	// Path shape: api/{version}/{type}/{object}.
	if len(segments) > 1 {
		ar.version = strings.ToLower(strings.TrimSpace(segments[1]))
	}
	if len(segments) > 2 {
		ar.requestType = strings.ToLower(strings.TrimSpace(segments[2]))
	}
	if len(segments) > 3 {
		ar.object = strings.ToLower(strings.TrimSpace(segments[3]))
	}

	ar.mergeParams()
	ar.pretty = toBool(ar.params["pretty"])
	return ar
}

// mergeParams folds the query string and the JSON request body into one
// parameter map; body keys win over query-string keys.
func (ar *wbAPIRequest) mergeParams() {
	for key, values := range ar.request.URL.Query() {
		if len(values) == 1 {
			ar.params[strings.ToLower(key)] = values[0]
		} else if len(values) > 1 {
			ar.params[strings.ToLower(key)] = values
		}
	}

	if ar.request.Body == nil {
		return
	}
	body, err := io.ReadAll(ar.request.Body)
	if err != nil || len(body) == 0 {
		return
	}
	bodyParams := utils.JSON{}
	if err = json.Unmarshal(body, &bodyParams); err != nil {
		log.Log.Warnf("Request body of %s is not valid JSON (%s)", ar.request.URL.Path, err.Error())
		return
	}
	ar.params = utils.ArrayMerge(ar.params, utils.ArrayKeyHandler(bodyParams))
}

func (ar *wbAPIRequest) process() {
	if ar.requestType == "get" {
		ar.response["fields"] = []string{}
		ar.response["total"] = int64(0)
		ar.response["items"] = 0
	}

	switch {
	case ar.version == "":
		ar.response["message"] = "API version not found."
	case !utils.StringSliceContains(apiVersions, ar.version):
		ar.response["message"] = "The given API version is invalid."
	case ar.requestType == "":
		ar.response["message"] = "Request type not found."
	case !utils.StringSliceContains(apiRequestTypes, ar.requestType):
		ar.response["message"] = "The given request type is invalid."
	case ar.object == "":
		ar.response["message"] = "The request object was not given."
	default:
		ar.fileName = ar.object
		ar.dispatch()
	}

	ar.write()
}

func (ar *wbAPIRequest) dispatch() {
	db := ar.api.Database()
	db.SetDebugMode(toBool(ar.params["debug"]))

	switch ar.requestType {
	case "get":
		cfg := selectConfigFromParams(ar.object, ar.params)
		object := query.NewSelect(db, cfg)
		if ar.failOnError(object.HasError(), object.GetError()) {
			return
		}

		fields := []string{}
		for name := range object.GetColumnsMeta() {
			fields = append(fields, name)
		}
		ar.response["fields"] = fields
		ar.response["total"] = object.GetTotalRowsCount()
		ar.response["results"] = object.GetAllResults()
		ar.response["items"] = object.GetRowsCount()
	case "post":
		cfg := insertConfigFromParams(ar.object, ar.params)
		object := query.NewInsert(db, cfg)
		ar.response["last_insert_id"] = object.GetLastInsertID()
		if ar.failOnError(object.HasError(), object.GetError()) {
			return
		}
	case "put":
		cfg := updateConfigFromParams(ar.object, ar.params)
		object := query.NewUpdate(db, cfg)
		if ar.failOnError(object.HasError(), object.GetError()) {
			return
		}
	case "delete":
		cfg := deleteConfigFromParams(ar.object, ar.params)
		object := query.NewDelete(db, cfg)
		if ar.failOnError(object.HasError(), object.GetError()) {
			return
		}
	case "service":
		s, ok := ar.api.Services[ar.object]
		if !ok {
			ar.response["message"] = "Service not found."
			return
		}
		result := s.Execute(ar.params)
		ar.response["status"] = result.Status
		ar.response["message"] = result.Message
		ar.response["results"] = result.Results
		return
	}

	ar.response["status"] = "success"
}

// failOnError moves the builder error into the envelope and reports whether
// the dispatch must stop.
func (ar *wbAPIRequest) failOnError(hasError bool, err error) bool {
	if !hasError {
		return false
	}
	message := "Unknown error."
	if err != nil {
		message = err.Error()
	}
	ar.response["message"] = message
	return true
}

func (ar *wbAPIRequest) write() {
	var raw []byte
	var err error
	if ar.pretty {
		raw, err = json.MarshalIndent(ar.response, "", "\t")
	} else {
		raw, err = json.Marshal(ar.response)
	}
	if err != nil {
		raw, _ = json.Marshal(utils.JSON{
			"status":  "error",
			"message": err.Error(),
			"results": []any{},
		})
	}

	ar.writer.Header().Set("Content-Type", "application/json")
	ar.writer.Header().Set("Content-Disposition", `inline; filename="`+ar.fileName+`.json"`)
	ar.writer.WriteHeader(http.StatusOK)
	_, _ = ar.writer.Write(raw)
}
