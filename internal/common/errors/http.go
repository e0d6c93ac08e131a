package errors

import (
	"encoding/json"
	"net/http"
)

// Response is the JSON body written for an AppError
type Response struct {
	Detail string `json:"detail"`
}

// ResponseBody renders the error as {"detail": "<message>"}
func (e *AppError) ResponseBody() []byte {
	body, err := json.Marshal(Response{Detail: e.Message})
	if err != nil {
		return []byte(`{"detail":"Internal server error"}`)
	}
	return body
}

// WriteHTTP writes err with its mapped status code
func WriteHTTP(w http.ResponseWriter, err *AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus())
	_, _ = w.Write(err.ResponseBody())
}
