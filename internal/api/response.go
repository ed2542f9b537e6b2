package api

import (
	"net/http"

	"github.com/go-chi/render"
)

// ErrorBody is the JSON error envelope every handler answers with
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine code and the user-visible message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}
