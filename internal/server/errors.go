package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"codeberg.org/snonux/shabda/internal/audio"
	"codeberg.org/snonux/shabda/internal/llm"
	"codeberg.org/snonux/shabda/internal/sanitize"
	"codeberg.org/snonux/shabda/internal/session"
	"codeberg.org/snonux/shabda/internal/validate"
)

// Error kinds reported in error_kind
const (
	KindBadRequest      = "bad_request"
	KindNotFound        = "not_found"
	KindUpstream        = "upstream"
	KindParse           = "parse"
	KindEmptyResult     = "empty_result"
	KindFeatureDisabled = "feature_disabled"
	KindInternal        = "internal"
)

// badRequest marks errors caused by the client
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func badRequestf(format string, args ...interface{}) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

// classify maps an error onto an HTTP status and an error kind
func classify(err error) (int, string) {
	var (
		bad      *badRequest
		upstream *llm.UpstreamError
		parse    *sanitize.ParseError
		empty    *validate.EmptyResultError
	)

	switch {
	case errors.As(err, &bad), errors.Is(err, audio.ErrInvalidText):
		return http.StatusBadRequest, KindBadRequest
	case errors.Is(err, session.ErrNotFound), errors.Is(err, audio.ErrBadFileName):
		return http.StatusNotFound, KindNotFound
	case errors.Is(err, audio.ErrSpeechDisabled):
		return http.StatusServiceUnavailable, KindFeatureDisabled
	case errors.As(err, &upstream):
		return http.StatusBadGateway, KindUpstream
	case errors.As(err, &parse):
		return http.StatusBadGateway, KindParse
	case errors.As(err, &empty):
		return http.StatusUnprocessableEntity, KindEmptyResult
	}
	return http.StatusInternalServerError, KindInternal
}

type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorKind string `json:"error_kind"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, ErrorKind: kind})
}
