package pims

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cytomine/pims/logger"
	"github.com/cytomine/pims/problem"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func notFound(path string) error {
	return &problem.Problem{
		StatusCode: http.StatusNotFound,
		Kind:       problem.ErrFilepathNotFound,
		Detail:     "No route for " + path,
	}
}

// writeError responds with the problem behind err.
func writeError(w http.ResponseWriter, err error) {
	status := problem.StatusCode(err)
	detail := err.Error()

	var p *problem.Problem
	if errors.As(err, &p) {
		detail = p.Detail
	}
	if status >= http.StatusInternalServerError {
		logger.Errorf("%v", err)
	} else {
		logger.Debugf("%v", err)
	}

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Del("ETag")
	h.Del("Cache-Control")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{status, detail})
}

// writeJSON responds with v.
func writeJSON(w http.ResponseWriter, v interface{}) {
	buffer, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buffer)
}
