// Package handlers implements the HTTP endpoints of the API server.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
	"github.com/turtacn/AutoGift-Intelligence/pkg/types/common"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeData wraps data in the success envelope.
func writeData[T any](w http.ResponseWriter, r *http.Request, statusCode int, data T) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = chimw.GetReqID(r.Context())
	writeJSON(w, statusCode, resp)
}

// writeAppError maps an error onto the error envelope.  Server-side failures
// are masked with the default message for their code.
func writeAppError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := errors.DefaultMessageForCode(code)
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && status < http.StatusInternalServerError {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error("request failed",
			logging.String("path", r.URL.Path),
			logging.String("code", code.String()),
			logging.Err(err))
	}

	resp := common.NewErrorResponse(code.String(), message)
	resp.RequestID = chimw.GetReqID(r.Context())
	writeJSON(w, status, resp)
}

// decodeJSON reads a bounded JSON body into dest.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return errors.Wrap(err, errors.CodeInvalidParam, "invalid request body")
	}
	return nil
}

//Personal.AI order the ending
