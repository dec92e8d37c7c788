package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/AilenFranco43/Booked/errors"
	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func jsonResponse(object interface{}, writer http.ResponseWriter, status int) {
	writer.WriteHeader(status)
	if object == nil {
		return
	}
	if err := json.NewEncoder(writer).Encode(object); err != nil {
		http.Error(writer, errors.InternalServerError, http.StatusInternalServerError)
	}
}

// writeError is the single place where service errors become status codes.
func writeError(writer http.ResponseWriter, logger *logrus.Logger, err error) {
	var notFound *errors.NotFoundError
	var validation *errors.ValidationError

	switch {
	case stderrors.As(err, &notFound):
		jsonResponse(errorResponse{Code: "not_found", Message: notFound.Message}, writer, http.StatusNotFound)
	case stderrors.As(err, &validation):
		jsonResponse(errorResponse{Code: "validation_error", Message: validation.Message}, writer, http.StatusBadRequest)
	default:
		logger.WithError(err).Error("request failed")
		jsonResponse(errorResponse{Code: "internal_server_error", Message: errors.InternalServerError}, writer, http.StatusInternalServerError)
	}
}

func writeUnauthorized(writer http.ResponseWriter) {
	jsonResponse(errorResponse{Code: "unauthorized", Message: errors.UnauthorizedError}, writer, http.StatusUnauthorized)
}
