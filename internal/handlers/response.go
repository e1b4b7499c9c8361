package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kattn/djgenetics/internal/logger"
	"github.com/kattn/djgenetics/internal/middleware"
	"github.com/kattn/djgenetics/pkg/midifile"
	"github.com/kattn/djgenetics/pkg/pianoroll"
	"go.uber.org/zap"
)

// Error codes returned in ErrorResponse.Code
const (
	CodeInvalidFile        = "invalid_file"
	CodeInvalidRoll        = "invalid_roll"
	CodeInvalidSampleRate  = "invalid_sample_rate"
	CodeInvalidParameter   = "invalid_parameter"
	CodeInstrumentNotFound = "instrument_not_found"
	CodeInternal           = "internal_error"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// respondError aborts the request with a structured error
func respondError(c *gin.Context, status int, code, message string) {
	fields := []zap.Field{
		zap.String("code", code),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
		logger.WithRequestID(middleware.RequestID(c)),
	}
	if status >= http.StatusInternalServerError {
		logger.Log.Error("API error", fields...)
	} else {
		logger.Log.Warn("API error", fields...)
	}

	middleware.RecordError(code, c.FullPath())
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message})
}

// respondWithError maps a conversion error to its status and code
func respondWithError(c *gin.Context, err error) {
	status, code := classify(err)
	_ = c.Error(err)
	respondError(c, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, midifile.ErrInstrumentIndex):
		return http.StatusNotFound, CodeInstrumentNotFound
	case errors.Is(err, midifile.ErrFileFormat):
		return http.StatusBadRequest, CodeInvalidFile
	case errors.Is(err, midifile.ErrInvalidProgram), errors.Is(err, midifile.ErrResolution):
		return http.StatusBadRequest, CodeInvalidParameter
	case errors.Is(err, pianoroll.ErrInvalidSampleRate),
		errors.Is(err, midifile.ErrSampleRateTooHigh):
		return http.StatusBadRequest, CodeInvalidSampleRate
	case isRollError(err):
		return http.StatusBadRequest, CodeInvalidRoll
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func isRollError(err error) bool {
	var rollErr pianoroll.Error
	return errors.As(err, &rollErr)
}
