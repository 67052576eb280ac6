package apperror

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Response is the JSON body of every error response.
type Response struct {
	Detail string       `json:"detail"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Status maps an error to its HTTP status and client-facing body. Unknown
// errors collapse into a generic 500 body.
func Status(err error) (int, Response) {
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
		he *echo.HTTPError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, Response{Detail: "request validation failed", Errors: ve.Fields}
	case errors.As(err, &nf):
		return http.StatusNotFound, Response{Detail: nf.Error()}
	case errors.As(err, &ce):
		return http.StatusConflict, Response{Detail: ce.Detail}
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable, Response{Detail: "storage unavailable"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, Response{Detail: "request timed out"}
	case errors.As(err, &he):
		if he.Code >= http.StatusInternalServerError {
			return he.Code, Response{Detail: http.StatusText(he.Code)}
		}
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return he.Code, Response{Detail: msg}
	default:
		return http.StatusInternalServerError, Response{Detail: "internal server error"}
	}
}

// HTTPErrorHandler returns an echo.HTTPErrorHandler that renders errors as
// {"detail": ...} and logs server-side failures with their cause.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := Status(err)
		rid, _ := c.Get("request_id").(string)

		switch {
		case code >= http.StatusInternalServerError:
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", code).
				Msg("request failed")
		case code == http.StatusUnprocessableEntity:
			logger.Debug().Err(err).Str("request_id", rid).Msg("request rejected")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, body)
		}
		if werr != nil {
			logger.Error().Err(werr).Str("request_id", rid).Msg("failed to write error response")
		}
	}
}
