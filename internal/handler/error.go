package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	ProductID int64  `json:"product_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func statusForKind(k model.ErrorKind) int {
	switch k {
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindConflict, model.KindInsufficientStock:
		return http.StatusConflict
	case model.KindInvalidInput:
		return http.StatusBadRequest
	case model.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// writeError answers domain errors directly. Anything else becomes an
// *echo.HTTPError carrying the cause, so the request logger records it and
// HTTPErrorHandler writes the body.
func writeError(c echo.Context, err error) error {
	var de *model.Error
	if errors.As(err, &de) && de.Kind != model.KindInternal {
		return c.JSON(statusForKind(de.Kind), ErrorResponse{
			Error:     de.Code,
			Message:   de.Message,
			ProductID: de.ProductID,
			RequestID: requestID(c),
		})
	}
	return &echo.HTTPError{
		Code:     http.StatusInternalServerError,
		Message:  "internal error",
		Internal: err,
	}
}

// HTTPErrorHandler replaces echo's default so unmatched routes, panics and
// internal failures share the API error body.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var de *model.Error
	if errors.As(err, &de) && de.Kind != model.KindInternal {
		_ = writeError(c, err)
		return
	}

	he, ok := err.(*echo.HTTPError)
	if !ok {
		he = &echo.HTTPError{Code: http.StatusInternalServerError, Message: "internal error", Internal: err}
	}

	code := model.ErrCodeInternal
	msg := "internal error"
	if he.Code < http.StatusInternalServerError {
		code = codeForStatus(he.Code)
		msg = fmt.Sprint(he.Message)
	}

	body := ErrorResponse{Error: code, Message: msg, RequestID: requestID(c)}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, body)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusUnauthorized:
		return model.ErrCodeUnauthenticated
	case http.StatusForbidden:
		return model.ErrCodeForbidden
	default:
		return model.ErrCodeInvalidInput
	}
}

func currentUserID(c echo.Context) (int64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, model.ErrUnauthenticated
	}
	return id, nil
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.InvalidInput("invalid " + name)
	}
	return id, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, model.InvalidInput("invalid " + name)
	}
	return n, nil
}

func queryInt64Ptr(c echo.Context, name string) (*int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, model.InvalidInput("invalid " + name)
	}
	return &n, nil
}

func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return model.InvalidInput("invalid body")
	}
	return nil
}
