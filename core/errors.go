package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	BridgeErrorBadInput       = "BRIDGE_BAD_INPUT"
	BridgeErrorUnauthorized   = "BRIDGE_UNAUTHORIZED"
	BridgeErrorNotFound       = "BRIDGE_NOT_FOUND"
	BridgeErrorUpstreamFailed = "BRIDGE_UPSTREAM_FAILED"
	BridgeErrorInternal       = "BRIDGE_INTERNAL_ERROR"
)

func bridgeErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureBridgeErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "signature"):
		return newBridgeError(err.Error(), goerrors.CategoryAuth, BridgeErrorUnauthorized)
	case strings.Contains(msg, "not found"), strings.Contains(msg, "no project metadata"):
		return newBridgeError(err.Error(), goerrors.CategoryNotFound, BridgeErrorNotFound)
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "upstream"), strings.Contains(msg, "status 5"):
		return newBridgeError(err.Error(), goerrors.CategoryExternal, BridgeErrorUpstreamFailed)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "malformed"):
		return newBridgeError(err.Error(), goerrors.CategoryBadInput, BridgeErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureBridgeErrorEnvelope(mapped)
}

func newBridgeError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureBridgeErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureBridgeErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = bridgeHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultBridgeTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultBridgeTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return BridgeErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return BridgeErrorUnauthorized
	case goerrors.CategoryNotFound:
		return BridgeErrorNotFound
	case goerrors.CategoryExternal, goerrors.CategoryOperation:
		return BridgeErrorUpstreamFailed
	default:
		return BridgeErrorInternal
	}
}

func bridgeHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
