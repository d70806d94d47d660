package listener

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/bvcollective/sheetbridge/core"
)

func listenerError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func listenerWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	if source == nil {
		return listenerError(message, category, code, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func listenerBadInput(message string, metadata map[string]any) error {
	return listenerError(
		message,
		goerrors.CategoryBadInput,
		http.StatusBadRequest,
		core.BridgeErrorBadInput,
		metadata,
	)
}

func listenerInternal(message string, metadata map[string]any) error {
	return listenerError(
		message,
		goerrors.CategoryInternal,
		http.StatusInternalServerError,
		core.BridgeErrorInternal,
		metadata,
	)
}
