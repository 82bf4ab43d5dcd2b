package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ARUMANDESU/validation"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/teachcorps/recruitment-backend/pkg/apperr"
	"gitlab.com/teachcorps/recruitment-backend/pkg/errorx"
	"gitlab.com/teachcorps/recruitment-backend/pkg/otelx"
)

// ErrorHandler renders any error as the API's JSON failure envelope,
// localized by the request's Accept-Language header. English and Polish
// are supported; anything else falls back to English.
type ErrorHandler struct {
	bundle *i18n.Bundle
	enloc  *i18n.Localizer
	plloc  *i18n.Localizer
}

func NewErrorHandler(bundle *i18n.Bundle) *ErrorHandler {
	return &ErrorHandler{
		bundle: bundle,
		enloc:  i18n.NewLocalizer(bundle, "en"),
		plloc:  i18n.NewLocalizer(bundle, "pl"),
	}
}

func (h *ErrorHandler) Localizer(lang string) *i18n.Localizer {
	if strings.HasPrefix(lang, "pl") {
		return h.plloc
	}
	return h.enloc
}

func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, span trace.Span, err error, desc string) {
	otelx.RecordSpanError(span, err, desc)
	slog.ErrorContext(r.Context(), desc, "error", err.Error())

	localizer := h.Localizer(r.Header.Get("Accept-Language"))

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		writeError(w, r,
			appErr.Code,
			errorx.Localize(localizer, appErr.I18nKey, appErr.Message, appErr.Details),
			appErr.HTTPStatusCode(),
		)
		return
	}

	var valErrs validation.Errors
	if errors.As(err, &valErrs) {
		var msg strings.Builder
		for field, fieldErr := range valErrs {
			if valErr, ok := fieldErr.(validation.Error); ok {
				msg.WriteString(fmt.Sprintf("%s: %s; ", field, localizeValidation(localizer, valErr)))
			} else {
				msg.WriteString(fmt.Sprintf("%s: %s; ", field, fieldErr.Error()))
			}
		}
		writeError(w, r, apperr.CodeInvalid, msg.String(), http.StatusBadRequest)
		return
	}

	var valErr validation.Error
	if errors.As(err, &valErr) {
		writeError(w, r, apperr.CodeInvalid, localizeValidation(localizer, valErr), http.StatusBadRequest)
		return
	}

	slog.ErrorContext(r.Context(), "Unhandled error", "error", err)
	writeError(w, r,
		apperr.CodeInternal,
		errorx.Localize(localizer, errorx.MsgInternal, "internal server error", nil),
		http.StatusInternalServerError,
	)
}

func localizeValidation(localizer *i18n.Localizer, valErr validation.Error) string {
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    valErr.Code(),
		TemplateData: valErr.Params(),
	})
	if err != nil {
		return valErr.Error()
	}
	return msg
}

func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	slog.ErrorContext(r.Context(), "Bad request", "message", message)
	writeError(w, r, apperr.CodeInvalid, message, http.StatusBadRequest)
}

func writeError(w http.ResponseWriter, r *http.Request,
	code apperr.Code,
	message string,
	status int,
) {
	response := Envelope{
		"code":    code,
		"message": message,
		"success": false,
	}

	err := WriteJSON(w, status, response, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to write error response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
