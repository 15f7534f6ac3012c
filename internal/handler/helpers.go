package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/prezentenergy/caasweb/internal/middleware"
	"github.com/prezentenergy/caasweb/internal/pkg/errcode"
	appErr "github.com/prezentenergy/caasweb/internal/pkg/errors"
	"github.com/prezentenergy/caasweb/internal/pkg/response"
)

const (
	msgAIUnavailable = "AI service unavailable"
	msgInternal      = "internal error"
	msgTryAgain      = "Something went wrong. Please try again."
)

func logRequestError(c *gin.Context, err error) {
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
}

// handleAPIError writes the {"error": ...} body used by the public site API.
func handleAPIError(c *gin.Context, err error) {
	var verr *appErr.ValidationError
	switch {
	case err == nil:
		return
	case errors.As(err, &verr):
		response.Fail(c, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, appErr.ErrServiceUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, msgAIUnavailable)
	case errors.Is(err, appErr.ErrDuplicateEmail):
		response.Fail(c, http.StatusConflict, flashMessage(err))
	case errors.Is(err, appErr.ErrInvalidCredentials), errors.Is(err, appErr.ErrUnauthorized):
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrCodeNotFound), errors.Is(err, appErr.ErrCodeMismatch), errors.Is(err, appErr.ErrInvalid):
		response.Fail(c, http.StatusBadRequest, flashMessage(err))
	case errors.Is(err, appErr.ErrNotFound):
		response.Fail(c, http.StatusNotFound, "not found")
	default:
		logRequestError(c, err)
		response.Fail(c, http.StatusInternalServerError, msgInternal)
	}
}

// handleEnvelopeError writes the {code,msg,data} envelope used by the account state endpoints.
func handleEnvelopeError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, appErr.Message(err, "invalid request"))
	default:
		logRequestError(c, err)
		response.Error(c, errcode.ErrInternal, msgInternal)
	}
}

// flashMessage is the text shown to a visitor after a failed auth form post.
func flashMessage(err error) string {
	switch {
	case errors.Is(err, appErr.ErrDuplicateEmail):
		return "An account with that email already exists."
	case errors.Is(err, appErr.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, appErr.ErrCodeNotFound):
		return "Code expired or not found. Please request a new one."
	case errors.Is(err, appErr.ErrCodeMismatch):
		return "Incorrect code. Please try again."
	case errors.Is(err, appErr.ErrUnauthorized):
		return "Please sign in to continue."
	}
	return appErr.Message(err, msgTryAgain)
}

// expectedAuthError reports errors that are part of normal form use and need no log line.
func expectedAuthError(err error) bool {
	for _, target := range []error{
		appErr.ErrInvalid, appErr.ErrDuplicateEmail, appErr.ErrInvalidCredentials,
		appErr.ErrCodeNotFound, appErr.ErrCodeMismatch, appErr.ErrUnauthorized,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
