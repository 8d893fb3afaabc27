package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerror "github.com/household-hub/companion/internal/domain/error"
	"github.com/household-hub/companion/internal/integration/entrypoint/dto"
)

// handleShoppingError maps store errors to HTTP responses.
func handleShoppingError(ctx *gin.Context, err error) {
	code := ""
	var shopErr *domainerror.ShoppingError
	if errors.As(err, &shopErr) {
		code = string(shopErr.Code)
	}

	var failure *domainerror.RemoteFailure
	switch {
	case errors.Is(err, domainerror.ErrAuthRequired):
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: domainerror.Reason(err), Code: code})
	case errors.Is(err, domainerror.ErrPermissionDenied):
		ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Error: domainerror.Reason(err), Code: code})
	case errors.Is(err, domainerror.ErrValidationFailed):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: domainerror.Reason(err), Code: code})
	case errors.Is(err, domainerror.ErrNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: domainerror.Reason(err), Code: code})
	case errors.Is(err, domainerror.ErrBusy), errors.Is(err, domainerror.ErrNotLoaded), errors.Is(err, domainerror.ErrStoreClosed):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Error: domainerror.Reason(err), Code: code})
	case errors.As(err, &failure):
		status := http.StatusBadGateway
		if failure.IsTimeout() {
			status = http.StatusGatewayTimeout
		}
		ctx.JSON(status, dto.ErrorResponse{
			Error: failure.Reason,
			Code:  string(domainerror.ErrCodeRemoteFailure),
		})
	default:
		slog.Error("Unexpected shopping error", "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Internal server error",
		})
	}
}
