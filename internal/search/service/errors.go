package service

import (
	"errors"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/forum-search-backend/internal/pkg/errors"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/response"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"go.uber.org/zap"
)

// handleError 统一错误处理，未识别的错误使用 fallback 错误码
func handleError(c *gin.Context, log *logger.Logger, err error, fallback int) {
	var (
		verr *types.ValidationError
		berr *types.BackendError
	)

	switch {
	case errors.As(err, &verr) && errors.Is(err, types.ErrInvalidIdentifier):
		response.ErrorWithCode(c, apperrors.ErrSearchInvalidIdentifier, verr.Message)
	case errors.As(err, &verr):
		response.ErrorWithCode(c, apperrors.ErrSearchMissingField, verr.Message)
	case errors.Is(err, types.ErrInsufficientPrivileges):
		response.ErrorWithCode(c, apperrors.ErrSearchInsufficientPrivileges)
	case errors.Is(err, types.ErrUnknownPreset):
		response.ErrorWithCode(c, apperrors.ErrSearchUnknownPreset, err.Error())
	case errors.As(err, &berr):
		log.WithContext(c.Request.Context()).Error("search backend failed",
			zap.String("backend", berr.Kind),
			zap.Error(err))
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrSearchBackend, berr.Err.Error()))
	case errors.Is(err, types.ErrUnsupportedBackend):
		log.WithContext(c.Request.Context()).Error("unsupported search backend", zap.Error(err))
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrSearchUnsupportedBackend))
	default:
		log.WithContext(c.Request.Context()).Error("search request failed", zap.Error(err))
		response.HandleError(c, apperrors.Wrap(err, fallback))
	}
}
