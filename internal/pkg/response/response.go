package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/forum-search-backend/internal/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`   // 对外错误描述
	Message string      `json:"message,omitempty"` // 附加信息（如驱动错误）
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessWithMessage 带消息的成功响应（200）
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Error 错误响应
func Error(c *gin.Context, httpStatus int, message string) {
	c.AbortWithStatusJSON(httpStatus, Response{Success: false, Error: message})
}

// BadRequest 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401 错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 403 错误
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// HandleError 统一错误处理（使用AppError）
//
// 4xx：error 字段优先使用详情（如 "table name is required"），没有详情时使用错误码消息；
// 5xx：error 字段为错误码消息，底层错误放在 message 字段。
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := apperrors.ExtractCode(err)
	details := apperrors.GetDetails(err)
	resp := Response{Success: false}

	if apperrors.IsClientError(code) {
		resp.Error = apperrors.GetMessage(code)
		if details != "" {
			resp.Error = details
		}
	} else {
		resp.Error = apperrors.GetMessage(code)
		resp.Message = details
	}

	c.AbortWithStatusJSON(apperrors.GetHTTPStatus(code), resp)
}

// ErrorWithCode 使用错误码的错误响应
func ErrorWithCode(c *gin.Context, code int, details ...string) {
	HandleError(c, apperrors.New(code, details...))
}
