package util

import (
	"errors"
	"net/http"
	"snaketests_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  FormErrors  `json:"errors,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List    interface{} `json:"list"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
	HasNext bool        `json:"hasNext"`
}

func NewPageResponse(list interface{}, total int64, page, limit int) PageResponse {
	return PageResponse{
		List:    list,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasNext: int64(page*limit) < total,
	}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// Message 成功响应，附带提示信息
func Message(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// FormInvalid 表单校验失败，字段错误内联返回
func FormInvalid(c *gin.Context, errs FormErrors) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "form invalid",
		Errors:  errs,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, ErrAuthenticationRequired.Message)
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, ErrForbidden.Message)
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
	)
	InternalServerError(c)
}

// HandleError 按错误类别写出响应
func HandleError(c *gin.Context, err error) {
	var formErrs FormErrors
	if errors.As(err, &formErrs) {
		FormInvalid(c, formErrs)
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		Error(c, appErr.Kind.Status(), appErr.Message)
		return
	}

	LogInternalError(c, err)
}
