package controller

import (
	"encoding/json"
	"errors"
	"snaketests_backend/internal/access"
	"snaketests_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindForm 页面表单：校验失败以字段错误内联返回
func bindForm(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBind(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			util.FormInvalid(ctx, util.FieldMessages(verrs))
			return false
		}
		bindError(ctx, err)
		return false
	}
	return true
}

// bindREST REST 请求体只接受 JSON
func bindREST(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		bindError(ctx, err)
		return false
	}
	return true
}

func bindError(ctx *gin.Context, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		util.HandleError(ctx, util.NewError(util.KindUnsupportedFieldType, "Unsupported media type. All fields must be string"))
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		util.BadRequest(ctx, util.FieldMessages(verrs).Error())
		return
	}
	util.BadRequest(ctx, "Bad request. "+err.Error())
}

// authorize 不满足规则时写出 401/403
func authorize(ctx *gin.Context, policy access.Policy) bool {
	if err := access.Check(access.FromContext(ctx), policy); err != nil {
		util.HandleError(ctx, err)
		return false
	}
	return true
}
