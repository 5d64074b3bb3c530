package controller

import (
	"snaketests_backend/internal/access"
	"snaketests_backend/internal/middleware"
	"snaketests_backend/internal/model"
	"snaketests_backend/internal/service"
	"snaketests_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserAPIController /api/users 资源
type UserAPIController struct {
	UserService *service.UserService
}

func NewUserAPIController(userService *service.UserService) *UserAPIController {
	return &UserAPIController{UserService: userService}
}

func (c *UserAPIController) profiles(users []model.User) []service.UserProfile {
	items := make([]service.UserProfile, 0, len(users))
	for i := range users {
		items = append(items, c.UserService.Profile(&users[i]))
	}
	return items
}

// @Summary 用户列表
// @Description 超级用户返回全部用户，普通用户只返回自己
// @Tags REST-用户
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/users/ [get]
func (c *UserAPIController) List(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	if !access.IsPrivileged(access.FromContext(ctx)) {
		util.Success(ctx, gin.H{"users": []service.UserProfile{c.UserService.Profile(user)}})
		return
	}

	users, err := c.UserService.ListAll()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"users": c.profiles(users)})
}

// @Summary 创建用户
// @Description 仅超级用户，所有字段必须为字符串
// @Tags REST-用户
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param user body service.UserFields true "用户字段"
// @Success 201 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 406 {object} util.Response
// @Failure 411 {object} util.Response
// @Failure 415 {object} util.Response
// @Router /api/users/ [post]
func (c *UserAPIController) Create(ctx *gin.Context) {
	if !authorize(ctx, access.Privileged) {
		return
	}

	var fields service.UserFields
	if !bindREST(ctx, &fields) {
		return
	}
	user, err := c.UserService.CreateFromREST(fields)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"user": c.UserService.Profile(user)})
}

// target 加载路径中的用户并校验本人或超级用户
func (c *UserAPIController) target(ctx *gin.Context) (*model.User, bool) {
	user, err := c.UserService.GetByUUID(ctx.Param("uuid"))
	if err != nil {
		util.HandleError(ctx, err)
		return nil, false
	}
	if !authorize(ctx, access.OwnerOrPrivileged(user)) {
		return nil, false
	}
	return user, true
}

// @Summary 获取用户
// @Tags REST-用户
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "用户UUID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/users/{uuid} [get]
func (c *UserAPIController) Get(ctx *gin.Context) {
	user, ok := c.target(ctx)
	if !ok {
		return
	}
	util.Success(ctx, gin.H{"user": c.UserService.Profile(user)})
}

// @Summary 替换用户资料
// @Description 必须提交 first_name、last_name、username、email，不能修改密码
// @Tags REST-用户
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "用户UUID"
// @Param user body service.UserFields true "用户字段"
// @Success 200 {object} util.Response
// @Router /api/users/{uuid} [put]
func (c *UserAPIController) Replace(ctx *gin.Context) {
	user, ok := c.target(ctx)
	if !ok {
		return
	}

	var fields service.UserFields
	if !bindREST(ctx, &fields) {
		return
	}
	if err := c.UserService.ReplaceFromREST(user, fields); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"user": c.UserService.Profile(user)})
}

// @Summary 修改用户资料
// @Description 至少提交一个字段，不能修改密码
// @Tags REST-用户
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "用户UUID"
// @Param user body service.UserFields true "用户字段"
// @Success 200 {object} util.Response
// @Router /api/users/{uuid} [patch]
func (c *UserAPIController) Patch(ctx *gin.Context) {
	user, ok := c.target(ctx)
	if !ok {
		return
	}

	var fields service.UserFields
	if !bindREST(ctx, &fields) {
		return
	}
	if err := c.UserService.PatchFromREST(user, fields); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"user": c.UserService.Profile(user)})
}

// @Summary 删除用户
// @Description 尚未开放，通过认证与权限检查后返回 501
// @Tags REST-用户
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "用户UUID"
// @Failure 501 {object} util.Response
// @Router /api/users/{uuid} [delete]
func (c *UserAPIController) Delete(ctx *gin.Context) {
	if _, ok := c.target(ctx); !ok {
		return
	}
	util.HandleError(ctx, util.ErrNotImplemented)
}
