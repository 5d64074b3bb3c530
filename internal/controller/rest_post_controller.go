package controller

import (
	"snaketests_backend/internal/access"
	"snaketests_backend/internal/middleware"
	"snaketests_backend/internal/model"
	"snaketests_backend/internal/service"
	"snaketests_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// PostAPIController /api/posts 资源
type PostAPIController struct {
	PostService *service.PostService
}

func NewPostAPIController(postService *service.PostService) *PostAPIController {
	return &PostAPIController{PostService: postService}
}

// @Summary 帖子列表
// @Description 超级用户返回全部帖子，普通用户只返回自己的
// @Tags REST-帖子
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/posts/ [get]
func (c *PostAPIController) List(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	posts, err := c.PostService.ListVisible(user.ID, access.IsPrivileged(access.FromContext(ctx)))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"posts": service.NewPostViews(posts)})
}

// @Summary 创建帖子
// @Description 尚未开放，非超级用户返回 403，超级用户返回 501
// @Tags REST-帖子
// @Produce json
// @Security ApiKeyAuth
// @Failure 403 {object} util.Response
// @Failure 501 {object} util.Response
// @Router /api/posts/ [post]
func (c *PostAPIController) Create(ctx *gin.Context) {
	if !authorize(ctx, access.Privileged) {
		return
	}
	util.HandleError(ctx, util.ErrNotImplemented)
}

func (c *PostAPIController) target(ctx *gin.Context) (*model.Post, bool) {
	post, err := c.PostService.GetByUUID(ctx.Param("uuid"))
	if err != nil {
		util.HandleError(ctx, err)
		return nil, false
	}
	if !authorize(ctx, access.OwnerOrPrivileged(post)) {
		return nil, false
	}
	return post, true
}

// @Summary 获取帖子
// @Tags REST-帖子
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "帖子UUID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/posts/{uuid} [get]
func (c *PostAPIController) Get(ctx *gin.Context) {
	post, ok := c.target(ctx)
	if !ok {
		return
	}
	util.Success(ctx, gin.H{"post": service.NewPostView(post)})
}

// @Summary 替换帖子
// @Description 必须同时提交 title 与 content
// @Tags REST-帖子
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "帖子UUID"
// @Param post body service.PostFields true "帖子字段"
// @Success 200 {object} util.Response
// @Router /api/posts/{uuid} [put]
func (c *PostAPIController) Replace(ctx *gin.Context) {
	post, ok := c.target(ctx)
	if !ok {
		return
	}

	var fields service.PostFields
	if !bindREST(ctx, &fields) {
		return
	}
	if err := c.PostService.Replace(post, fields); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"post": service.NewPostView(post)})
}

// @Summary 修改帖子
// @Tags REST-帖子
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "帖子UUID"
// @Param post body service.PostFields true "帖子字段"
// @Success 200 {object} util.Response
// @Router /api/posts/{uuid} [patch]
func (c *PostAPIController) Patch(ctx *gin.Context) {
	post, ok := c.target(ctx)
	if !ok {
		return
	}

	var fields service.PostFields
	if !bindREST(ctx, &fields) {
		return
	}
	if err := c.PostService.Patch(post, fields); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"post": service.NewPostView(post)})
}

// @Summary 删除帖子
// @Tags REST-帖子
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "帖子UUID"
// @Success 200 {object} util.Response
// @Router /api/posts/{uuid} [delete]
func (c *PostAPIController) Delete(ctx *gin.Context) {
	post, ok := c.target(ctx)
	if !ok {
		return
	}
	if err := c.PostService.Delete(post); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Message(ctx, "The post has been successfully deleted", nil)
}
