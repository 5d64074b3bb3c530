package controller

import (
	"snaketests_backend/internal/access"
	"snaketests_backend/internal/middleware"
	"snaketests_backend/internal/model"
	"snaketests_backend/internal/service"
	"snaketests_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// PostController 帖子页面接口
type PostController struct {
	PostService *service.PostService
	QuizService *service.QuizService
	Pagination  *util.Pagination
}

func NewPostController(postService *service.PostService, quizService *service.QuizService, pagination *util.Pagination) *PostController {
	return &PostController{
		PostService: postService,
		QuizService: quizService,
		Pagination:  pagination,
	}
}

// @Summary 帖子列表
// @Description 按发布时间倒序分页
// @Tags 帖子
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码" default(1)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /posts [get]
func (c *PostController) ListPosts(ctx *gin.Context) {
	page := util.ParsePage(ctx.Query("page"))
	perPage := c.Pagination.PostsPerPage()

	posts, total, err := c.PostService.List(page, perPage)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPageResponse(service.NewPostViews(posts), total, page, perPage))
}

// @Summary 发帖表单
// @Description 返回可选择的测验
// @Tags 帖子
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /posts/create [get]
func (c *PostController) CreateForm(ctx *gin.Context) {
	choices, err := c.QuizService.Choices()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"quizzes": choices})
}

// @Summary 发布帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param post body service.PostRequest true "帖子内容，quiz 为测验 UUID"
// @Success 200 {object} util.Response
// @Router /posts/create [post]
func (c *PostController) CreatePost(ctx *gin.Context) {
	var req service.PostRequest
	if !bindForm(ctx, &req) {
		return
	}

	post, err := c.PostService.Create(middleware.CurrentUser(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Message(ctx, "Thank you for the feedback", service.NewPostView(post))
}

// ownedPost 加载帖子并校验属主或超级用户
func (c *PostController) ownedPost(ctx *gin.Context) (*model.Post, bool) {
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

// @Summary 查看帖子
// @Tags 帖子
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "帖子UUID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /posts/{uuid} [get]
func (c *PostController) GetPost(ctx *gin.Context) {
	post, ok := c.ownedPost(ctx)
	if !ok {
		return
	}
	util.Success(ctx, service.NewPostView(post))
}

// @Summary 修改帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "帖子UUID"
// @Param post body service.PostRequest true "帖子内容"
// @Success 200 {object} util.Response
// @Router /posts/{uuid} [post]
func (c *PostController) UpdatePost(ctx *gin.Context) {
	post, ok := c.ownedPost(ctx)
	if !ok {
		return
	}

	var req service.PostRequest
	if !bindForm(ctx, &req) {
		return
	}
	if err := c.PostService.Update(post, req); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Message(ctx, "The post has been successfully updated", service.NewPostView(post))
}

// @Summary 删除帖子
// @Tags 帖子
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "帖子UUID"
// @Success 200 {object} util.Response
// @Router /posts/delete/{uuid} [post]
func (c *PostController) DeletePost(ctx *gin.Context) {
	post, ok := c.ownedPost(ctx)
	if !ok {
		return
	}
	if err := c.PostService.Delete(post); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Message(ctx, "The post has been successfully deleted", nil)
}
