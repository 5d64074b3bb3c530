package controller

import (
	"snaketests_backend/internal/middleware"
	"snaketests_backend/internal/service"
	"snaketests_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type HomeController struct {
	PostService *service.PostService
	QuizService *service.QuizService
	UserService *service.UserService
	Pagination  *util.Pagination
}

func NewHomeController(postService *service.PostService, quizService *service.QuizService, userService *service.UserService, pagination *util.Pagination) *HomeController {
	return &HomeController{
		PostService: postService,
		QuizService: quizService,
		UserService: userService,
		Pagination:  pagination,
	}
}

// @Summary 首页
// @Description 最新帖子与最新测验，登录后附带当前用户资料
// @Tags 首页
// @Produce json
// @Success 200 {object} util.Response
// @Router / [get]
func (c *HomeController) Home(ctx *gin.Context) {
	posts, _, err := c.PostService.List(1, c.Pagination.PostsPerPage())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	quizzes, _, err := c.QuizService.ListQuizzes(1, c.Pagination.QuizzesPerPage())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	data := gin.H{
		"posts":   service.NewPostViews(posts),
		"quizzes": quizzes,
	}
	if user := middleware.CurrentUser(ctx); user != nil {
		data["user"] = c.UserService.Profile(user)
	}
	util.Success(ctx, data)
}
