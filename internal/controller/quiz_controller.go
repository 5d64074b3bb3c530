package controller

import (
	"snaketests_backend/internal/access"
	"snaketests_backend/internal/middleware"
	"snaketests_backend/internal/model"
	"snaketests_backend/internal/service"
	"snaketests_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// QuizController 测验页面与答题流程
type QuizController struct {
	QuizService   *service.QuizService
	ResultService *service.ResultService
	Pagination    *util.Pagination
}

func NewQuizController(quizService *service.QuizService, resultService *service.ResultService, pagination *util.Pagination) *QuizController {
	return &QuizController{
		QuizService:   quizService,
		ResultService: resultService,
		Pagination:    pagination,
	}
}

// @Summary 测验列表
// @Tags 测验
// @Produce json
// @Param page query int false "页码" default(1)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /quizzes/ [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	page := util.ParsePage(ctx.Query("page"))
	perPage := c.Pagination.QuizzesPerPage()

	items, total, err := c.QuizService.ListQuizzes(page, perPage)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPageResponse(items, total, page, perPage))
}

// @Summary 测验详情
// @Description 包含题目数量、当前用户最好成绩和未完成的尝试
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "测验UUID"
// @Success 200 {object} util.Response{data=service.QuizDetail}
// @Failure 404 {object} util.Response
// @Router /quizzes/{uuid} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	detail, err := c.QuizService.Detail(ctx.Param("uuid"), user.ID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 开始答题
// @Description 每次调用都会新建一次尝试，返回结果与第一题
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "测验UUID"
// @Success 201 {object} util.Response
// @Failure 406 {object} util.Response
// @Router /quizzes/{uuid}/results/ [post]
func (c *QuizController) StartAttempt(ctx *gin.Context) {
	quiz, err := c.QuizService.GetQuiz(ctx.Param("uuid"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	user := middleware.CurrentUser(ctx)
	result, err := c.ResultService.StartAttempt(ctx.Request.Context(), user.ID, quiz)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	summary, err := c.ResultService.Summary(result)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	question, err := c.ResultService.NextQuestion(ctx.Request.Context(), result)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"result": summary, "question": question})
}

// ownedResult 结果必须属于路径中的测验，且调用者是属主或超级用户
func (c *QuizController) ownedResult(ctx *gin.Context) (*model.Result, bool) {
	quiz, err := c.QuizService.GetQuiz(ctx.Param("uuid"))
	if err != nil {
		util.HandleError(ctx, err)
		return nil, false
	}
	result, err := c.ResultService.GetResult(quiz, ctx.Param("result_uuid"))
	if err != nil {
		util.HandleError(ctx, err)
		return nil, false
	}
	if !authorize(ctx, access.OwnerOrPrivileged(result)) {
		return nil, false
	}
	return result, true
}

// @Summary 当前题目
// @Description 已完成的尝试返回结果概要
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "测验UUID"
// @Param result_uuid path string true "结果UUID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /quizzes/{uuid}/results/{result_uuid}/questions/ [get]
func (c *QuizController) CurrentQuestion(ctx *gin.Context) {
	result, ok := c.ownedResult(ctx)
	if !ok {
		return
	}

	summary, err := c.ResultService.Summary(result)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if result.Finished() {
		util.Message(ctx, "The quiz is finished", gin.H{"result": summary})
		return
	}

	question, err := c.ResultService.NextQuestion(ctx.Request.Context(), result)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"result": summary, "question": question})
}

// @Summary 提交答案
// @Description 按选项 ID 判分，已完成的尝试返回 409
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "测验UUID"
// @Param result_uuid path string true "结果UUID"
// @Param answer body service.SubmitAnswerRequest true "所选选项"
// @Success 200 {object} util.Response
// @Failure 406 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /quizzes/{uuid}/results/{result_uuid}/questions/ [post]
func (c *QuizController) SubmitAnswer(ctx *gin.Context) {
	result, ok := c.ownedResult(ctx)
	if !ok {
		return
	}

	var req service.SubmitAnswerRequest
	if !bindForm(ctx, &req) {
		return
	}

	outcome, err := c.ResultService.SubmitAnswer(ctx.Request.Context(), result, req.OptionID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	data := gin.H{"outcome": outcome}
	if !outcome.Finished {
		question, err := c.ResultService.NextQuestion(ctx.Request.Context(), result)
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		data["question"] = question
	}
	util.Success(ctx, data)
}

// @Summary 结果详情
// @Description 正确与错误数量、百分比以及逐题回放
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "测验UUID"
// @Param result_uuid path string true "结果UUID"
// @Success 200 {object} util.Response{data=service.ResultDetail}
// @Router /quizzes/{uuid}/results/{result_uuid}/details [get]
func (c *QuizController) ResultDetails(ctx *gin.Context) {
	result, ok := c.ownedResult(ctx)
	if !ok {
		return
	}
	detail, err := c.ResultService.Detail(result)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}
