package controller

import (
	"snaketests_backend/internal/model"
	"snaketests_backend/internal/service"
	"snaketests_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AdminController 超级用户的管理接口：用户、测验目录与答题结果
type AdminController struct {
	UserService   *service.UserService
	QuizService   *service.QuizService
	ResultService *service.ResultService
}

func NewAdminController(userService *service.UserService, quizService *service.QuizService, resultService *service.ResultService) *AdminController {
	return &AdminController{
		UserService:   userService,
		QuizService:   quizService,
		ResultService: resultService,
	}
}

const adminPageSize = 20

type superuserRequest struct {
	IsSuperuser bool `json:"is_superuser"`
}

// @Summary 用户列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码" default(1)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	page := util.ParsePage(ctx.Query("page"))
	users, total, err := c.UserService.List(page, adminPageSize)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	items := make([]service.UserProfile, 0, len(users))
	for i := range users {
		items = append(items, c.UserService.Profile(&users[i]))
	}
	util.Success(ctx, util.NewPageResponse(items, total, page, adminPageSize))
}

// @Summary 设置超级用户
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "用户UUID"
// @Param request body superuserRequest true "是否为超级用户"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{uuid}/superuser [put]
func (c *AdminController) SetSuperuser(ctx *gin.Context) {
	var req superuserRequest
	if !bindREST(ctx, &req) {
		return
	}
	user, err := c.UserService.SetSuperuser(ctx.Param("uuid"), req.IsSuperuser)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, c.UserService.Profile(user))
}

// @Summary 删除用户
// @Description 答题记录随用户删除，帖子保留
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "用户UUID"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{uuid} [delete]
func (c *AdminController) DeleteUser(ctx *gin.Context) {
	if err := c.UserService.Delete(ctx.Param("uuid")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Message(ctx, "User deleted", nil)
}

// @Summary 创建测验
// @Description 可同时提交题目与选项，位置必须为 1..N
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quiz body service.QuizRequest true "测验"
// @Success 201 {object} util.Response
// @Router /api/admin/quizzes [post]
func (c *AdminController) CreateQuiz(ctx *gin.Context) {
	var req service.QuizRequest
	if !bindREST(ctx, &req) {
		return
	}
	quiz, err := c.QuizService.CreateQuiz(req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, newAdminQuiz(quiz))
}

// @Summary 测验详情（含正确答案）
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "测验UUID"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{uuid} [get]
func (c *AdminController) GetQuiz(ctx *gin.Context) {
	quiz, err := c.QuizService.GetQuizWithQuestions(ctx.Param("uuid"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, newAdminQuiz(quiz))
}

// @Summary 修改测验
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "测验UUID"
// @Param quiz body service.QuizUpdateRequest true "修改的字段"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{uuid} [patch]
func (c *AdminController) UpdateQuiz(ctx *gin.Context) {
	var req service.QuizUpdateRequest
	if !bindREST(ctx, &req) {
		return
	}
	quiz, err := c.QuizService.UpdateQuiz(ctx.Param("uuid"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, newAdminQuiz(quiz))
}

// @Summary 删除测验
// @Description 级联删除题目、选项、答题结果和帖子
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "测验UUID"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{uuid} [delete]
func (c *AdminController) DeleteQuiz(ctx *gin.Context) {
	if err := c.QuizService.DeleteQuiz(ctx.Param("uuid")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Message(ctx, "Quiz deleted", nil)
}

// @Summary 添加题目
// @Description position 为空时追加到末尾
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "测验UUID"
// @Param question body service.QuestionRequest true "题目"
// @Success 201 {object} util.Response
// @Router /api/admin/quizzes/{uuid}/questions [post]
func (c *AdminController) AddQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if !bindREST(ctx, &req) {
		return
	}
	question, err := c.QuizService.AddQuestion(ctx.Param("uuid"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, newAdminQuestion(question))
}

// @Summary 移动题目
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "测验UUID"
// @Param id path int true "题目ID"
// @Param request body service.MoveQuestionRequest true "新位置"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{uuid}/questions/{id}/position [put]
func (c *AdminController) MoveQuestion(ctx *gin.Context) {
	var req service.MoveQuestionRequest
	if !bindREST(ctx, &req) {
		return
	}
	question, err := c.QuizService.MoveQuestion(ctx.Param("uuid"), util.MustParseUint(ctx.Param("id")), req.Position)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, newAdminQuestion(question))
}

// @Summary 替换选项
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "测验UUID"
// @Param id path int true "题目ID"
// @Param request body service.OptionsRequest true "选项"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{uuid}/questions/{id}/options [put]
func (c *AdminController) SetOptions(ctx *gin.Context) {
	var req service.OptionsRequest
	if !bindREST(ctx, &req) {
		return
	}
	question, err := c.QuizService.SetOptions(ctx.Param("uuid"), util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, newAdminQuestion(question))
}

// @Summary 删除题目
// @Description 后续题目位置前移
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param uuid path string true "测验UUID"
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{uuid}/questions/{id} [delete]
func (c *AdminController) RemoveQuestion(ctx *gin.Context) {
	if err := c.QuizService.RemoveQuestion(ctx.Param("uuid"), util.MustParseUint(ctx.Param("id"))); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Message(ctx, "Question removed", nil)
}

// @Summary 答题结果列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码" default(1)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/results [get]
func (c *AdminController) ListResults(ctx *gin.Context) {
	page := util.ParsePage(ctx.Query("page"))
	items, total, err := c.ResultService.List(page, adminPageSize)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPageResponse(items, total, page, adminPageSize))
}

// 管理视图暴露选项的正确性，答题接口不会返回这些字段
type adminOption struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type adminQuestion struct {
	ID       uint          `json:"id"`
	Position int           `json:"position"`
	Text     string        `json:"text"`
	Options  []adminOption `json:"options"`
}

type adminQuiz struct {
	UUID        string          `json:"uuid"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Level       string          `json:"level"`
	Image       string          `json:"image"`
	Questions   []adminQuestion `json:"questions"`
}

func newAdminQuestion(q *model.Question) adminQuestion {
	view := adminQuestion{
		ID:       q.ID,
		Position: q.Position,
		Text:     q.Text,
		Options:  make([]adminOption, 0, len(q.Options)),
	}
	for _, o := range q.Options {
		view.Options = append(view.Options, adminOption{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return view
}

func newAdminQuiz(quiz *model.Quiz) adminQuiz {
	view := adminQuiz{
		UUID:        quiz.UUID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Level:       string(quiz.Level),
		Image:       quiz.Image,
		Questions:   make([]adminQuestion, 0, len(quiz.Questions)),
	}
	for i := range quiz.Questions {
		view.Questions = append(view.Questions, newAdminQuestion(&quiz.Questions[i]))
	}
	return view
}
