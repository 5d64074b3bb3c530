package controller

import (
	"fmt"
	"net/http"
	"snaketests_backend/internal/config"
	"snaketests_backend/internal/middleware"
	"snaketests_backend/internal/model"
	"snaketests_backend/internal/service"
	"snaketests_backend/internal/util"
	"snaketests_backend/pkg/logger"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	AuthService *service.AuthService
	UserService *service.UserService
	Cfg         *config.Config
}

func NewAuthController(authService *service.AuthService, userService *service.UserService, cfg *config.Config) *AuthController {
	return &AuthController{
		AuthService: authService,
		UserService: userService,
		Cfg:         cfg,
	}
}

func (c *AuthController) setSession(ctx *gin.Context, user *model.User, remember bool) error {
	token, ttl, err := c.AuthService.IssueSession(user, remember)
	if err != nil {
		return err
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.Cfg.Session.CookieName, token, int(ttl/time.Second), "/", "", c.Cfg.Session.SecureCookie, true)
	ctx.Header("X-Session-Token", token)
	return nil
}

func (c *AuthController) clearSession(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.Cfg.Session.CookieName, "", -1, "/", "", c.Cfg.Session.SecureCookie, true)
}

// @Summary 用户注册
// @Description 注册成功后自动登录，邮箱或用户名重复时返回字段错误
// @Tags 认证
// @Accept json
// @Produce json
// @Param user body service.RegisterRequest true "注册信息"
// @Success 200 {object} util.Response
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	if user := middleware.CurrentUser(ctx); user != nil {
		util.Message(ctx, "You are already logged in", c.UserService.Profile(user))
		return
	}

	var req service.RegisterRequest
	if !bindForm(ctx, &req) {
		return
	}

	user, err := c.AuthService.Register(req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	if err := c.setSession(ctx, user, false); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Message(ctx, fmt.Sprintf("Account for '%s' successfully created!", user.Username), c.UserService.Profile(user))
}

// @Summary 用户登录
// @Description 使用用户名或邮箱登录，remember 延长会话有效期
// @Tags 认证
// @Accept json
// @Produce json
// @Param credentials body service.LoginRequest true "登录凭据"
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	if user := middleware.CurrentUser(ctx); user != nil {
		util.Message(ctx, "You are already logged in.", c.UserService.Profile(user))
		return
	}

	var req service.LoginRequest
	if !bindForm(ctx, &req) {
		return
	}

	user, err := c.AuthService.Login(req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	if err := c.setSession(ctx, user, req.Remember); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Message(ctx, "Successful login", c.UserService.Profile(user))
}

// @Summary 退出登录
// @Tags 认证
// @Produce json
// @Success 200 {object} util.Response
// @Router /auth/logout [get]
func (c *AuthController) Logout(ctx *gin.Context) {
	claims := middleware.CurrentClaims(ctx)
	if claims == nil {
		util.Message(ctx, "You have not logged in yet.", nil)
		return
	}

	if err := c.AuthService.Logout(ctx.Request.Context(), claims); err != nil {
		logger.Log.Error("Failed to revoke session", zap.Uint("userId", claims.UserID), zap.Error(err))
	}
	c.clearSession(ctx)
	util.Message(ctx, "You have been logged out.", nil)
}

// @Summary 获取个人资料
// @Tags 认证
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /auth/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	util.Success(ctx, c.UserService.Profile(user))
}

// @Summary 修改个人资料
// @Description 支持 multipart 上传头像（jpg/jpeg/png），头像缩放到 200x200 以内
// @Tags 认证
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param first_name formData string false "名"
// @Param last_name formData string false "姓"
// @Param username formData string true "用户名"
// @Param email formData string true "邮箱"
// @Param image formData file false "头像"
// @Success 200 {object} util.Response
// @Router /auth/profile [post]
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)

	var req service.ProfileRequest
	if !bindForm(ctx, &req) {
		return
	}

	var avatar *service.AvatarUpload
	if fileHeader, err := ctx.FormFile("image"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			util.BadRequest(ctx, "Failed to read uploaded image")
			return
		}
		defer file.Close()
		avatar = &service.AvatarUpload{Filename: fileHeader.Filename, Reader: file}
	}

	if err := c.UserService.UpdateProfile(ctx.Request.Context(), user, req, avatar); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Message(ctx, "Account updated", c.UserService.Profile(user))
}

// @Summary 申请重置密码
// @Description 邮件异步发送，接口立即返回
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body service.ResetRequest true "邮箱"
// @Success 200 {object} util.Response
// @Router /auth/request_reset [post]
func (c *AuthController) RequestReset(ctx *gin.Context) {
	if middleware.CurrentUser(ctx) != nil {
		util.Message(ctx, "You are already logged in.", nil)
		return
	}

	var req service.ResetRequest
	if !bindForm(ctx, &req) {
		return
	}

	if err := c.AuthService.RequestPasswordReset(req); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Message(ctx, "Check your email address for further instructions.", nil)
}

// @Summary 校验重置链接
// @Tags 认证
// @Produce json
// @Param token path string true "重置令牌"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /auth/reset_password/{token} [get]
func (c *AuthController) CheckResetToken(ctx *gin.Context) {
	if middleware.CurrentUser(ctx) != nil {
		util.Message(ctx, "You are already logged in.", nil)
		return
	}

	user, _ := c.AuthService.VerifyResetToken(ctx.Request.Context(), ctx.Param("token"))
	if user == nil {
		util.HandleError(ctx, util.ErrInvalidResetLink)
		return
	}

	util.Success(ctx, gin.H{"username": user.Username})
}

// @Summary 重置密码
// @Tags 认证
// @Accept json
// @Produce json
// @Param token path string true "重置令牌"
// @Param request body service.ResetPasswordRequest true "新密码"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /auth/reset_password/{token} [post]
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	if middleware.CurrentUser(ctx) != nil {
		util.Message(ctx, "You are already logged in.", nil)
		return
	}

	var req service.ResetPasswordRequest
	if !bindForm(ctx, &req) {
		return
	}

	if _, err := c.AuthService.ResetPassword(ctx.Request.Context(), ctx.Param("token"), req); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Message(ctx, "Your password has been successfully updated", nil)
}
