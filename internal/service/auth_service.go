package service

import (
	"context"
	"fmt"
	"snaketests_backend/internal/config"
	"snaketests_backend/internal/model"
	"snaketests_backend/internal/repository"
	"snaketests_backend/internal/util"
	"snaketests_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgEmailTaken    = "A user with such an email already exists"
	msgUsernameTaken = "A user with such a username already exists"
	msgEmailUnknown  = "Such address does not exist."
)

type RegisterRequest struct {
	FirstName   string `form:"first_name" json:"first_name" binding:"omitempty,min=2,max=20"`
	LastName    string `form:"last_name" json:"last_name" binding:"omitempty,min=2,max=40"`
	Username    string `form:"username" json:"username" binding:"required,min=2,max=20,username"`
	Email       string `form:"email" json:"email" binding:"required,max=30,email"`
	Password    string `form:"password" json:"password" binding:"required,min=8"`
	ConfirmPass string `form:"confirm_pass" json:"confirm_pass" binding:"required,eqfield=Password"`
}

type LoginRequest struct {
	Login    string `form:"login" json:"login" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
	Remember bool   `form:"remember" json:"remember"`
}

type ResetRequest struct {
	Email string `form:"email" json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password    string `form:"password" json:"password" binding:"required,min=8"`
	ConfirmPass string `form:"confirm_pass" json:"confirm_pass" binding:"required,eqfield=Password"`
}

type AuthService struct {
	UserRepo *repository.UserRepository
	Sessions *repository.SessionRepository
	Mail     *MailQueue
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, sessions *repository.SessionRepository, mail *MailQueue, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Sessions: sessions,
		Mail:     mail,
		Cfg:      cfg,
	}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// uniquenessErrors 邮箱或用户名已被其他用户占用
func (s *AuthService) uniquenessErrors(email, username string, excludeID uint) (util.FormErrors, error) {
	errs := util.FormErrors{}
	taken, err := s.UserRepo.EmailTaken(email, excludeID)
	if err != nil {
		return nil, err
	}
	if taken {
		errs.Add("email", msgEmailTaken)
	}
	taken, err = s.UserRepo.UsernameTaken(username, excludeID)
	if err != nil {
		return nil, err
	}
	if taken {
		errs.Add("username", msgUsernameTaken)
	}
	return errs, nil
}

func (s *AuthService) Register(req RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	errs, err := s.uniquenessErrors(email, req.Username, 0)
	if err != nil {
		return nil, err
	}
	if errs.Any() {
		return nil, errs
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.UserRepo.Create(user); err != nil {
		if repository.IsDuplicateKey(err) {
			// 并发注册在插入时撞上唯一约束
			errs, checkErr := s.uniquenessErrors(email, req.Username, 0)
			if checkErr == nil && errs.Any() {
				return nil, errs
			}
			return nil, util.FormErrors{"email": msgEmailTaken}
		}
		return nil, err
	}

	logger.Log.Info("User registered", zap.Uint("userId", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login 用户名或邮箱加密码
func (s *AuthService) Login(req LoginRequest) (*model.User, error) {
	user, err := s.UserRepo.FindByLogin(strings.TrimSpace(req.Login))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkPassword(user.PasswordHash, req.Password) {
		return nil, util.ErrInvalidCredentials
	}
	return user, nil
}

// IssueSession 勾选 remember 时使用更长的有效期
func (s *AuthService) IssueSession(user *model.User, remember bool) (string, time.Duration, error) {
	ttl := s.Cfg.Session.ExpireTime
	if remember && s.Cfg.Session.RememberTime > 0 {
		ttl = s.Cfg.Session.RememberTime
	}
	token, _, err := util.GenerateJWT(user, util.PurposeSession, s.Cfg.Session.Secret, ttl)
	return token, ttl, err
}

// Authenticate 校验会话令牌并加载用户，令牌被撤销或用户不存在视为未登录
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, *util.Claims, error) {
	claims, err := util.ParseJWT(token, util.PurposeSession, s.Cfg.Session.Secret)
	if err != nil {
		return nil, nil, util.ErrAuthenticationRequired
	}
	if s.Sessions.IsRevoked(ctx, claims.ID) {
		return nil, nil, util.ErrAuthenticationRequired
	}

	user, err := s.UserRepo.FindByID(claims.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, util.ErrAuthenticationRequired
		}
		return nil, nil, err
	}
	return user, claims, nil
}

func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if claims == nil {
		return nil
	}
	return s.Sessions.Revoke(ctx, claims.ID, claims.Remaining())
}

func (s *AuthService) ResetToken(user *model.User) (string, error) {
	token, _, err := util.GenerateJWT(user, util.PurposeReset, s.Cfg.Session.Secret, s.Cfg.Session.ResetExpireTime)
	return token, err
}

// VerifyResetToken 任何失败都返回 nil，调用方不区分原因
func (s *AuthService) VerifyResetToken(ctx context.Context, token string) (*model.User, *util.Claims) {
	claims, err := util.ParseJWT(token, util.PurposeReset, s.Cfg.Session.Secret)
	if err != nil {
		return nil, nil
	}
	if s.Sessions.IsRevoked(ctx, claims.ID) {
		return nil, nil
	}
	user, err := s.UserRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, nil
	}
	return user, claims
}

// RequestPasswordReset 签发重置令牌并投递邮件，不等待发送结果
func (s *AuthService) RequestPasswordReset(req ResetRequest) error {
	user, err := s.UserRepo.FindByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		if repository.IsNotFound(err) {
			return util.FormErrors{"email": msgEmailUnknown}
		}
		return err
	}

	token, err := s.ResetToken(user)
	if err != nil {
		return err
	}

	if !s.Mail.Enqueue(resetMail(s.Cfg, user, token)) {
		logger.Log.Warn("Password reset mail not queued", zap.Uint("userId", user.ID))
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token string, req ResetPasswordRequest) (*model.User, error) {
	user, claims := s.VerifyResetToken(ctx, token)
	if user == nil {
		return nil, util.ErrInvalidResetLink
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.UserRepo.UpdatePassword(user.ID, hashed); err != nil {
		return nil, err
	}
	user.PasswordHash = hashed

	// 令牌只能使用一次
	if err := s.Sessions.Revoke(ctx, claims.ID, claims.Remaining()); err != nil {
		logger.Log.Warn("Failed to revoke reset token", zap.Uint("userId", user.ID), zap.Error(err))
	}
	return user, nil
}

func resetMail(cfg *config.Config, user *model.User, token string) MailMessage {
	link := strings.TrimRight(cfg.Server.BaseURL, "/") + "/auth/reset_password/" + token
	minutes := int(cfg.Session.ResetExpireTime / time.Minute)
	return MailMessage{
		To:      []string{user.Email},
		Subject: "[SnakeTests] Password reset request",
		TextBody: fmt.Sprintf("Hello, %s!\n\nTo reset your password, visit the following link:\n%s\n\n"+
			"The link expires in %d minutes. If you did not make this request, ignore this email.\n",
			user.Username, link, minutes),
		HTMLBody: fmt.Sprintf(`<p>Hello, %s!</p><p>To reset your password, visit the following link:</p>`+
			`<p><a href="%s">%s</a></p><p>The link expires in %d minutes. If you did not make this request, ignore this email.</p>`,
			user.Username, link, link, minutes),
	}
}
