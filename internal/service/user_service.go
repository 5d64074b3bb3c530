package service

import (
	"context"
	"snaketests_backend/internal/model"
	"snaketests_backend/internal/repository"
	"snaketests_backend/internal/util"
	"snaketests_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
)

type ProfileRequest struct {
	FirstName string `form:"first_name" json:"first_name" binding:"omitempty,min=2,max=20"`
	LastName  string `form:"last_name" json:"last_name" binding:"omitempty,min=2,max=40"`
	Username  string `form:"username" json:"username" binding:"required,min=2,max=20,username"`
	Email     string `form:"email" json:"email" binding:"required,max=30,email"`
}

// UserProfile 对外展示的用户资料
type UserProfile struct {
	UUID        string `json:"uuid"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Image       string `json:"image,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
}

type UserService struct {
	UserRepo *repository.UserRepository
	Storage  *StorageService
}

func NewUserService(userRepo *repository.UserRepository, storage *StorageService) *UserService {
	return &UserService{UserRepo: userRepo, Storage: storage}
}

func (s *UserService) Profile(user *model.User) UserProfile {
	return UserProfile{
		UUID:        user.UUID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Username:    user.Username,
		Email:       user.Email,
		Image:       s.Storage.GetURL(user.Image),
		IsSuperuser: user.IsSuperuser,
	}
}

func (s *UserService) GetByUUID(uuid string) (*model.User, error) {
	if !model.IsUUID(uuid) {
		return nil, util.ErrMalformedUUID
	}
	user, err := s.UserRepo.FindByUUID(uuid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(page, perPage int) ([]model.User, int64, error) {
	return s.UserRepo.List(util.Offset(page, perPage), perPage)
}

func (s *UserService) ListAll() ([]model.User, error) {
	return s.UserRepo.ListAll()
}

// UpdateProfile 邮箱和用户名只有变更时才检查唯一性
func (s *UserService) UpdateProfile(ctx context.Context, user *model.User, req ProfileRequest, avatar *AvatarUpload) error {
	errs := util.FormErrors{}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if email != user.Email {
		taken, err := s.UserRepo.EmailTaken(email, user.ID)
		if err != nil {
			return err
		}
		if taken {
			errs.Add("email", msgEmailTaken)
		}
	}
	if req.Username != user.Username {
		taken, err := s.UserRepo.UsernameTaken(req.Username, user.ID)
		if err != nil {
			return err
		}
		if taken {
			errs.Add("username", msgUsernameTaken)
		}
	}
	if avatar != nil && !ValidAvatarExtension(avatar.Filename) {
		errs.Add("image", "File does not have an approved extension: jpg, jpeg, png")
	}
	if errs.Any() {
		return errs
	}

	if avatar != nil {
		key, err := s.saveAvatar(ctx, *avatar)
		if err != nil {
			return util.FormErrors{"image": "The picture could not be processed"}
		}
		previous := user.Image
		user.Image = key
		if previous != "" && previous != model.DefaultAvatar {
			if err := s.Storage.Delete(ctx, previous); err != nil {
				logger.Log.Warn("Failed to remove previous avatar", zap.Uint("userId", user.ID), zap.String("image", previous), zap.Error(err))
			}
		}
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Username = req.Username
	user.Email = email
	return s.save(user)
}

func (s *UserService) saveAvatar(ctx context.Context, upload AvatarUpload) (string, error) {
	key, buf, contentType, err := processAvatar(upload)
	if err != nil {
		return "", err
	}
	if _, err := s.Storage.Upload(ctx, key, buf, int64(buf.Len()), contentType); err != nil {
		return "", err
	}
	return key, nil
}

func (s *UserService) save(user *model.User) error {
	if err := s.UserRepo.Update(user); err != nil {
		if repository.IsDuplicateKey(err) {
			return util.FormErrors{"email": msgEmailTaken}
		}
		return err
	}
	return nil
}

func (s *UserService) SetSuperuser(uuid string, superuser bool) (*model.User, error) {
	user, err := s.GetByUUID(uuid)
	if err != nil {
		return nil, err
	}
	if err := s.UserRepo.SetSuperuser(user.ID, superuser); err != nil {
		return nil, err
	}
	user.IsSuperuser = superuser
	logger.Log.Info("Superuser flag changed", zap.Uint("userId", user.ID), zap.Bool("superuser", superuser))
	return user, nil
}

// Delete 管理员删除用户，答题记录随之删除，帖子保留
func (s *UserService) Delete(uuid string) error {
	user, err := s.GetByUUID(uuid)
	if err != nil {
		return err
	}
	return s.UserRepo.Delete(user.ID)
}
