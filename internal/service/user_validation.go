package service

import (
	"fmt"
	"snaketests_backend/internal/model"
	"snaketests_backend/internal/repository"
	"snaketests_backend/internal/util"
	"strings"
	"unicode/utf8"
)

// UserFields REST 接口提交的用户字段，nil 表示未提交
type UserFields struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
}

func (f UserFields) Empty() bool {
	return value(f.FirstName) == "" && value(f.LastName) == "" && value(f.Username) == "" && value(f.Email) == ""
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func lengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

func lengthError(field string, min, max int) error {
	return util.NewError(util.KindFieldLengthViolation, fmt.Sprintf("Length required. %s must be %d-%d characters", field, min, max))
}

func rejected(message string) error {
	return util.NewError(util.KindFieldValueRejected, "Not acceptable. "+message)
}

// validateUserFields 校验顺序：用户名、邮箱、密码、名、姓，遇到第一个错误即返回
func (s *UserService) validateUserFields(f UserFields, self *model.User) error {
	var selfID uint
	if self != nil {
		selfID = self.ID
	}

	if username := value(f.Username); username != "" {
		if !lengthBetween(username, model.MinUsernameLen, model.MaxUsernameLen) {
			return lengthError("username", model.MinUsernameLen, model.MaxUsernameLen)
		}
		if !util.UsernameCharsOK(username) {
			return rejected("Forbidden characters: " + util.ForbiddenUsernameChars)
		}
		if util.IsReservedUsername(username) {
			return rejected("Forbidden name")
		}
		taken, err := s.UserRepo.UsernameTaken(username, selfID)
		if err != nil {
			return err
		}
		if taken {
			return rejected("A user with this username already exists")
		}
	}

	if email := value(f.Email); email != "" {
		if !lengthBetween(email, 2, model.MaxEmailLen) {
			return lengthError("email", 2, model.MaxEmailLen)
		}
		if !util.EmailShapeOK(email) {
			return rejected("Wrong email format")
		}
		taken, err := s.UserRepo.EmailTaken(email, selfID)
		if err != nil {
			return err
		}
		if taken {
			return rejected("A user with this email already exists")
		}
	}

	if password := value(f.Password); password != "" && !lengthBetween(password, model.MinPasswordLength, model.MaxPasswordLength) {
		return lengthError("password", model.MinPasswordLength, model.MaxPasswordLength)
	}
	if first := value(f.FirstName); first != "" && !lengthBetween(first, 2, model.MaxFirstNameLen) {
		return lengthError("first_name", 2, model.MaxFirstNameLen)
	}
	if last := value(f.LastName); last != "" && !lengthBetween(last, 2, model.MaxLastNameLen) {
		return lengthError("last_name", 2, model.MaxLastNameLen)
	}
	return nil
}

func missing(fields ...string) error {
	return util.NewError(util.KindBadRequest, "Missing required field(s): "+strings.Join(fields, ", "))
}

// CreateFromREST 仅超级用户可调用，权限在接口层判断
func (s *UserService) CreateFromREST(f UserFields) (*model.User, error) {
	var absent []string
	if value(f.Username) == "" {
		absent = append(absent, "username")
	}
	if value(f.Email) == "" {
		absent = append(absent, "email")
	}
	if value(f.Password) == "" {
		absent = append(absent, "password")
	}
	if len(absent) > 0 {
		return nil, missing(absent...)
	}
	if err := s.validateUserFields(f, nil); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(*f.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		FirstName:    value(f.FirstName),
		LastName:     value(f.LastName),
		Username:     *f.Username,
		Email:        strings.ToLower(*f.Email),
		PasswordHash: hashed,
	}
	if err := s.UserRepo.Create(user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, rejected("A user with this username or email already exists")
		}
		return nil, err
	}
	return user, nil
}

// ReplaceFromREST PUT 必须提交全部四个资料字段，密码不可修改
func (s *UserService) ReplaceFromREST(user *model.User, f UserFields) error {
	var absent []string
	required := []struct {
		name  string
		value *string
	}{
		{"first_name", f.FirstName},
		{"last_name", f.LastName},
		{"username", f.Username},
		{"email", f.Email},
	}
	for _, field := range required {
		if field.value == nil {
			absent = append(absent, field.name)
		}
	}
	if len(absent) > 0 {
		return missing(absent...)
	}
	if f.Password != nil {
		return rejected("password cannot be modified with PUT")
	}
	// PUT 整体替换，用户名与邮箱不能被置空；名和姓允许为空
	if *f.Username == "" {
		return lengthError("username", model.MinUsernameLen, model.MaxUsernameLen)
	}
	if *f.Email == "" {
		return lengthError("email", 2, model.MaxEmailLen)
	}
	if err := s.validateUserFields(f, user); err != nil {
		return err
	}

	user.FirstName = *f.FirstName
	user.LastName = *f.LastName
	user.Username = *f.Username
	user.Email = strings.ToLower(*f.Email)
	return s.saveREST(user)
}

// PatchFromREST 至少修改一个字段
func (s *UserService) PatchFromREST(user *model.User, f UserFields) error {
	if f.Password != nil {
		return rejected("password cannot be modified with PATCH")
	}
	if f.Empty() {
		return rejected("PATCH method must implement the modification of at least one field of an object: [first_name last_name username email]")
	}
	if err := s.validateUserFields(f, user); err != nil {
		return err
	}

	if v := value(f.FirstName); v != "" {
		user.FirstName = v
	}
	if v := value(f.LastName); v != "" {
		user.LastName = v
	}
	if v := value(f.Username); v != "" {
		user.Username = v
	}
	if v := value(f.Email); v != "" {
		user.Email = strings.ToLower(v)
	}
	return s.saveREST(user)
}

func (s *UserService) saveREST(user *model.User) error {
	if err := s.UserRepo.Update(user); err != nil {
		if repository.IsDuplicateKey(err) {
			return rejected("A user with this username or email already exists")
		}
		return err
	}
	return nil
}
