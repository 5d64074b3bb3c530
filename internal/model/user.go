package model

import "strings"

const (
	DefaultAvatar     = "default.png"
	DefaultQuizImage  = "default_test.png"
	MaxFirstNameLen   = 20
	MaxLastNameLen    = 40
	MinUsernameLen    = 2
	MaxUsernameLen    = 20
	MaxEmailLen       = 30
	MinPasswordLength = 8
	MaxPasswordLength = 30
)

// swagger:model User
type User struct {
	PublicModel
	FirstName    string   `gorm:"size:20" json:"firstName"`
	LastName     string   `gorm:"size:40" json:"lastName"`
	Username     string   `gorm:"size:20;uniqueIndex;not null" json:"username"`
	Email        string   `gorm:"size:30;uniqueIndex;not null" json:"email"`
	Image        string   `gorm:"size:255;not null;default:'default.png'" json:"image"`
	PasswordHash string   `gorm:"size:100;not null" json:"-"`
	IsSuperuser  bool     `gorm:"default:false" json:"isSuperuser"`
	Results      []Result `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// OwnerID 用户资源的属主就是本人
func (u *User) OwnerID() uint {
	return u.ID
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) HasDefaultAvatar() bool {
	return u.Image == "" || u.Image == DefaultAvatar
}
