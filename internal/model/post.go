package model

import "time"

const MaxPostTitleLen = 60

// swagger:model Post
type Post struct {
	PublicModel
	Title    string    `gorm:"size:60;not null" json:"title"`
	Content  string    `gorm:"type:text;not null" json:"content"`
	PostDate time.Time `gorm:"not null;index" json:"postDate"`
	AuthorID uint      `gorm:"not null;index" json:"-"`
	Author   User      `gorm:"foreignKey:AuthorID" json:"-"`
	QuizID   uint      `gorm:"not null;index" json:"-"`
	Quiz     Quiz      `gorm:"foreignKey:QuizID" json:"-"`
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) OwnerID() uint {
	return p.AuthorID
}
