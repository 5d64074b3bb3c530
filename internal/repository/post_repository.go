package repository

import (
	"snaketests_backend/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{DB: db}
}

// 作者被删除后帖子仍然展示作者信息
func withAuthor(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

func (r *PostRepository) preloaded() *gorm.DB {
	return r.DB.Preload("Author", withAuthor).Preload("Quiz")
}

func (r *PostRepository) Create(post *model.Post) error {
	return r.DB.Create(post).Error
}

func (r *PostRepository) Update(post *model.Post) error {
	return r.DB.Model(post).Select("title", "content", "quiz_id").Updates(post).Error
}

func (r *PostRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Post{}, id).Error
}

func (r *PostRepository) FindByUUID(uuid string) (*model.Post, error) {
	var post model.Post
	err := r.preloaded().Where("uuid = ?", uuid).First(&post).Error
	return &post, err
}

// List 最新的帖子在前
func (r *PostRepository) List(offset, limit int) ([]model.Post, int64, error) {
	var posts []model.Post
	var total int64

	if err := r.DB.Model(&model.Post{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.preloaded().
		Order("post_date DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

func (r *PostRepository) ListByAuthor(authorID uint) ([]model.Post, error) {
	var posts []model.Post
	err := r.preloaded().Where("author_id = ?", authorID).Order("post_date DESC").Find(&posts).Error
	return posts, err
}

func (r *PostRepository) ListAll() ([]model.Post, error) {
	var posts []model.Post
	err := r.preloaded().Order("post_date DESC").Find(&posts).Error
	return posts, err
}
