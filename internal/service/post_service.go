package service

import (
	"snaketests_backend/internal/model"
	"snaketests_backend/internal/repository"
	"snaketests_backend/internal/util"
	"strings"
	"time"
)

type PostRequest struct {
	Title    string `form:"title" json:"title" binding:"required,max=60"`
	QuizUUID string `form:"quiz" json:"quiz" binding:"required"`
	Content  string `form:"content" json:"content" binding:"required"`
}

// PostFields REST 提交的帖子字段，nil 表示未提交
type PostFields struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// PostView 帖子对外展示结构
type PostView struct {
	UUID     string    `json:"uuid"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	PostDate time.Time `json:"post_date"`
	User     string    `json:"user"`
	Quiz     string    `json:"test"`
	QuizUUID string    `json:"quiz_uuid"`
}

func NewPostView(post *model.Post) PostView {
	return PostView{
		UUID:     post.UUID,
		Title:    post.Title,
		Content:  post.Content,
		PostDate: post.PostDate,
		User:     post.Author.Username,
		Quiz:     post.Quiz.Title,
		QuizUUID: post.Quiz.UUID,
	}
}

func NewPostViews(posts []model.Post) []PostView {
	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, NewPostView(&posts[i]))
	}
	return views
}

type PostService struct {
	PostRepo *repository.PostRepository
	QuizRepo *repository.QuizRepository
}

func NewPostService(postRepo *repository.PostRepository, quizRepo *repository.QuizRepository) *PostService {
	return &PostService{PostRepo: postRepo, QuizRepo: quizRepo}
}

// resolveQuiz 测验按 UUID 选择，不存在时作为字段错误返回
func (s *PostService) resolveQuiz(quizUUID string) (*model.Quiz, error) {
	if !model.IsUUID(quizUUID) {
		return nil, util.FormErrors{"quiz": "Not a valid choice."}
	}
	quiz, err := s.QuizRepo.FindByUUID(quizUUID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.FormErrors{"quiz": "Not a valid choice."}
		}
		return nil, err
	}
	return quiz, nil
}

// trimmedTitle 绑定校验看不到首尾空白，去掉后再判断是否为空
func (r PostRequest) trimmedTitle() (string, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return "", util.FormErrors{"title": "This field is required."}
	}
	return title, nil
}

func (s *PostService) Create(author *model.User, req PostRequest) (*model.Post, error) {
	title, err := req.trimmedTitle()
	if err != nil {
		return nil, err
	}
	quiz, err := s.resolveQuiz(req.QuizUUID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:    title,
		Content:  req.Content,
		PostDate: time.Now().UTC(),
		AuthorID: author.ID,
		QuizID:   quiz.ID,
	}
	if err := s.PostRepo.Create(post); err != nil {
		return nil, err
	}
	post.Author = *author
	post.Quiz = *quiz
	return post, nil
}

func (s *PostService) GetByUUID(uuid string) (*model.Post, error) {
	if !model.IsUUID(uuid) {
		return nil, util.ErrMalformedUUID
	}
	post, err := s.PostRepo.FindByUUID(uuid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) Update(post *model.Post, req PostRequest) error {
	title, err := req.trimmedTitle()
	if err != nil {
		return err
	}
	quiz, err := s.resolveQuiz(req.QuizUUID)
	if err != nil {
		return err
	}
	post.Title = title
	post.Content = req.Content
	post.QuizID = quiz.ID
	post.Quiz = *quiz
	return s.PostRepo.Update(post)
}

// Replace PUT 要求 title 与 content 都提交
func (s *PostService) Replace(post *model.Post, f PostFields) error {
	var absent []string
	if f.Title == nil {
		absent = append(absent, "title")
	}
	if f.Content == nil {
		absent = append(absent, "content")
	}
	if len(absent) > 0 {
		return missing(absent...)
	}
	title := strings.TrimSpace(*f.Title)
	if err := validatePostTitle(title); err != nil {
		return err
	}
	post.Title = title
	post.Content = *f.Content
	return s.PostRepo.Update(post)
}

// Patch 至少修改一个字段
func (s *PostService) Patch(post *model.Post, f PostFields) error {
	if value(f.Title) == "" && value(f.Content) == "" {
		return rejected("PATCH method must implement the modification of at least one field of an object: [title content]")
	}
	if v := value(f.Title); v != "" {
		title := strings.TrimSpace(v)
		if err := validatePostTitle(title); err != nil {
			return err
		}
		post.Title = title
	}
	if v := value(f.Content); v != "" {
		post.Content = v
	}
	return s.PostRepo.Update(post)
}

func validatePostTitle(title string) error {
	if !lengthBetween(title, 1, model.MaxPostTitleLen) {
		return lengthError("title", 1, model.MaxPostTitleLen)
	}
	return nil
}

func (s *PostService) Delete(post *model.Post) error {
	return s.PostRepo.Delete(post.ID)
}

func (s *PostService) List(page, perPage int) ([]model.Post, int64, error) {
	return s.PostRepo.List(util.Offset(page, perPage), perPage)
}

// ListVisible 超级用户看到全部帖子，其他用户只看到自己的
func (s *PostService) ListVisible(userID uint, privileged bool) ([]model.Post, error) {
	if privileged {
		return s.PostRepo.ListAll()
	}
	return s.PostRepo.ListByAuthor(userID)
}
