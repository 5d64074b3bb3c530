package service

import (
	"errors"
	"fmt"
	"os"
	"snaketests_backend/internal/model"
	"snaketests_backend/internal/repository"
	"snaketests_backend/internal/util"
	"snaketests_backend/pkg/logger"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type OptionRequest struct {
	Text      string `json:"text" yaml:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct" yaml:"is_correct"`
}

type QuestionRequest struct {
	Position int             `json:"position" yaml:"position" binding:"omitempty,min=1"`
	Text     string          `json:"text" yaml:"text" binding:"required"`
	Options  []OptionRequest `json:"options" yaml:"options" binding:"required,dive"`
}

type QuizRequest struct {
	Title       string            `json:"title" yaml:"title" binding:"required,max=64"`
	Description string            `json:"description" yaml:"description"`
	Level       model.QuizLevel   `json:"level" yaml:"level" binding:"omitempty,oneof=Basic Middle Advanced"`
	Image       string            `json:"image" yaml:"image"`
	Questions   []QuestionRequest `json:"questions" yaml:"questions" binding:"dive"`
}

type QuizUpdateRequest struct {
	Title       *string          `json:"title" binding:"omitempty,min=1,max=64"`
	Description *string          `json:"description"`
	Level       *model.QuizLevel `json:"level" binding:"omitempty,oneof=Basic Middle Advanced"`
	Image       *string          `json:"image"`
}

type MoveQuestionRequest struct {
	Position int `json:"position" binding:"required,min=1"`
}

type OptionsRequest struct {
	Text    string          `json:"text"`
	Options []OptionRequest `json:"options" binding:"required,dive"`
}

// QuizSummary 测验列表项
type QuizSummary struct {
	UUID         string          `json:"uuid"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Level        model.QuizLevel `json:"level"`
	Image        string          `json:"image"`
	NumQuestions int64           `json:"num_questions"`
}

// QuizDetail 测验详情页，附带当前用户的最好成绩与未完成的尝试
type QuizDetail struct {
	QuizSummary
	BestResult  int            `json:"best_result"`
	OpenAttempt *ResultSummary `json:"open_attempt,omitempty"`
}

type QuizService struct {
	QuizRepo   *repository.QuizRepository
	ResultRepo *repository.ResultRepository
}

func NewQuizService(quizRepo *repository.QuizRepository, resultRepo *repository.ResultRepository) *QuizService {
	return &QuizService{QuizRepo: quizRepo, ResultRepo: resultRepo}
}

func summarize(quiz *model.Quiz, numQuestions int64) QuizSummary {
	return QuizSummary{
		UUID:         quiz.UUID,
		Title:        quiz.Title,
		Description:  quiz.Description,
		Level:        quiz.Level,
		Image:        quiz.Image,
		NumQuestions: numQuestions,
	}
}

func (s *QuizService) GetQuiz(uuid string) (*model.Quiz, error) {
	if !model.IsUUID(uuid) {
		return nil, util.ErrMalformedUUID
	}
	quiz, err := s.QuizRepo.FindByUUID(uuid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

// GetQuizWithQuestions 题目按 Position 升序
func (s *QuizService) GetQuizWithQuestions(uuid string) (*model.Quiz, error) {
	if !model.IsUUID(uuid) {
		return nil, util.ErrMalformedUUID
	}
	quiz, err := s.QuizRepo.FindWithQuestions(uuid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) ListQuizzes(page, perPage int) ([]QuizSummary, int64, error) {
	quizzes, total, err := s.QuizRepo.List(util.Offset(page, perPage), perPage)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(quizzes))
	for _, q := range quizzes {
		ids = append(ids, q.ID)
	}
	counts, err := s.QuizRepo.CountQuestionsByQuiz(ids)
	if err != nil {
		return nil, 0, err
	}

	items := make([]QuizSummary, 0, len(quizzes))
	for i := range quizzes {
		items = append(items, summarize(&quizzes[i], counts[quizzes[i].ID]))
	}
	return items, total, nil
}

// Choices 帖子表单里可选择的测验
func (s *QuizService) Choices() ([]QuizSummary, error) {
	quizzes, err := s.QuizRepo.ListAll()
	if err != nil {
		return nil, err
	}
	items := make([]QuizSummary, 0, len(quizzes))
	for i := range quizzes {
		items = append(items, QuizSummary{UUID: quizzes[i].UUID, Title: quizzes[i].Title, Level: quizzes[i].Level})
	}
	return items, nil
}

func (s *QuizService) Detail(uuid string, userID uint) (*QuizDetail, error) {
	quiz, err := s.GetQuiz(uuid)
	if err != nil {
		return nil, err
	}
	total, err := s.QuizRepo.CountQuestions(quiz.ID)
	if err != nil {
		return nil, err
	}
	best, err := s.ResultRepo.BestCorrect(userID, quiz.ID)
	if err != nil {
		return nil, err
	}
	open, err := s.ResultRepo.LatestOpen(userID, quiz.ID)
	if err != nil {
		return nil, err
	}

	detail := &QuizDetail{
		QuizSummary: summarize(quiz, total),
		BestResult:  best,
	}
	if open != nil {
		summary := summarizeResult(open, quiz, int(total))
		detail.OpenAttempt = &summary
	}
	return detail, nil
}

// validateOptions 至少两个选项，且恰好一个正确
func validateOptions(options []OptionRequest) error {
	if len(options) < 2 {
		return rejected("A question needs at least two options")
	}
	correct := 0
	for _, o := range options {
		if strings.TrimSpace(o.Text) == "" {
			return rejected("Option text must not be empty")
		}
		if o.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return rejected("A question must have exactly one correct option")
	}
	return nil
}

func buildOptions(reqs []OptionRequest) []model.Option {
	options := make([]model.Option, 0, len(reqs))
	for _, o := range reqs {
		options = append(options, model.Option{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return options
}

// orderQuestions 未给出位置时按提交顺序编号，给出时必须是 1..N 的排列
func orderQuestions(reqs []QuestionRequest) ([]QuestionRequest, error) {
	ordered := make([]QuestionRequest, len(reqs))
	copy(ordered, reqs)

	explicit := false
	for _, q := range ordered {
		if q.Position != 0 {
			explicit = true
			break
		}
	}
	if !explicit {
		for i := range ordered {
			ordered[i].Position = i + 1
		}
		return ordered, nil
	}

	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })
	for i, q := range ordered {
		if q.Position != i+1 {
			return nil, rejected(fmt.Sprintf("Question positions must be 1..%d without gaps or duplicates", len(ordered)))
		}
	}
	return ordered, nil
}

func (s *QuizService) CreateQuiz(req QuizRequest) (*model.Quiz, error) {
	if strings.TrimSpace(req.Title) == "" || len(req.Title) > model.MaxQuizTitleLen {
		return nil, lengthError("title", 1, model.MaxQuizTitleLen)
	}
	level := req.Level
	if level == "" {
		level = model.LevelBasic
	}
	if !level.Valid() {
		return nil, rejected("Level must be one of Basic, Middle, Advanced")
	}

	ordered, err := orderQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		Title:       req.Title,
		Description: req.Description,
		Level:       level,
		Image:       req.Image,
	}
	if quiz.Image == "" {
		quiz.Image = model.DefaultQuizImage
	}
	for _, q := range ordered {
		if strings.TrimSpace(q.Text) == "" {
			return nil, rejected("Question text must not be empty")
		}
		if err := validateOptions(q.Options); err != nil {
			return nil, err
		}
		quiz.Questions = append(quiz.Questions, model.Question{
			Position: q.Position,
			Text:     q.Text,
			Options:  buildOptions(q.Options),
		})
	}

	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	logger.Log.Info("Quiz created", zap.String("quiz", quiz.UUID), zap.Int("questions", len(quiz.Questions)))
	return quiz, nil
}

func (s *QuizService) UpdateQuiz(uuid string, req QuizUpdateRequest) (*model.Quiz, error) {
	quiz, err := s.GetQuiz(uuid)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" || len(*req.Title) > model.MaxQuizTitleLen {
			return nil, lengthError("title", 1, model.MaxQuizTitleLen)
		}
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.Level != nil {
		if !req.Level.Valid() {
			return nil, rejected("Level must be one of Basic, Middle, Advanced")
		}
		quiz.Level = *req.Level
	}
	if req.Image != nil {
		quiz.Image = *req.Image
	}
	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// DeleteQuiz 级联删除题目、选项、答题记录和帖子
func (s *QuizService) DeleteQuiz(uuid string) error {
	quiz, err := s.GetQuiz(uuid)
	if err != nil {
		return err
	}
	if err := s.QuizRepo.Delete(quiz.ID); err != nil {
		return err
	}
	logger.Log.Info("Quiz deleted", zap.String("quiz", uuid))
	return nil
}

// AddQuestion Position 为 0 时追加到末尾，否则插入并顺延后续题目
func (s *QuizService) AddQuestion(uuid string, req QuestionRequest) (*model.Question, error) {
	quiz, err := s.GetQuiz(uuid)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, rejected("Question text must not be empty")
	}
	if err := validateOptions(req.Options); err != nil {
		return nil, err
	}

	total, err := s.QuizRepo.CountQuestions(quiz.ID)
	if err != nil {
		return nil, err
	}
	position := req.Position
	if position == 0 {
		position = int(total) + 1
	}
	if position < 1 || position > int(total)+1 {
		return nil, rejected(fmt.Sprintf("Position must be between 1 and %d", total+1))
	}

	question := &model.Question{Text: req.Text, Options: buildOptions(req.Options)}
	if err := s.QuizRepo.InsertQuestion(quiz.ID, position, question); err != nil {
		return nil, structuralError(err)
	}
	return question, nil
}

func (s *QuizService) question(uuid string, questionID uint) (*model.Quiz, *model.Question, error) {
	quiz, err := s.GetQuiz(uuid)
	if err != nil {
		return nil, nil, err
	}
	question, err := s.QuizRepo.FindQuestion(quiz.ID, questionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, util.NewError(util.KindNotFound, "A question with this id does not exist in the quiz")
		}
		return nil, nil, err
	}
	return quiz, question, nil
}

func (s *QuizService) MoveQuestion(uuid string, questionID uint, position int) (*model.Question, error) {
	quiz, question, err := s.question(uuid, questionID)
	if err != nil {
		return nil, err
	}
	total, err := s.QuizRepo.CountQuestions(quiz.ID)
	if err != nil {
		return nil, err
	}
	if position < 1 || position > int(total) {
		return nil, rejected(fmt.Sprintf("Position must be between 1 and %d", total))
	}
	if err := s.QuizRepo.MoveQuestion(question, position); err != nil {
		return nil, structuralError(err)
	}
	return question, nil
}

func (s *QuizService) RemoveQuestion(uuid string, questionID uint) error {
	_, question, err := s.question(uuid, questionID)
	if err != nil {
		return err
	}
	return structuralError(s.QuizRepo.RemoveQuestion(question))
}

func structuralError(err error) error {
	if errors.Is(err, repository.ErrQuizInProgress) {
		return util.ErrQuizInProgress
	}
	return err
}

// SetOptions 替换选项，可同时修改题干
func (s *QuizService) SetOptions(uuid string, questionID uint, req OptionsRequest) (*model.Question, error) {
	_, question, err := s.question(uuid, questionID)
	if err != nil {
		return nil, err
	}
	if err := validateOptions(req.Options); err != nil {
		return nil, err
	}
	if text := strings.TrimSpace(req.Text); text != "" && text != question.Text {
		if err := s.QuizRepo.UpdateQuestionText(question, req.Text); err != nil {
			return nil, err
		}
	}
	if err := s.QuizRepo.ReplaceOptions(question, buildOptions(req.Options)); err != nil {
		return nil, err
	}
	return question, nil
}

type seedFile struct {
	Quizzes []QuizRequest `yaml:"quizzes"`
}

// SeedFromYAML 导入 YAML 中的测验，已存在同名测验时跳过
func (s *QuizService) SeedFromYAML(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	existing, err := s.QuizRepo.ListAll()
	if err != nil {
		return 0, err
	}
	titles := make(map[string]bool, len(existing))
	for _, q := range existing {
		titles[q.Title] = true
	}

	created := 0
	for _, req := range file.Quizzes {
		if titles[req.Title] {
			continue
		}
		if _, err := s.CreateQuiz(req); err != nil {
			return created, fmt.Errorf("seed quiz %q: %w", req.Title, err)
		}
		titles[req.Title] = true
		created++
	}
	return created, nil
}
