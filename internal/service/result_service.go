package service

import (
	"context"
	"errors"
	"snaketests_backend/internal/model"
	"snaketests_backend/internal/repository"
	"snaketests_backend/internal/util"
	"snaketests_backend/pkg/logger"
	"snaketests_backend/pkg/monitoring"
	"snaketests_backend/pkg/tracing"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type SubmitAnswerRequest struct {
	OptionID uint `form:"option_id" json:"option_id" binding:"required"`
}

// ResultSummary 一次尝试的概要
type ResultSummary struct {
	UUID                string            `json:"uuid"`
	QuizUUID            string            `json:"quiz_uuid"`
	QuizTitle           string            `json:"quiz_title"`
	State               model.ResultState `json:"state"`
	LastQuestion        int               `json:"last_question"`
	TotalQuestions      int               `json:"total_questions"`
	NumCorrectAnswers   int               `json:"num_correct_answers"`
	NumIncorrectAnswers int               `json:"num_incorrect_answers"`
	Percentage          float64           `json:"percentage"`
}

// QuestionView 答题页展示的题目，不包含正确答案
type QuestionView struct {
	ID       uint         `json:"id"`
	Position int          `json:"position"`
	Total    int          `json:"total"`
	Text     string       `json:"text"`
	Options  []OptionView `json:"options"`
}

type OptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// AnswerView 结果详情里的逐题回放
type AnswerView struct {
	Position      int    `json:"position"`
	Question      string `json:"question"`
	Chosen        string `json:"chosen"`
	CorrectOption string `json:"correct_option"`
	IsCorrect     bool   `json:"is_correct"`
}

type ResultDetail struct {
	ResultSummary
	Answers []AnswerView `json:"answers"`
}

// SubmitOutcome 提交后的结果状态
type SubmitOutcome struct {
	Result   ResultSummary `json:"result"`
	Correct  bool          `json:"correct"`
	Finished bool          `json:"finished"`
}

type ResultService struct {
	ResultRepo *repository.ResultRepository
	QuizRepo   *repository.QuizRepository
}

func NewResultService(resultRepo *repository.ResultRepository, quizRepo *repository.QuizRepository) *ResultService {
	return &ResultService{ResultRepo: resultRepo, QuizRepo: quizRepo}
}

func summarizeResult(result *model.Result, quiz *model.Quiz, total int) ResultSummary {
	summary := ResultSummary{
		UUID:                result.UUID,
		State:               result.State,
		LastQuestion:        result.LastQuestion,
		TotalQuestions:      total,
		NumCorrectAnswers:   result.NumCorrectAnswers,
		NumIncorrectAnswers: result.NumIncorrectAnswers,
	}
	if quiz != nil {
		summary.QuizUUID = quiz.UUID
		summary.QuizTitle = quiz.Title
	}
	if total > 0 {
		summary.Percentage = float64(result.NumCorrectAnswers) * 100 / float64(total)
	}
	return summary
}

func (s *ResultService) Summary(result *model.Result) (ResultSummary, error) {
	total, err := s.QuizRepo.CountQuestions(result.QuizID)
	if err != nil {
		return ResultSummary{}, err
	}
	return summarizeResult(result, &result.Quiz, int(total)), nil
}

// StartAttempt 新建一次尝试，没有题目的测验无法完成因此拒绝
func (s *ResultService) StartAttempt(ctx context.Context, userID uint, quiz *model.Quiz) (*model.Result, error) {
	_, span := tracing.Start(ctx, "ResultService.StartAttempt", attribute.String("quiz.uuid", quiz.UUID))
	defer span.End()

	total, err := s.QuizRepo.CountQuestions(quiz.ID)
	if err != nil {
		return nil, tracing.Fail(span, err)
	}
	if total == 0 {
		return nil, tracing.Fail(span, util.ErrQuizEmpty)
	}

	result := &model.Result{
		UserID: userID,
		QuizID: quiz.ID,
		State:  model.ResultNew,
	}
	if err := s.ResultRepo.Create(result); err != nil {
		return nil, tracing.Fail(span, err)
	}
	result.Quiz = *quiz
	span.SetAttributes(attribute.String("result.uuid", result.UUID))

	monitoring.AttemptsStarted.Inc()
	logger.Log.Debug("Attempt started", zap.Uint("userId", userID), zap.String("quiz", quiz.UUID), zap.String("result", result.UUID))
	return result, nil
}

// GetResult 结果必须属于 quiz，否则视为不存在
func (s *ResultService) GetResult(quiz *model.Quiz, uuid string) (*model.Result, error) {
	if !model.IsUUID(uuid) {
		return nil, util.ErrMalformedUUID
	}
	result, err := s.ResultRepo.FindByUUID(uuid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrResultNotFound
		}
		return nil, err
	}
	if quiz != nil && result.QuizID != quiz.ID {
		return nil, util.ErrResultNotFound
	}
	return result, nil
}

func (s *ResultService) currentQuestion(result *model.Result) (*model.Question, error) {
	question, err := s.QuizRepo.FindQuestionAt(result.QuizID, result.LastQuestion+1)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return question, nil
}

// NextQuestion 位置为 LastQuestion+1 的题目
func (s *ResultService) NextQuestion(ctx context.Context, result *model.Result) (*QuestionView, error) {
	if result.Finished() {
		return nil, util.ErrAttemptFinished
	}
	question, err := s.currentQuestion(result)
	if err != nil {
		return nil, err
	}
	total, err := s.QuizRepo.CountQuestions(result.QuizID)
	if err != nil {
		return nil, err
	}

	view := &QuestionView{
		ID:       question.ID,
		Position: question.Position,
		Total:    int(total),
		Text:     question.Text,
		Options:  make([]OptionView, 0, len(question.Options)),
	}
	for _, o := range question.Options {
		view.Options = append(view.Options, OptionView{ID: o.ID, Text: o.Text})
	}
	return view, nil
}

// SubmitAnswer 按选项 ID 判分并推进结果，已完成的结果拒绝提交
func (s *ResultService) SubmitAnswer(ctx context.Context, result *model.Result, optionID uint) (*SubmitOutcome, error) {
	_, span := tracing.Start(ctx, "ResultService.SubmitAnswer",
		attribute.String("result.uuid", result.UUID),
		attribute.Int("result.last_question", result.LastQuestion),
		attribute.String("option.id", strconv.FormatUint(uint64(optionID), 10)),
	)
	defer span.End()

	outcome, err := s.submit(result, optionID)
	if err != nil {
		return nil, tracing.Fail(span, err)
	}
	span.SetAttributes(attribute.Bool("answer.correct", outcome.Correct), attribute.Bool("result.finished", outcome.Finished))
	return outcome, nil
}

func (s *ResultService) submit(result *model.Result, optionID uint) (*SubmitOutcome, error) {
	if result.Finished() {
		return nil, util.ErrAttemptFinished
	}

	total, err := s.QuizRepo.CountQuestions(result.QuizID)
	if err != nil {
		return nil, err
	}
	question, err := s.currentQuestion(result)
	if err != nil {
		return nil, err
	}
	option := question.FindOption(optionID)
	if option == nil {
		return nil, util.ErrInvalidChoice
	}

	answer := &model.ResultAnswer{
		QuestionID: question.ID,
		OptionID:   option.ID,
		IsCorrect:  option.IsCorrect,
	}
	if err := s.ResultRepo.ApplyAnswer(result, answer, int(total)); err != nil {
		if errors.Is(err, repository.ErrStaleResult) {
			return nil, s.staleError(result.ID)
		}
		return nil, err
	}

	monitoring.AnswersSubmitted.WithLabelValues(strconv.FormatBool(option.IsCorrect)).Inc()
	if result.Finished() {
		monitoring.AttemptsFinished.Inc()
		logger.Log.Info("Attempt finished",
			zap.Uint("userId", result.UserID),
			zap.String("result", result.UUID),
			zap.Int("correct", result.NumCorrectAnswers),
			zap.Int("total", int(total)),
		)
	}

	return &SubmitOutcome{
		Result:   summarizeResult(result, &result.Quiz, int(total)),
		Correct:  option.IsCorrect,
		Finished: result.Finished(),
	}, nil
}

// staleError 并发提交失败时区分已完成与被抢先
func (s *ResultService) staleError(resultID uint) error {
	fresh, err := s.ResultRepo.FindByID(resultID)
	if err == nil && fresh.Finished() {
		return util.ErrAttemptFinished
	}
	return util.ErrAttemptConflict
}

// BestResult 该用户在该测验所有尝试中的最高正确数
func (s *ResultService) BestResult(userID, quizID uint) (int, error) {
	return s.ResultRepo.BestCorrect(userID, quizID)
}

func (s *ResultService) LatestOpenAttempt(userID, quizID uint) (*model.Result, error) {
	return s.ResultRepo.LatestOpen(userID, quizID)
}

// Detail 计数、百分比以及逐题回放
func (s *ResultService) Detail(result *model.Result) (*ResultDetail, error) {
	quiz, err := s.QuizRepo.FindWithQuestions(result.Quiz.UUID)
	if err != nil {
		return nil, err
	}
	answers, err := s.ResultRepo.ListAnswers(result.ID)
	if err != nil {
		return nil, err
	}

	questions := make(map[uint]*model.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		questions[quiz.Questions[i].ID] = &quiz.Questions[i]
	}

	detail := &ResultDetail{
		ResultSummary: summarizeResult(result, quiz, len(quiz.Questions)),
		Answers:       make([]AnswerView, 0, len(answers)),
	}
	for _, a := range answers {
		view := AnswerView{Position: a.Position, IsCorrect: a.IsCorrect}
		if q, ok := questions[a.QuestionID]; ok {
			view.Question = q.Text
			if chosen := q.FindOption(a.OptionID); chosen != nil {
				view.Chosen = chosen.Text
			}
			if correct := q.CorrectOption(); correct != nil {
				view.CorrectOption = correct.Text
			}
		}
		detail.Answers = append(detail.Answers, view)
	}
	return detail, nil
}

func (s *ResultService) List(page, perPage int) ([]ResultSummary, int64, error) {
	results, total, err := s.ResultRepo.List(util.Offset(page, perPage), perPage)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uint, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.QuizID)
	}
	counts, err := s.QuizRepo.CountQuestionsByQuiz(ids)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ResultSummary, 0, len(results))
	for i := range results {
		items = append(items, summarizeResult(&results[i], &results[i].Quiz, int(counts[results[i].QuizID])))
	}
	return items, total, nil
}
