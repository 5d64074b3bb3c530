package service

import (
	"context"
	"testing"
	"time"

	"snaketests_backend/internal/config"
	"snaketests_backend/internal/model"
	"snaketests_backend/internal/repository"
	"snaketests_backend/pkg/database"
)

type testEnv struct {
	cfg     *config.Config
	users   *repository.UserRepository
	quizzes *QuizService
	results *ResultService
	posts   *PostService
	profile *UserService
	auth    *AuthService
	mail    *MailQueue
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "test", BaseURL: "http://localhost:8080/"},
		Session: config.SessionConfig{
			Secret:          "test-secret-0123456789",
			ExpireTime:      time.Hour,
			RememberTime:    24 * time.Hour,
			ResetExpireTime: 3 * time.Minute,
			CookieName:      "session",
		},
		Storage:    config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Mail:       config.MailConfig{Workers: 1, QueueSize: 8},
		Pagination: config.PaginationConfig{PostsPerPage: 5, QuizzesPerPage: 5},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenTestDB()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	cfg := testConfig(t)

	userRepo := repository.NewUserRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	resultRepo := repository.NewResultRepository(db)
	postRepo := repository.NewPostRepository(db)
	mail := NewMailQueue(LogMailer{}, cfg.Mail.Workers, cfg.Mail.QueueSize)

	return &testEnv{
		cfg:     cfg,
		users:   userRepo,
		quizzes: NewQuizService(quizRepo, resultRepo),
		results: NewResultService(resultRepo, quizRepo),
		posts:   NewPostService(postRepo, quizRepo),
		profile: NewUserService(userRepo, NewStorageService(cfg)),
		auth:    NewAuthService(userRepo, repository.NewSessionRepository(nil), mail, cfg),
		mail:    mail,
	}
}

func (e *testEnv) register(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := e.auth.Register(RegisterRequest{
		Username:    username,
		Email:       username + "@example.com",
		Password:    "password123",
		ConfirmPass: "password123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

// twoOptions 第一个选项正确
func twoOptions() []OptionRequest {
	return []OptionRequest{{Text: "right", IsCorrect: true}, {Text: "wrong"}}
}

func (e *testEnv) createQuiz(t *testing.T, title string, questions ...string) *model.Quiz {
	t.Helper()
	req := QuizRequest{Title: title}
	for _, text := range questions {
		req.Questions = append(req.Questions, QuestionRequest{Text: text, Options: twoOptions()})
	}
	quiz, err := e.quizzes.CreateQuiz(req)
	if err != nil {
		t.Fatalf("create quiz %s: %v", title, err)
	}
	return quiz
}

// answer 回答当前题目，correct 决定选择正确还是错误的选项
func (e *testEnv) answer(t *testing.T, result *model.Result, correct bool) *SubmitOutcome {
	t.Helper()
	question, err := e.results.currentQuestion(result)
	if err != nil {
		t.Fatalf("current question: %v", err)
	}
	for _, o := range question.Options {
		if o.IsCorrect == correct {
			outcome, err := e.results.SubmitAnswer(context.Background(), result, o.ID)
			if err != nil {
				t.Fatalf("submit answer: %v", err)
			}
			return outcome
		}
	}
	t.Fatalf("question %d has no option with correct=%v", question.ID, correct)
	return nil
}
