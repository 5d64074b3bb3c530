package service

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"snaketests_backend/internal/model"
	"snaketests_backend/internal/util"
)

func texts(t *testing.T, env *testEnv, quiz *model.Quiz) []string {
	t.Helper()
	loaded, err := env.quizzes.GetQuizWithQuestions(quiz.UUID)
	if err != nil {
		t.Fatalf("load quiz: %v", err)
	}
	out := make([]string, 0, len(loaded.Questions))
	for i, q := range loaded.Questions {
		if q.Position != i+1 {
			t.Fatalf("question %q at position %d, want %d", q.Text, q.Position, i+1)
		}
		out = append(out, q.Text)
	}
	return out
}

func TestCreateQuizValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  QuizRequest
		kind util.ErrorKind
	}{
		{"empty title", QuizRequest{Title: " "}, util.KindFieldLengthViolation},
		{"bad level", QuizRequest{Title: "x", Level: "Expert"}, util.KindFieldValueRejected},
		{"single option", QuizRequest{Title: "x", Questions: []QuestionRequest{
			{Text: "q", Options: []OptionRequest{{Text: "a", IsCorrect: true}}},
		}}, util.KindFieldValueRejected},
		{"no correct option", QuizRequest{Title: "x", Questions: []QuestionRequest{
			{Text: "q", Options: []OptionRequest{{Text: "a"}, {Text: "b"}}},
		}}, util.KindFieldValueRejected},
		{"two correct options", QuizRequest{Title: "x", Questions: []QuestionRequest{
			{Text: "q", Options: []OptionRequest{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}}},
		}}, util.KindFieldValueRejected},
		{"position gap", QuizRequest{Title: "x", Questions: []QuestionRequest{
			{Position: 1, Text: "q1", Options: twoOptions()},
			{Position: 3, Text: "q3", Options: twoOptions()},
		}}, util.KindFieldValueRejected},
		{"duplicate position", QuizRequest{Title: "x", Questions: []QuestionRequest{
			{Position: 1, Text: "q1", Options: twoOptions()},
			{Position: 1, Text: "q2", Options: twoOptions()},
		}}, util.KindFieldValueRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.quizzes.CreateQuiz(tt.req)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := util.KindOf(err); got != tt.kind {
				t.Errorf("kind = %v, want %v (%v)", got, tt.kind, err)
			}
		})
	}
}

func TestCreateQuizDefaultsAndExplicitOrder(t *testing.T) {
	env := newTestEnv(t)

	quiz, err := env.quizzes.CreateQuiz(QuizRequest{
		Title: "Ordered",
		Questions: []QuestionRequest{
			{Position: 2, Text: "second", Options: twoOptions()},
			{Position: 1, Text: "first", Options: twoOptions()},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.Level != model.LevelBasic || quiz.Image != model.DefaultQuizImage {
		t.Errorf("defaults = %s/%s", quiz.Level, quiz.Image)
	}
	if got := texts(t, env, quiz); !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Errorf("order = %v", got)
	}
}

func TestQuestionEditingKeepsPositionsContiguous(t *testing.T) {
	env := newTestEnv(t)
	quiz := env.createQuiz(t, "Edit", "a", "b", "c")

	if _, err := env.quizzes.AddQuestion(quiz.UUID, QuestionRequest{Text: "d", Options: twoOptions()}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := env.quizzes.AddQuestion(quiz.UUID, QuestionRequest{Position: 2, Text: "x", Options: twoOptions()}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if got := texts(t, env, quiz); !reflect.DeepEqual(got, []string{"a", "x", "b", "c", "d"}) {
		t.Fatalf("after add = %v", got)
	}

	if _, err := env.quizzes.AddQuestion(quiz.UUID, QuestionRequest{Position: 7, Text: "y", Options: twoOptions()}); util.KindOf(err) != util.KindFieldValueRejected {
		t.Errorf("insert past end err = %v", err)
	}

	loaded, _ := env.quizzes.GetQuizWithQuestions(quiz.UUID)
	d := loaded.Questions[4]
	if _, err := env.quizzes.MoveQuestion(quiz.UUID, d.ID, 1); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := texts(t, env, quiz); !reflect.DeepEqual(got, []string{"d", "a", "x", "b", "c"}) {
		t.Fatalf("after move = %v", got)
	}
	if _, err := env.quizzes.MoveQuestion(quiz.UUID, d.ID, 6); util.KindOf(err) != util.KindFieldValueRejected {
		t.Errorf("move out of range err = %v", err)
	}

	x := loaded.Questions[1]
	if err := env.quizzes.RemoveQuestion(quiz.UUID, x.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := texts(t, env, quiz); !reflect.DeepEqual(got, []string{"d", "a", "b", "c"}) {
		t.Fatalf("after remove = %v", got)
	}

	other := env.createQuiz(t, "Other", "z")
	if err := env.quizzes.RemoveQuestion(other.UUID, d.ID); util.KindOf(err) != util.KindNotFound {
		t.Errorf("remove through foreign quiz err = %v", err)
	}
}

func TestQuestionEditsLockedDuringAttempt(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "frank")
	quiz := env.createQuiz(t, "Locked", "a", "b", "c")
	loaded, _ := env.quizzes.GetQuizWithQuestions(quiz.UUID)
	answered := loaded.Questions[0]

	result, err := env.results.StartAttempt(context.Background(), user.ID, quiz)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	env.answer(t, result, true)

	if err := env.quizzes.RemoveQuestion(quiz.UUID, answered.ID); !errors.Is(err, util.ErrQuizInProgress) {
		t.Fatalf("remove err = %v", err)
	}
	if util.ErrQuizInProgress.Kind.Status() != http.StatusConflict {
		t.Errorf("status = %d", util.ErrQuizInProgress.Kind.Status())
	}
	if _, err := env.quizzes.AddQuestion(quiz.UUID, QuestionRequest{Position: 1, Text: "x", Options: twoOptions()}); !errors.Is(err, util.ErrQuizInProgress) {
		t.Fatalf("insert err = %v", err)
	}
	if _, err := env.quizzes.MoveQuestion(quiz.UUID, loaded.Questions[2].ID, 1); !errors.Is(err, util.ErrQuizInProgress) {
		t.Fatalf("move err = %v", err)
	}

	view, err := env.results.NextQuestion(context.Background(), result)
	if err != nil || view.Text != "b" {
		t.Fatalf("next question = %+v, %v", view, err)
	}
	env.answer(t, result, true)
	if outcome := env.answer(t, result, false); !outcome.Finished {
		t.Fatalf("attempt not finished: %+v", outcome)
	}

	if err := env.quizzes.RemoveQuestion(quiz.UUID, answered.ID); err != nil {
		t.Fatalf("remove after finish: %v", err)
	}
	if got := texts(t, env, quiz); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("after remove = %v", got)
	}
}

func TestSetOptionsReplacesChoices(t *testing.T) {
	env := newTestEnv(t)
	quiz := env.createQuiz(t, "Options", "q")
	loaded, _ := env.quizzes.GetQuizWithQuestions(quiz.UUID)
	question := loaded.Questions[0]

	_, err := env.quizzes.SetOptions(quiz.UUID, question.ID, OptionsRequest{
		Text:    "new text",
		Options: []OptionRequest{{Text: "red"}, {Text: "green", IsCorrect: true}, {Text: "blue"}},
	})
	if err != nil {
		t.Fatalf("set options: %v", err)
	}

	loaded, _ = env.quizzes.GetQuizWithQuestions(quiz.UUID)
	question = loaded.Questions[0]
	if question.Text != "new text" || len(question.Options) != 3 {
		t.Fatalf("question = %+v", question)
	}
	if correct := question.CorrectOption(); correct == nil || correct.Text != "green" {
		t.Errorf("correct option = %+v", correct)
	}

	_, err = env.quizzes.SetOptions(quiz.UUID, question.ID, OptionsRequest{Options: []OptionRequest{{Text: "only", IsCorrect: true}}})
	if util.KindOf(err) != util.KindFieldValueRejected {
		t.Errorf("single option err = %v", err)
	}
}

func TestDeleteQuizRemovesPostsAndResults(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "ivan")
	quiz := env.createQuiz(t, "Doomed", "q")
	if _, err := env.results.StartAttempt(context.Background(), user.ID, quiz); err != nil {
		t.Fatalf("start: %v", err)
	}
	post, err := env.posts.Create(user, PostRequest{Title: "About it", Content: "text", QuizUUID: quiz.UUID})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := env.quizzes.DeleteQuiz(quiz.UUID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.quizzes.GetQuiz(quiz.UUID); util.KindOf(err) != util.KindNotFound {
		t.Errorf("quiz still reachable: %v", err)
	}
	if _, err := env.posts.GetByUUID(post.UUID); util.KindOf(err) != util.KindNotFound {
		t.Errorf("post still reachable: %v", err)
	}
}

const seedYAML = `quizzes:
  - title: Colors
    level: Basic
    questions:
      - text: What color is grass?
        options:
          - text: Red
          - text: Green
            is_correct: true
`

func TestSeedFromYAMLIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "quizzes.yaml")
	if err := os.WriteFile(path, []byte(seedYAML), 0644); err != nil {
		t.Fatal(err)
	}

	created, err := env.quizzes.SeedFromYAML(path)
	if err != nil || created != 1 {
		t.Fatalf("first seed = %d, %v", created, err)
	}
	created, err = env.quizzes.SeedFromYAML(path)
	if err != nil || created != 0 {
		t.Fatalf("second seed = %d, %v", created, err)
	}

	items, total, _ := env.quizzes.ListQuizzes(1, 5)
	if total != 1 || items[0].NumQuestions != 1 {
		t.Errorf("quizzes = %+v", items)
	}
}

func TestSeedFileShipsValidQuizzes(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.quizzes.SeedFromYAML(filepath.Join("..", "..", "configs", "quizzes.yaml"))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if created < 1 {
		t.Errorf("created = %d", created)
	}
}
