package service

import (
	"context"
	"errors"
	"testing"

	"snaketests_backend/internal/model"
	"snaketests_backend/internal/util"
)

func TestAttemptFinishesAfterLastQuestion(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")
	quiz := env.createQuiz(t, "Three", "q1", "q2", "q3")

	result, err := env.results.StartAttempt(context.Background(), user.ID, quiz)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if result.State != model.ResultNew || result.LastQuestion != 0 {
		t.Fatalf("new attempt = %+v", result)
	}

	for i, correct := range []bool{true, false, true} {
		view, err := env.results.NextQuestion(context.Background(), result)
		if err != nil {
			t.Fatalf("question %d: %v", i+1, err)
		}
		if view.Position != i+1 || view.Total != 3 {
			t.Errorf("question view = %d/%d, want %d/3", view.Position, view.Total, i+1)
		}
		outcome := env.answer(t, result, correct)
		if outcome.Correct != correct {
			t.Errorf("answer %d correct = %v, want %v", i+1, outcome.Correct, correct)
		}
		if outcome.Finished != (i == 2) {
			t.Errorf("answer %d finished = %v", i+1, outcome.Finished)
		}
	}

	if result.NumCorrectAnswers != 2 || result.NumIncorrectAnswers != 1 || result.LastQuestion != 3 {
		t.Errorf("counters = %+v", result)
	}

	if _, err := env.results.NextQuestion(context.Background(), result); !errors.Is(err, util.ErrAttemptFinished) {
		t.Errorf("NextQuestion after finish err = %v", err)
	}
	if _, err := env.results.SubmitAnswer(context.Background(), result, 1); !errors.Is(err, util.ErrAttemptFinished) {
		t.Errorf("SubmitAnswer after finish err = %v", err)
	}

	detail, err := env.results.Detail(result)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if len(detail.Answers) != 3 || detail.Answers[1].IsCorrect || detail.Answers[1].Chosen != "wrong" || detail.Answers[1].CorrectOption != "right" {
		t.Errorf("detail answers = %+v", detail.Answers)
	}
	if detail.Percentage < 66.6 || detail.Percentage > 66.7 {
		t.Errorf("percentage = %v", detail.Percentage)
	}
}

func TestSingleQuestionQuiz(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "bob")
	quiz := env.createQuiz(t, "Colors", "What color is grass?")

	result, err := env.results.StartAttempt(context.Background(), user.ID, quiz)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	outcome := env.answer(t, result, true)
	if !outcome.Finished || outcome.Result.NumCorrectAnswers != 1 || outcome.Result.Percentage != 100 {
		t.Errorf("outcome = %+v", outcome)
	}
}

func TestStaleSubmitIsRejected(t *testing.T) {
	tests := []struct {
		name      string
		questions []string
		want      error
	}{
		{"attempt still open", []string{"q1", "q2", "q3"}, util.ErrAttemptConflict},
		{"attempt already finished", []string{"q1"}, util.ErrAttemptFinished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			user := env.register(t, "carol")
			quiz := env.createQuiz(t, "Stale", tt.questions...)

			started, err := env.results.StartAttempt(context.Background(), user.ID, quiz)
			if err != nil {
				t.Fatalf("start: %v", err)
			}
			first, _ := env.results.GetResult(quiz, started.UUID)
			second, _ := env.results.GetResult(quiz, started.UUID)

			question, _ := env.results.currentQuestion(first)
			optionID := question.Options[0].ID

			if _, err := env.results.SubmitAnswer(context.Background(), first, optionID); err != nil {
				t.Fatalf("first submit: %v", err)
			}
			if _, err := env.results.SubmitAnswer(context.Background(), second, optionID); !errors.Is(err, tt.want) {
				t.Fatalf("second submit err = %v, want %v", err, tt.want)
			}

			fresh, _ := env.results.GetResult(quiz, started.UUID)
			if fresh.LastQuestion != 1 || fresh.NumCorrectAnswers != 1 {
				t.Errorf("answer counted twice: %+v", fresh)
			}
		})
	}
}

func TestSubmitRejectsForeignOption(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "dave")
	quiz := env.createQuiz(t, "Foreign", "q1", "q2")

	result, _ := env.results.StartAttempt(context.Background(), user.ID, quiz)
	loaded, _ := env.quizzes.GetQuizWithQuestions(quiz.UUID)
	foreign := loaded.Questions[1].Options[0].ID

	if _, err := env.results.SubmitAnswer(context.Background(), result, foreign); !errors.Is(err, util.ErrInvalidChoice) {
		t.Fatalf("err = %v, want ErrInvalidChoice", err)
	}
	if result.LastQuestion != 0 {
		t.Errorf("rejected answer advanced the attempt to %d", result.LastQuestion)
	}
}

func TestStartAttemptOnEmptyQuiz(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "erin")
	quiz := env.createQuiz(t, "Empty")

	_, err := env.results.StartAttempt(context.Background(), user.ID, quiz)
	if !errors.Is(err, util.ErrQuizEmpty) {
		t.Fatalf("err = %v, want ErrQuizEmpty", err)
	}
	if util.KindOf(err).Status() != 406 {
		t.Errorf("status = %d, want 406", util.KindOf(err).Status())
	}
}

func TestGetResultChecksQuiz(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "frank")
	quiz := env.createQuiz(t, "Mine", "q1")
	other := env.createQuiz(t, "Other", "q1")
	result, _ := env.results.StartAttempt(context.Background(), user.ID, quiz)

	tests := []struct {
		name string
		quiz *model.Quiz
		uuid string
		want error
	}{
		{"matching quiz", quiz, result.UUID, nil},
		{"other quiz", other, result.UUID, util.ErrResultNotFound},
		{"malformed", quiz, "not-a-uuid", util.ErrMalformedUUID},
		{"unknown", quiz, model.GenerateUUID(), util.ErrResultNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.results.GetResult(tt.quiz, tt.uuid)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBestResultAndOpenAttempt(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "grace")
	quiz := env.createQuiz(t, "Best", "q1", "q2", "q3")

	detail, err := env.quizzes.Detail(quiz.UUID, user.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.BestResult != 0 || detail.OpenAttempt != nil {
		t.Fatalf("fresh detail = %+v", detail)
	}

	for _, correct := range []int{2, 3, 1} {
		result, _ := env.results.StartAttempt(context.Background(), user.ID, quiz)
		for i := 0; i < 3; i++ {
			env.answer(t, result, i < correct)
		}
	}
	open, _ := env.results.StartAttempt(context.Background(), user.ID, quiz)
	env.answer(t, open, true)

	detail, _ = env.quizzes.Detail(quiz.UUID, user.ID)
	if detail.BestResult != 3 {
		t.Errorf("best = %d, want 3", detail.BestResult)
	}
	if detail.OpenAttempt == nil || detail.OpenAttempt.UUID != open.UUID || detail.OpenAttempt.LastQuestion != 1 {
		t.Errorf("open attempt = %+v, want %s", detail.OpenAttempt, open.UUID)
	}

	// 其他用户看不到别人的成绩
	other := env.register(t, "heidi")
	detail, _ = env.quizzes.Detail(quiz.UUID, other.ID)
	if detail.BestResult != 0 || detail.OpenAttempt != nil {
		t.Errorf("other user detail = %+v", detail)
	}
}
