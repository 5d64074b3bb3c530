package repository

import (
	"errors"
	"reflect"
	"testing"

	"snaketests_backend/internal/model"
)

func questionTexts(t *testing.T, repo *QuizRepository, quiz *model.Quiz) []string {
	t.Helper()
	loaded, err := repo.FindWithQuestions(quiz.UUID)
	if err != nil {
		t.Fatalf("load quiz: %v", err)
	}
	texts := make([]string, 0, len(loaded.Questions))
	for i, q := range loaded.Questions {
		if q.Position != i+1 {
			t.Fatalf("position gap: question %q at %d, want %d", q.Text, q.Position, i+1)
		}
		texts = append(texts, q.Text)
	}
	return texts
}

func TestQuestionOrderingStaysContiguous(t *testing.T) {
	db := openDB(t)
	repo := NewQuizRepository(db)

	quiz := &model.Quiz{Title: "Order", Level: model.LevelBasic}
	for i, text := range []string{"a", "b", "c"} {
		quiz.Questions = append(quiz.Questions, model.Question{Position: i + 1, Text: text})
	}
	if err := repo.Create(quiz); err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	if err := repo.InsertQuestion(quiz.ID, 1, &model.Question{Text: "x"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if got := questionTexts(t, repo, quiz); !reflect.DeepEqual(got, []string{"x", "a", "b", "c"}) {
		t.Fatalf("after insert = %v", got)
	}

	c, err := repo.FindQuestionAt(quiz.ID, 4)
	if err != nil {
		t.Fatalf("find at 4: %v", err)
	}
	if err := repo.MoveQuestion(c, 2); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := questionTexts(t, repo, quiz); !reflect.DeepEqual(got, []string{"x", "c", "a", "b"}) {
		t.Fatalf("after move up = %v", got)
	}

	x, _ := repo.FindQuestionAt(quiz.ID, 1)
	if err := repo.MoveQuestion(x, 4); err != nil {
		t.Fatalf("move down: %v", err)
	}
	if got := questionTexts(t, repo, quiz); !reflect.DeepEqual(got, []string{"c", "a", "b", "x"}) {
		t.Fatalf("after move down = %v", got)
	}

	a, _ := repo.FindQuestionAt(quiz.ID, 2)
	if err := repo.RemoveQuestion(a); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := questionTexts(t, repo, quiz); !reflect.DeepEqual(got, []string{"c", "b", "x"}) {
		t.Fatalf("after remove = %v", got)
	}

	positions, _ := repo.Positions(quiz.ID)
	if !reflect.DeepEqual(positions, []int{1, 2, 3}) {
		t.Errorf("positions = %v", positions)
	}
}

func TestQuizDeleteCascades(t *testing.T) {
	db := openDB(t)
	quizzes := NewQuizRepository(db)
	results := NewResultRepository(db)
	posts := NewPostRepository(db)

	quiz := seedQuiz(t, db, 2)
	user := seedUser(t, db, "dave")
	if err := results.Create(&model.Result{UserID: user.ID, QuizID: quiz.ID, State: model.ResultNew}); err != nil {
		t.Fatalf("create result: %v", err)
	}
	if err := posts.Create(&model.Post{Title: "t", Content: "c", AuthorID: user.ID, QuizID: quiz.ID}); err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := quizzes.Delete(quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, m := range []interface{}{&model.Question{}, &model.Option{}, &model.Result{}, &model.Post{}} {
		var count int64
		db.Model(m).Count(&count)
		if count != 0 {
			t.Errorf("%T rows left after delete: %d", m, count)
		}
	}
}

func TestStructuralEditsWaitForOpenAttempts(t *testing.T) {
	db := openDB(t)
	quizzes := NewQuizRepository(db)
	results := NewResultRepository(db)
	quiz := seedQuiz(t, db, 3)
	user := seedUser(t, db, "erin")

	result := &model.Result{UserID: user.ID, QuizID: quiz.ID, State: model.ResultNew}
	if err := results.Create(result); err != nil {
		t.Fatalf("create result: %v", err)
	}
	first, _ := quizzes.FindQuestionAt(quiz.ID, 1)
	if err := results.ApplyAnswer(result, &model.ResultAnswer{QuestionID: first.ID, OptionID: first.Options[0].ID, IsCorrect: true}, 3); err != nil {
		t.Fatalf("answer: %v", err)
	}

	tests := []struct {
		name string
		edit func() error
	}{
		{"insert", func() error { return quizzes.InsertQuestion(quiz.ID, 1, &model.Question{Text: "new"}) }},
		{"move", func() error {
			q, _ := quizzes.FindQuestionAt(quiz.ID, 3)
			return quizzes.MoveQuestion(q, 1)
		}},
		{"remove", func() error { return quizzes.RemoveQuestion(first) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.edit(); !errors.Is(err, ErrQuizInProgress) {
				t.Fatalf("err = %v, want ErrQuizInProgress", err)
			}
			if total, _ := quizzes.CountQuestions(quiz.ID); total != 3 {
				t.Errorf("questions = %d, want 3", total)
			}
			if at, err := quizzes.FindQuestionAt(quiz.ID, 1); err != nil || at.ID != first.ID {
				t.Errorf("question at 1 = %v, %v", at.ID, err)
			}
		})
	}

	// 作答完成后允许调整
	for i := 2; i <= 3; i++ {
		q, _ := quizzes.FindQuestionAt(quiz.ID, i)
		if err := results.ApplyAnswer(result, &model.ResultAnswer{QuestionID: q.ID, OptionID: q.Options[0].ID, IsCorrect: true}, 3); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}
	if !result.Finished() {
		t.Fatalf("result state = %s", result.State)
	}
	if err := quizzes.RemoveQuestion(first); err != nil {
		t.Fatalf("remove after finish: %v", err)
	}
	positions, _ := quizzes.Positions(quiz.ID)
	if !reflect.DeepEqual(positions, []int{1, 2}) {
		t.Errorf("positions = %v", positions)
	}
}

func TestQuestionPositionIsUnique(t *testing.T) {
	db := openDB(t)
	quiz := seedQuiz(t, db, 2)
	dup := &model.Question{QuizID: quiz.ID, Position: 2, Text: "dup"}
	if err := db.Create(dup).Error; !IsDuplicateKey(err) {
		t.Fatalf("err = %v, want duplicate key", err)
	}
}
