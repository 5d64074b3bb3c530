package model

type QuizLevel string

const (
	LevelBasic    QuizLevel = "Basic"
	LevelMiddle   QuizLevel = "Middle"
	LevelAdvanced QuizLevel = "Advanced"
)

func (l QuizLevel) Valid() bool {
	switch l {
	case LevelBasic, LevelMiddle, LevelAdvanced:
		return true
	}
	return false
}

const MaxQuizTitleLen = 64

// swagger:model Quiz
type Quiz struct {
	PublicModel
	Title       string     `gorm:"size:64;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Level       QuizLevel  `gorm:"size:16;not null;default:'Basic'" json:"level"`
	Image       string     `gorm:"size:255;not null;default:'default_test.png'" json:"image"`
	Questions   []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Question 题目，Position 在同一测验内从 1 开始连续编号
// swagger:model Question
type Question struct {
	BaseModel
	QuizID   uint     `gorm:"not null;uniqueIndex:idx_question_quiz_position" json:"-"`
	Position int      `gorm:"not null;uniqueIndex:idx_question_quiz_position" json:"position"`
	Text     string   `gorm:"type:text;not null" json:"text"`
	Options  []Option `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectOption 返回题目的正确选项
func (q *Question) CorrectOption() *Option {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}

// FindOption 在本题选项中按 ID 查找
func (q *Question) FindOption(optionID uint) *Option {
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return &q.Options[i]
		}
	}
	return nil
}

// swagger:model Option
type Option struct {
	BaseModel
	QuestionID uint   `gorm:"not null;index" json:"-"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"-"`
}

func (Option) TableName() string {
	return "options"
}
