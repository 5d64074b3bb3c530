package model

type ResultState string

const (
	ResultNew      ResultState = "NEW"
	ResultFinished ResultState = "FINISHED"
)

// Result 一次答题尝试，同一用户同一测验可以有多条
// swagger:model Result
type Result struct {
	PublicModel
	UserID              uint           `gorm:"not null;index:idx_result_user_quiz" json:"-"`
	QuizID              uint           `gorm:"not null;index:idx_result_user_quiz" json:"-"`
	State               ResultState    `gorm:"size:16;not null;default:'NEW'" json:"state"`
	LastQuestion        int            `gorm:"not null;default:0" json:"lastQuestion"`
	NumCorrectAnswers   int            `gorm:"not null;default:0" json:"numCorrectAnswers"`
	NumIncorrectAnswers int            `gorm:"not null;default:0" json:"numIncorrectAnswers"`
	Quiz                Quiz           `gorm:"foreignKey:QuizID" json:"-"`
	Answers             []ResultAnswer `gorm:"foreignKey:ResultID" json:"answers,omitempty"`
}

func (Result) TableName() string {
	return "results"
}

func (r *Result) OwnerID() uint {
	return r.UserID
}

func (r *Result) Finished() bool {
	return r.State == ResultFinished
}

// ResultAnswer 答题记录，与计数更新在同一事务中写入
// swagger:model ResultAnswer
type ResultAnswer struct {
	BaseModel
	ResultID   uint `gorm:"not null;index" json:"-"`
	QuestionID uint `gorm:"not null" json:"questionId"`
	OptionID   uint `gorm:"not null" json:"optionId"`
	Position   int  `gorm:"not null" json:"position"`
	IsCorrect  bool `gorm:"not null" json:"isCorrect"`
}

func (ResultAnswer) TableName() string {
	return "result_answers"
}
