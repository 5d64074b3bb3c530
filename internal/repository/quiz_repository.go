package repository

import (
	"snaketests_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func orderedOptions(db *gorm.DB) *gorm.DB {
	return db.Order("options.id")
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("questions.position")
}

// Create 连同题目和选项一起写入
func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(quiz).Error
	})
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.First(&quiz, id).Error
	return &quiz, err
}

func (r *QuizRepository) FindByUUID(uuid string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Where("uuid = ?", uuid).First(&quiz).Error
	return &quiz, err
}

// FindWithQuestions 按 Position 升序预加载题目与选项
func (r *QuizRepository) FindWithQuestions(uuid string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Preload("Questions", orderedQuestions).
		Preload("Questions.Options", orderedOptions).
		Where("uuid = ?", uuid).
		First(&quiz).Error
	return &quiz, err
}

func (r *QuizRepository) List(offset, limit int) ([]model.Quiz, int64, error) {
	var quizzes []model.Quiz
	var total int64

	if err := r.DB.Model(&model.Quiz{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Order("id").Offset(offset).Limit(limit).Find(&quizzes).Error
	return quizzes, total, err
}

func (r *QuizRepository) ListAll() ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Order("id").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Model(quiz).Select("title", "description", "level", "image").Updates(quiz).Error
}

func (r *QuizRepository) CountQuestions(quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}

// CountQuestionsByQuiz 批量统计题目数量
func (r *QuizRepository) CountQuestionsByQuiz(quizIDs []uint) (map[uint]int64, error) {
	type row struct {
		QuizID uint
		Total  int64
	}
	var rows []row
	counts := make(map[uint]int64, len(quizIDs))
	if len(quizIDs) == 0 {
		return counts, nil
	}
	err := r.DB.Model(&model.Question{}).
		Select("quiz_id, COUNT(*) AS total").
		Where("quiz_id IN ?", quizIDs).
		Group("quiz_id").
		Scan(&rows).Error
	for _, row := range rows {
		counts[row.QuizID] = row.Total
	}
	return counts, err
}

func (r *QuizRepository) FindQuestionAt(quizID uint, position int) (*model.Question, error) {
	var question model.Question
	err := r.DB.Preload("Options", orderedOptions).
		Where("quiz_id = ? AND position = ?", quizID, position).
		First(&question).Error
	return &question, err
}

func (r *QuizRepository) FindQuestion(quizID, questionID uint) (*model.Question, error) {
	var question model.Question
	err := r.DB.Preload("Options", orderedOptions).
		Where("quiz_id = ? AND id = ?", quizID, questionID).
		First(&question).Error
	return &question, err
}

func (r *QuizRepository) Positions(quizID uint) ([]int, error) {
	var positions []int
	err := r.DB.Model(&model.Question{}).
		Where("quiz_id = ?", quizID).
		Order("position").
		Pluck("position", &positions).Error
	return positions, err
}

// ensureNoOpenAttempts 题目顺序调整会让进行中的尝试跳题或重复作答，存在 NEW 结果时拒绝
func ensureNoOpenAttempts(tx *gorm.DB, quizID uint) error {
	var open int64
	if err := tx.Model(&model.Result{}).
		Where("quiz_id = ? AND state = ?", quizID, model.ResultNew).
		Count(&open).Error; err != nil {
		return err
	}
	if open > 0 {
		return ErrQuizInProgress
	}
	return nil
}

// shiftPositions 分两步平移 [from, to] 区间内的题目：先写成负数再取反，
// 避免单条 UPDATE 中途撞上 (quiz_id, position) 唯一索引
func shiftPositions(tx *gorm.DB, quizID uint, from, to, delta int) error {
	if err := tx.Model(&model.Question{}).
		Where("quiz_id = ? AND position BETWEEN ? AND ?", quizID, from, to).
		Update("position", gorm.Expr("-(position + ?)", delta)).Error; err != nil {
		return err
	}
	return tx.Model(&model.Question{}).
		Where("quiz_id = ? AND position < 0", quizID).
		Update("position", gorm.Expr("-position")).Error
}

func maxPosition(tx *gorm.DB, quizID uint) (int, error) {
	var max int
	err := tx.Model(&model.Question{}).
		Where("quiz_id = ?", quizID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max, err
}

// InsertQuestion 在 position 处插入，后续题目顺延
func (r *QuizRepository) InsertQuestion(quizID uint, position int, question *model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := ensureNoOpenAttempts(tx, quizID); err != nil {
			return err
		}
		last, err := maxPosition(tx, quizID)
		if err != nil {
			return err
		}
		if position <= last {
			if err := shiftPositions(tx, quizID, position, last, 1); err != nil {
				return err
			}
		}
		question.QuizID = quizID
		question.Position = position
		return tx.Create(question).Error
	})
}

// MoveQuestion 把题目移动到 to，中间的题目整体平移
func (r *QuizRepository) MoveQuestion(question *model.Question, to int) error {
	from := question.Position
	if from == to {
		return nil
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := ensureNoOpenAttempts(tx, question.QuizID); err != nil {
			return err
		}
		// 0 不属于任何合法位置，先把被移动的题目挪开
		if err := tx.Model(question).Update("position", 0).Error; err != nil {
			return err
		}
		var err error
		if to < from {
			err = shiftPositions(tx, question.QuizID, to, from-1, 1)
		} else {
			err = shiftPositions(tx, question.QuizID, from+1, to, -1)
		}
		if err != nil {
			return err
		}
		if err := tx.Model(question).Update("position", to).Error; err != nil {
			return err
		}
		question.Position = to
		return nil
	})
}

// RemoveQuestion 物理删除题目与选项，后续题目前移
func (r *QuizRepository) RemoveQuestion(question *model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := ensureNoOpenAttempts(tx, question.QuizID); err != nil {
			return err
		}
		if err := tx.Unscoped().Where("question_id = ?", question.ID).Delete(&model.Option{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&model.Question{}, question.ID).Error; err != nil {
			return err
		}
		last, err := maxPosition(tx, question.QuizID)
		if err != nil {
			return err
		}
		if question.Position >= last {
			return nil
		}
		return shiftPositions(tx, question.QuizID, question.Position+1, last, -1)
	})
}

// ReplaceOptions 整体替换某题的选项
func (r *QuizRepository) ReplaceOptions(question *model.Question, options []model.Option) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("question_id = ?", question.ID).Delete(&model.Option{}).Error; err != nil {
			return err
		}
		for i := range options {
			options[i].QuestionID = question.ID
		}
		if err := tx.Create(&options).Error; err != nil {
			return err
		}
		question.Options = options
		return nil
	})
}

func (r *QuizRepository) UpdateQuestionText(question *model.Question, text string) error {
	question.Text = text
	return r.DB.Model(question).Update("text", text).Error
}

// Delete 级联删除题目、选项、答题记录与帖子
func (r *QuizRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		questionIDs := tx.Model(&model.Question{}).Select("id").Where("quiz_id = ?", id)
		if err := tx.Unscoped().Where("question_id IN (?)", questionIDs).Delete(&model.Option{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("quiz_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		resultIDs := tx.Model(&model.Result{}).Select("id").Where("quiz_id = ?", id)
		if err := tx.Where("result_id IN (?)", resultIDs).Delete(&model.ResultAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&model.Result{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&model.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Quiz{}, id).Error
	})
}
