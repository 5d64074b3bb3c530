package repository

import (
	"snaketests_backend/internal/model"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) Create(result *model.Result) error {
	return r.DB.Create(result).Error
}

func (r *ResultRepository) FindByID(id uint) (*model.Result, error) {
	var result model.Result
	err := r.DB.First(&result, id).Error
	return &result, err
}

func (r *ResultRepository) FindByUUID(uuid string) (*model.Result, error) {
	var result model.Result
	err := r.DB.Preload("Quiz").Where("uuid = ?", uuid).First(&result).Error
	return &result, err
}

// BestCorrect 同一用户同一测验的最高正确数，没有记录时为 0
func (r *ResultRepository) BestCorrect(userID, quizID uint) (int, error) {
	var best int
	err := r.DB.Model(&model.Result{}).
		Select("COALESCE(MAX(num_correct_answers), 0)").
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Scan(&best).Error
	return best, err
}

// LatestOpen 最近一次未完成的尝试，没有时返回 nil
func (r *ResultRepository) LatestOpen(userID, quizID uint) (*model.Result, error) {
	var result model.Result
	err := r.DB.Where("user_id = ? AND quiz_id = ? AND state = ?", userID, quizID, model.ResultNew).
		Order("created_at DESC").
		Order("id DESC").
		First(&result).Error
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ApplyAnswer 以 (state, last_question) 做比较并交换推进结果，同一事务写入答题记录。
// 未命中时返回 ErrStaleResult，result 保持不变。
func (r *ResultRepository) ApplyAnswer(result *model.Result, answer *model.ResultAnswer, total int) error {
	expected := result.LastQuestion
	next := expected + 1

	state := model.ResultNew
	if next >= total {
		state = model.ResultFinished
	}

	counter := "num_incorrect_answers"
	if answer.IsCorrect {
		counter = "num_correct_answers"
	}

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Result{}).
			Where("id = ? AND state = ? AND last_question = ?", result.ID, model.ResultNew, expected).
			Updates(map[string]interface{}{
				"last_question": next,
				"state":         state,
				counter:         gorm.Expr(counter+" + ?", 1),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleResult
		}

		answer.ResultID = result.ID
		answer.Position = next
		return tx.Create(answer).Error
	})
	if err != nil {
		return err
	}

	result.LastQuestion = next
	result.State = state
	if answer.IsCorrect {
		result.NumCorrectAnswers++
	} else {
		result.NumIncorrectAnswers++
	}
	return nil
}

func (r *ResultRepository) ListAnswers(resultID uint) ([]model.ResultAnswer, error) {
	var answers []model.ResultAnswer
	err := r.DB.Where("result_id = ?", resultID).Order("position").Find(&answers).Error
	return answers, err
}

func (r *ResultRepository) ListByUserAndQuiz(userID, quizID uint) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&results).Error
	return results, err
}

func (r *ResultRepository) List(offset, limit int) ([]model.Result, int64, error) {
	var results []model.Result
	var total int64

	if err := r.DB.Model(&model.Result{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Preload("Quiz").Order("id DESC").Offset(offset).Limit(limit).Find(&results).Error
	return results, total, err
}
