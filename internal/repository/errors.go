package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrStaleResult 比较并交换更新未命中，结果已被其他请求推进
var ErrStaleResult = errors.New("result state changed concurrently")

// ErrQuizInProgress 测验仍有未完成的尝试，不能调整题目结构
var ErrQuizInProgress = errors.New("quiz has attempts in progress")

// IsDuplicateKey 唯一约束冲突，兼容未翻译错误的驱动
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
