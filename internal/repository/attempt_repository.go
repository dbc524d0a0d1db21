package repository

import (
	"errors"

	"studytest_backend/internal/model"
	"studytest_backend/internal/util"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.TestAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id string) (*model.TestAttempt, error) {
	var attempt model.TestAttempt
	err := r.DB.Where("id = ?", id).First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// List 按完成时间倒序分页；testID 为空时返回全部记录
func (r *AttemptRepository) List(testID string, page, limit int) ([]*model.TestAttempt, int64, error) {
	var (
		attempts []*model.TestAttempt
		total    int64
	)

	query := r.DB.Model(&model.TestAttempt{})
	if testID != "" {
		query = query.Where("test_id = ?", testID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 列表不返回内嵌试卷，减少传输
	err := query.Omit("full_test").
		Order("completed_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}

func (r *AttemptRepository) Delete(id string) error {
	res := r.DB.Where("id = ?", id).Delete(&model.TestAttempt{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrAttemptNotFound
	}
	return nil
}
