package repository

import (
	"context"

	"eduverse_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// Create 连同题目和选项一起写入，调用方需先 AssignIDs
func (r *QuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	return r.DB.WithContext(ctx).Create(quiz).Error
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&quiz, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "quiz %s", id)
	}
	return &quiz, nil
}

func (r *QuizRepository) ListByModule(ctx context.Context, moduleID string) ([]model.Quiz, error) {
	var list []model.Quiz
	err := r.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("module_id = ?", moduleID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

// Delete 先删选项和题目再删测验本身
func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	return r.deleteQuizzes(ctx, []string{id})
}

func (r *QuizRepository) DeleteByModules(ctx context.Context, moduleIDs []string) error {
	if len(moduleIDs) == 0 {
		return nil
	}
	var ids []string
	if err := r.DB.WithContext(ctx).Model(&model.Quiz{}).Where("module_id IN ?", moduleIDs).Pluck("id", &ids).Error; err != nil {
		return err
	}
	return r.deleteQuizzes(ctx, ids)
}

func (r *QuizRepository) deleteQuizzes(ctx context.Context, quizIDs []string) error {
	if len(quizIDs) == 0 {
		return nil
	}
	db := r.DB.WithContext(ctx)
	questionIDs := db.Model(&model.QuizQuestion{}).Select("id").Where("quiz_id IN ?", quizIDs)
	if err := db.Where("question_id IN (?)", questionIDs).Delete(&model.QuizOption{}).Error; err != nil {
		return err
	}
	if err := db.Where("quiz_id IN ?", quizIDs).Delete(&model.QuizQuestion{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", quizIDs).Delete(&model.Quiz{}).Error
}
