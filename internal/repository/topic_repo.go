package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hadracha/guides-portal/internal/model"
)

type TopicRepository interface {
	CreateMain(ctx context.Context, topic *model.MainTopic) error
	CreateSub(ctx context.Context, topic *model.SubTopic) error
	FindMainByID(ctx context.Context, id uuid.UUID) (*model.MainTopic, error)
	FindSubByID(ctx context.Context, id uuid.UUID) (*model.SubTopic, error)
	FindMainByName(ctx context.Context, name string) (*model.MainTopic, error)
	FindSubByName(ctx context.Context, name string, mainTopicID uuid.UUID) (*model.SubTopic, error)
	ListMain(ctx context.Context) ([]*model.MainTopic, error)
	ListSubByMain(ctx context.Context, mainTopicID uuid.UUID) ([]*model.SubTopic, error)
	CountSubTopics(ctx context.Context, mainTopicID uuid.UUID) (int64, error)
	DeleteMain(ctx context.Context, id uuid.UUID) error
	DeleteSub(ctx context.Context, id uuid.UUID) error
	// WithTx returns a repository bound to an open transaction.
	WithTx(tx *gorm.DB) TopicRepository
}

type topicRepository struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) WithTx(tx *gorm.DB) TopicRepository {
	return &topicRepository{db: tx}
}

func (r *topicRepository) CreateMain(ctx context.Context, topic *model.MainTopic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *topicRepository) CreateSub(ctx context.Context, topic *model.SubTopic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *topicRepository) FindMainByID(ctx context.Context, id uuid.UUID) (*model.MainTopic, error) {
	var topic model.MainTopic
	if err := r.db.WithContext(ctx).First(&topic, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) FindSubByID(ctx context.Context, id uuid.UUID) (*model.SubTopic, error) {
	var topic model.SubTopic
	if err := r.db.WithContext(ctx).First(&topic, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) FindMainByName(ctx context.Context, name string) (*model.MainTopic, error) {
	var topic model.MainTopic
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&topic).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) FindSubByName(ctx context.Context, name string, mainTopicID uuid.UUID) (*model.SubTopic, error) {
	var topic model.SubTopic
	err := r.db.WithContext(ctx).
		Where("name = ? AND main_topic_id = ?", name, mainTopicID).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) ListMain(ctx context.Context) ([]*model.MainTopic, error) {
	var topics []*model.MainTopic
	if err := r.db.WithContext(ctx).Order("name").Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepository) ListSubByMain(ctx context.Context, mainTopicID uuid.UUID) ([]*model.SubTopic, error) {
	var topics []*model.SubTopic
	err := r.db.WithContext(ctx).
		Where("main_topic_id = ?", mainTopicID).
		Order("name").
		Find(&topics).Error
	if err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepository) CountSubTopics(ctx context.Context, mainTopicID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SubTopic{}).
		Where("main_topic_id = ?", mainTopicID).
		Count(&count).Error
	return count, err
}

func (r *topicRepository) DeleteMain(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.MainTopic{}, "id = ?", id).Error
}

func (r *topicRepository) DeleteSub(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SubTopic{}, "id = ?", id).Error
}
