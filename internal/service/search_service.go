package service

import (
	"fmt"

	"github.com/meilisearch/meilisearch-go"

	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/pkg/logger"
)

const materialsIndex = "materials"

// SearchIndexer keeps the search index in sync with approved materials.
// All calls are best-effort from the caller's point of view.
type SearchIndexer interface {
	IndexMaterial(material *model.Material) error
	DeleteMaterial(id string) error
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
	log    *logger.Logger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, log *logger.Logger) SearchIndexer {
	s := &meiliSearchService{client: client, log: log}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        materialsIndex,
		PrimaryKey: "id",
	})
	if err != nil {
		s.log.Warn("failed to create meilisearch index", "index", materialsIndex, "err", err)
	}

	_, err = s.client.Index(materialsIndex).UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"title", "description", "main_topic", "sub_topic"},
		FilterableAttributes: []string{"main_topic_id", "sub_topic_id"},
		SortableAttributes:   []string{"created_at"},
	})
	if err != nil {
		s.log.Warn("failed to update meilisearch settings", "index", materialsIndex, "err", err)
	}
}

type materialDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	MainTopic   string `json:"main_topic,omitempty"`
	MainTopicID string `json:"main_topic_id,omitempty"`
	SubTopic    string `json:"sub_topic,omitempty"`
	SubTopicID  string `json:"sub_topic_id,omitempty"`
	FileURL     string `json:"file_url"`
	CreatedAt   int64  `json:"created_at"`
}

func (s *meiliSearchService) IndexMaterial(material *model.Material) error {
	doc := materialDocument{
		ID:          material.ID.String(),
		Title:       material.Title,
		Description: material.Description,
		FileURL:     material.FileURL,
		CreatedAt:   material.CreatedAt.Unix(),
	}
	if material.MainTopic != nil {
		doc.MainTopic = material.MainTopic.Name
		doc.MainTopicID = material.MainTopic.ID.String()
	}
	if material.SubTopic != nil {
		doc.SubTopic = material.SubTopic.Name
		doc.SubTopicID = material.SubTopic.ID.String()
	}

	if _, err := s.client.Index(materialsIndex).AddDocuments([]materialDocument{doc}, nil); err != nil {
		return fmt.Errorf("failed to index material %s: %w", doc.ID, err)
	}
	return nil
}

func (s *meiliSearchService) DeleteMaterial(id string) error {
	if _, err := s.client.Index(materialsIndex).DeleteDocument(id); err != nil {
		return fmt.Errorf("failed to delete material %s from index: %w", id, err)
	}
	return nil
}
