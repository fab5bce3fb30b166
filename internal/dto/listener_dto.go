package dto

import (
	"encoding/json"

	"text-annotation-be/internal/domain"
)

// Subjects consumed from the annotation bus.
const (
	SubjectAiUpdate         = "annotation.ai_update"
	SubjectDocumentDeleted  = "annotation.document_deleted"
	SubjectDocumentModified = "annotation.document_modified"
)

// AiUpdateMessage carries fresh predictions from the AI service for one
// document of one project.
type AiUpdateMessage struct {
	ProjectId           string                     `json:"project_id"`
	DocumentId          string                     `json:"document_id"`
	RecEntities         map[string]domain.Entity   `json:"recEntities"`
	RecSentenceEntities []json.RawMessage          `json:"recSentenceEntities"`
	RecRelations        map[string]domain.Relation `json:"recRelations"`
}

// DocumentIdsMessage announces upstream document deletion or modification.
type DocumentIdsMessage struct {
	DocumentIds []string `json:"document_ids"`
}
