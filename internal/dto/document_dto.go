package dto

import (
	"encoding/json"

	"text-annotation-be/internal/domain"

	"github.com/google/uuid"
)

// SaveDocumentRequest carries an annotator's labels. Labelled additionally
// marks the document done for this user in the project.
type SaveDocumentRequest struct {
	Entities         map[string]domain.Entity   `json:"entities"`
	SentenceEntities []json.RawMessage          `json:"sentenceEntities"`
	Relations        map[string]domain.Relation `json:"relations"`
	Labelled         bool                       `json:"labelled"`
}

// DocumentViewResponse is the combined aggregate + project labelling view
// served to the annotation frontend.
type DocumentViewResponse struct {
	AggregateId         uuid.UUID                  `json:"aggregate_id"`
	Entities            map[string]domain.Entity   `json:"entities"`
	SentenceEntities    []json.RawMessage          `json:"sentenceEntities"`
	Relations           map[string]domain.Relation `json:"relations"`
	RecEntities         map[string]domain.Entity   `json:"recEntities"`
	RecSentenceEntities []json.RawMessage          `json:"recSentenceEntities"`
	RecRelations        map[string]domain.Relation `json:"recRelations"`
	Labelled            bool                       `json:"labelled"`
	LabelledBy          []string                   `json:"labelled_by"`
	AiStats             domain.AiStats             `json:"ai_stats"`
}

// ToDocumentViewResponse merges one annotator's document aggregate with the
// project's labelling state for that document.
func ToDocumentViewResponse(aggregateId uuid.UUID, doc *domain.Document, project *domain.Project, docId uuid.UUID) DocumentViewResponse {
	return DocumentViewResponse{
		AggregateId:         aggregateId,
		Entities:            doc.Entities,
		SentenceEntities:    doc.SentenceEntities,
		Relations:           doc.Relations,
		RecEntities:         doc.RecEntities,
		RecSentenceEntities: doc.RecSentenceEntities,
		RecRelations:        doc.RecRelations,
		Labelled:            project.Labelled[docId],
		LabelledBy:          project.LabelledBy[docId],
		AiStats:             project.AiStats[docId],
	}
}
