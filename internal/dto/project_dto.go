package dto

import (
	"text-annotation-be/internal/domain"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Name          string    `json:"name" validate:"required"`
	Date          string    `json:"date" validate:"required"`
	Creator       string    `json:"creator" validate:"required"`
	LabelSetId    uuid.UUID `json:"label_set_id" validate:"required"`
	RelationSetId uuid.UUID `json:"relation_set_id" validate:"required"`
}

type CreateProjectResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateProjectRequest struct {
	Name    string `json:"name" validate:"required"`
	Creator string `json:"creator" validate:"required"`
}

type ProjectResponse struct {
	Id            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Date          string      `json:"date"`
	Creator       string      `json:"creator"`
	LabelSetId    uuid.UUID   `json:"label_set_id"`
	RelationSetId uuid.UUID   `json:"relation_set_id"`
	Documents     []uuid.UUID `json:"documents"`
}

// ProjectDocumentStatus is one row of a project's document listing.
type ProjectDocumentStatus struct {
	DocId      uuid.UUID      `json:"doc_id"`
	Labelled   bool           `json:"labelled"`
	LabelledBy []string       `json:"labelled_by"`
	AiStats    domain.AiStats `json:"ai_stats"`
}

type ProjectDocumentRequest struct {
	DocId uuid.UUID `json:"doc_id" validate:"required"`
}

type MarkDocumentRequest struct {
	UserId string `json:"user_id" validate:"required"`
}

// ToProjectResponse maps the aggregate to its list/detail representation.
func ToProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		Id:            p.Id,
		Name:          p.Name,
		Date:          p.Date,
		Creator:       p.Creator,
		LabelSetId:    p.LabelSetId,
		RelationSetId: p.RelationSetId,
		Documents:     p.Documents,
	}
}

// ToProjectDocumentStatuses flattens the labelling maps into per-document
// rows, in the project's document order.
func ToProjectDocumentStatuses(p *domain.Project) []ProjectDocumentStatus {
	statuses := make([]ProjectDocumentStatus, 0, len(p.Documents))
	for _, docId := range p.Documents {
		statuses = append(statuses, ProjectDocumentStatus{
			DocId:      docId,
			Labelled:   p.Labelled[docId],
			LabelledBy: p.LabelledBy[docId],
			AiStats:    p.AiStats[docId],
		})
	}
	return statuses
}
