package controller

import (
	"context"

	"text-annotation-be/internal/domain"
	"text-annotation-be/internal/dto"
	"text-annotation-be/internal/entity"
	"text-annotation-be/internal/pkg/logger"
	"text-annotation-be/internal/pkg/serverutils"
	"text-annotation-be/internal/repository/contract"
	"text-annotation-be/internal/repository/specification"
	"text-annotation-be/internal/service"
	"text-annotation-be/pkg/dispatcher"
	"text-annotation-be/pkg/stats"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
	Predict(ctx *fiber.Ctx) error
}

// documentController serves the per-annotator document view. Every
// (project, doc, user) triple gets its own Document aggregate, resolved or
// created through the registration store on first access.
type documentController struct {
	events     service.IEventService
	registers  contract.DocRegisterRepository
	dispatcher *dispatcher.Dispatcher
	calculator stats.Calculator
	log        logger.ILogger
}

func NewDocumentController(
	events service.IEventService,
	registers contract.DocRegisterRepository,
	disp *dispatcher.Dispatcher,
	calculator stats.Calculator,
	log logger.ILogger,
) IDocumentController {
	return &documentController{
		events:     events,
		registers:  registers,
		dispatcher: disp,
		calculator: calculator,
		log:        log,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Get(":projectId/:docId/:userId", c.Show)
	h.Patch(":projectId/:docId/:userId", c.Save)
	h.Post(":projectId/:docId/:userId/predict", c.Predict)
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	projectId, docId, userId, err := c.parseTriple(ctx)
	if err != nil {
		return err
	}

	project, err := c.events.GetProject(ctx.Context(), projectId)
	if err != nil {
		return err
	}
	if _, ok := project.Labelled[docId]; !ok {
		return domain.ErrDocumentNotInProject
	}

	aggregateId, err := c.resolveAggregate(ctx.Context(), projectId, docId, userId)
	if err != nil {
		return err
	}

	doc, err := c.events.GetDocument(ctx.Context(), aggregateId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show document",
		dto.ToDocumentViewResponse(aggregateId, doc, project, docId)))
}

func (c *documentController) Save(ctx *fiber.Ctx) error {
	projectId, docId, userId, err := c.parseTriple(ctx)
	if err != nil {
		return err
	}

	var req dto.SaveDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return domain.NewValidationError("%s", err.Error())
	}

	aggregateId, err := c.resolveAggregate(ctx.Context(), projectId, docId, userId)
	if err != nil {
		return err
	}

	err = c.events.UpdateDocument(ctx.Context(), aggregateId, req.Entities, req.SentenceEntities, req.Relations)
	if err != nil {
		return err
	}

	if req.Labelled {
		doc, err := c.events.GetDocument(ctx.Context(), aggregateId)
		if err != nil {
			return err
		}
		aiStats, err := c.calculator.Calculate(ctx.Context(), doc)
		if err != nil {
			return err
		}
		if err := c.events.MarkDocument(ctx.Context(), projectId, docId, userId, aiStats); err != nil {
			return err
		}
		// Outbound calls are best effort; the labelling itself is already
		// committed.
		if err := c.dispatcher.NotifyDocumentLabelled(ctx.Context(), docId.String(), true); err != nil {
			c.log.Warn("DocumentController", "failed to notify document service", map[string]interface{}{
				"doc_id": docId.String(),
				"error":  err.Error(),
			})
		}
		err = c.dispatcher.RequestTraining(ctx.Context(), map[string]interface{}{
			"project_id": projectId.String(),
		})
		if err != nil {
			c.log.Warn("DocumentController", "failed to request training", map[string]interface{}{
				"project_id": projectId.String(),
				"error":      err.Error(),
			})
		}
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success save document", nil))
}

// Predict fills the caller's recommendations. When another annotator already
// labelled the document their labels are reused directly; otherwise an AI
// prediction request goes out and the result arrives later on the bus.
func (c *documentController) Predict(ctx *fiber.Ctx) error {
	projectId, docId, userId, err := c.parseTriple(ctx)
	if err != nil {
		return err
	}

	project, err := c.events.GetProject(ctx.Context(), projectId)
	if err != nil {
		return err
	}
	if _, ok := project.Labelled[docId]; !ok {
		return domain.ErrDocumentNotInProject
	}

	aggregateId, err := c.resolveAggregate(ctx.Context(), projectId, docId, userId)
	if err != nil {
		return err
	}

	if project.Labelled[docId] {
		if err := c.reuseLabels(ctx.Context(), project, docId, userId, aggregateId); err != nil {
			return err
		}
		return ctx.JSON(serverutils.SuccessResponse[any]("Success reuse annotations", nil))
	}

	err = c.dispatcher.RequestPrediction(ctx.Context(), map[string]interface{}{
		"project_id":  projectId.String(),
		"document_id": docId.String(),
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success request prediction", nil))
}

// reuseLabels copies the labels of the first annotator who marked the doc
// into the caller's recommendation slots.
func (c *documentController) reuseLabels(ctx context.Context, project *domain.Project, docId uuid.UUID, userId string, aggregateId uuid.UUID) error {
	for _, labeller := range project.LabelledBy[docId] {
		if labeller == userId {
			continue
		}
		reg, err := c.registers.FindOne(ctx,
			specification.ByProjectID{ProjectID: project.Id},
			specification.ByDocID{DocID: docId},
			specification.ByUserID{UserID: labeller},
		)
		if err != nil {
			return err
		}
		if reg == nil {
			continue
		}
		theirs, err := c.events.GetDocument(ctx, reg.AggregateId)
		if err != nil {
			return err
		}
		return c.events.UpdateDocumentRec(ctx, aggregateId, theirs.Entities, theirs.SentenceEntities, theirs.Relations)
	}
	return domain.ErrAggregateNotFound
}

// resolveAggregate finds the Document aggregate registered for the triple,
// creating the aggregate and its registration on first access.
func (c *documentController) resolveAggregate(ctx context.Context, projectId, docId uuid.UUID, userId string) (uuid.UUID, error) {
	reg, err := c.registers.FindOne(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.ByDocID{DocID: docId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return uuid.Nil, err
	}
	if reg != nil {
		return reg.AggregateId, nil
	}

	aggregateId, err := c.events.CreateDocument(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	err = c.registers.Create(ctx, &entity.DocRegister{
		AggregateId: aggregateId,
		ProjectId:   projectId,
		DocId:       docId,
		UserId:      userId,
	})
	if err != nil {
		return uuid.Nil, err
	}
	c.log.Info("DocumentController", "registered document aggregate", map[string]interface{}{
		"project_id":   projectId.String(),
		"doc_id":       docId.String(),
		"user_id":      userId,
		"aggregate_id": aggregateId.String(),
	})
	return aggregateId, nil
}

func (c *documentController) parseTriple(ctx *fiber.Ctx) (uuid.UUID, uuid.UUID, string, error) {
	projectId, err := parseId(ctx, "projectId")
	if err != nil {
		return uuid.Nil, uuid.Nil, "", err
	}
	docId, err := parseId(ctx, "docId")
	if err != nil {
		return uuid.Nil, uuid.Nil, "", err
	}
	userId := ctx.Params("userId")
	if userId == "" {
		return uuid.Nil, uuid.Nil, "", domain.NewValidationError("invalid userId")
	}
	return projectId, docId, userId, nil
}
