package controller

import (
	"text-annotation-be/internal/domain"
	"text-annotation-be/internal/dto"
	"text-annotation-be/internal/pkg/serverutils"
	"text-annotation-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IProjectController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	ListDocuments(ctx *fiber.Ctx) error
	AddDocument(ctx *fiber.Ctx) error
	RemoveDocument(ctx *fiber.Ctx) error
	MarkDocument(ctx *fiber.Ctx) error
	UnmarkDocument(ctx *fiber.Ctx) error
}

type projectController struct {
	events service.IEventService
}

func NewProjectController(events service.IEventService) IProjectController {
	return &projectController{events: events}
}

func (c *projectController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/project/v1")
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Patch(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Get(":id/documents", c.ListDocuments)
	h.Post(":id/documents", c.AddDocument)
	h.Delete(":id/documents", c.RemoveDocument)
	h.Post(":id/documents/:docId/mark", c.MarkDocument)
	h.Post(":id/documents/:docId/unmark", c.UnmarkDocument)
}

func (c *projectController) GetAll(ctx *fiber.Ctx) error {
	projects, err := c.events.GetAllProjects(ctx.Context())
	if err != nil {
		return err
	}

	res := make([]dto.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		res = append(res, dto.ToProjectResponse(p))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all projects", res))
}

func (c *projectController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateProjectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return domain.NewValidationError("%s", err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	id, err := c.events.CreateProject(ctx.Context(), req.Name, req.Date, req.Creator, req.LabelSetId, req.RelationSetId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create project", dto.CreateProjectResponse{Id: id}))
}

func (c *projectController) Show(ctx *fiber.Ctx) error {
	id, err := parseId(ctx, "id")
	if err != nil {
		return err
	}

	project, err := c.events.GetProject(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show project", dto.ToProjectResponse(project)))
}

func (c *projectController) Update(ctx *fiber.Ctx) error {
	id, err := parseId(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateProjectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return domain.NewValidationError("%s", err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.events.UpdateProject(ctx.Context(), id, req.Name, req.Creator); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success update project", nil))
}

func (c *projectController) Delete(ctx *fiber.Ctx) error {
	id, err := parseId(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.events.DeleteProject(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete project", nil))
}

func (c *projectController) ListDocuments(ctx *fiber.Ctx) error {
	id, err := parseId(ctx, "id")
	if err != nil {
		return err
	}

	project, err := c.events.GetProject(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get project documents", dto.ToProjectDocumentStatuses(project)))
}

func (c *projectController) AddDocument(ctx *fiber.Ctx) error {
	id, err := parseId(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.ProjectDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return domain.NewValidationError("%s", err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The domain treats re-adding as a no-op; the API reports it.
	project, err := c.events.GetProject(ctx.Context(), id)
	if err != nil {
		return err
	}
	if _, exists := project.Labelled[req.DocId]; exists {
		return domain.NewValidationError("document already in project")
	}

	if err := c.events.AddDocument(ctx.Context(), id, req.DocId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success add document", nil))
}

func (c *projectController) RemoveDocument(ctx *fiber.Ctx) error {
	id, err := parseId(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.ProjectDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return domain.NewValidationError("%s", err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.events.RemoveDocument(ctx.Context(), id, req.DocId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success remove document", nil))
}

func (c *projectController) MarkDocument(ctx *fiber.Ctx) error {
	id, err := parseId(ctx, "id")
	if err != nil {
		return err
	}
	docId, err := parseId(ctx, "docId")
	if err != nil {
		return err
	}

	var req dto.MarkDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return domain.NewValidationError("%s", err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.events.MarkDocument(ctx.Context(), id, docId, req.UserId, domain.NoAiStats()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success mark document", nil))
}

func (c *projectController) UnmarkDocument(ctx *fiber.Ctx) error {
	id, err := parseId(ctx, "id")
	if err != nil {
		return err
	}
	docId, err := parseId(ctx, "docId")
	if err != nil {
		return err
	}

	if err := c.events.UnmarkDocument(ctx.Context(), id, docId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success unmark document", nil))
}

func parseId(ctx *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(param))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("invalid %s", param)
	}
	return id, nil
}
