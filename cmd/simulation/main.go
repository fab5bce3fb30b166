package main

import (
	"context"
	"log"

	"text-annotation-be/internal/bootstrap"
	"text-annotation-be/internal/domain"
	"text-annotation-be/internal/pkg/logger"
	"text-annotation-be/internal/repository/memory"
	"text-annotation-be/internal/service"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Walks the full command flow against the in-memory store: create projects,
// add and label documents, delete a project, and show the index tracking it
// all. Useful as an executable smoke check without postgres or NATS.
func main() {
	color.Cyan("=== Annotation Backend Simulation ===")

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	store := memory.NewEventStore(pubSub)
	sysLogger := logger.NewNopLogger()

	projects := service.NewProjectService(store)
	documents := service.NewDocumentService(store)
	index := service.NewProjectIndexService(store)
	runner := service.NewRunnerService(store, []service.Pipeline{
		{Name: bootstrap.PipelineProjectIndex, UpstreamType: domain.StreamTypeProject, Handler: index},
	}, nil, sysLogger)
	events := service.NewEventService(projects, documents, index, runner, sysLogger)

	ctx := context.Background()

	// Create two projects
	labelSet, relationSet := uuid.New(), uuid.New()
	alpha, err := events.CreateProject(ctx, "alpha", "2026-09-01", "alice", labelSet, relationSet)
	if err != nil {
		log.Fatalf("create project: %v", err)
	}
	beta, err := events.CreateProject(ctx, "beta", "2026-09-01", "bob", labelSet, relationSet)
	if err != nil {
		log.Fatalf("create project: %v", err)
	}
	color.Green("Created projects %s and %s", alpha, beta)

	ids, _ := index.GetAllProjectIds(ctx)
	color.Yellow("Index now tracks %d projects", len(ids))

	// Add a document and label it
	docId := uuid.New()
	if err := events.AddDocument(ctx, alpha, docId); err != nil {
		log.Fatalf("add document: %v", err)
	}
	if err := events.MarkDocument(ctx, alpha, docId, "alice", domain.NoAiStats()); err != nil {
		log.Fatalf("mark document: %v", err)
	}
	project, _ := events.GetProject(ctx, alpha)
	color.Green("Document %s labelled=%v by %v", docId, project.Labelled[docId], project.LabelledBy[docId])

	// Annotate a per-user document aggregate
	aggId, err := events.CreateDocument(ctx)
	if err != nil {
		log.Fatalf("create document aggregate: %v", err)
	}
	entities := map[string]domain.Entity{
		"e1": {SentenceIndex: 0, Start: 0, End: 4, Type: "PER"},
	}
	relations := map[string]domain.Relation{}
	if err := events.UpdateDocument(ctx, aggId, entities, nil, relations); err != nil {
		log.Fatalf("update document: %v", err)
	}
	doc, _ := events.GetDocument(ctx, aggId)
	color.Green("Aggregate %s carries %d entities at version %d", aggId, len(doc.Entities), doc.Version)

	// Delete one project; the index drops it
	if err := events.DeleteProject(ctx, beta); err != nil {
		log.Fatalf("delete project: %v", err)
	}
	ids, _ = index.GetAllProjectIds(ctx)
	color.Yellow("Index now tracks %d projects after deletion", len(ids))

	// Demonstrate the optimistic concurrency guard
	_, err = store.Append(ctx, alpha, domain.StreamTypeProject, 0, []domain.EventData{})
	if err != nil {
		color.Red("Stale append rejected as expected: %v", err)
	}

	color.Cyan("=== Simulation complete ===")
}
