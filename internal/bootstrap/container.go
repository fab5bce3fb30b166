package bootstrap

import (
	"log"

	"text-annotation-be/internal/config"
	"text-annotation-be/internal/controller"
	"text-annotation-be/internal/domain"
	"text-annotation-be/internal/pkg/logger"
	"text-annotation-be/internal/repository/implementation"
	"text-annotation-be/internal/service"
	"text-annotation-be/pkg/dispatcher"
	pktNats "text-annotation-be/pkg/nats"
	"text-annotation-be/pkg/stats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

// PipelineProjectIndex names the process pipeline that projects Project
// events into the project index. The name keys the tracking cursor, so it is
// part of the persisted state.
const PipelineProjectIndex = "project-index"

type Container struct {
	// Controllers
	ProjectController  controller.IProjectController
	DocumentController controller.IDocumentController

	// Background services (exposed for main.go to run)
	RunnerService   service.IRunnerService
	ListenerService service.IListenerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. In-process event bus for append notifications
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// 3. Persistence
	store := implementation.NewEventStore(db, pubSub)
	registers := implementation.NewDocRegisterRepository(db)

	// 4. Services
	projectService := service.NewProjectService(store)
	documentService := service.NewDocumentService(store)
	indexService := service.NewProjectIndexService(store)

	pipelines := []service.Pipeline{
		{
			Name:         PipelineProjectIndex,
			UpstreamType: domain.StreamTypeProject,
			Handler:      indexService,
		},
	}
	runnerService := service.NewRunnerService(store, pipelines, pubSub, sysLogger)

	eventService := service.NewEventService(projectService, documentService, indexService, runnerService, sysLogger)

	// 5. Outbound collaborators
	disp := dispatcher.New(cfg.Services.DocAddress, cfg.Services.AiAddress)
	calculator := stats.NewNoopCalculator()

	// 6. NATS listener
	var listenerService service.IListenerService
	natsSub, err := pktNats.NewSubscriber(cfg.Messaging.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		listenerService = service.NewListenerService(natsSub, eventService, registers, sysLogger)
	}

	// 7. Controllers
	projectController := controller.NewProjectController(eventService)
	documentController := controller.NewDocumentController(eventService, registers, disp, calculator, sysLogger)

	return &Container{
		ProjectController:  projectController,
		DocumentController: documentController,
		RunnerService:      runnerService,
		ListenerService:    listenerService,
		Logger:             sysLogger,
	}
}
