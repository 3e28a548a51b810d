package routes

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"nimbusdrive/config"
	"nimbusdrive/services"
)

// ServiceContainer holds every service the route handlers depend on.
type ServiceContainer struct {
	DB                  *mongo.Database
	JWTSecret           string
	PermissionService   *services.PermissionService
	FolderService       *services.FolderService
	FileService         *services.FileService
	ImportService       *services.ImportService
	TrashService        *services.TrashService
	LinkService         *services.LinkService
	SearchService       *services.SearchService
	NotificationService *services.NotificationService
	BlobStore           services.BlobStore
}

// NewServiceContainer wires the full service graph from configuration.
func NewServiceContainer(db *mongo.Database, cfg *config.Config) (*ServiceContainer, error) {
	b2Service, err := services.NewB2Service(cfg.B2KeyID, cfg.B2ApplicationKey, cfg.B2BucketName)
	if err != nil {
		return nil, err
	}

	permissionService := services.NewPermissionService(db)
	fileService := services.NewFileService(db, permissionService, b2Service, cfg.MaxFileSize)

	return &ServiceContainer{
		DB:                  db,
		JWTSecret:           cfg.JWTSecret,
		PermissionService:   permissionService,
		FolderService:       services.NewFolderService(db, permissionService),
		FileService:         fileService,
		ImportService:       services.NewImportService(db, fileService, permissionService),
		TrashService:        services.NewTrashService(db, b2Service),
		LinkService:         services.NewLinkService(db, permissionService),
		SearchService:       services.NewSearchService(db, permissionService),
		NotificationService: services.NewNotificationService(db, cfg.MailgunAPIKey, cfg.MailgunDomain, cfg.MailgunFromEmail),
		BlobStore:           b2Service,
	}, nil
}

// SetupRoutes registers every route group on the API router.
func SetupRoutes(api *gin.RouterGroup, container *ServiceContainer) {
	RegisterFolderRoutes(api, container)
	RegisterFileRoutes(api, container)
	RegisterShareRoutes(api, container)
	RegisterTrashRoutes(api, container)
	RegisterLinkRoutes(api, container)
	RegisterSearchRoutes(api, container)
}
