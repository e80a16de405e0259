package api

import (
	documentDelivery "ladinglens-backend/internal/document/delivery"
	documentRepo "ladinglens-backend/internal/document/repository"
	processingDelivery "ladinglens-backend/internal/processing/delivery"
	processingUsecase "ladinglens-backend/internal/processing/usecase"
	"ladinglens-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	config            *config.Config
	processingHandler *processingDelivery.ProcessingHandler
	documentHandler   *documentDelivery.DocumentHandler
}

func NewHandler(
	processor *processingUsecase.Processor,
	docRepo documentRepo.DocumentRepository,
	incidents documentRepo.IncidentRepository,
	cfg *config.Config,
) *Handler {
	return &Handler{
		config:            cfg,
		processingHandler: processingDelivery.NewProcessingHandler(processor),
		documentHandler:   documentDelivery.NewDocumentHandler(docRepo, incidents),
	}
}

func (h *Handler) Start(addr string) error {
	return h.engine().Run(addr)
}

// engine builds the configured router. The mode has to be set before the
// engine is constructed or it does not apply to it.
func (h *Handler) engine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Setup routes
	SetupRoutes(r, h.processingHandler, h.documentHandler)

	return r
}
