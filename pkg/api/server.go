package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
	"tripsettle/service"
)

var registerOnce sync.Once

func registerValidators(log logger.ILogger) {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		err := v.RegisterValidation("trip_status", func(fl validator.FieldLevel) bool {
			return models.TripStatus(fl.Field().String()).Valid()
		})
		if err != nil {
			log.Error("failed to register trip_status validator", logger.Error(err))
		}
	})
}

type Handler struct {
	svc service.IServiceManager
	log logger.ILogger
}

// New builds the operator API.
func New(svc service.IServiceManager, log logger.ILogger) *gin.Engine {
	registerValidators(log)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(log), cors())

	h := &Handler{svc: svc, log: log}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/trips", h.listTrips)
		api.POST("/trips", h.createTrip)
		api.GET("/trips/:id", h.getTrip)
		api.PATCH("/trips/:id/status", h.changeTripStatus)
		api.POST("/trips/:id/promote", h.promoteTrip)

		api.GET("/settlements", h.listSettlements)
		api.GET("/settlements/export", h.exportSettlements)
		api.GET("/settlements/:id", h.getSettlement)
		api.PATCH("/settlements/:id", h.editSettlement)

		api.GET("/tariffs", h.listTariffs)
		api.POST("/tariffs", h.createTariff)
		api.POST("/tariffs/resolve", h.resolveTariff)
		api.GET("/tariffs/:id", h.getTariff)
		api.PUT("/tariffs/:id", h.updateTariff)
		api.PATCH("/tariffs/:id/active", h.setTariffActive)

		api.GET("/drivers", h.listDrivers)
		api.POST("/drivers", h.createDriver)
		api.GET("/drivers/ranking", h.rankDrivers)
		api.GET("/drivers/:id", h.getDriver)

		api.GET("/catalogs/:kind", h.listCatalog)
		api.POST("/catalogs/:kind", h.createCatalogEntry)
		api.GET("/catalogs/:kind/:id", h.getCatalogEntry)
	}

	return r
}

// Run serves handler on port until ctx is cancelled.
func Run(ctx context.Context, handler http.Handler, port int, log logger.ILogger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", logger.Int("port", port))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("HTTP server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
