// Package api exposes the equipment service over HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pedalpoint/equipment-backend/bicycle"
	"github.com/pedalpoint/equipment-backend/internal/apperr"
	"github.com/pedalpoint/equipment-backend/internal/middleware"
	"github.com/pedalpoint/equipment-backend/internal/o11y"
	"github.com/pedalpoint/equipment-backend/lock"
	"github.com/pedalpoint/equipment-backend/network"
	"github.com/pedalpoint/equipment-backend/station"
)

type API struct {
	r  *gin.Engine
	br *bicycle.Repository
	lr *lock.Repository
	sr *station.Repository
	nw *network.Service
}

func New(br *bicycle.Repository, lr *lock.Repository, sr *station.Repository, nw *network.Service, obs *o11y.Observability, metricsUsername, metricsPassword string) *API {
	a := &API{
		r:  gin.New(),
		br: br,
		lr: lr,
		sr: sr,
		nw: nw,
	}

	a.r.Use(gin.Recovery())
	a.r.Use(middleware.Tracing())
	a.r.Use(middleware.Logging(obs.Logger))
	a.r.Use(middleware.Metrics(obs.Registry))
	network.RegisterMetrics(obs.Registry)

	a.r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	metrics := a.r.Group("/metrics")
	if metricsUsername != "" {
		metrics.Use(gin.BasicAuth(gin.Accounts{metricsUsername: metricsPassword}))
	}
	metrics.GET("", gin.WrapH(promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{})))

	a.r.GET("/bicicleta", a.listBicyclesHandler)
	a.r.POST("/bicicleta", a.createBicycleHandler)
	a.r.POST("/bicicleta/integrarNaRede", a.integrateBicycleHandler)
	a.r.POST("/bicicleta/retirarDaRede", a.removeBicycleHandler)
	a.r.GET("/bicicleta/:id", a.getBicycleHandler)
	a.r.PUT("/bicicleta/:id", a.updateBicycleHandler)
	a.r.DELETE("/bicicleta/:id", a.deleteBicycleHandler)
	a.r.POST("/bicicleta/:id/status/:acao", a.bicycleStatusHandler)

	a.r.GET("/tranca", a.listLocksHandler)
	a.r.POST("/tranca", a.createLockHandler)
	a.r.POST("/tranca/integrarNaRede", a.integrateLockHandler)
	a.r.POST("/tranca/retirarDaRede", a.removeLockHandler)
	a.r.GET("/tranca/:id", a.getLockHandler)
	a.r.PUT("/tranca/:id", a.updateLockHandler)
	a.r.DELETE("/tranca/:id", a.deleteLockHandler)
	a.r.POST("/tranca/:id/status/:acao", a.lockStatusHandler)
	a.r.GET("/tranca/:id/bicicleta", a.seatedBicycleHandler)
	a.r.POST("/tranca/:id/trancar", a.seatHandler)
	a.r.POST("/tranca/:id/destrancar", a.releaseHandler)

	a.r.GET("/totem", a.listStationsHandler)
	a.r.POST("/totem", a.createStationHandler)
	a.r.GET("/totem/:id", a.getStationHandler)
	a.r.PUT("/totem/:id", a.updateStationHandler)
	a.r.DELETE("/totem/:id", a.deleteStationHandler)
	a.r.GET("/totem/:id/trancas", a.stationLocksHandler)
	a.r.GET("/totem/:id/bicicletas", a.stationBicyclesHandler)

	return a
}

func (a *API) Router() *gin.Engine {
	return a.r
}

// renderError maps the error taxonomy onto status codes. Internal errors
// are logged with context and never leak their message to the caller.
func renderError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.InvalidData:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": errorMessage(err)})
	case apperr.NotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": errorMessage(err)})
	case apperr.Conflict:
		c.JSON(http.StatusConflict, gin.H{"error": errorMessage(err)})
	default:
		logger := middleware.GetLogger(c)
		logger.ErrorContext(c, "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func errorMessage(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
