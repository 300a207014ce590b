package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pedalpoint/equipment-backend/bicycle"
	"github.com/pedalpoint/equipment-backend/lock"
)

type lockResponse struct {
	ID              uuid.UUID   `json:"id"`
	Tag             int         `json:"numero"`
	Location        string      `json:"localizacao"`
	ManufactureYear int         `json:"anoDeFabricacao"`
	Model           string      `json:"modelo"`
	Status          lock.Status `json:"status"`
	BicycleID       *uuid.UUID  `json:"bicicleta"`
	StationID       *uuid.UUID  `json:"totem"`
}

func toLockResponse(l lock.Lock) lockResponse {
	return lockResponse{
		ID:              l.ID,
		Tag:             l.TagNumber,
		Location:        l.Location,
		ManufactureYear: l.ManufactureYear,
		Model:           l.Model,
		Status:          l.Status,
		BicycleID:       l.BicycleID,
		StationID:       l.StationID,
	}
}

func (a *API) listLocksHandler(c *gin.Context) {
	locks, err := a.lr.List(c)
	if err != nil {
		renderError(c, err)
		return
	}

	resp := make([]lockResponse, 0, len(locks))
	for _, l := range locks {
		resp = append(resp, toLockResponse(l))
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) getLockHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	l, err := a.lr.Get(c, id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLockResponse(l))
}

type lockRequest struct {
	Tag             int    `json:"numero"`
	Location        string `json:"localizacao"`
	ManufactureYear int    `json:"anoDeFabricacao"`
	Model           string `json:"modelo"`
}

func (a *API) createLockHandler(c *gin.Context) {
	var req lockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	l, err := a.lr.Create(c, req.Tag, req.Location, req.ManufactureYear, req.Model)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toLockResponse(l))
}

func (a *API) updateLockHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req lockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	l, err := a.lr.Update(c, id, req.ManufactureYear, req.Model)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLockResponse(l))
}

func (a *API) deleteLockHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := a.lr.SoftDelete(c, id); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) lockStatusHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	l, err := a.lr.SetStatus(c, id, lock.Status(c.Param("acao")))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLockResponse(l))
}

func (a *API) seatedBicycleHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, err := a.lr.SeatedBicycle(c, id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBicycleResponse(b))
}

type seatRequest struct {
	BicycleID uuid.UUID `json:"idBicicleta"`
}

func (a *API) seatHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req seatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	l, err := a.lr.Seat(c, id, req.BicycleID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLockResponse(l))
}

func (a *API) releaseHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	l, err := a.lr.Release(c, id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLockResponse(l))
}

type integrateLockRequest struct {
	StationID  uuid.UUID `json:"idTotem"`
	LockID     uuid.UUID `json:"idTranca"`
	EmployeeID string    `json:"idFuncionario"`
}

func (a *API) integrateLockHandler(c *gin.Context) {
	var req integrateLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	if err := a.nw.IntegrateLock(c, req.StationID, req.LockID, req.EmployeeID); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

type removeLockRequest struct {
	StationID  uuid.UUID              `json:"idTotem"`
	LockID     uuid.UUID              `json:"idTranca"`
	EmployeeID string                 `json:"idFuncionario"`
	Action     bicycle.RepairerAction `json:"statusAcaoReparador"`
}

func (a *API) removeLockHandler(c *gin.Context) {
	var req removeLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	if err := a.nw.RemoveLock(c, req.StationID, req.LockID, req.EmployeeID, req.Action); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
