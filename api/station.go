package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pedalpoint/equipment-backend/station"
)

type stationResponse struct {
	ID          uuid.UUID `json:"id"`
	Location    string    `json:"localizacao"`
	Description string    `json:"descricao"`
}

func toStationResponse(s station.Station) stationResponse {
	return stationResponse{
		ID:          s.ID,
		Location:    s.Location,
		Description: s.Description,
	}
}

func (a *API) listStationsHandler(c *gin.Context) {
	stations, err := a.sr.List(c)
	if err != nil {
		renderError(c, err)
		return
	}

	resp := make([]stationResponse, 0, len(stations))
	for _, s := range stations {
		resp = append(resp, toStationResponse(s))
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) getStationHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	s, err := a.sr.Get(c, id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStationResponse(s))
}

type stationRequest struct {
	Location    string `json:"localizacao"`
	Description string `json:"descricao"`
}

func (a *API) createStationHandler(c *gin.Context) {
	var req stationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	s, err := a.sr.Create(c, req.Location, req.Description)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toStationResponse(s))
}

func (a *API) updateStationHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req stationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	s, err := a.sr.Update(c, id, req.Location, req.Description)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStationResponse(s))
}

func (a *API) deleteStationHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := a.sr.Delete(c, id); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) stationLocksHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	locks, err := a.sr.Locks(c, id)
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

func (a *API) stationBicyclesHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	bicycles, err := a.sr.Bicycles(c, id)
	if err != nil {
		renderError(c, err)
		return
	}

	resp := make([]bicycleResponse, 0, len(bicycles))
	for _, b := range bicycles {
		resp = append(resp, toBicycleResponse(b))
	}
	c.JSON(http.StatusOK, resp)
}
