package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pedalpoint/equipment-backend/bicycle"
)

type bicycleResponse struct {
	ID     uuid.UUID      `json:"id"`
	Brand  string         `json:"marca"`
	Model  string         `json:"modelo"`
	Year   int            `json:"ano"`
	Tag    int            `json:"numero"`
	Status bicycle.Status `json:"status"`
}

func toBicycleResponse(b bicycle.Bicycle) bicycleResponse {
	return bicycleResponse{
		ID:     b.ID,
		Brand:  b.Brand,
		Model:  b.Model,
		Year:   b.Year,
		Tag:    b.TagNumber,
		Status: b.Status,
	}
}

func (a *API) listBicyclesHandler(c *gin.Context) {
	bicycles, err := a.br.List(c)
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

func (a *API) getBicycleHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, err := a.br.Get(c, id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBicycleResponse(b))
}

type bicycleRequest struct {
	Brand string `json:"marca"`
	Model string `json:"modelo"`
	Year  int    `json:"ano"`
	Tag   int    `json:"numero"`
}

func (a *API) createBicycleHandler(c *gin.Context) {
	var req bicycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	b, err := a.br.Create(c, req.Brand, req.Model, req.Year, req.Tag)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBicycleResponse(b))
}

func (a *API) updateBicycleHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req bicycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	b, err := a.br.Update(c, id, req.Brand, req.Model, req.Year)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBicycleResponse(b))
}

func (a *API) deleteBicycleHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := a.br.SoftDelete(c, id); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) bicycleStatusHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, err := a.br.SetStatus(c, id, bicycle.Status(c.Param("acao")))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBicycleResponse(b))
}

type integrateBicycleRequest struct {
	LockID     uuid.UUID `json:"idTranca"`
	BicycleID  uuid.UUID `json:"idBicicleta"`
	EmployeeID string    `json:"idFuncionario"`
}

func (a *API) integrateBicycleHandler(c *gin.Context) {
	var req integrateBicycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	if err := a.nw.IntegrateBicycle(c, req.LockID, req.BicycleID, req.EmployeeID); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

type removeBicycleRequest struct {
	LockID     uuid.UUID              `json:"idTranca"`
	BicycleID  uuid.UUID              `json:"idBicicleta"`
	EmployeeID string                 `json:"idFuncionario"`
	Action     bicycle.RepairerAction `json:"statusAcaoReparador"`
}

func (a *API) removeBicycleHandler(c *gin.Context) {
	var req removeBicycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	if err := a.nw.RemoveBicycle(c, req.LockID, req.BicycleID, req.EmployeeID, req.Action); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// parseID reads the :id path parameter; a malformed id is rejected
// before any lookup happens.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid id"})
		return uuid.UUID{}, false
	}
	return id, true
}
