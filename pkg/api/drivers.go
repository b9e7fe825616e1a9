package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripsettle/pkg/models"
)

const sessionHeader = "X-Session-ID"

func (h *Handler) listDrivers(c *gin.Context) {
	drivers, err := h.svc.Driver().List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, drivers)
}

func (h *Handler) getDriver(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	d, err := h.svc.Driver().Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) createDriver(c *gin.Context) {
	var req createDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.svc.Driver().Create(c.Request.Context(), &models.Driver{
		FullName:  req.FullName,
		Phone:     req.Phone,
		CarrierID: req.CarrierID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// rankDrivers keys the last-request-wins guard on the caller's session
// header, falling back to the client address.
func (h *Handler) rankDrivers(c *gin.Context) {
	session := c.GetHeader(sessionHeader)
	if session == "" {
		session = "ip:" + c.ClientIP()
	}

	res, err := h.svc.Driver().Rank(c.Request.Context(), session, c.Query("address"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) listCatalog(c *gin.Context) {
	entries, err := h.svc.Catalog().List(c.Request.Context(), models.CatalogKind(c.Param("kind")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) getCatalogEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	e, err := h.svc.Catalog().Get(c.Request.Context(), models.CatalogKind(c.Param("kind")), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) createCatalogEntry(c *gin.Context) {
	var req createCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := h.svc.Catalog().Create(c.Request.Context(), &models.CatalogEntry{
		Kind:    models.CatalogKind(c.Param("kind")),
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}
