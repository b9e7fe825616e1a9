package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripsettle/pkg/models"
)

func (h *Handler) listTariffs(c *gin.Context) {
	rules, err := h.svc.Tariff().List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (h *Handler) getTariff(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rule, err := h.svc.Tariff().Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *Handler) createTariff(c *gin.Context) {
	var req tariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rule, err := req.toRule()
	if err != nil {
		h.fail(c, err)
		return
	}
	created, err := h.svc.Tariff().Create(c.Request.Context(), rule)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) updateTariff(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req tariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rule, err := req.toRule()
	if err != nil {
		h.fail(c, err)
		return
	}
	rule.ID = id

	updated, err := h.svc.Tariff().Update(c.Request.Context(), rule)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) setTariffActive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.Tariff().SetActive(c.Request.Context(), id, *req.Active); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "active": *req.Active})
}

func (h *Handler) resolveTariff(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tons, err := parseOptionalNumber("tons_delivered", req.TonsDelivered)
	if err != nil {
		h.fail(c, err)
		return
	}

	q, err := h.svc.Tariff().Resolve(c.Request.Context(), models.TripContext{
		Client:        req.Client,
		Product:       req.Product,
		Origin:        req.Origin,
		Destination:   req.Destination,
		Carrier:       req.Carrier,
		TonsDelivered: tons,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}
