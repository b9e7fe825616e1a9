package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripsettle/pkg/models"
)

func (h *Handler) listTrips(c *gin.Context) {
	trips, err := h.svc.Trip().List(c.Request.Context(), models.TripStatus(c.Query("status")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

func (h *Handler) createTrip(c *gin.Context) {
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.svc.Trip().Create(c.Request.Context(), &models.Trip{
		Date:             date,
		ClientName:       req.ClientName,
		ProductName:      req.ProductName,
		CarrierID:        req.CarrierID,
		DriverID:         req.DriverID,
		VehicleID:        req.VehicleID,
		OriginID:         req.OriginID,
		DestinationID:    req.DestinationID,
		LoadingAddress:   req.LoadingAddress,
		UnloadingAddress: req.UnloadingAddress,
		Status:           req.Status,
		Particularity:    req.Particularity,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) getTrip(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	trip, err := h.svc.Trip().Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *Handler) changeTripStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.svc.Trip().ChangeStatus(c.Request.Context(), id, req.Status, req.Particularity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) promoteTrip(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.svc.Settlement().Promote(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
