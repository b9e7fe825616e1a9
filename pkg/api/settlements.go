package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripsettle/pkg/export"
	"tripsettle/service"
)

func (h *Handler) listSettlements(c *gin.Context) {
	list, err := h.svc.Settlement().List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) getSettlement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s, err := h.svc.Settlement().Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) editSettlement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req settlementPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.svc.Settlement().Edit(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) exportSettlements(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Export().Settlements(c.Request.Context(), &buf); err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "settlements.xlsx"))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (r settlementPatchRequest) toPatch() (service.SettlementPatch, error) {
	p := service.SettlementPatch{
		ClientID:             r.ClientID,
		ProductID:            r.ProductID,
		OriginID:             r.OriginID,
		DestinationID:        r.DestinationID,
		CarrierID:            r.CarrierID,
		DriverID:             r.DriverID,
		VehicleID:            r.VehicleID,
		ClearTonsOverride:    r.ClearTonsOverride,
		Requote:              r.Requote,
		ClientPaymentStatus:  r.ClientPaymentStatus,
		CarrierPaymentStatus: r.CarrierPaymentStatus,
	}

	var err error
	if r.Date != nil {
		d, err := parseDate("date", *r.Date)
		if err != nil {
			return p, err
		}
		p.Date = &d
	}
	if p.TareOrigin, err = parsePatchNumber("tare_origin", r.TareOrigin); err != nil {
		return p, err
	}
	if p.GrossOrigin, err = parsePatchNumber("gross_origin", r.GrossOrigin); err != nil {
		return p, err
	}
	if p.TareDestination, err = parsePatchNumber("tare_destination", r.TareDestination); err != nil {
		return p, err
	}
	if p.GrossDestination, err = parsePatchNumber("gross_destination", r.GrossDestination); err != nil {
		return p, err
	}
	if p.Tons, err = parsePatchNumber("tons", r.Tons); err != nil {
		return p, err
	}
	if p.TariffRate, err = r.TariffRate.toRate("tariff_rate"); err != nil {
		return p, err
	}
	if p.ThirdPartyRate, err = r.ThirdPartyRate.toRate("third_party_rate"); err != nil {
		return p, err
	}
	return p, nil
}
