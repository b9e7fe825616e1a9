package service

import (
	"context"
	"errors"
	"time"
	"tripsettle/pkg/engine"
	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
	"tripsettle/storage"

	"github.com/shopspring/decimal"
)

type SettlementResult struct {
	Settlement *models.Settlement `json:"settlement"`
	Warnings   []models.Warning   `json:"warnings,omitempty"`
}

// SettlementPatch carries the fields an operator edited. Nil fields are left
// alone. A non-nil weight or tonnage whose Valid is false blanks that field.
type SettlementPatch struct {
	Date          *time.Time
	ClientID      *int64
	ProductID     *int64
	OriginID      *int64
	DestinationID *int64
	CarrierID     *int64
	DriverID      *int64
	VehicleID     *int64

	TareOrigin       *decimal.NullDecimal
	GrossOrigin      *decimal.NullDecimal
	TareDestination  *decimal.NullDecimal
	GrossDestination *decimal.NullDecimal

	Tons              *decimal.NullDecimal
	ClearTonsOverride bool

	// Manual rates take over pricing and disarm the pending tariff lookup.
	TariffRate     *models.Rate
	ThirdPartyRate *models.Rate
	// Requote re-arms the tariff lookup so it runs again against the current scope.
	Requote bool

	ClientPaymentStatus  *models.ClientPaymentStatus
	CarrierPaymentStatus *models.CarrierPaymentStatus
}

type SettlementService interface {
	Promote(ctx context.Context, tripID int64) (*SettlementResult, error)
	Get(ctx context.Context, id int64) (*models.Settlement, error)
	List(ctx context.Context) ([]*models.Settlement, error)
	Edit(ctx context.Context, id int64, patch SettlementPatch) (*SettlementResult, error)
}

type settlementService struct {
	stg storage.IStorage
	clk clock
	log logger.ILogger
}

func NewSettlementService(stg storage.IStorage, clk clock, log logger.ILogger) SettlementService {
	return &settlementService{
		stg: stg,
		clk: clk,
		log: log,
	}
}

func (s *settlementService) Promote(ctx context.Context, tripID int64) (*SettlementResult, error) {
	trip, err := s.stg.Trip().GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if _, err := s.stg.Settlement().GetBySourceTrip(ctx, tripID); err == nil {
		return nil, ErrAlreadyPromoted
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	draft, err := engine.Promote(*trip, catalog)
	if err != nil {
		return nil, err
	}

	draft, warnings, err := s.recompute(ctx, draft)
	if err != nil {
		return nil, err
	}

	created, err := s.stg.Settlement().Create(ctx, &draft)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrAlreadyPromoted
		}
		return nil, err
	}

	s.log.Info("trip promoted",
		logger.Int64("trip_id", tripID),
		logger.Int64("settlement_id", created.ID),
		logger.Bool("tariff_pending", created.TariffPending),
	)
	return &SettlementResult{Settlement: created, Warnings: warnings}, nil
}

func (s *settlementService) Get(ctx context.Context, id int64) (*models.Settlement, error) {
	return s.stg.Settlement().GetByID(ctx, id)
}

func (s *settlementService) List(ctx context.Context) ([]*models.Settlement, error) {
	return s.stg.Settlement().GetAll(ctx)
}

func (s *settlementService) Edit(ctx context.Context, id int64, patch SettlementPatch) (*SettlementResult, error) {
	if patch.Requote && (patch.TariffRate != nil || patch.ThirdPartyRate != nil) {
		return nil, engine.NewValidationError("requote", "cannot be combined with manual rates")
	}
	if patch.Tons != nil && patch.ClearTonsOverride {
		return nil, engine.NewValidationError("tons", "cannot be set and cleared at once")
	}
	if patch.ClientPaymentStatus != nil && !validClientPayment(*patch.ClientPaymentStatus) {
		return nil, engine.NewValidationError("client_payment_status", "unknown value %q", *patch.ClientPaymentStatus)
	}
	if patch.CarrierPaymentStatus != nil && !validCarrierPayment(*patch.CarrierPaymentStatus) {
		return nil, engine.NewValidationError("carrier_payment_status", "unknown value %q", *patch.CarrierPaymentStatus)
	}

	current, err := s.stg.Settlement().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := applyPatch(*current, patch)

	next, warnings, err := s.recompute(ctx, next)
	if err != nil {
		return nil, err
	}

	updated, err := s.stg.Settlement().Update(ctx, &next)
	if err != nil {
		return nil, err
	}

	s.log.Info("settlement updated", logger.Int64("id", id))
	return &SettlementResult{Settlement: updated, Warnings: warnings}, nil
}

// recompute loads the active tariff catalog only when the draft still waits
// for its tariff.
func (s *settlementService) recompute(ctx context.Context, st models.Settlement) (models.Settlement, []models.Warning, error) {
	var rules []models.TariffRule
	if st.TariffPending {
		if _, ok := engine.ContextFor(st); ok {
			active, err := s.stg.Tariff().GetActive(ctx)
			if err != nil {
				return st, nil, err
			}
			rules = derefRules(active)
		}
	}
	return engine.Recompute(st, rules, s.clk.Today())
}

func (s *settlementService) catalog(ctx context.Context) (engine.Catalog, error) {
	clients, err := s.stg.Catalog().GetActive(ctx, models.CatalogClients)
	if err != nil {
		return engine.Catalog{}, err
	}
	products, err := s.stg.Catalog().GetActive(ctx, models.CatalogProducts)
	if err != nil {
		return engine.Catalog{}, err
	}
	return engine.Catalog{Clients: derefEntries(clients), Products: derefEntries(products)}, nil
}

func applyPatch(st models.Settlement, p SettlementPatch) models.Settlement {
	if p.Date != nil {
		st.Date = *p.Date
	}
	setID(&st.ClientID, p.ClientID)
	setID(&st.ProductID, p.ProductID)
	setID(&st.OriginID, p.OriginID)
	setID(&st.DestinationID, p.DestinationID)
	setID(&st.CarrierID, p.CarrierID)
	setID(&st.DriverID, p.DriverID)
	setID(&st.VehicleID, p.VehicleID)

	setDecimal(&st.Weights.TareOrigin, p.TareOrigin)
	setDecimal(&st.Weights.GrossOrigin, p.GrossOrigin)
	setDecimal(&st.Weights.TareDestination, p.TareDestination)
	setDecimal(&st.Weights.GrossDestination, p.GrossDestination)

	switch {
	case p.Tons != nil:
		st.Weights = engine.OverrideTons(st.Weights, *p.Tons)
	case p.ClearTonsOverride:
		st.Weights = engine.ClearTonsOverride(st.Weights)
	}

	if p.TariffRate != nil {
		st.TariffRate = *p.TariffRate
		st.TariffPending = false
	}
	if p.ThirdPartyRate != nil {
		st.ThirdPartyRate = *p.ThirdPartyRate
		st.TariffPending = false
	}
	if p.Requote {
		st.TariffPending = true
	}

	if p.ClientPaymentStatus != nil {
		st.ClientPaymentStatus = *p.ClientPaymentStatus
	}
	if p.CarrierPaymentStatus != nil {
		st.CarrierPaymentStatus = *p.CarrierPaymentStatus
	}
	return st
}

func setID(dst **int64, v *int64) {
	if v != nil {
		id := *v
		*dst = &id
	}
}

func setDecimal(dst *decimal.NullDecimal, v *decimal.NullDecimal) {
	if v != nil {
		*dst = *v
	}
}

func validClientPayment(s models.ClientPaymentStatus) bool {
	return s == models.ClientPaymentPending || s == models.ClientPaymentPaid
}

func validCarrierPayment(s models.CarrierPaymentStatus) bool {
	return s == models.CarrierPaymentUnpaid || s == models.CarrierPaymentPaid
}

func derefRules(in []*models.TariffRule) []models.TariffRule {
	out := make([]models.TariffRule, 0, len(in))
	for _, r := range in {
		out = append(out, *r)
	}
	return out
}

func derefEntries(in []*models.CatalogEntry) []models.CatalogEntry {
	out := make([]models.CatalogEntry, 0, len(in))
	for _, e := range in {
		out = append(out, *e)
	}
	return out
}
