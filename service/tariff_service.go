package service

import (
	"context"
	"strings"
	"tripsettle/pkg/engine"
	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
	"tripsettle/storage"

	"github.com/shopspring/decimal"
)

// Quote is an ad-hoc tariff lookup with the amounts it would produce.
type Quote struct {
	Resolution     engine.Resolution `json:"resolution"`
	TariffRate     models.Rate       `json:"tariff_rate"`
	ThirdPartyRate models.Rate       `json:"third_party_rate"`
	Amounts        models.Amounts    `json:"amounts"`
	Warnings       []models.Warning  `json:"warnings,omitempty"`
}

type TariffService interface {
	List(ctx context.Context) ([]*models.TariffRule, error)
	Get(ctx context.Context, id int64) (*models.TariffRule, error)
	Create(ctx context.Context, rule *models.TariffRule) (*models.TariffRule, error)
	Update(ctx context.Context, rule *models.TariffRule) (*models.TariffRule, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Resolve(ctx context.Context, tc models.TripContext) (*Quote, error)
}

type tariffService struct {
	stg storage.ITariffStorage
	clk clock
	log logger.ILogger
}

func NewTariffService(stg storage.IStorage, clk clock, log logger.ILogger) TariffService {
	return &tariffService{
		stg: stg.Tariff(),
		clk: clk,
		log: log,
	}
}

func (s *tariffService) List(ctx context.Context) ([]*models.TariffRule, error) {
	return s.stg.GetAll(ctx)
}

func (s *tariffService) Get(ctx context.Context, id int64) (*models.TariffRule, error) {
	return s.stg.GetByID(ctx, id)
}

func (s *tariffService) Create(ctx context.Context, rule *models.TariffRule) (*models.TariffRule, error) {
	if err := normalizeRule(rule); err != nil {
		return nil, err
	}
	created, err := s.stg.Create(ctx, rule)
	if err != nil {
		return nil, err
	}
	s.log.Info("tariff rule created", logger.Int64("id", created.ID), logger.Int("specificity", engine.Specificity(*created)))
	return created, nil
}

func (s *tariffService) Update(ctx context.Context, rule *models.TariffRule) (*models.TariffRule, error) {
	if err := normalizeRule(rule); err != nil {
		return nil, err
	}
	return s.stg.Update(ctx, rule)
}

func (s *tariffService) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.stg.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.log.Info("tariff rule toggled", logger.Int64("id", id), logger.Bool("active", active))
	return nil
}

func (s *tariffService) Resolve(ctx context.Context, tc models.TripContext) (*Quote, error) {
	if err := engine.ValidateContext(tc); err != nil {
		return nil, err
	}

	rules, err := s.stg.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	res, err := engine.Resolve(tc, derefRules(rules), s.clk.Today())
	if err != nil {
		return nil, err
	}

	q := &Quote{Resolution: res}
	if res.Found() {
		q.TariffRate, q.ThirdPartyRate = engine.RatesFromRule(*res.Rule)
	}
	q.Amounts = engine.Calculate(tc.TonsDelivered, q.TariffRate, q.ThirdPartyRate)
	if w := res.Warning(); w != nil {
		q.Warnings = append(q.Warnings, *w)
	}
	return q, nil
}

// normalizeRule fills blank scope fields with the wildcard and checks the
// rule can price something.
func normalizeRule(rule *models.TariffRule) error {
	for _, f := range []*string{&rule.Client, &rule.Product, &rule.Origin, &rule.Destination, &rule.Carrier} {
		*f = strings.TrimSpace(*f)
		if *f == "" || strings.EqualFold(*f, models.ScopeAll) {
			*f = models.ScopeAll
		}
	}
	rule.Name = strings.TrimSpace(rule.Name)

	if !rule.RatePerTon.Valid && !rule.RatePerTrip.Valid {
		return engine.NewValidationError("rate_per_ton", "a per-ton or per-trip rate is required")
	}
	for _, r := range []struct {
		field string
		value decimal.NullDecimal
	}{
		{"rate_per_ton", rule.RatePerTon},
		{"rate_per_trip", rule.RatePerTrip},
		{"third_party_rate_per_ton", rule.ThirdPartyRatePerTon},
		{"third_party_rate_per_trip", rule.ThirdPartyRatePerTrip},
	} {
		if r.value.Valid && r.value.Decimal.IsNegative() {
			return engine.NewValidationError(r.field, "must not be negative")
		}
	}
	if rule.ValidFrom != nil && rule.ValidUntil != nil && rule.ValidUntil.Before(*rule.ValidFrom) {
		return engine.NewValidationError("valid_until", "is before valid_from")
	}
	return nil
}
