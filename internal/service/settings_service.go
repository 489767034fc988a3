package service

import (
	"context"
	"fmt"
	"strconv"

	"restaurant/internal/config"
	"restaurant/internal/model"
	"restaurant/internal/pricing"
	"restaurant/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PricingSettings are the store-wide knobs checkout reads on every request.
type PricingSettings struct {
	TaxRate                 decimal.Decimal `json:"tax_rate"`
	MinOrderAmount          decimal.Decimal `json:"min_order_amount"`
	ServiceChargeFixed      decimal.Decimal `json:"service_charge_fixed"`
	ServiceChargeRate       decimal.Decimal `json:"service_charge_rate"`
	TaxIncludeServiceCharge bool            `json:"tax_include_service_charge"`
}

func (p PricingSettings) ServiceCharge() pricing.ServiceChargeConfig {
	return pricing.ServiceChargeConfig{FixedAmount: p.ServiceChargeFixed, Rate: p.ServiceChargeRate}
}

func (p PricingSettings) TaxBase() pricing.TaxBase {
	if p.TaxIncludeServiceCharge {
		return pricing.TaxBaseIncludeServiceCharge
	}
	return pricing.TaxBaseExcludeServiceCharge
}

// GlobalMinimum is nil when no store-wide minimum is configured.
func (p PricingSettings) GlobalMinimum() *decimal.Decimal {
	if !p.MinOrderAmount.IsPositive() {
		return nil
	}
	m := p.MinOrderAmount
	return &m
}

// PricingDefaults parses the startup configuration used until settings are stored.
func PricingDefaults(cfg config.PricingConfig) (PricingSettings, error) {
	var out PricingSettings
	values := map[string]string{
		model.SettingTaxRate:                 cfg.DefaultTaxRate,
		model.SettingMinOrderAmount:          "0",
		model.SettingServiceChargeFixed:      cfg.ServiceChargeFixed,
		model.SettingServiceChargeRate:       cfg.ServiceChargeRate,
		model.SettingTaxIncludeServiceCharge: strconv.FormatBool(cfg.TaxIncludeServiceCharge),
	}
	for key, value := range values {
		if err := applySetting(&out, key, value); err != nil {
			return out, err
		}
	}
	return out, nil
}

type SettingsService interface {
	// Pricing returns stored settings layered over the defaults. On a store error it
	// returns the defaults together with the error so callers can degrade.
	Pricing(ctx context.Context) (PricingSettings, error)
	UpdateSetting(ctx context.Context, key, value string, actor *uuid.UUID) (PricingSettings, error)
}

type settingsService struct {
	repo     repository.SettingRepository
	audit    AuditService
	defaults PricingSettings
}

func NewSettingsService(repo repository.SettingRepository, audit AuditService, defaults PricingSettings) SettingsService {
	return &settingsService{repo: repo, audit: audit, defaults: defaults}
}

func (s *settingsService) Pricing(ctx context.Context) (PricingSettings, error) {
	stored, err := s.repo.All(ctx)
	if err != nil {
		return s.defaults, fmt.Errorf("failed to load settings: %w", err)
	}
	out := s.defaults
	for key, value := range stored {
		// a corrupt stored value keeps the default for that key
		if err := applySetting(&out, key, value); err != nil {
			log.Warn().Err(err).Str("key", key).Str("value", value).Msg("Ignoring invalid stored setting")
		}
	}
	return out, nil
}

func (s *settingsService) UpdateSetting(ctx context.Context, key, value string, actor *uuid.UUID) (PricingSettings, error) {
	var check PricingSettings
	if err := applySetting(&check, key, value); err != nil {
		return PricingSettings{}, err
	}
	if err := s.repo.Upsert(ctx, key, value); err != nil {
		return PricingSettings{}, fmt.Errorf("failed to save setting: %w", err)
	}
	recordAfterCommit(ctx, s.audit, actor, model.ActionUpdateSettings, key, key, map[string]string{"value": value})
	return s.Pricing(ctx)
}

func applySetting(p *PricingSettings, key, value string) error {
	switch key {
	case model.SettingTaxIncludeServiceCharge:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return validationError("%s must be true or false", key)
		}
		p.TaxIncludeServiceCharge = b
		return nil
	case model.SettingTaxRate, model.SettingServiceChargeRate:
		d, err := parsePercentage(key, value)
		if err != nil {
			return err
		}
		if key == model.SettingTaxRate {
			p.TaxRate = d
		} else {
			p.ServiceChargeRate = d
		}
		return nil
	case model.SettingMinOrderAmount, model.SettingServiceChargeFixed:
		d, err := decimal.NewFromString(value)
		if err != nil || d.IsNegative() {
			return validationError("%s must be a non-negative amount", key)
		}
		if key == model.SettingMinOrderAmount {
			p.MinOrderAmount = d
		} else {
			p.ServiceChargeFixed = d
		}
		return nil
	default:
		return validationError("unknown setting %q", key)
	}
}

func parsePercentage(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, validationError("%s must be a number", field)
	}
	return d, checkPercentage(field, d)
}

func checkPercentage(field string, d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return validationError("%s must be between 0 and 100", field)
	}
	return nil
}
