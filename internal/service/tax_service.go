package service

import (
	"context"
	"fmt"
	"time"

	"restaurant/internal/metrics"
	"restaurant/internal/model"
	"restaurant/internal/pricing"
	"restaurant/internal/repository"
	"restaurant/pkg/pagination"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type TaxRuleRequest struct {
	Name           string           `json:"name" binding:"required,max=100"`
	Description    string           `json:"description"`
	Rate           decimal.Decimal  `json:"rate"`
	Priority       int              `json:"priority"`
	IsActive       *bool            `json:"is_active"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount"`
	MaxOrderAmount *decimal.Decimal `json:"max_order_amount"`
	DiningType     string           `json:"dining_type" binding:"omitempty,oneof=dine_in takeaway reservation all"`
	CustomerType   string           `json:"customer_type" binding:"omitempty,oneof=regular vip staff all"`
	SpecificTables []int            `json:"specific_tables" binding:"omitempty,dive,gte=1"`
	ExcludeTables  []int            `json:"exclude_tables" binding:"omitempty,dive,gte=1"`
	TimeStart      string           `json:"time_start"`
	TimeEnd        string           `json:"time_end"`
	DaysOfWeek     []int            `json:"days_of_week" binding:"omitempty,dive,gte=0,lte=6"`
}

// TaxCalculationRequest is the public tax endpoint's order context.
type TaxCalculationRequest struct {
	OrderAmount  *decimal.Decimal `json:"order_amount" binding:"required"`
	DiningType   string           `json:"dining_type" binding:"required,oneof=dine_in takeaway reservation"`
	TableNumber  *int             `json:"table_number" binding:"omitempty,gte=1"`
	CustomerType string           `json:"customer_type" binding:"omitempty,oneof=regular vip staff"`
	OrderTime    *time.Time       `json:"order_time"`
}

type TaxCalculationResponse struct {
	OrderAmount     decimal.Decimal      `json:"order_amount"`
	ApplicableTaxes []pricing.AppliedTax `json:"applicable_taxes"`
	TotalTaxRate    decimal.Decimal      `json:"total_tax_rate"`
	TotalTaxAmount  decimal.Decimal      `json:"total_tax_amount"`
	FinalTotal      decimal.Decimal      `json:"final_total"`
	CalculatedAt    time.Time            `json:"calculated_at"`
	Fallback        bool                 `json:"fallback"` // flat default rate was used
}

// RulePreview explains a single rule's outcome for a given context.
type RulePreview struct {
	Rule    model.TaxRule `json:"rule"`
	Matched bool          `json:"matched"`
	Failed  []string      `json:"failed_predicates"`
}

// --- Interface ---

type TaxService interface {
	ListTaxRules(ctx context.Context, activeOnly bool, p pagination.Params) ([]model.TaxRule, int64, error)
	GetTaxRule(ctx context.Context, id uuid.UUID) (*model.TaxRule, error)
	CreateTaxRule(ctx context.Context, req TaxRuleRequest, actor *uuid.UUID) (*model.TaxRule, error)
	UpdateTaxRule(ctx context.Context, id uuid.UUID, req TaxRuleRequest, actor *uuid.UUID) (*model.TaxRule, error)
	DeleteTaxRule(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error
	Calculate(ctx context.Context, req TaxCalculationRequest) (*TaxCalculationResponse, error)
	Preview(ctx context.Context, req TaxCalculationRequest) ([]RulePreview, error)
}

type taxService struct {
	repo     repository.TaxRuleRepository
	settings SettingsService
	audit    AuditService
	loc      *time.Location
	now      func() time.Time
}

func NewTaxService(repo repository.TaxRuleRepository, settings SettingsService, audit AuditService, loc *time.Location) TaxService {
	return &taxService{repo: repo, settings: settings, audit: audit, loc: loc, now: time.Now}
}

// --- Implementation ---

func (s *taxService) ListTaxRules(ctx context.Context, activeOnly bool, p pagination.Params) ([]model.TaxRule, int64, error) {
	rules, total, err := s.repo.List(ctx, activeOnly, p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tax rules: %w", err)
	}
	return rules, total, nil
}

func (s *taxService) GetTaxRule(ctx context.Context, id uuid.UUID) (*model.TaxRule, error) {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "tax rule")
	}
	return rule, nil
}

func (s *taxService) CreateTaxRule(ctx context.Context, req TaxRuleRequest, actor *uuid.UUID) (*model.TaxRule, error) {
	if err := validateTaxRule(req); err != nil {
		return nil, err
	}
	rule := &model.TaxRule{}
	applyTaxRuleRequest(rule, req)
	if req.IsActive == nil {
		rule.IsActive = true
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create tax rule: %w", err)
	}
	recordAfterCommit(ctx, s.audit, actor, model.ActionCreateTaxRule, rule.ID.String(), rule.Name, req)
	return rule, nil
}

func (s *taxService) UpdateTaxRule(ctx context.Context, id uuid.UUID, req TaxRuleRequest, actor *uuid.UUID) (*model.TaxRule, error) {
	if err := validateTaxRule(req); err != nil {
		return nil, err
	}
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "tax rule")
	}
	applyTaxRuleRequest(rule, req)

	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to update tax rule: %w", err)
	}
	recordAfterCommit(ctx, s.audit, actor, model.ActionUpdateTaxRule, rule.ID.String(), rule.Name, req)
	return rule, nil
}

func (s *taxService) DeleteTaxRule(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "tax rule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tax rule: %w", err)
	}
	recordAfterCommit(ctx, s.audit, actor, model.ActionDeleteTaxRule, rule.ID.String(), rule.Name, nil)
	return nil
}

func (s *taxService) Calculate(ctx context.Context, req TaxCalculationRequest) (*TaxCalculationResponse, error) {
	amount, err := orderAmount(req)
	if err != nil {
		return nil, err
	}
	mctx := s.matchContext(req, amount)

	stored, rulesErr := s.repo.ListActive(ctx)
	settings, settingsErr := s.settings.Pricing(ctx)
	if settingsErr != nil {
		degrade("settings", settingsErr)
	}
	rules, fallback := applicableRules(stored, rulesErr, settings.TaxRate, mctx)

	b := pricing.Aggregate(rules, amount)
	return &TaxCalculationResponse{
		OrderAmount:     amount,
		ApplicableTaxes: b.PerRule,
		TotalTaxRate:    b.TotalRate,
		TotalTaxAmount:  b.TotalAmount,
		FinalTotal:      amount.Add(b.TotalAmount),
		CalculatedAt:    mctx.Timestamp,
		Fallback:        fallback,
	}, nil
}

func (s *taxService) Preview(ctx context.Context, req TaxCalculationRequest) ([]RulePreview, error) {
	amount, err := orderAmount(req)
	if err != nil {
		return nil, err
	}
	mctx := s.matchContext(req, amount)

	rules, _, err := s.repo.List(ctx, false, pagination.New(1, pagination.MaxLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tax rules: %w", err)
	}

	out := make([]RulePreview, 0, len(rules))
	for _, r := range rules {
		failed := pricing.FailedPredicates(r.PricingRule(), mctx)
		out = append(out, RulePreview{Rule: r, Matched: len(failed) == 0, Failed: failed})
	}
	return out, nil
}

// orderAmount rejects a missing or negative amount before any rule is evaluated.
func orderAmount(req TaxCalculationRequest) (decimal.Decimal, error) {
	if req.OrderAmount == nil {
		return decimal.Zero, validationError("order_amount is required")
	}
	if req.OrderAmount.IsNegative() {
		return decimal.Zero, validationError("order_amount must not be negative")
	}
	return *req.OrderAmount, nil
}

func (s *taxService) matchContext(req TaxCalculationRequest, amount decimal.Decimal) pricing.MatchContext {
	at := s.now()
	if req.OrderTime != nil {
		at = *req.OrderTime
	}
	return pricing.MatchContext{
		OrderAmount:  amount,
		DiningType:   pricing.DiningType(req.DiningType),
		TableNumber:  req.TableNumber,
		CustomerType: pricing.CustomerType(req.CustomerType),
		Timestamp:    at.In(s.loc),
	}
}

// applicableRules matches stored rules against mctx. The flat rate stands in when the
// rule store failed or holds no active rule; active rules that all miss mean no tax.
func applicableRules(stored []model.TaxRule, storeErr error, flatRate decimal.Decimal, mctx pricing.MatchContext) ([]pricing.TaxRule, bool) {
	if storeErr != nil {
		degrade("tax_rules", storeErr)
		return flatRules(flatRate), true
	}
	if len(stored) == 0 {
		return flatRules(flatRate), true
	}
	rules := make([]pricing.TaxRule, 0, len(stored))
	for _, r := range stored {
		rules = append(rules, r.PricingRule())
	}
	return pricing.MatchRules(rules, mctx), false
}

func flatRules(rate decimal.Decimal) []pricing.TaxRule {
	if !rate.IsPositive() {
		return nil
	}
	return []pricing.TaxRule{pricing.FlatRule(rate)}
}

// degrade records a collaborator failure that pricing absorbed.
func degrade(source string, err error) {
	metrics.PricingFallbacksTotal.WithLabelValues(source).Inc()
	log.Warn().Err(err).Str("source", source).Msg("Pricing collaborator failed, using fallback")
}

func validateTaxRule(req TaxRuleRequest) error {
	if err := checkPercentage("rate", req.Rate); err != nil {
		return err
	}
	if req.MinOrderAmount != nil && req.MinOrderAmount.IsNegative() {
		return validationError("min_order_amount must not be negative")
	}
	if req.MaxOrderAmount != nil && req.MaxOrderAmount.IsNegative() {
		return validationError("max_order_amount must not be negative")
	}
	if req.MinOrderAmount != nil && req.MaxOrderAmount != nil && req.MinOrderAmount.GreaterThan(*req.MaxOrderAmount) {
		return validationError("min_order_amount must not exceed max_order_amount")
	}
	if (req.TimeStart == "") != (req.TimeEnd == "") {
		return validationError("time_start and time_end must be set together")
	}
	for field, v := range map[string]string{"time_start": req.TimeStart, "time_end": req.TimeEnd} {
		if v == "" {
			continue
		}
		if _, err := pricing.ParseClock(v); err != nil {
			return validationError("%s: %v", field, err)
		}
	}
	for _, d := range req.DaysOfWeek {
		if d < 0 || d > 6 {
			return validationError("days_of_week values must be 0-6")
		}
	}
	if req.DiningType != "" && !pricing.DiningType(req.DiningType).Valid() {
		return validationError("invalid dining_type %q", req.DiningType)
	}
	if req.CustomerType != "" && !pricing.CustomerType(req.CustomerType).Valid() {
		return validationError("invalid customer_type %q", req.CustomerType)
	}
	return nil
}

func applyTaxRuleRequest(rule *model.TaxRule, req TaxRuleRequest) {
	rule.Name = req.Name
	rule.Description = req.Description
	rule.Rate = req.Rate
	rule.Priority = req.Priority
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	rule.MinOrderAmount = req.MinOrderAmount
	rule.MaxOrderAmount = req.MaxOrderAmount
	rule.DiningType = orDefault(req.DiningType, string(pricing.DiningAll))
	rule.CustomerType = orDefault(req.CustomerType, string(pricing.CustomerAll))
	rule.SpecificTables = req.SpecificTables
	rule.ExcludeTables = req.ExcludeTables
	rule.TimeStart = req.TimeStart
	rule.TimeEnd = req.TimeEnd
	rule.DaysOfWeek = req.DaysOfWeek
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
