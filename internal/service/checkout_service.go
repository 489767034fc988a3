package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant/internal/events"
	"restaurant/internal/metrics"
	"restaurant/internal/model"
	"restaurant/internal/pricing"
	"restaurant/internal/repository"
	"restaurant/internal/websocket"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ErrBelowMinimum is returned by PlaceOrder together with the quote showing the shortfall.
var ErrBelowMinimum = errors.New("order total is below the minimum order amount")

// --- DTOs ---

type CheckoutItem struct {
	ProductID        uuid.UUID   `json:"product_id" binding:"required"`
	Quantity         int         `json:"quantity" binding:"required,gte=1"`
	CustomizationIDs []uuid.UUID `json:"customization_ids"`
	Notes            string      `json:"notes" binding:"max=500"`
}

type CheckoutRequest struct {
	Items         []CheckoutItem `json:"items" binding:"required,min=1,dive"`
	DiningType    string         `json:"dining_type" binding:"required,oneof=dine_in takeaway reservation"`
	TableNumber   *int           `json:"table_number" binding:"omitempty,gte=1"`
	CustomerName  string         `json:"customer_name" binding:"max=255"`
	CustomerPhone string         `json:"customer_phone" binding:"max=20"`
	DiscountCode  string         `json:"discount_code" binding:"max=50"`
	PaymentMethod string         `json:"payment_method" binding:"omitempty,oneof=cash card qr"`
	Note          string         `json:"note"`
}

type QuoteLine struct {
	ProductID      uuid.UUID               `json:"product_id"`
	ProductName    string                  `json:"product_name"`
	Quantity       int                     `json:"quantity"`
	UnitPrice      decimal.Decimal         `json:"unit_price"`
	LineTotal      decimal.Decimal         `json:"line_total"`
	Customizations []pricing.Customization `json:"customizations"`
	Notes          string                  `json:"notes,omitempty"`

	categoryID uuid.UUID
}

// DiscountOutcome reports what happened to the entered code.
type DiscountOutcome struct {
	Code   string                 `json:"code"`
	OK     bool                   `json:"ok"`
	Amount decimal.Decimal        `json:"amount"`
	Reason pricing.DiscountReason `json:"reason,omitempty"`
}

type Quote struct {
	Lines        []QuoteLine      `json:"lines"`
	Totals       pricing.Totals   `json:"totals"`
	Discount     *DiscountOutcome `json:"discount,omitempty"`
	CustomerType string           `json:"customer_type,omitempty"`
	// Fallbacks names the collaborators that failed and were replaced by defaults.
	Fallbacks []string `json:"fallbacks,omitempty"`
}

type PlaceOrderResult struct {
	Order *model.Order `json:"order"`
	Quote *Quote       `json:"quote"`
}

// --- Interface ---

type CheckoutService interface {
	Quote(ctx context.Context, req CheckoutRequest) (*Quote, error)
	// PlaceOrder persists the order. When the total is below the minimum it returns
	// ErrBelowMinimum and a result carrying only the quote.
	PlaceOrder(ctx context.Context, req CheckoutRequest) (*PlaceOrderResult, error)
}

type CheckoutDeps struct {
	TxManager repository.TransactionManager
	Products  repository.ProductRepository
	TaxRules  repository.TaxRuleRepository
	Discounts repository.DiscountRepository
	Customers repository.CustomerRepository
	Orders    repository.OrderRepository
	Tables    repository.TableRepository
	Settings  SettingsService
	Audit     AuditService
	Publisher events.OrderPublisher
	Hub       Broadcaster
	Numbers   OrderNumbers
	Location  *time.Location
}

type checkoutService struct {
	CheckoutDeps
	now func() time.Time
}

func NewCheckoutService(deps CheckoutDeps) CheckoutService {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	return &checkoutService{CheckoutDeps: deps, now: time.Now}
}

// snapshot is everything pricing reads, loaded once per request.
type snapshot struct {
	products map[uuid.UUID]model.Product

	rules    []model.TaxRule
	rulesErr error

	discount    *model.DiscountCode
	discountErr error

	customer    *model.Customer
	customerErr error

	settings    PricingSettings
	settingsErr error
}

// --- Implementation ---

func (s *checkoutService) Quote(ctx context.Context, req CheckoutRequest) (*Quote, error) {
	if err := validateCheckout(req); err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.price(req, snap, s.now())
}

func (s *checkoutService) PlaceOrder(ctx context.Context, req CheckoutRequest) (*PlaceOrderResult, error) {
	quote, err := s.Quote(ctx, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			metrics.CheckoutsTotal.WithLabelValues("invalid").Inc()
		} else {
			metrics.CheckoutsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	if !quote.Totals.Eligible {
		metrics.CheckoutsTotal.WithLabelValues("below_minimum").Inc()
		return &PlaceOrderResult{Quote: quote}, ErrBelowMinimum
	}

	now := s.now()
	order := buildOrder(req, quote, s.Numbers.Next())

	err = s.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if d := quote.Discount; d != nil && d.OK {
			if err := s.redeem(txCtx, d.Code, quote.Totals.Subtotal, now); err != nil {
				return err
			}
			order.DiscountCode = d.Code
		}

		if order.DiningType == string(pricing.DiningDineIn) {
			if _, err := s.Tables.FindByNumber(txCtx, *order.TableNumber); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validationError("table %d does not exist", *order.TableNumber)
				}
				return fmt.Errorf("failed to fetch table: %w", err)
			}
		}

		if order.CustomerPhone != "" {
			customer, err := s.Customers.RecordOrder(txCtx, order.CustomerPhone, order.CustomerName, now)
			if err != nil {
				return fmt.Errorf("failed to record customer: %w", err)
			}
			order.CustomerID = &customer.ID
		}

		if err := s.Orders.Create(txCtx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if order.DiningType == string(pricing.DiningDineIn) {
			if err := s.Tables.SetStatusByNumber(txCtx, *order.TableNumber, model.TableOccupied); err != nil {
				return fmt.Errorf("failed to update table status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict) {
			outcome = "invalid"
		}
		metrics.CheckoutsTotal.WithLabelValues(outcome).Inc()
		return nil, err
	}

	metrics.CheckoutsTotal.WithLabelValues("placed").Inc()
	log.Info().Str("order_no", order.OrderNo).Str("total", order.TotalAmount.String()).Msg("Order placed")

	recordAfterCommit(ctx, s.Audit, nil, model.ActionPlaceOrder, order.ID.String(), order.OrderNo, map[string]interface{}{
		"total_amount":  order.TotalAmount,
		"discount_code": order.DiscountCode,
		"dining_type":   order.DiningType,
		"table_number":  order.TableNumber,
	})
	announceOrder(ctx, s.Publisher, s.Hub, events.EventOrderCreated, websocket.MessageNewOrder, order)

	return &PlaceOrderResult{Order: order, Quote: quote}, nil
}

// redeem re-checks the code under a row lock and consumes one use.
func (s *checkoutService) redeem(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) error {
	locked, err := s.Discounts.FindByCodeForUpdate(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: discount code %s is no longer available", ErrConflict, code)
		}
		return fmt.Errorf("failed to lock discount code: %w", err)
	}
	if res := pricing.ValidateAndApply(code, subtotal, locked.PricingCode(), now); !res.OK {
		return fmt.Errorf("%w: discount code %s rejected: %s", ErrConflict, code, res.Reason)
	}
	if err := s.Discounts.IncrementUsage(ctx, locked.ID); err != nil {
		return fmt.Errorf("failed to redeem discount code: %w", err)
	}
	return nil
}

// load fetches the pricing snapshot concurrently. Only the catalog is required;
// every other collaborator failure is kept on the snapshot for degradation.
func (s *checkoutService) load(ctx context.Context, req CheckoutRequest) (*snapshot, error) {
	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ids := make([]uuid.UUID, 0, len(req.Items))
		for _, it := range req.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := s.Products.FindByIDs(gctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load products: %w", err)
		}
		snap.products = make(map[uuid.UUID]model.Product, len(products))
		for _, p := range products {
			snap.products[p.ID] = p
		}
		return nil
	})

	g.Go(func() error {
		snap.rules, snap.rulesErr = s.TaxRules.ListActive(gctx)
		return nil
	})

	if code := pricing.NormalizeCode(req.DiscountCode); code != "" {
		g.Go(func() error {
			d, err := s.Discounts.FindByCode(gctx, code)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				snap.discountErr = err
				return nil
			}
			snap.discount = d
			return nil
		})
	}

	if phone := normalizePhone(req.CustomerPhone); phone != "" {
		g.Go(func() error {
			c, err := s.Customers.FindByPhone(gctx, phone)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				snap.customerErr = err
				return nil
			}
			snap.customer = c
			return nil
		})
	}

	g.Go(func() error {
		snap.settings, snap.settingsErr = s.Settings.Pricing(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *checkoutService) price(req CheckoutRequest, snap *snapshot, now time.Time) (*Quote, error) {
	quote := &Quote{}

	lines, err := priceLines(req.Items, snap.products)
	if err != nil {
		return nil, err
	}
	quote.Lines = lines
	cart := make([]pricing.CartLine, 0, len(lines))
	for _, l := range lines {
		cart = append(cart, pricing.CartLine{UnitPrice: l.UnitPrice, Quantity: l.Quantity})
	}
	subtotal, err := pricing.Subtotal(cart)
	if err != nil {
		return nil, validationError("%v", err)
	}

	settings := snap.settings
	if snap.settingsErr != nil {
		degrade("settings", snap.settingsErr)
		quote.Fallbacks = append(quote.Fallbacks, "settings")
	}

	discountAmount := decimal.Zero
	if code := pricing.NormalizeCode(req.DiscountCode); code != "" {
		outcome := &DiscountOutcome{Code: code, Amount: decimal.Zero}
		if snap.discountErr != nil {
			degrade("discounts", snap.discountErr)
			quote.Fallbacks = append(quote.Fallbacks, "discounts")
			outcome.Reason = "unavailable"
		} else {
			res := applyDiscount(code, subtotal, snap.discount, lines, now)
			observeDiscount(res)
			outcome.OK, outcome.Amount, outcome.Reason = res.OK, res.Amount, res.Reason
			discountAmount = res.Amount
		}
		quote.Discount = outcome
	}

	minimum := pricing.MinOrderConstraint{Global: settings.GlobalMinimum()}
	var customerType pricing.CustomerType
	if snap.customerErr != nil {
		degrade("customers", snap.customerErr)
		quote.Fallbacks = append(quote.Fallbacks, "customers")
	} else if snap.customer != nil {
		customerType = pricing.CustomerType(snap.customer.CustomerType)
		minimum.Customer = snap.customer.MinOrderAmount
		quote.CustomerType = snap.customer.CustomerType
	}

	mctx := pricing.MatchContext{
		OrderAmount:  subtotal.Sub(discountAmount),
		DiningType:   pricing.DiningType(req.DiningType),
		TableNumber:  req.TableNumber,
		CustomerType: customerType,
		Timestamp:    now.In(s.Location),
	}
	rules, _ := applicableRules(snap.rules, snap.rulesErr, settings.TaxRate, mctx)
	if snap.rulesErr != nil {
		quote.Fallbacks = append(quote.Fallbacks, "tax_rules")
	}

	totals, err := pricing.ComputeTotal(pricing.TotalInput{
		Lines:          cart,
		DiscountAmount: discountAmount,
		ServiceCharge:  settings.ServiceCharge(),
		TaxBase:        settings.TaxBase(),
		TaxRules:       rules,
		MinOrder:       minimum,
	})
	if err != nil {
		return nil, validationError("%v", err)
	}
	quote.Totals = roundTotals(totals)
	if quote.Discount != nil {
		quote.Discount.Amount = quote.Totals.DiscountAmount
	}
	return quote, nil
}

// priceLines resolves each requested item against the catalog snapshot.
func priceLines(items []CheckoutItem, products map[uuid.UUID]model.Product) ([]QuoteLine, error) {
	lines := make([]QuoteLine, 0, len(items))
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, validationError("item %d: quantity must be positive", i)
		}
		product, ok := products[it.ProductID]
		if !ok || !product.IsAvailable {
			return nil, validationError("item %d: product %s is not available", i, it.ProductID)
		}

		offered := make(map[uuid.UUID]model.ProductCustomization, len(product.Customizations))
		for _, c := range product.Customizations {
			offered[c.ID] = c
		}
		selections := make([]pricing.Customization, 0, len(it.CustomizationIDs))
		seen := make(map[uuid.UUID]bool, len(it.CustomizationIDs))
		sizes := 0
		for _, id := range it.CustomizationIDs {
			c, ok := offered[id]
			if !ok || !c.IsAvailable {
				return nil, validationError("item %d: customization %s is not available for %s", i, id, product.Name)
			}
			if seen[id] {
				return nil, validationError("item %d: customization %s selected twice", i, id)
			}
			seen[id] = true
			if c.Kind == model.CustomizationSize {
				sizes++
			}
			selections = append(selections, pricing.Customization{
				Kind:       pricing.CustomizationKind(c.Kind),
				Name:       c.Name,
				PriceDelta: c.PriceDelta,
			})
		}
		if sizes > 1 {
			return nil, validationError("item %d: only one size can be selected", i)
		}

		notes := strings.TrimSpace(it.Notes)
		unit, snap := pricing.SnapshotLine(product.Price, selections, notes)
		lines = append(lines, QuoteLine{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Quantity:       it.Quantity,
			UnitPrice:      unit,
			LineTotal:      unit.Mul(decimal.NewFromInt(int64(it.Quantity))),
			Customizations: snap,
			Notes:          notes,
			categoryID:     product.CategoryID,
		})
	}
	return lines, nil
}

// applyDiscount validates against the order subtotal. Product and category codes
// are then priced only on the lines they target.
func applyDiscount(code string, subtotal decimal.Decimal, stored *model.DiscountCode, lines []QuoteLine, now time.Time) pricing.DiscountResult {
	if stored == nil {
		return pricing.ValidateAndApply(code, subtotal, nil, now)
	}
	candidate := stored.PricingCode()
	res := pricing.ValidateAndApply(code, subtotal, candidate, now)
	if !res.OK || candidate.AppliesTo == pricing.ScopeOrder || candidate.AppliesTo == "" || stored.TargetID == nil {
		return res
	}

	base := decimal.Zero
	for _, l := range lines {
		if (candidate.AppliesTo == pricing.ScopeProduct && l.ProductID == *stored.TargetID) ||
			(candidate.AppliesTo == pricing.ScopeCategory && l.categoryID == *stored.TargetID) {
			base = base.Add(l.LineTotal)
		}
	}
	if !base.IsPositive() {
		return pricing.DiscountResult{Amount: decimal.Zero, Reason: pricing.ReasonNotApplicable}
	}
	candidate.MinOrderAmount = nil
	return pricing.ValidateAndApply(code, base, candidate, now)
}

func validateCheckout(req CheckoutRequest) error {
	if len(req.Items) == 0 {
		return validationError("at least one item is required")
	}
	if !pricing.DiningType(req.DiningType).Valid() {
		return validationError("invalid dining_type %q", req.DiningType)
	}
	if req.DiningType == string(pricing.DiningDineIn) && req.TableNumber == nil {
		return validationError("table_number is required for dine_in orders")
	}
	if req.TableNumber != nil && *req.TableNumber < 1 {
		return validationError("table_number must be positive")
	}
	return nil
}

// roundTotals rounds money to cents for display and storage, then re-derives the
// final total and the minimum gate from the rounded parts.
func roundTotals(t pricing.Totals) pricing.Totals {
	const places = 2
	t.Subtotal = t.Subtotal.Round(places)
	t.DiscountAmount = t.DiscountAmount.Round(places)
	t.DiscountedTotal = t.Subtotal.Sub(t.DiscountAmount)
	t.ServiceCharge = t.ServiceCharge.Round(places)
	t.TaxableAmount = t.TaxableAmount.Round(places)
	t.TaxAmount = t.TaxAmount.Round(places)
	for i := range t.Taxes {
		t.Taxes[i].Amount = t.Taxes[i].Amount.Round(places)
	}
	t.FinalTotal = t.DiscountedTotal.Add(t.ServiceCharge).Add(t.TaxAmount)
	t.RequiredMinimum = t.RequiredMinimum.Round(places)
	t.Shortfall = decimal.Zero
	if t.FinalTotal.LessThan(t.RequiredMinimum) {
		t.Shortfall = t.RequiredMinimum.Sub(t.FinalTotal)
	}
	t.Eligible = t.FinalTotal.GreaterThanOrEqual(t.RequiredMinimum)
	return t
}

func buildOrder(req CheckoutRequest, q *Quote, orderNo string) *model.Order {
	method := req.PaymentMethod
	if method == "" {
		method = model.PaymentCash
	}
	order := &model.Order{
		OrderNo:        orderNo,
		TableNumber:    req.TableNumber,
		DiningType:     req.DiningType,
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerPhone:  normalizePhone(req.CustomerPhone),
		Status:         model.OrderStatusPending,
		PaymentMethod:  method,
		PaymentStatus:  model.PaymentUnpaid,
		Subtotal:       q.Totals.Subtotal,
		DiscountAmount: q.Totals.DiscountAmount,
		ServiceCharge:  q.Totals.ServiceCharge,
		TaxRate:        q.Totals.TaxRate,
		TaxAmount:      q.Totals.TaxAmount,
		TotalAmount:    q.Totals.FinalTotal,
		Taxes:          q.Totals.Taxes,
		Note:           strings.TrimSpace(req.Note),
	}
	for _, l := range q.Lines {
		productID := l.ProductID
		order.Items = append(order.Items, model.OrderItem{
			ProductID:      &productID,
			ProductName:    l.ProductName,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice.Round(2),
			LineTotal:      l.LineTotal.Round(2),
			Customizations: l.Customizations,
			Notes:          l.Notes,
		})
	}
	return order
}
