package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"restaurant/internal/events"
	"restaurant/internal/model"
	"restaurant/internal/repository"
	"restaurant/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errStoreDown = errors.New("connection refused")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(i int) *int { return &i }

func ensureID(b *model.Base) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
}

// passTx runs fn inline; repositories see the same context.
type passTx struct{}

func (passTx) RunInTx(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }

// --- products ---

type fakeProducts struct {
	items map[uuid.UUID]model.Product
	err   error
}

func newFakeProducts(products ...model.Product) *fakeProducts {
	f := &fakeProducts{items: map[uuid.UUID]model.Product{}}
	for _, p := range products {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProducts) Create(_ context.Context, p *model.Product) error {
	ensureID(&p.Base)
	for i := range p.Customizations {
		ensureID(&p.Customizations[i].Base)
		p.Customizations[i].ProductID = p.ID
	}
	f.items[p.ID] = *p
	return nil
}
func (f *fakeProducts) Update(_ context.Context, p *model.Product) error {
	existing := f.items[p.ID]
	cp := *p
	cp.Customizations = existing.Customizations
	f.items[p.ID] = cp
	return nil
}
func (f *fakeProducts) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}
func (f *fakeProducts) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}
func (f *fakeProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Product
	for _, id := range ids {
		if p, ok := f.items[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
func (f *fakeProducts) List(context.Context, *uuid.UUID, string, pagination.Params) ([]model.Product, int64, error) {
	out := make([]model.Product, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}
func (f *fakeProducts) ReplaceCustomizations(_ context.Context, id uuid.UUID, items []model.ProductCustomization) error {
	p := f.items[id]
	for i := range items {
		ensureID(&items[i].Base)
		items[i].ProductID = id
	}
	p.Customizations = items
	f.items[id] = p
	return nil
}

// --- tax rules ---

type fakeTaxRules struct {
	rules []model.TaxRule
	err   error
}

func (f *fakeTaxRules) Create(_ context.Context, r *model.TaxRule) error {
	ensureID(&r.Base)
	f.rules = append(f.rules, *r)
	return nil
}
func (f *fakeTaxRules) Update(_ context.Context, r *model.TaxRule) error {
	for i := range f.rules {
		if f.rules[i].ID == r.ID {
			f.rules[i] = *r
		}
	}
	return nil
}
func (f *fakeTaxRules) Delete(_ context.Context, id uuid.UUID) error {
	for i := range f.rules {
		if f.rules[i].ID == id {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return nil
		}
	}
	return nil
}
func (f *fakeTaxRules) FindByID(_ context.Context, id uuid.UUID) (*model.TaxRule, error) {
	for _, r := range f.rules {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeTaxRules) List(_ context.Context, activeOnly bool, _ pagination.Params) ([]model.TaxRule, int64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []model.TaxRule
	for _, r := range f.rules {
		if !activeOnly || r.IsActive {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}
func (f *fakeTaxRules) ListActive(ctx context.Context) ([]model.TaxRule, error) {
	out, _, err := f.List(ctx, true, pagination.Params{})
	return out, err
}

// --- discounts ---

type fakeDiscounts struct {
	mu    sync.Mutex
	codes map[string]*model.DiscountCode
	// locked overrides what FindByCodeForUpdate sees, to model a concurrent redemption.
	locked map[string]*model.DiscountCode
	err    error
}

func newFakeDiscounts(codes ...model.DiscountCode) *fakeDiscounts {
	f := &fakeDiscounts{codes: map[string]*model.DiscountCode{}, locked: map[string]*model.DiscountCode{}}
	for i := range codes {
		c := codes[i]
		ensureID(&c.Base)
		f.codes[c.Code] = &c
	}
	return f
}

func (f *fakeDiscounts) Create(_ context.Context, d *model.DiscountCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.codes[d.Code]; ok {
		return gorm.ErrDuplicatedKey
	}
	ensureID(&d.Base)
	cp := *d
	f.codes[d.Code] = &cp
	return nil
}
func (f *fakeDiscounts) Update(_ context.Context, d *model.DiscountCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *d
	f.codes[d.Code] = &cp
	return nil
}
func (f *fakeDiscounts) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, c := range f.codes {
		if c.ID == id {
			delete(f.codes, k)
		}
	}
	return nil
}
func (f *fakeDiscounts) FindByID(_ context.Context, id uuid.UUID) (*model.DiscountCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeDiscounts) FindByCode(_ context.Context, code string) (*model.DiscountCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.codes[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}
func (f *fakeDiscounts) FindByCodeForUpdate(ctx context.Context, code string) (*model.DiscountCode, error) {
	f.mu.Lock()
	if c, ok := f.locked[code]; ok {
		f.mu.Unlock()
		cp := *c
		return &cp, nil
	}
	f.mu.Unlock()
	return f.FindByCode(ctx, code)
}
func (f *fakeDiscounts) List(context.Context, string, pagination.Params) ([]model.DiscountCode, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.DiscountCode
	for _, c := range f.codes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}
func (f *fakeDiscounts) IncrementUsage(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.ID == id {
			c.UsedCount++
		}
	}
	return nil
}

// --- customers ---

type fakeCustomers struct {
	byPhone map[string]*model.Customer
	err     error
}

func newFakeCustomers(customers ...model.Customer) *fakeCustomers {
	f := &fakeCustomers{byPhone: map[string]*model.Customer{}}
	for i := range customers {
		c := customers[i]
		ensureID(&c.Base)
		f.byPhone[c.Phone] = &c
	}
	return f
}

func (f *fakeCustomers) Create(_ context.Context, c *model.Customer) error {
	if _, ok := f.byPhone[c.Phone]; ok {
		return gorm.ErrDuplicatedKey
	}
	ensureID(&c.Base)
	cp := *c
	f.byPhone[c.Phone] = &cp
	return nil
}
func (f *fakeCustomers) Update(_ context.Context, c *model.Customer) error {
	for phone, existing := range f.byPhone {
		if existing.ID == c.ID {
			delete(f.byPhone, phone)
		}
	}
	cp := *c
	f.byPhone[c.Phone] = &cp
	return nil
}
func (f *fakeCustomers) Delete(_ context.Context, id uuid.UUID) error {
	for phone, c := range f.byPhone {
		if c.ID == id {
			delete(f.byPhone, phone)
		}
	}
	return nil
}
func (f *fakeCustomers) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	for _, c := range f.byPhone {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeCustomers) FindByPhone(_ context.Context, phone string) (*model.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.byPhone[phone]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}
func (f *fakeCustomers) List(context.Context, string, string, pagination.Params) ([]model.Customer, int64, error) {
	var out []model.Customer
	for _, c := range f.byPhone {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}
func (f *fakeCustomers) RecordOrder(_ context.Context, phone, name string, at time.Time) (*model.Customer, error) {
	c, ok := f.byPhone[phone]
	if !ok {
		c = &model.Customer{Phone: phone, Name: name, CustomerType: "regular"}
		ensureID(&c.Base)
		f.byPhone[phone] = c
	}
	c.OrderCount++
	c.LastOrderAt = &at
	if c.Name == "" {
		c.Name = name
	}
	cp := *c
	return &cp, nil
}

// --- orders ---

type fakeOrders struct {
	orders map[uuid.UUID]*model.Order
}

func newFakeOrders(orders ...model.Order) *fakeOrders {
	f := &fakeOrders{orders: map[uuid.UUID]*model.Order{}}
	for i := range orders {
		o := orders[i]
		ensureID(&o.Base)
		f.orders[o.ID] = &o
	}
	return f
}

func (f *fakeOrders) Create(_ context.Context, o *model.Order) error {
	ensureID(&o.Base)
	for i := range o.Items {
		ensureID(&o.Items[i].Base)
		o.Items[i].OrderID = o.ID
	}
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}
func (f *fakeOrders) FindByIDWithItems(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}
func (f *fakeOrders) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return f.FindByIDWithItems(ctx, id)
}
func (f *fakeOrders) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	o, ok := f.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			o.Status = v.(string)
		case "payment_status":
			o.PaymentStatus = v.(string)
		case "payment_method":
			o.PaymentMethod = v.(string)
		case "paid_at":
			if t, ok := v.(time.Time); ok {
				o.PaidAt = &t
			} else {
				o.PaidAt = nil
			}
		}
	}
	return nil
}
func (f *fakeOrders) List(_ context.Context, flt repository.OrderFilter, _ pagination.Params) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range f.orders {
		if flt.Status != "" && o.Status != flt.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}
func (f *fakeOrders) CountOpenByTable(_ context.Context, table int) (int64, error) {
	var n int64
	for _, o := range f.orders {
		if o.TableNumber != nil && *o.TableNumber == table && !isTerminal(o.Status) {
			n++
		}
	}
	return n, nil
}

// --- tables ---

type fakeTables struct {
	byNumber map[int]*model.Table
}

func newFakeTables(numbers ...int) *fakeTables {
	f := &fakeTables{byNumber: map[int]*model.Table{}}
	for _, n := range numbers {
		t := &model.Table{Number: n, Capacity: 4, Status: model.TableAvailable}
		ensureID(&t.Base)
		f.byNumber[n] = t
	}
	return f
}

func (f *fakeTables) Create(_ context.Context, t *model.Table) error {
	if _, ok := f.byNumber[t.Number]; ok {
		return gorm.ErrDuplicatedKey
	}
	ensureID(&t.Base)
	cp := *t
	f.byNumber[t.Number] = &cp
	return nil
}
func (f *fakeTables) Update(_ context.Context, t *model.Table) error {
	cp := *t
	f.byNumber[t.Number] = &cp
	return nil
}
func (f *fakeTables) Delete(_ context.Context, id uuid.UUID) error {
	for n, t := range f.byNumber {
		if t.ID == id {
			delete(f.byNumber, n)
		}
	}
	return nil
}
func (f *fakeTables) FindByID(_ context.Context, id uuid.UUID) (*model.Table, error) {
	for _, t := range f.byNumber {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeTables) FindByNumber(_ context.Context, n int) (*model.Table, error) {
	t, ok := f.byNumber[n]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}
func (f *fakeTables) List(context.Context, string) ([]model.Table, error) {
	var out []model.Table
	for _, t := range f.byNumber {
		out = append(out, *t)
	}
	return out, nil
}
func (f *fakeTables) SetStatusByNumber(_ context.Context, n int, status string) error {
	if t, ok := f.byNumber[n]; ok {
		t.Status = status
	}
	return nil
}

// --- settings ---

type fakeSettingsRepo struct {
	values map[string]string
	err    error
}

func (f *fakeSettingsRepo) All(context.Context) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out, nil
}
func (f *fakeSettingsRepo) Upsert(_ context.Context, key, value string) error {
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value
	return nil
}

// --- audit, events, hub ---

type fakeAudit struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeAudit) Record(_ context.Context, _ *uuid.UUID, action, _, _ string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	return nil
}
func (f *fakeAudit) GetAuditLogs(context.Context, repository.AuditFilter, pagination.Params) ([]AuditLogResponse, int64, error) {
	return nil, 0, nil
}

type fakePublisher struct {
	events []events.EventType
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, t events.EventType, _ *model.Order) error {
	f.events = append(f.events, t)
	return f.err
}
func (f *fakePublisher) Close() error { return nil }

type fakeHub struct {
	messages []string
}

func (f *fakeHub) Publish(msgType string, _ interface{}) {
	f.messages = append(f.messages, msgType)
}

type seqNumbers struct{ n int }

func (s *seqNumbers) Next() string {
	s.n++
	return fmt.Sprintf("ORD%04d", s.n)
}
