package pricing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiningType is the fulfillment mode of an order.
type DiningType string

const (
	DiningDineIn      DiningType = "dine_in"
	DiningTakeaway    DiningType = "takeaway"
	DiningReservation DiningType = "reservation"
	DiningAll         DiningType = "all"
)

// Valid reports whether d is a concrete dining type an order can carry.
func (d DiningType) Valid() bool {
	return d == DiningDineIn || d == DiningTakeaway || d == DiningReservation
}

// CustomerType classifies the customer for rule matching.
type CustomerType string

const (
	CustomerRegular CustomerType = "regular"
	CustomerVIP     CustomerType = "vip"
	CustomerStaff   CustomerType = "staff"
	CustomerAll     CustomerType = "all"
)

// Valid reports whether c is a concrete customer type.
func (c CustomerType) Valid() bool {
	return c == CustomerRegular || c == CustomerVIP || c == CustomerStaff
}

// TaxRule is a conditional tax. Empty/nil conditions are unconstrained.
type TaxRule struct {
	ID             string
	Name           string
	Rate           decimal.Decimal // percentage, 0-100
	Priority       int
	IsActive       bool
	MinOrderAmount *decimal.Decimal
	MaxOrderAmount *decimal.Decimal
	DiningType     DiningType
	CustomerType   CustomerType
	SpecificTables []int
	ExcludeTables  []int
	TimeStart      string // HH:MM
	TimeEnd        string // HH:MM
	DaysOfWeek     []int  // 0 = Sunday
}

// MatchContext describes the order a rule set is evaluated against.
type MatchContext struct {
	OrderAmount  decimal.Decimal
	DiningType   DiningType
	TableNumber  *int
	CustomerType CustomerType // empty when unknown
	Timestamp    time.Time
}

// ParseClock parses "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// percentOf returns amount * rate / 100.
func percentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

var hundred = decimal.NewFromInt(100)
