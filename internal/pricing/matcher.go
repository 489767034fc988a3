package pricing

import "slices"

// predicate is one independent condition of a tax rule.
type predicate struct {
	name  string
	check func(r TaxRule, c MatchContext) bool
}

// predicates are combined with logical AND. Order only affects FailedPredicates output.
var predicates = []predicate{
	{"amount", amountInRange},
	{"dining_type", diningTypeMatches},
	{"customer_type", customerTypeMatches},
	{"table", tableMatches},
	{"time_window", withinTimeWindow},
	{"day_of_week", onAllowedDay},
}

// MatchRules returns every active rule whose conditions all hold for c, in input order.
// All matching rules apply; priority never excludes a match.
func MatchRules(rules []TaxRule, c MatchContext) []TaxRule {
	matched := make([]TaxRule, 0, len(rules))
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		if ruleMatches(r, c) {
			matched = append(matched, r)
		}
	}
	return matched
}

func ruleMatches(r TaxRule, c MatchContext) bool {
	for _, p := range predicates {
		if !p.check(r, c) {
			return false
		}
	}
	return true
}

// FailedPredicates lists the names of the conditions r does not satisfy for c.
// An inactive rule reports "is_active" first.
func FailedPredicates(r TaxRule, c MatchContext) []string {
	var failed []string
	if !r.IsActive {
		failed = append(failed, "is_active")
	}
	for _, p := range predicates {
		if !p.check(r, c) {
			failed = append(failed, p.name)
		}
	}
	return failed
}

func amountInRange(r TaxRule, c MatchContext) bool {
	if r.MinOrderAmount != nil && c.OrderAmount.LessThan(*r.MinOrderAmount) {
		return false
	}
	if r.MaxOrderAmount != nil && c.OrderAmount.GreaterThan(*r.MaxOrderAmount) {
		return false
	}
	return true
}

func diningTypeMatches(r TaxRule, c MatchContext) bool {
	return r.DiningType == "" || r.DiningType == DiningAll || r.DiningType == c.DiningType
}

// An order with no known customer type is not restricted by this condition.
func customerTypeMatches(r TaxRule, c MatchContext) bool {
	if r.CustomerType == "" || r.CustomerType == CustomerAll || c.CustomerType == "" {
		return true
	}
	return r.CustomerType == c.CustomerType
}

// The deny-list wins over the allow-list.
func tableMatches(r TaxRule, c MatchContext) bool {
	if c.TableNumber == nil {
		return true
	}
	table := *c.TableNumber
	if slices.Contains(r.ExcludeTables, table) {
		return false
	}
	if len(r.SpecificTables) > 0 {
		return slices.Contains(r.SpecificTables, table)
	}
	return true
}

// Windows are inclusive; start > end wraps past midnight. A malformed window never matches.
func withinTimeWindow(r TaxRule, c MatchContext) bool {
	if r.TimeStart == "" || r.TimeEnd == "" {
		return true
	}
	start, err := ParseClock(r.TimeStart)
	if err != nil {
		return false
	}
	end, err := ParseClock(r.TimeEnd)
	if err != nil {
		return false
	}
	current := c.Timestamp.Hour()*60 + c.Timestamp.Minute()
	if start <= end {
		return current >= start && current <= end
	}
	return current >= start || current <= end
}

func onAllowedDay(r TaxRule, c MatchContext) bool {
	if len(r.DaysOfWeek) == 0 {
		return true
	}
	return slices.Contains(r.DaysOfWeek, int(c.Timestamp.Weekday()))
}
