package pricing

import (
	"github.com/shopspring/decimal"
)

// CustomizationKind tags a Customization.
type CustomizationKind string

const (
	KindSize   CustomizationKind = "size"
	KindOption CustomizationKind = "option"
	KindAddon  CustomizationKind = "addon"
	KindNote   CustomizationKind = "note"
)

// Customization is a copied selection stored with an order line. Notes carry Text and no price.
type Customization struct {
	Kind       CustomizationKind `json:"kind"`
	Name       string            `json:"name,omitempty"`
	PriceDelta decimal.Decimal   `json:"price_delta"`
	Text       string            `json:"text,omitempty"`
}

// SnapshotLine prices a line from its base price plus selection deltas and returns an
// independent copy of the selections, so later menu edits never reach stored orders.
func SnapshotLine(basePrice decimal.Decimal, selections []Customization, note string) (decimal.Decimal, []Customization) {
	unit := basePrice
	snapshot := make([]Customization, 0, len(selections)+1)
	for _, s := range selections {
		if s.Kind == KindNote {
			if s.Text != "" {
				snapshot = append(snapshot, Customization{Kind: KindNote, Text: s.Text, PriceDelta: decimal.Zero})
			}
			continue
		}
		unit = unit.Add(s.PriceDelta)
		snapshot = append(snapshot, Customization{Kind: s.Kind, Name: s.Name, PriceDelta: s.PriceDelta})
	}
	if note != "" {
		snapshot = append(snapshot, Customization{Kind: KindNote, Text: note, PriceDelta: decimal.Zero})
	}
	if unit.IsNegative() {
		unit = decimal.Zero
	}
	return unit, snapshot
}
