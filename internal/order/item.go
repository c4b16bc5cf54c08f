package order

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Patty sizes, ascending patty count.
const (
	PattySimple = "simple"
	PattyDoble  = "doble"
	PattyTriple = "triple"
)

// Item is one distinguishable line of an order.
type Item struct {
	BurgerType string           `json:"burger_type"`
	PattySize  string           `json:"patty_size"`
	Combo      bool             `json:"combo"`
	Additions  []string         `json:"additions,omitempty"`
	Removals   []string         `json:"removals,omitempty"`
	Quantity   int              `json:"quantity"`
	Price      *decimal.Decimal `json:"price,omitempty"`
}

// ItemStatus tracks kitchen preparation of the item at the same position.
type ItemStatus struct {
	Item
	Completed bool `json:"completed"`
}

// Qty returns the line quantity. Missing or invalid quantities count as 1.
func (it Item) Qty() int {
	if it.Quantity < 1 {
		return 1
	}
	return it.Quantity
}

// String renders the line the way tickets and logs print it,
// e.g. "2x ruby clove doble (combo) + bacon - cebolla".
func (it Item) String() string {
	s := fmt.Sprintf("%dx %s %s", it.Qty(), it.BurgerType, it.PattySize)
	if it.Combo {
		s += " (combo)"
	}
	if len(it.Additions) > 0 {
		s += " + " + strings.Join(it.Additions, ", ")
	}
	if len(it.Removals) > 0 {
		s += " - " + strings.Join(it.Removals, ", ")
	}
	return s
}

// StatusFor derives a fresh item_status list: one entry per item, none completed.
func StatusFor(items []Item) []ItemStatus {
	out := make([]ItemStatus, len(items))
	for i, it := range items {
		out[i] = ItemStatus{Item: it}
	}
	return out
}

// Normalize returns the canonical form of an item used for comparisons.
// Quantity and price are carried over untouched.
func Normalize(it Item) Item {
	return Item{
		BurgerType: strings.ToLower(strings.TrimSpace(it.BurgerType)),
		PattySize:  strings.ToLower(strings.TrimSpace(it.PattySize)),
		Combo:      it.Combo,
		Additions:  normalizeList(it.Additions),
		Removals:   normalizeList(it.Removals),
		Quantity:   it.Quantity,
		Price:      it.Price,
	}
}

// SameItem reports whether a and b describe the same order line.
// Quantity and price are ignored. Modifier order does not matter, duplicates do.
func SameItem(a, b Item) bool {
	na, nb := Normalize(a), Normalize(b)
	return na.BurgerType == nb.BurgerType &&
		na.PattySize == nb.PattySize &&
		na.Combo == nb.Combo &&
		equalLists(na.Additions, nb.Additions) &&
		equalLists(na.Removals, nb.Removals)
}

func normalizeList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	sort.Strings(out)
	return out
}

func equalLists(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
