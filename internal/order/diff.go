package order

// DiffResult is the item delta between two versions of an order.
// Quantities in Added and Removed are the delta, never the full line quantity.
type DiffResult struct {
	Added   []Item `json:"added"`
	Removed []Item `json:"removed"`
	IsSwap  bool   `json:"isSwap"`
}

// HasChanges reports whether any line was added or removed.
func (d DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// FieldChanges flags edits to the non-item fields that the cashier cares about.
type FieldChanges struct {
	AddressChanged bool `json:"address_changed"`
	PhoneChanged   bool `json:"phone_changed"`
	PaymentChanged bool `json:"payment_changed"`
}

// Any reports whether at least one field changed.
func (f FieldChanges) Any() bool {
	return f.AddressChanged || f.PhoneChanged || f.PaymentChanged
}

// Change is everything an edit did to an order.
type Change struct {
	DiffResult
	FieldChanges
}

// MustNotify reports whether the edit has to reach the printers at all.
func (c Change) MustNotify() bool {
	return c.HasChanges() || c.Any()
}

// Diff computes what was added and removed going from oldItems to newItems.
//
// Repeated lines on either side are first merged by summing quantities, so a
// line's delta is computed once. A single added line replacing a single
// removed line of equal quantity is classified as a swap.
func Diff(oldItems, newItems []Item) DiffResult {
	oldLines := Consolidate(oldItems)
	newLines := Consolidate(newItems)

	var res DiffResult

	for _, ni := range newLines {
		match, ok := findSame(oldLines, ni)
		if !ok {
			res.Added = append(res.Added, ni)
			continue
		}
		if delta := ni.Qty() - match.Qty(); delta > 0 {
			added := ni
			added.Quantity = delta
			res.Added = append(res.Added, added)
		}
	}

	for _, oi := range oldLines {
		match, ok := findSame(newLines, oi)
		if !ok {
			res.Removed = append(res.Removed, oi)
			continue
		}
		if delta := oi.Qty() - match.Qty(); delta > 0 {
			removed := oi
			removed.Quantity = delta
			res.Removed = append(res.Removed, removed)
		}
	}

	res.IsSwap = len(res.Added) == 1 && len(res.Removed) == 1 &&
		res.Added[0].Qty() == res.Removed[0].Qty()

	return res
}

// Consolidate merges repeated lines into one, summing their quantities.
// The first occurrence keeps its position and spelling.
func Consolidate(items []Item) []Item {
	var out []Item
	for _, it := range items {
		merged := false
		for i := range out {
			if SameItem(out[i], it) {
				out[i].Quantity = out[i].Qty() + it.Qty()
				merged = true
				break
			}
		}
		if !merged {
			it.Quantity = it.Qty()
			out = append(out, it)
		}
	}
	return out
}

// Contains reports whether items holds a line equal to it.
func Contains(items []Item, it Item) bool {
	_, ok := findSame(items, it)
	return ok
}

func findSame(items []Item, it Item) (Item, bool) {
	for _, candidate := range items {
		if SameItem(candidate, it) {
			return candidate, true
		}
	}
	return Item{}, false
}
