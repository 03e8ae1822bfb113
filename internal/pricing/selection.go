package pricing

import "slices"

// Selection is the per-session voucher and note choice, keyed by store id.
// It holds at most one voucher per store.
type Selection struct {
	Vouchers map[string]*Voucher `json:"vouchers"`
	Notes    map[string]string   `json:"notes"`
}

func NewSelection() Selection {
	return Selection{
		Vouchers: map[string]*Voucher{},
		Notes:    map[string]string{},
	}
}

// VoucherFor returns the selected voucher for storeID, or nil.
func (s Selection) VoucherFor(storeID string) *Voucher {
	if s.Vouchers == nil {
		return nil
	}
	return s.Vouchers[storeID]
}

func (s Selection) NoteFor(storeID string) string {
	if s.Notes == nil {
		return ""
	}
	return s.Notes[storeID]
}

// Select replaces the voucher chosen for storeID.
func (s *Selection) Select(storeID string, v Voucher) {
	if s.Vouchers == nil {
		s.Vouchers = map[string]*Voucher{}
	}
	s.Vouchers[storeID] = &v
}

func (s *Selection) Clear(storeID string) {
	delete(s.Vouchers, storeID)
}

// SetNote stores note for storeID; an empty note removes the entry.
func (s *Selection) SetNote(storeID, note string) {
	if note == "" {
		delete(s.Notes, storeID)
		return
	}
	if s.Notes == nil {
		s.Notes = map[string]string{}
	}
	s.Notes[storeID] = note
}

// Current looks the selected voucher for o up by id in o's available vouchers. The
// stored copy is never priced: ok is false when nothing is selected or the voucher
// was withdrawn from the preview.
func (s Selection) Current(o VendorOrder) (v Voucher, selected, ok bool) {
	picked := s.VoucherFor(o.StoreID)
	if picked == nil {
		return Voucher{}, false, false
	}
	v, ok = o.FindVoucher(picked.ID)
	return v, true, ok
}

// ClearStale drops every selection that Current cannot resolve against orders or that
// fails IsApplicable, and returns the affected store ids sorted. Surviving selections
// are replaced with the voucher terms from orders.
func (s *Selection) ClearStale(orders []VendorOrder) []string {
	byStore := make(map[string]VendorOrder, len(orders))
	for _, o := range orders {
		byStore[o.StoreID] = o
	}
	var cleared []string
	for storeID := range s.Vouchers {
		order, inCart := byStore[storeID]
		fresh, _, ok := s.Current(order)
		if !inCart || !ok || !IsApplicable(fresh, order) {
			cleared = append(cleared, storeID)
			continue
		}
		s.Vouchers[storeID] = &fresh
	}
	for _, storeID := range cleared {
		delete(s.Vouchers, storeID)
	}
	slices.Sort(cleared)
	return cleared
}
