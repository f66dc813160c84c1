package models

import (
	"encoding/json"
	"sort"
)

// MenuProduct is one orderable entry of a store menu. Variants hold the
// size/crust-specific codes, first variant is the default. DefaultToppings is
// the vendor's comma-separated "code=qty" spec applied to every fresh order.
type MenuProduct struct {
	Code            string   `json:"Code"`
	Name            string   `json:"Name"`
	ProductType     string   `json:"ProductType"`
	Variants        []string `json:"Variants"`
	DefaultToppings string   `json:"DefaultToppings"`
}

type ToppingTags struct {
	Sauce bool `json:"Sauce"`
}

type Topping struct {
	Code string      `json:"Code"`
	Name string      `json:"Name"`
	Tags ToppingTags `json:"Tags"`
}

// ServiceMethods tolerates both encodings the vendor's coupon feed emits:
// a bare string ("Carryout") or an array of strings. Any other shape decodes
// to nil, which reads as "allows nothing" so the deal gets skipped instead of
// failing the whole menu parse.
type ServiceMethods []string

func (s *ServiceMethods) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = ServiceMethods{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*s = ServiceMethods(many)
		return nil
	}
	*s = nil
	return nil
}

func (s ServiceMethods) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

func (s ServiceMethods) Allows(method string) bool {
	for _, m := range s {
		if m == method {
			return true
		}
	}
	return false
}

type DealTags struct {
	// Days restricts the deal to weekdays whose 3-letter abbreviation starts
	// with one of these entries. Empty means unrestricted.
	Days                []string       `json:"Days,omitempty"`
	ValidServiceMethods ServiceMethods `json:"ValidServiceMethods,omitempty"`
}

type Deal struct {
	Code string   `json:"Code"`
	Name string   `json:"Name"`
	Tags DealTags `json:"Tags"`
}

type ProductGroup struct {
	RequiredQty  int      `json:"RequiredQty"`
	ProductCodes []string `json:"ProductCodes"`
}

// DealDetail is the per-store expansion of a deal: the product groups that
// must all be fully staffed for one instance of the deal to apply.
type DealDetail struct {
	Code          string         `json:"Code"`
	ProductGroups []ProductGroup `json:"ProductGroups"`
}

// Menu is a read-only snapshot of one store's catalog at one point in time.
// The interpreter and optimizer only ever read from it, so a single snapshot
// can safely serve concurrent interpretations.
type Menu struct {
	products map[string]MenuProduct
	toppings map[string]Topping
	deals    map[string]Deal
}

// NewMenu builds a snapshot from vendor catalog maps. Entries whose Code
// field is empty inherit their map key, matching the feed where the key is
// authoritative.
func NewMenu(products map[string]MenuProduct, toppings map[string]Topping, deals map[string]Deal) *Menu {
	m := &Menu{
		products: make(map[string]MenuProduct, len(products)),
		toppings: make(map[string]Topping, len(toppings)),
		deals:    make(map[string]Deal, len(deals)),
	}
	for code, p := range products {
		if p.Code == "" {
			p.Code = code
		}
		m.products[code] = p
	}
	for code, t := range toppings {
		if t.Code == "" {
			t.Code = code
		}
		m.toppings[code] = t
	}
	for code, d := range deals {
		if d.Code == "" {
			d.Code = code
		}
		m.deals[code] = d
	}
	return m
}

func (m *Menu) Products() map[string]MenuProduct { return m.products }

// Toppings returns the pizza topping catalog.
func (m *Menu) Toppings() map[string]Topping { return m.toppings }

func (m *Menu) Deals() map[string]Deal { return m.deals }

func (m *Menu) Product(code string) (MenuProduct, bool) {
	p, ok := m.products[code]
	return p, ok
}

func (m *Menu) Topping(code string) (Topping, bool) {
	t, ok := m.toppings[code]
	return t, ok
}

// ProductList returns the products ordered by code. Matching walks this list,
// so interpretation stays deterministic across runs.
func (m *Menu) ProductList() []MenuProduct {
	codes := make([]string, 0, len(m.products))
	for code := range m.products {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	products := make([]MenuProduct, len(codes))
	for i, code := range codes {
		products[i] = m.products[code]
	}
	return products
}

// NonSauceToppings returns toppings eligible for order-text matching, ordered
// by code. Sauces are excluded: they collide with product names too easily.
func (m *Menu) NonSauceToppings() []Topping {
	codes := make([]string, 0, len(m.toppings))
	for code, t := range m.toppings {
		if t.Tags.Sauce {
			continue
		}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	toppings := make([]Topping, len(codes))
	for i, code := range codes {
		toppings[i] = m.toppings[code]
	}
	return toppings
}
