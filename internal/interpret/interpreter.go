package interpret

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tablemate/tablemate/internal/models"
)

var (
	smallSynonyms = tokenSet(models.SynonymsSmall)
	largeSynonyms = tokenSet(models.SynonymsLarge)

	qtyDefault = decimal.NewFromInt(1)
	qtyExtra   = decimal.RequireFromString("1.5")
)

func tokenSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// ParseOrders interprets a full order line. Sub-orders are separated by
// semicolons and resolved independently; a sub-order with no recognisable
// product yields a nil element, so the result always has one entry per
// sub-order.
func ParseOrders(orderText string, menu *models.Menu) []*models.OrderItem {
	parts := strings.Split(orderText, ";")
	items := make([]*models.OrderItem, 0, len(parts))
	for _, part := range parts {
		items = append(items, parseOrder(strings.TrimSpace(part), menu))
	}
	return items
}

func parseOrder(order string, menu *models.Menu) *models.OrderItem {
	// Step 1: which product?
	products := menu.ProductList()
	catalog := make([]Entry, len(products))
	for i, p := range products {
		catalog[i] = Entry{Code: p.Code, Name: p.Name}
	}
	candidates := FindMatches(order, catalog)
	if len(candidates) == 0 {
		return nil
	}
	best, ok := menu.Product(candidates[0].Entry.Code)
	if !ok || len(best.Variants) == 0 {
		return nil
	}

	item := &models.OrderItem{
		Code:    best.Variants[0],
		Qty:     1,
		Options: defaultOptions(best),
	}

	if !strings.EqualFold(best.ProductType, "pizza") {
		return item
	}

	// Step 2: which size? Later synonym words override earlier ones.
	size := models.SizeStandard
	for _, word := range Normalize(strings.ReplaceAll(order, ",", "")) {
		if smallSynonyms[word] {
			size = models.SizeSmall
		}
		if largeSynonyms[word] {
			size = models.SizeLarge
		}
	}
	codePrefix := strconv.Itoa(size) + models.CrustMarker
	for _, code := range best.Variants {
		if strings.HasPrefix(code, codePrefix) {
			item.Code = code
		}
	}

	// Step 3: which toppings? Candidates apply in rank order, later writes
	// win. The word right before the match, inside the same comma segment,
	// inflects the quantity.
	toppings := menu.NonSauceToppings()
	toppingCatalog := make([]Entry, len(toppings))
	for i, t := range toppings {
		toppingCatalog[i] = Entry{Code: t.Code, Name: t.Name}
	}
	segments := strings.Split(order, ",")
	for _, match := range FindMatches(order, toppingCatalog) {
		qty := qtyDefault
		removed := false
		if match.Word > 0 && match.Part < len(segments) {
			words := Normalize(strings.TrimSpace(segments[match.Part]))
			if match.Word-1 < len(words) {
				switch words[match.Word-1] {
				case "no":
					removed = true
				case "extra":
					qty = qtyExtra
				}
			}
		}
		if removed {
			item.Options[match.Entry.Code] = models.Removed()
		} else {
			item.Options[match.Entry.Code] = models.Quantity(qty)
		}
	}

	return item
}

// defaultOptions parses the product's "code=qty,code=qty" default topping
// spec into an options map.
func defaultOptions(p models.MenuProduct) map[string]models.OptionValue {
	options := make(map[string]models.OptionValue)
	if p.DefaultToppings == "" {
		return options
	}
	for _, entry := range strings.Split(p.DefaultToppings, ",") {
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) != 2 {
			continue
		}
		qty, err := decimal.NewFromString(kv[1])
		if err != nil {
			continue
		}
		options[kv[0]] = models.Quantity(qty)
	}
	return options
}
