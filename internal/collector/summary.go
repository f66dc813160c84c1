package collector

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tablemate/tablemate/internal/models"
	"github.com/tablemate/tablemate/internal/vendor"
)

var qtyExtraSummary = decimal.RequireFromString("1.5")

// RenderSummary formats a validated or priced envelope for the chat: applied
// deals first, then each product with price and customizations, then any
// status codes the vendor reported.
func RenderSummary(env *vendor.OrderEnvelope, menu *models.Menu) string {
	var b strings.Builder
	b.WriteString("=== Pizza Order ===\n")

	for _, coupon := range env.Order.Coupons {
		name := coupon.Code
		if deal, ok := menu.Deals()[coupon.Code]; ok {
			name, _, _ = strings.Cut(deal.Name, "-")
		}
		b.WriteString("- ")
		b.WriteString(strings.TrimSpace(name))
		b.WriteString("\n")
	}

	for _, product := range env.Order.Products {
		if product.AutoRemove {
			continue
		}
		name := product.Name
		if name == "" {
			name = product.Code
		}
		price := "--"
		if product.Price != nil {
			price = product.Price.String()
		}
		b.WriteString("*" + name + "* " + price + " CHF")
		if custom := CustomizationString(product.Options, menu); custom != "" {
			b.WriteString(" - " + custom)
		}
		b.WriteString("\n")
		if len(product.StatusItems) > 0 {
			for _, status := range product.StatusItems {
				b.WriteString(status.Code + " ")
			}
			b.WriteString("\n")
		}
	}

	if len(env.Order.StatusItems) > 0 {
		b.WriteString("\nThe vendor reports the following issues with your order:\n")
		for _, status := range env.Order.StatusItems {
			b.WriteString(status.Code + " ")
		}
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String())
}

// CustomizationString renders an options map as "no Onions, extra Ham, ...".
// Topping codes resolve to display names through the menu; keys are sorted so
// the output is stable.
func CustomizationString(options map[string]models.OptionValue, menu *models.Menu) string {
	codes := make([]string, 0, len(options))
	for code := range options {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		value := options[code]
		name := code
		if topping, ok := menu.Topping(code); ok {
			name = topping.Name
		}
		switch {
		case value.IsRemoved():
			parts = append(parts, "no "+name)
		case value.Qty().Equal(qtyExtraSummary):
			parts = append(parts, "extra "+name)
		default:
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}
