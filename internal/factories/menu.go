package factories

import (
	"fmt"
	"strings"
	"time"

	"github.com/jaswdr/faker"
	"github.com/tablemate/tablemate/internal/models"
)

var fake = faker.New()

// MenuFactory builds self-consistent menu snapshots for demo mode and tests:
// every pizza carries variants for all three sizes and the double deals
// reference the generated variant codes.
type MenuFactory struct{}

var pizzaNames = []string{
	"Margherita", "Pepperoni Passion", "Hawaiian", "Veggie Supreme",
	"BBQ Chicken", "Quattro Formaggi", "Diavola",
}

var toppingNames = map[string]string{
	"ONION": "Onions",
	"HAM":   "Ham",
	"MUSH":  "Mushrooms",
	"PEPP":  "Pepperoni",
	"PINE":  "Pineapple",
	"CHED":  "Cheddar Cheese",
	"OLIV":  "Olives",
}

var sauceNames = map[string]string{
	"TOMS": "Tomato Sauce",
	"BBQS": "BBQ Sauce",
}

func (mf *MenuFactory) CreateMenu() *models.Menu {
	products := make(map[string]models.MenuProduct)
	for _, name := range pizzaNames {
		code := pizzaCode(name)
		products["S_"+code] = models.MenuProduct{
			Code:        "S_" + code,
			Name:        name,
			ProductType: "Pizza",
			Variants: []string{
				fmt.Sprintf("%d%s%s", models.SizeStandard, models.CrustMarker, code),
				fmt.Sprintf("%d%s%s", models.SizeSmall, models.CrustMarker, code),
				fmt.Sprintf("%d%s%s", models.SizeLarge, models.CrustMarker, code),
			},
			DefaultToppings: "TOMS=1,CHED=1",
		}
	}
	products["S_BRCHB"] = models.MenuProduct{
		Code:        "S_BRCHB",
		Name:        "Cheesy Bread",
		ProductType: "Bread",
		Variants:    []string{"BRCHB"},
	}

	toppings := make(map[string]models.Topping)
	for code, name := range toppingNames {
		toppings[code] = models.Topping{Code: code, Name: name}
	}
	for code, name := range sauceNames {
		toppings[code] = models.Topping{Code: code, Name: name, Tags: models.ToppingTags{Sauce: true}}
	}

	deals := map[string]models.Deal{
		"N054": {
			Code: "N054",
			Name: "Crazy Weekday - Standard pizza for less",
			Tags: models.DealTags{
				Days:                []string{"Mon", "Tue", "Wed", "Thu"},
				ValidServiceMethods: models.ServiceMethods{models.ServiceMethodCarryout, models.ServiceMethodDelivery},
			},
		},
		"L097": {
			Code: "L097",
			Name: "Take 3 Away - 2 pizzas and a side",
			Tags: models.DealTags{
				ValidServiceMethods: models.ServiceMethods{models.ServiceMethodCarryout},
			},
		},
		"N051": {
			Code: "N051",
			Name: "Double Deal M - 2 standard pizzas",
			Tags: models.DealTags{
				ValidServiceMethods: models.ServiceMethods{models.ServiceMethodCarryout, models.ServiceMethodDelivery},
			},
		},
	}

	return models.NewMenu(products, toppings, deals)
}

// CreateDealDetails returns the product groups matching CreateMenu's catalog.
func (mf *MenuFactory) CreateDealDetails() map[string]models.DealDetail {
	var standard, all []string
	for _, name := range pizzaNames {
		code := pizzaCode(name)
		standard = append(standard, fmt.Sprintf("%d%s%s", models.SizeStandard, models.CrustMarker, code))
		for _, size := range []int{models.SizeSmall, models.SizeStandard, models.SizeLarge} {
			all = append(all, fmt.Sprintf("%d%s%s", size, models.CrustMarker, code))
		}
	}
	return map[string]models.DealDetail{
		"N054": {Code: "N054", ProductGroups: []models.ProductGroup{
			{RequiredQty: 1, ProductCodes: standard[:3]},
		}},
		"L097": {Code: "L097", ProductGroups: []models.ProductGroup{
			{RequiredQty: 2, ProductCodes: all},
			{RequiredQty: 1, ProductCodes: []string{"BRCHB"}},
		}},
		"N051": {Code: "N051", ProductGroups: []models.ProductGroup{
			{RequiredQty: 2, ProductCodes: standard},
		}},
	}
}

func pizzaCode(name string) string {
	words := strings.Fields(strings.ToUpper(name))
	code := words[0]
	if len(code) > 3 {
		code = code[:3]
	}
	if len(words) > 1 {
		code += words[1][:1]
	}
	return code
}

// OrderLineFactory produces plausible chat order lines.
type OrderLineFactory struct{}

func (of *OrderLineFactory) CreateOrderLine(collectionUUID string) models.OrderLine {
	sizes := []string{"small", "", "large"}
	name := pizzaNames[fake.IntBetween(0, len(pizzaNames)-1)]
	text := strings.TrimSpace(fmt.Sprintf("%s %s", sizes[fake.IntBetween(0, len(sizes)-1)], name))
	return models.OrderLine{
		ID:             fake.UUID().V4(),
		CollectionUUID: collectionUUID,
		User:           fake.Person().Name(),
		Text:           text,
		CreatedAt:      fake.Time().Time(time.Now()),
	}
}
