package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Product is one purchasable catalog item. Nutrition, price and weight
// are per serving.
type Product struct {
	SKU                string          `json:"sku" csv:"sku"`
	Brand              string          `json:"brand" csv:"brand"`
	Name               string          `json:"name" csv:"name"`
	Category           ProductCategory `json:"category" csv:"category"`
	CarbsPerServing    float64         `json:"carbsPerServing" csv:"carbs_per_serving"`
	SodiumPerServing   float64         `json:"sodiumPerServing" csv:"sodium_per_serving"`
	CaffeinePerServing float64         `json:"caffeinePerServing" csv:"caffeine_per_serving"`
	Price              float64         `json:"price" csv:"price"`
	WeightGrams        float64         `json:"weightGrams" csv:"weight_grams"`
	Flavors            List            `json:"flavors,omitempty" csv:"flavors"`
	DietaryFlags       List            `json:"dietaryFlags,omitempty" csv:"dietary_flags"`
}

// SupportsDiet reports whether the product carries every flag in flags.
func (p Product) SupportsDiet(flags []string) bool {
	for _, f := range flags {
		if !containsFold(p.DietaryFlags, f) {
			return false
		}
	}
	return true
}

// List is a string slice stored as a single pipe-separated text field
// in CSV and as a plain array in JSON.
type List []string

// MarshalJSON keeps the array form in JSON despite MarshalText.
func (l List) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(l))
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *List) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (l List) MarshalText() ([]byte, error) {
	return []byte(strings.Join(l, "|")), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *List) UnmarshalText(text []byte) error {
	*l = nil
	for _, part := range strings.Split(string(text), "|") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

// KitItem is one product line within a kit.
type KitItem struct {
	SKU         string          `json:"sku"`
	Brand       string          `json:"brand"`
	Name        string          `json:"name"`
	Category    ProductCategory `json:"category"`
	Flavor      string          `json:"flavor"`
	Servings    int             `json:"servings"`
	Price       float64         `json:"price"`
	WeightGrams float64         `json:"weightGrams"`
	CarbsG      float64         `json:"carbsG"`
	SodiumMg    float64         `json:"sodiumMg"`
	CaffeineMg  float64         `json:"caffeineMg"`
}

// Kit is a priced, weighed set of products covering one scenario.
// TotalPrice and TotalWeightGrams are always the rounded sums of Items.
type Kit struct {
	ID               string     `json:"id"`
	PlanID           string     `json:"planId"`
	ScenarioHash     string     `json:"scenarioHash"`
	Variant          KitVariant `json:"variant"`
	Items            []KitItem  `json:"items"`
	TotalPrice       float64    `json:"totalPrice"`
	TotalWeightGrams float64    `json:"totalWeightGrams"`
	TotalCarbsG      float64    `json:"totalCarbsG"`
	CreatedAt        time.Time  `json:"createdAt"`
}
