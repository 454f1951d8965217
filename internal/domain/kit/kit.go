// Package kit turns a scored scenario into purchasable product kits under
// dietary and brand constraints.
package kit

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/fuelplan/internal/domain/model"
)

// Assembly parameters.
const (
	minCarbsPerLegG = 60.0
	gelShare        = 0.6
	drinkShare      = 0.4
	relaxHint       = "relax dietary flags or banned brands"
)

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithIDGenerator sets the kit id source.
func WithIDGenerator(gen func() string) Option {
	return func(a *Assembler) {
		if gen != nil {
			a.newID = gen
		}
	}
}

// WithClock sets the timestamp source for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// Assembler builds value and premium kits.
type Assembler struct {
	newID func() string
	now   func() time.Time
}

// NewAssembler creates an Assembler with configuration options.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble returns the value and premium kits for a scenario, in that
// order. It fails with *model.KitAssemblyError when neither gels nor drink
// mixes survive preference filtering.
func (a *Assembler) Assemble(ctx context.Context, sc model.ScenarioOutput, pref model.Preference, products []model.Product) ([]model.Kit, error) {
	pool := newCatalog(products, pref)
	if len(pool.gels) == 0 && len(pool.drinks) == 0 {
		return nil, &model.KitAssemblyError{
			Categories: []model.ProductCategory{model.CategoryGel, model.CategoryDrinkMix},
			Reason:     relaxHint,
		}
	}

	variants := []model.KitVariant{model.VariantValue, model.VariantPremium}
	kits := make([]model.Kit, len(variants))

	g, gctx := errgroup.WithContext(ctx)
	for i, v := range variants {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("assemble %s kit: %w", v, err)
			}
			kits[i] = a.build(v, sc, pref, pool)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return kits, nil
}

func (a *Assembler) build(v model.KitVariant, sc model.ScenarioOutput, pref model.Preference, pool catalog) model.Kit {
	pick := cheapest
	if v == model.VariantPremium {
		pick = func(ps []model.Product) (model.Product, bool) { return preferFavorite(ps, pref.FavoriteBrands) }
	}

	target := math.Max(sc.Totals.CarbsG, float64(len(sc.FuelPlan))*minCarbsPerLegG)
	gelTarget, drinkTarget := target*gelShare, target*drinkShare

	var items []model.KitItem
	if p, ok := pick(pool.gels); ok && gelTarget > 0 {
		items = append(items, item(p, servings(gelTarget, p.CarbsPerServing), pref))
	}
	if p, ok := pick(pool.drinks); ok && drinkTarget > 0 {
		items = append(items, item(p, servings(drinkTarget, p.CarbsPerServing), pref))
	}

	var supplied float64
	for _, it := range items {
		supplied += it.SodiumMg
	}
	if deficit := sc.Totals.SodiumMg - supplied; deficit > 0 {
		if p, ok := pick(pool.capsules); ok {
			items = append(items, item(p, servings(deficit, p.SodiumPerServing), pref))
		}
	}

	k := model.Kit{
		ID:           a.newID(),
		PlanID:       sc.ID,
		ScenarioHash: sc.ScenarioHash,
		Variant:      v,
		Items:        items,
		CreatedAt:    a.now(),
	}
	var price, weight float64
	for _, it := range items {
		price += it.Price
		weight += it.WeightGrams
		k.TotalCarbsG += it.CarbsG
	}
	k.TotalPrice = round2(price)
	k.TotalWeightGrams = math.Round(weight)
	return k
}

// catalog holds the eligible products per category, cheapest first.
type catalog struct {
	gels, drinks, capsules []model.Product
}

func newCatalog(products []model.Product, pref model.Preference) catalog {
	var c catalog
	for _, p := range products {
		if !eligible(p, pref) {
			continue
		}
		switch p.Category {
		case model.CategoryGel:
			if p.CarbsPerServing > 0 {
				c.gels = append(c.gels, p)
			}
		case model.CategoryDrinkMix:
			if p.CarbsPerServing > 0 {
				c.drinks = append(c.drinks, p)
			}
		case model.CategoryCapsule:
			if p.SodiumPerServing > 0 {
				c.capsules = append(c.capsules, p)
			}
		}
	}
	for _, ps := range [][]model.Product{c.gels, c.drinks, c.capsules} {
		sort.SliceStable(ps, func(i, j int) bool {
			if ps[i].Price != ps[j].Price {
				return ps[i].Price < ps[j].Price
			}
			return ps[i].SKU < ps[j].SKU
		})
	}
	return c
}

// eligible requires every dietary flag and a brand that is not banned.
func eligible(p model.Product, pref model.Preference) bool {
	if !p.SupportsDiet(pref.DietaryFlags) {
		return false
	}
	return !hasBrand(pref.BannedBrands, p.Brand)
}

func cheapest(ps []model.Product) (model.Product, bool) {
	if len(ps) == 0 {
		return model.Product{}, false
	}
	return ps[0], true
}

// preferFavorite returns the cheapest favorite-brand product, falling back
// to the cheapest overall.
func preferFavorite(ps []model.Product, favorites []string) (model.Product, bool) {
	for _, p := range ps {
		if hasBrand(favorites, p.Brand) {
			return p, true
		}
	}
	return cheapest(ps)
}

func hasBrand(brands []string, brand string) bool {
	for _, b := range brands {
		if strings.EqualFold(strings.TrimSpace(b), strings.TrimSpace(brand)) {
			return true
		}
	}
	return false
}

func servings(need, perServing float64) int {
	n := int(math.Ceil(need / perServing))
	if n < 1 {
		return 1
	}
	return n
}

func item(p model.Product, n int, pref model.Preference) model.KitItem {
	s := float64(n)
	return model.KitItem{
		SKU:         p.SKU,
		Brand:       p.Brand,
		Name:        p.Name,
		Category:    p.Category,
		Flavor:      flavor(p, pref.TargetFlavorDiversity),
		Servings:    n,
		Price:       round2(s * p.Price),
		WeightGrams: s * p.WeightGrams,
		CarbsG:      s * p.CarbsPerServing,
		SodiumMg:    s * p.SodiumPerServing,
		CaffeineMg:  s * p.CaffeinePerServing,
	}
}

func flavor(p model.Product, diversity int) string {
	if len(p.Flavors) == 0 {
		return p.Name
	}
	if diversity < 0 {
		diversity = 0
	}
	return p.Flavors[diversity%len(p.Flavors)]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
