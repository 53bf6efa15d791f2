package foods

import (
	"context"
	"fmt"
	"sort"

	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/GokhanOfficial/CaloriX/internal/model"
)

const (
	recentPull     = 50
	favoritesPull  = 200
	shortlistLimit = 10
)

// Recent lists the user's most recently logged distinct foods.
func (r *Resolver) Recent(ctx context.Context) ([]Candidate, error) {
	entries, err := r.history(ctx, recentPull)
	if err != nil {
		return nil, fmt.Errorf("recent foods: %w", err)
	}
	seen := map[string]struct{}{}
	out := make([]Candidate, 0, shortlistLimit)
	for _, e := range entries {
		key := nameKey(e.Name())
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, fromEntry(e))
		if len(out) == shortlistLimit {
			break
		}
	}
	return out, nil
}

// Favorites lists the foods the user logged most often recently. Ties
// keep the order in which the names were last used.
func (r *Resolver) Favorites(ctx context.Context) ([]Candidate, error) {
	entries, err := r.history(ctx, favoritesPull)
	if err != nil {
		return nil, fmt.Errorf("favorite foods: %w", err)
	}
	type tally struct {
		first model.MealEntry
		count int
	}
	order := make([]string, 0)
	counts := map[string]*tally{}
	for _, e := range entries {
		key := nameKey(e.Name())
		if t, ok := counts[key]; ok {
			t.count++
			continue
		}
		counts[key] = &tally{first: e, count: 1}
		order = append(order, key)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]].count > counts[order[j]].count
	})
	if len(order) > shortlistLimit {
		order = order[:shortlistLimit]
	}
	out := make([]Candidate, 0, len(order))
	for _, key := range order {
		c := fromEntry(counts[key].first)
		c.UseCount = counts[key].count
		out = append(out, c)
	}
	return out, nil
}

func (r *Resolver) history(ctx context.Context, limit int) ([]model.MealEntry, error) {
	return r.store.ListMeals(ctx, gateway.MealFilter{
		UserID:   r.userID,
		WithFood: true,
		Order:    gateway.OrderDesc,
		Limit:    limit,
	})
}

// fromEntry prefers catalog nutrition and falls back to the entry's own totals.
func fromEntry(e model.MealEntry) Candidate {
	if e.Food != nil && e.Food.Nutrition != nil {
		c := fromFood(*e.Food)
		c.ID = e.ID
		return c
	}
	c := fromHistory(e, e.Name())
	c.ID = e.ID
	c.FoodID = e.FoodID
	return c
}
