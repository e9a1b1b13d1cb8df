// Package calculator implements the pure split allocation engine.
//
// Split is a pure function of its inputs: re-running it on unchanged inputs
// yields identical output. Iteration order is fixed (items in order, then each
// item's assignees in order) so floating-point summation is stable.
package calculator

import (
	"fmt"
	"math"

	"github.com/bayadbuddy/server/internal/models"
)

// Split computes the per-person breakdown for the given people, items and
// discount. The paid map overlays settlement flags onto the result; missing
// entries default to unpaid. Results come back in the same order as people,
// one entry per person.
func Split(people []models.Person, items []models.Item, discount models.Discount, paid map[string]bool) ([]models.PersonResult, error) {
	if len(people) == 0 {
		return nil, fmt.Errorf("must have at least one person")
	}

	results := make([]models.PersonResult, len(people))
	index := make(map[string]int, len(people))
	for i, p := range people {
		results[i] = models.PersonResult{
			Person: p,
			IsPaid: paid[p.ID],
		}
		index[p.ID] = i
	}

	// Accumulate each person's shares. Items with no assignees are excluded
	// from allocation entirely; assignee ids that match no current person are
	// ignored (stale ids after a removal).
	var globalSubtotal float64
	for _, item := range items {
		n := len(item.AssignedPersonIDs)
		if n == 0 {
			continue
		}
		share := item.Price / float64(n)
		for _, pid := range item.AssignedPersonIDs {
			i, ok := index[pid]
			if !ok {
				continue
			}
			results[i].Items = append(results[i].Items, models.PersonShare{
				ItemName: item.Name,
				Share:    share,
			})
			results[i].Subtotal += share
			globalSubtotal += share
		}
	}

	// A discount can never exceed the allocable amount; the excess is
	// silently dropped.
	effective := math.Min(discount.Amount, globalSubtotal)
	if effective > 0 {
		if discount.Target == models.DiscountTargetEveryone {
			distribute(results, discount.Mode, effective, globalSubtotal)
		} else if i, ok := index[discount.Target]; ok {
			// A specific person receives the whole discount. An unknown
			// target (e.g. a removed person) drops the discount.
			results[i].DiscountAmount = effective
		}
	}

	for i := range results {
		results[i].Total = math.Max(0, results[i].Subtotal-results[i].DiscountAmount)
	}

	return results, nil
}

// distribute splits the effective discount across all people with a nonzero
// subtotal, either evenly or in proportion to what each person owes.
func distribute(results []models.PersonResult, mode string, effective, globalSubtotal float64) {
	var active []int
	for i := range results {
		if results[i].Subtotal > 0 {
			active = append(active, i)
		}
	}
	if len(active) == 0 {
		return
	}

	switch mode {
	case models.DiscountModeProportional:
		for _, i := range active {
			results[i].DiscountAmount = results[i].Subtotal / globalSubtotal * effective
		}
	default:
		// Even is the default mode.
		perPerson := effective / float64(len(active))
		for _, i := range active {
			results[i].DiscountAmount = perPerson
		}
	}
}
