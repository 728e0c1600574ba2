package draw

import (
	"fmt"
	"sort"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// Pick selects an entry index: roll = floor(rnd * total) and the first entry
// whose cumulative weight exceeds roll wins, so ties go to table order.
func Pick(t Table, rnd float64) (int, error) {
	cumulative := make([]int, len(t))
	total := 0
	for i, e := range t {
		total += e.Weight
		cumulative[i] = total
	}
	if total <= 0 {
		return 0, fmt.Errorf("%w: table has no positive weight", domain.ErrConfigurationDefect)
	}

	roll := int(rnd * float64(total))
	if roll >= total {
		roll = total - 1
	}
	if roll < 0 {
		roll = 0
	}
	return sort.Search(len(cumulative), func(i int) bool { return cumulative[i] > roll }), nil
}
