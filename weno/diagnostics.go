package weno

import (
	"fmt"
	"sort"
	"strings"
)

// OrderReduction records a cell built below the requested order.
type OrderReduction struct {
	Cell, Order int
}

// Diagnostics summarises the recovered failures of a geometry build.
type Diagnostics struct {
	Order      int
	Cells      int
	Reductions []OrderReduction
	Errors     []CellError
}

func (d Diagnostics) Degraded() int { return len(d.Reductions) }

// OrderHistogram counts cells per effective order.
func (d Diagnostics) OrderHistogram() (histo map[int]int) {
	histo = map[int]int{d.Order: d.Cells - len(d.Reductions)}
	for _, r := range d.Reductions {
		histo[r.Order]++
	}
	return
}

// CellErrors returns the recovered failures of one cell.
func (d Diagnostics) CellErrors(cell int) (errs []CellError) {
	i := sort.Search(len(d.Errors), func(i int) bool { return d.Errors[i].Cell >= cell })
	for ; i < len(d.Errors) && d.Errors[i].Cell == cell; i++ {
		errs = append(errs, d.Errors[i])
	}
	return
}

func (d Diagnostics) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d cells at order %d, %d degraded, %d recovered errors\n",
		d.Cells, d.Order, len(d.Reductions), len(d.Errors))
	histo := d.OrderHistogram()
	orders := make([]int, 0, len(histo))
	for o := range histo {
		orders = append(orders, o)
	}
	sort.Ints(orders)
	for _, o := range orders {
		fmt.Fprintf(&sb, "order %d: %d cells\n", o, histo[o])
	}
	return sb.String()
}
