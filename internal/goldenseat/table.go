package goldenseat

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"mulmarket/internal/models"
)

// NotAssigned fills role fields that have no member assigned.
const NotAssigned = "Not Assigned"

var ErrInvalidKey = errors.New("invalid sort or group key")

// Row is one flat golden seat record as rendered in the management table.
type Row struct {
	Captain       string          `json:"captain"`
	Mayor         string          `json:"mayor"`
	Governor      string          `json:"governor"`
	Senator       string          `json:"senator"`
	VicePresident string          `json:"vicePresident"`
	President     string          `json:"president"`
	Commission    decimal.Decimal `json:"commission"`
}

// RowFromModel converts a stored seat assignment to a display row, filling
// the NotAssigned sentinel for vacant roles.
func RowFromModel(seat models.GoldenSeat) Row {
	return Row{
		Captain:       orNotAssigned(seat.Captain),
		Mayor:         orNotAssigned(seat.Mayor),
		Governor:      orNotAssigned(seat.Governor),
		Senator:       orNotAssigned(seat.Senator),
		VicePresident: orNotAssigned(seat.VicePresident),
		President:     orNotAssigned(seat.President),
		Commission:    seat.Commission,
	}
}

func orNotAssigned(name string) string {
	if name == "" {
		return NotAssigned
	}
	return name
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort and group keys. Grouping is restricted to the six role fields; the
// commission column is sortable but not groupable.
const (
	KeyCaptain       = "captain"
	KeyMayor         = "mayor"
	KeyGovernor      = "governor"
	KeySenator       = "senator"
	KeyVicePresident = "vicePresident"
	KeyPresident     = "president"
	KeyCommission    = "commission"
)

// roleAccessors is the closed accessor table replacing the source's
// stringly-typed runtime property lookup.
var roleAccessors = map[string]func(Row) string{
	KeyCaptain:       func(r Row) string { return r.Captain },
	KeyMayor:         func(r Row) string { return r.Mayor },
	KeyGovernor:      func(r Row) string { return r.Governor },
	KeySenator:       func(r Row) string { return r.Senator },
	KeyVicePresident: func(r Row) string { return r.VicePresident },
	KeyPresident:     func(r Row) string { return r.President },
}

// Options controls the filter -> sort -> group pipeline. Zero values mean
// "no filtering", "no sorting", "no grouping" respectively.
type Options struct {
	FilterText    string
	SortKey       string
	SortDirection Direction
	GroupKey      string
}

// Group is one partition of the table with its commission subtotal.
type Group struct {
	Key             string          `json:"groupKey"`
	Items           []Row           `json:"items"`
	TotalCommission decimal.Decimal `json:"totalCommission"`
}

// Result is the grouped view plus the grand total over all groups.
type Result struct {
	Groups     []Group         `json:"groups"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// View applies filter, sort and group in that fixed order. Grouping after
// sorting keeps rows inside each group sort-ordered; this sequencing is a
// contract. The input slice is never mutated.
func View(rows []Row, opts Options) (*Result, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}

	processed := filterRows(rows, opts.FilterText)
	sortRows(processed, opts.SortKey, opts.SortDirection)
	return groupRows(processed, opts.GroupKey), nil
}

func validate(opts Options) error {
	if opts.SortKey != "" && opts.SortKey != KeyCommission {
		if _, ok := roleAccessors[opts.SortKey]; !ok {
			return fmt.Errorf("%w: sort key %q", ErrInvalidKey, opts.SortKey)
		}
	}
	switch opts.SortDirection {
	case "", Asc, Desc:
	default:
		return fmt.Errorf("%w: sort direction %q", ErrInvalidKey, opts.SortDirection)
	}
	if opts.GroupKey != "" && opts.GroupKey != "none" {
		if _, ok := roleAccessors[opts.GroupKey]; !ok {
			return fmt.Errorf("%w: group key %q", ErrInvalidKey, opts.GroupKey)
		}
	}
	return nil
}

// filterRows keeps rows where any field contains the filter text,
// case-insensitively. It always returns a fresh slice so later stages never
// touch the caller's rows.
func filterRows(rows []Row, filterText string) []Row {
	out := make([]Row, 0, len(rows))
	if filterText == "" {
		return append(out, rows...)
	}
	needle := strings.ToLower(filterText)
	for _, row := range rows {
		if rowMatches(row, needle) {
			out = append(out, row)
		}
	}
	return out
}

func rowMatches(row Row, needle string) bool {
	fields := []string{
		row.Captain, row.Mayor, row.Governor,
		row.Senator, row.VicePresident, row.President,
		row.Commission.String(),
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// sortRows sorts in place (the slice is already a copy). The sort is stable:
// ties preserve prior relative order.
func sortRows(rows []Row, sortKey string, direction Direction) {
	if sortKey == "" {
		return
	}

	var less func(a, b Row) bool
	if sortKey == KeyCommission {
		less = func(a, b Row) bool { return a.Commission.LessThan(b.Commission) }
	} else {
		accessor := roleAccessors[sortKey]
		less = func(a, b Row) bool { return accessor(a) < accessor(b) }
	}

	if direction == Desc {
		asc := less
		less = func(a, b Row) bool { return asc(b, a) }
	}

	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}

// groupRows partitions rows by the group key, preserving first-seen group
// order. Without a group key the whole set becomes one implicit group.
func groupRows(rows []Row, groupKey string) *Result {
	if groupKey == "" || groupKey == "none" {
		group := Group{Items: rows, TotalCommission: sumCommission(rows)}
		return &Result{Groups: []Group{group}, GrandTotal: group.TotalCommission}
	}

	accessor := roleAccessors[groupKey]
	index := make(map[string]int)
	groups := make([]Group, 0)
	for _, row := range rows {
		key := accessor(row)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, TotalCommission: decimal.Zero})
		}
		groups[i].Items = append(groups[i].Items, row)
		groups[i].TotalCommission = groups[i].TotalCommission.Add(row.Commission)
	}

	grand := decimal.Zero
	for _, g := range groups {
		grand = grand.Add(g.TotalCommission)
	}
	return &Result{Groups: groups, GrandTotal: grand}
}

func sumCommission(rows []Row) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Commission)
	}
	return total
}
