package query

import (
	"slices"
	"strings"
	"time"
)

// SortKey names a comparator in the sort registry.
type SortKey string

const (
	SortNewest     SortKey = "newest"
	SortOldest     SortKey = "oldest"
	SortNumberAsc  SortKey = "number_asc"
	SortNumberDesc SortKey = "number_desc"
)

// StatusAll is the sentinel that disables the status filter.
const StatusAll = "all"

// Spec describes one list-view query. The same spec shape drives the
// callout, SRO and schedule list views.
type Spec struct {
	Search string
	Status string
	From   *time.Time
	To     *time.Time
	Sort   SortKey
}

// Accessors binds a record type to the engine. Text is the ordered list of
// searchable fields; Timestamp reports the filter/bucket timestamp and
// whether the record has one; Number yields the display code sorts use.
type Accessors[T any] struct {
	Text      []func(T) string
	Status    func(T) string
	Timestamp func(T) (time.Time, bool)
	Number    func(T) string
}

// Result carries the ordered records and the calendar-day index.
type Result[T any] struct {
	Records []T
	Buckets map[string][]T
}

// Run filters, sorts and buckets records. It never mutates the input slice,
// and each stage is independent: the sort never changes which records pass
// the filter, and the filter never changes relative tie order.
func Run[T any](records []T, acc Accessors[T], spec Spec) Result[T] {
	matched := make([]T, 0, len(records))
	for _, rec := range records {
		if matches(rec, acc, spec) {
			matched = append(matched, rec)
		}
	}

	if cmp := comparator(acc, spec.Sort); cmp != nil {
		slices.SortStableFunc(matched, cmp)
	}

	buckets := make(map[string][]T)
	for _, rec := range matched {
		if ts, ok := acc.Timestamp(rec); ok {
			key := DayKey(ts)
			buckets[key] = append(buckets[key], rec)
		}
	}
	return Result[T]{Records: matched, Buckets: buckets}
}

// DayKey renders a timestamp as its local calendar day, in the timestamp's
// own timezone interpretation rather than UTC-shifted.
func DayKey(ts time.Time) string {
	return ts.Format("2006-01-02")
}

func matches[T any](rec T, acc Accessors[T], spec Spec) bool {
	if !matchesSearch(rec, acc.Text, spec.Search) {
		return false
	}
	if !matchesStatus(rec, acc.Status, spec.Status) {
		return false
	}
	return matchesDates(rec, acc.Timestamp, spec.From, spec.To)
}

func matchesSearch[T any](rec T, fields []func(T) string, search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(rec)), needle) {
			return true
		}
	}
	return false
}

func matchesStatus[T any](rec T, status func(T) string, want string) bool {
	if want == "" || want == StatusAll || status == nil {
		return true
	}
	return status(rec) == want
}

// matchesDates applies the date-range filter. From-only is deliberately a
// single-day match on from's calendar day, not an open-ended range.
func matchesDates[T any](rec T, timestamp func(T) (time.Time, bool), from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if timestamp == nil {
		return false
	}
	ts, ok := timestamp(rec)
	if !ok {
		return false
	}
	if from != nil && to == nil {
		return DayKey(ts) == DayKey(*from)
	}
	if from != nil && ts.Before(floorDay(*from)) {
		return false
	}
	if to != nil && ts.After(ceilDay(*to)) {
		return false
	}
	return true
}

func floorDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func ceilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, t.Location())
}

// ValidSortKey reports whether the key names a registered comparator.
func ValidSortKey(key SortKey) bool {
	switch key {
	case "", SortNewest, SortOldest, SortNumberAsc, SortNumberDesc:
		return true
	}
	return false
}

// comparator resolves a sort key to its ordering. Unknown and empty keys
// leave the input order untouched.
func comparator[T any](acc Accessors[T], key SortKey) func(a, b T) int {
	byTime := func(a, b T) int {
		at, _ := acc.Timestamp(a)
		bt, _ := acc.Timestamp(b)
		return at.Compare(bt)
	}
	switch key {
	case SortNewest:
		return func(a, b T) int { return -byTime(a, b) }
	case SortOldest:
		return byTime
	case SortNumberAsc:
		return func(a, b T) int { return strings.Compare(acc.Number(a), acc.Number(b)) }
	case SortNumberDesc:
		return func(a, b T) int { return strings.Compare(acc.Number(b), acc.Number(a)) }
	}
	return nil
}
