package excelcsv

import (
	"slices"

	"github.com/kjk/excelcsv/log"
)

// Predicate decides if a record should be kept.
// Extra arguments are captured by the closure.
type Predicate func(r *Record) bool

// Filter keeps only records for which keep returns true, in order,
// and writes them back (or to OutputPath)
func (s *Store) Filter(keep Predicate, opts ...Option) error {
	records, err := s.Read()
	if err != nil {
		return err
	}
	var res []*Record
	for _, r := range records {
		if keep(r) {
			res = append(res, r)
		}
	}
	path := s.targetPath(opts)
	if err = Encode(path, s.schema, res); err != nil {
		return err
	}
	s.path = path
	log.Event("excelcsv.filter", "path", path, "rows", len(records), "kept", len(res))
	return nil
}

// MatchesFields returns a predicate that is true if, for every field in
// want, the record's value is one of the listed values.
// A record without the field doesn't match.
func MatchesFields(want map[string][]string) Predicate {
	return func(r *Record) bool {
		for field, values := range want {
			v, ok := r.Get(field)
			if !ok || !slices.Contains(values, v) {
				return false
			}
		}
		return true
	}
}
