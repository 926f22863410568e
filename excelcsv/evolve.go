package excelcsv

import (
	"fmt"
	"strings"
	"time"

	"github.com/kjk/excelcsv/log"
)

// RemoveField removes a field from the schema and from every record.
// Unlike adding fields, this rewrites the whole file.
// The last field can't be removed: a file without fields can't hold rows.
func (s *Store) RemoveField(field string, opts ...Option) error {
	timeStart := time.Now()
	schema, err := s.schema.Remove(field)
	if err != nil {
		return err
	}
	if len(schema) == 0 {
		return fmt.Errorf("remove '%s': %w", field, ErrLastField)
	}
	records, err := s.Read()
	if err != nil {
		return err
	}
	for _, r := range records {
		r.Delete(field)
	}
	path := s.targetPath(opts)
	if err = Encode(path, schema, records); err != nil {
		return err
	}
	s.schema = schema
	s.path = path
	log.EventWithDuration("excelcsv.remove", time.Since(timeStart), "path", path, "field", field, "rows", len(records))
	return nil
}

// ReorderFields changes the order of fields to order, which must have
// the same fields as the current schema. Rewrites the whole file.
func (s *Store) ReorderFields(order Schema, opts ...Option) error {
	if !order.isPermutationOf(s.schema) {
		return fmt.Errorf("reorder to '%s': %w: current fields are '%s'", order, ErrSchemaMismatch, s.schema)
	}
	records, err := s.Read()
	if err != nil {
		return err
	}
	path := s.targetPath(opts)
	if err = Encode(path, order, records); err != nil {
		return err
	}
	s.schema = order.Clone()
	s.path = path
	log.Event("excelcsv.reorder", "path", path, "fields", s.schema.String())
	return nil
}

// ChoiceOptions configures ConvertChoiceField. Values are used as given,
// so start from DefaultChoiceOptions. A nil *ChoiceOptions means defaults.
type ChoiceOptions struct {
	// possible choices. If nil, they are collected from the data in the
	// order they first appear
	Choices []string
	// names of the new fields, one per choice. If nil, a choice with "?"
	// appended is used. Can only be given together with Choices.
	NewFields []string
	// separates choices in a multiple choice value, can't be empty
	Delimiter string
	// value of a new field when the choice was picked
	Checked string
	// value of a new field when the choice wasn't picked
	Unchecked string
	// value of the original field meaning there's no data. New fields
	// are empty for such records
	NullMarker string
}

// DefaultChoiceOptions returns options for values like "Cat, Dog":
// delimiter ", ", checked "Y", unchecked "N", null marker "No data"
func DefaultChoiceOptions() *ChoiceOptions {
	return &ChoiceOptions{
		Delimiter:  ", ",
		Checked:    "Y",
		Unchecked:  "N",
		NullMarker: "No data",
	}
}

func (o *ChoiceOptions) orDefault() ChoiceOptions {
	if o == nil {
		return *DefaultChoiceOptions()
	}
	return *o
}

func (o *ChoiceOptions) validate() error {
	if o.Delimiter == "" {
		return fmt.Errorf("%w: empty delimiter", ErrInvalidChoices)
	}
	if o.NewFields != nil && o.Choices == nil {
		return fmt.Errorf("%w: new field names given without choices", ErrInvalidChoices)
	}
	if o.NewFields != nil && len(o.NewFields) != len(o.Choices) {
		return fmt.Errorf("%w: %d new field names for %d choices", ErrInvalidChoices, len(o.NewFields), len(o.Choices))
	}
	return nil
}

// CollectChoices returns distinct, non-empty choices used in field,
// in the order of first appearance
func CollectChoices(records []*Record, field string, delimiter string) []string {
	var res []string
	seen := map[string]bool{}
	for _, r := range records {
		for _, choice := range strings.Split(r.Value(field), delimiter) {
			// no choice selected is an empty string, not a choice
			if choice == "" || seen[choice] {
				continue
			}
			seen[choice] = true
			res = append(res, choice)
		}
	}
	return res
}

// BooleanFieldNames returns choice + "?" for every choice
func BooleanFieldNames(choices []string) []string {
	res := make([]string, len(choices))
	for i, c := range choices {
		res[i] = c + "?"
	}
	return res
}

// ExpandChoiceField sets newFields[i] of every record to opts.Checked if
// choices[i] is one of the choices in field, opts.Unchecked otherwise.
// If field is opts.NullMarker, all new fields are empty so that "no data"
// is different from "nothing picked".
func ExpandChoiceField(records []*Record, field string, choices []string, newFields []string, opts *ChoiceOptions) error {
	o := opts.orDefault()
	if o.Delimiter == "" {
		return fmt.Errorf("%w: empty delimiter", ErrInvalidChoices)
	}
	if len(choices) != len(newFields) {
		return fmt.Errorf("%w: %d new field names for %d choices", ErrInvalidChoices, len(newFields), len(choices))
	}
	for i, r := range records {
		v, ok := r.Get(field)
		if !ok {
			return fmt.Errorf("record %d: %w '%s'", i, ErrMissingField, field)
		}
		if v == o.NullMarker {
			for _, nf := range newFields {
				r.Set(nf, "")
			}
			continue
		}
		picked := map[string]bool{}
		for _, choice := range strings.Split(v, o.Delimiter) {
			picked[choice] = true
		}
		for j, nf := range newFields {
			if picked[choices[j]] {
				r.Set(nf, o.Checked)
			} else {
				r.Set(nf, o.Unchecked)
			}
		}
	}
	return nil
}

// ConvertChoiceField splits a single or multiple choice field into
// boolean fields, one per choice, inserted right after field.
// The original field is kept. The file is rewritten once, so on error
// it's unchanged.
func (s *Store) ConvertChoiceField(field string, opts *ChoiceOptions) error {
	timeStart := time.Now()
	if !s.schema.Has(field) {
		return fmt.Errorf("convert '%s': %w", field, ErrFieldNotFound)
	}
	o := opts.orDefault()
	if err := o.validate(); err != nil {
		return err
	}
	records, err := s.Read()
	if err != nil {
		return err
	}
	choices := o.Choices
	if choices == nil {
		choices = CollectChoices(records, field, o.Delimiter)
	}
	newFields := o.NewFields
	if newFields == nil {
		newFields = BooleanFieldNames(choices)
	}
	schema, err := s.schema.InsertAfter(field, newFields...)
	if err != nil {
		return err
	}
	if err = ExpandChoiceField(records, field, choices, newFields, &o); err != nil {
		return err
	}
	if err = Encode(s.path, schema, records); err != nil {
		return err
	}
	s.schema = schema
	log.Verbosef("excelcsv.ConvertChoiceField: '%s' => %s\n", field, strings.Join(newFields, ","))
	log.EventWithDuration("excelcsv.convert", time.Since(timeStart), "path", s.path, "field", field, "fields", strings.Join(newFields, ","), "rows", len(records))
	return nil
}
