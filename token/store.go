package token

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/multierr"
)

// Store keeps records of a single token category in definition order. Store
// is immutable once created.
type Store struct {
	category string
	records  []Record
	index    map[string]int
}

// NewStore validates records and creates store for category. Every record
// must have a non-empty name, unique within category.
func NewStore(category string, records ...Record) (*Store, error) {
	s := &Store{
		category: category,
		records:  make([]Record, 0, len(records)),
		index:    make(map[string]int, len(records)),
	}

	var err error
	for i, r := range records {
		if verr := ValidateRecord(r); verr != nil {
			err = multierr.Append(err, fmt.Errorf("record %d (%s): %w", i, categoryName(category), verr))
			continue
		}
		if _, exists := s.index[r.Name]; exists {
			err = multierr.Append(err, &DuplicateTokenNameError{Category: category, Key: r.Name})
			continue
		}
		s.index[r.Name] = len(s.records)
		s.records = append(s.records, r)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Category returns name of the category store was created for.
func (s *Store) Category() string {
	return s.category
}

func (s *Store) Len() int {
	return len(s.records)
}

// Records returns copy of all records in definition order.
func (s *Store) Records() []Record {
	return slices.Clone(s.records)
}

// Get returns record by name.
func (s *Store) Get(name string) (Record, bool) {
	i, ok := s.index[name]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}

// ValidateRecord checks shape of a single record independently of the store
// it belongs to.
func ValidateRecord(r Record) error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("token name is empty")
	}
	switch r.Value.Kind() {
	case KindList:
		if len(r.Value.list) == 0 {
			return fmt.Errorf("token %q has empty list value", r.Name)
		}
	case KindStruct:
		if len(r.Value.fields) == 0 {
			return fmt.Errorf("token %q has empty structured value", r.Name)
		}
		seen := make(map[string]struct{}, len(r.Value.fields))
		for _, f := range r.Value.fields {
			if _, ok := seen[f.Name]; ok {
				return fmt.Errorf("token %q has duplicate field %q", r.Name, f.Name)
			}
			seen[f.Name] = struct{}{}
		}
	}
	return nil
}
