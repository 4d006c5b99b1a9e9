// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package store

import (
	loreerr "github.com/lore-dev/lore/pkg/errors"
)

// Filterable metadata fields. Only these may appear in a predicate; the
// typed filter replaces free-form where-clause maps so a malformed filter
// fails validation instead of silently matching nothing.
const (
	FieldUserID = "user_id"
	FieldFileID = "file_id"
)

// Predicate is a single equality constraint on a metadata field.
type Predicate struct {
	Field string
	Value string
}

// Filter is a conjunction of equality predicates. The zero value matches
// every chunk.
type Filter struct {
	predicates []Predicate
}

// Eq appends an equality predicate and returns the extended filter.
func (f Filter) Eq(field, value string) Filter {
	f.predicates = append(f.predicates[:len(f.predicates):len(f.predicates)], Predicate{Field: field, Value: value})
	return f
}

// ByUser constrains results to one tenant.
func ByUser(userID string) Filter {
	return Filter{}.Eq(FieldUserID, userID)
}

// ByUserAndFile constrains results to one file owned by one tenant. Every
// tenant-scoped delete and lookup uses this compound form.
func ByUserAndFile(userID, fileID string) Filter {
	return ByUser(userID).Eq(FieldFileID, fileID)
}

// Predicates returns the conjuncts in the order they were added.
func (f Filter) Predicates() []Predicate {
	return f.predicates
}

// Empty reports whether the filter constrains nothing.
func (f Filter) Empty() bool {
	return len(f.predicates) == 0
}

// Validate rejects predicates on unknown fields or with empty values.
func (f Filter) Validate() error {
	for _, p := range f.predicates {
		switch p.Field {
		case FieldUserID, FieldFileID:
		default:
			return loreerr.Errorf(loreerr.CodeStoreInvalidInput, "filter: unknown field %q", p.Field)
		}
		if p.Value == "" {
			return loreerr.Errorf(loreerr.CodeStoreInvalidInput, "filter: empty value for field %q", p.Field)
		}
	}
	return nil
}
