package token

import (
	"fmt"
	"strings"
)

// InvalidFluidSpecError reports fluid value which cannot be interpolated.
type InvalidFluidSpecError struct {
	Category string
	Name     string
	Reason   string
}

func (e *InvalidFluidSpecError) Error() string {
	return fmt.Sprintf("invalid fluid value for token %q (%s): %s", e.Name, categoryName(e.Category), e.Reason)
}

// DuplicateTokenNameError reports two or more records ending up under the same
// name (in a store) or key (in a theme group).
type DuplicateTokenNameError struct {
	Category string
	Key      string
	Names    []string
}

func (e *DuplicateTokenNameError) Error() string {
	if len(e.Names) > 1 {
		return fmt.Sprintf("duplicate token key %q (%s) produced by [%s]", e.Key, categoryName(e.Category), strings.Join(e.Names, ", "))
	}
	return fmt.Sprintf("duplicate token name %q (%s)", e.Key, categoryName(e.Category))
}

// MissingCategoryError reports reference to category absent from assembled
// theme.
type MissingCategoryError struct {
	Category string
}

func (e *MissingCategoryError) Error() string {
	return fmt.Sprintf("category %q is not present in theme", e.Category)
}

// UnresolvedTokenError reports record which still holds fluid specification
// where only plain CSS values are expected.
type UnresolvedTokenError struct {
	Category string
	Name     string
}

func (e *UnresolvedTokenError) Error() string {
	return fmt.Sprintf("token %q (%s) has unresolved fluid value", e.Name, categoryName(e.Category))
}

func categoryName(c string) string {
	if c == "" {
		return "unnamed category"
	}
	return "category " + c
}
