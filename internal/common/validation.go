package common

import (
	"fmt"
	"slices"

	"screener/internal/errors"
	"screener/internal/types"
)

// sortKeyNames maps the names accepted on the command line to match columns
var sortKeyNames = map[string]types.SortKey{
	"score":      types.SortByScore,
	"experience": types.SortByExperience,
	"name":       types.SortByName,
}

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported output format '%s'. Supported formats: %v", format, supportedFormats), nil)
}

// ParseSortKey maps a command line sort name onto a match column
func ParseSortKey(name string) (types.SortKey, error) {
	if key, ok := sortKeyNames[name]; ok {
		return key, nil
	}
	return "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
		fmt.Sprintf("unknown sort key '%s'. Use one of: %v", name, SortKeyNames()), nil)
}

// SortKeyNames returns the accepted sort names, for shell completion
func SortKeyNames() []string {
	names := make([]string, 0, len(sortKeyNames))
	for n := range sortKeyNames {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// ValidateIDs rejects ids the API could never have issued
func ValidateIDs(kind string, ids ...int) error {
	for _, id := range ids {
		if id <= 0 {
			return errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid %s id %d", kind, id), nil)
		}
	}
	return nil
}
