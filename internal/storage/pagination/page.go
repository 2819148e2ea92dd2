// Package pagination normalizes page size and ordering for list queries.
package pagination

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOrderBy indicates an order_by value outside the allowed set.
var ErrInvalidOrderBy = errors.New("invalid order_by")

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// OrderByConfig configures order_by validation.
type OrderByConfig struct {
	Default string
	Allowed []string
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int, cfg PageSizeConfig) int {
	pageSize := value
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// NormalizeOrderBy lowercases orderBy, collapses its whitespace, validates
// it and applies the default.
func NormalizeOrderBy(orderBy string, cfg OrderByConfig) (string, error) {
	normalized := strings.Join(strings.Fields(strings.ToLower(orderBy)), " ")
	if normalized == "" {
		return cfg.Default, nil
	}
	for _, allowed := range cfg.Allowed {
		if normalized == allowed {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidOrderBy, orderBy)
}
