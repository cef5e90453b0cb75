package option

import (
	"time"

	"gorm.io/gorm"
)

// QueryOption mutates a gorm query before execution. Options compose
// conjunctively in the order given.
type QueryOption func(*gorm.DB) *gorm.DB

func Where(query string, args ...any) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where(query, args...)
	}
}

func Order(expr string) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Order(expr)
	}
}

func Limit(n int) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		if n > 0 {
			return tx.Limit(n)
		}
		return tx
	}
}

// DateRange bounds a date column inclusively. A nil bound is open.
func DateRange(column string, start, end *time.Time) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		if start != nil {
			tx = tx.Where(column+" >= ?", *start)
		}
		if end != nil {
			tx = tx.Where(column+" <= ?", *end)
		}
		return tx
	}
}
