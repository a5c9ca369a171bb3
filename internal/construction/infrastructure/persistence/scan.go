// Package persistence stores the construction aggregates through the
// driver-agnostic database executor.
package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	sharedDomain "github.com/felixgeelhaar/sitework/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// stampLayout is fixed width so timestamps order correctly as text.
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatStamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

func parseStamp(s string) (time.Time, error) {
	t, err := time.Parse(stampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func formatDay(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(domain.DateLayout), Valid: true}
}

func parseNullDay(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := domain.ParseDay(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return d, nil
}

// rehydrateRoot rebuilds the aggregate root from stored identity columns.
func rehydrateRoot(id, createdAt, updatedAt string, version int) (sharedDomain.BaseAggregateRoot, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return sharedDomain.BaseAggregateRoot{}, fmt.Errorf("invalid id %q: %w", id, err)
	}
	created, err := parseStamp(createdAt)
	if err != nil {
		return sharedDomain.BaseAggregateRoot{}, err
	}
	updated, err := parseStamp(updatedAt)
	if err != nil {
		return sharedDomain.BaseAggregateRoot{}, err
	}
	return sharedDomain.RehydrateBaseAggregateRoot(uid, created, updated, version), nil
}
