package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/application/queries"
	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/felixgeelhaar/sitework/internal/construction/infrastructure/report"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParseID parses a UUID argument, naming what in the error.
func ParseID(value, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", what, value, err)
	}
	return id, nil
}

// ParseAmount parses a decimal money or quantity argument.
func ParseAmount(value, what string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", what, value, err)
	}
	return d, nil
}

// ParseDay parses a YYYY-MM-DD flag. An empty value yields the zero time,
// which the handlers read as today.
func ParseDay(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
	}
	return t, nil
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintBuildingProgress writes the progress tree of a building.
func PrintBuildingProgress(w io.Writer, b *queries.BuildingProgressDTO) {
	fmt.Fprintf(w, "#%d %s  [%s]  %d%%\n", b.Position, b.Name, b.Status, b.Percent)
	fmt.Fprintf(w, "  id: %s\n", b.ID)
	for _, st := range b.Stages {
		fmt.Fprintf(w, "  %d. %s  [%s]  %d%%%s\n", st.Order, st.Name, st.Status, st.Percent, dateRange(st.StartDate, st.EndDate))
		for _, sub := range st.Substages {
			fmt.Fprintf(w, "     - %-24s %-12s %10s  %s%s\n",
				sub.Name, sub.Label, sub.LaborCost, sub.ID, dateRange(sub.StartDate, sub.EndDate))
		}
	}
}

// PrintPaymentBatch writes a payment batch grouped by building and stage.
func PrintPaymentBatch(w io.Writer, doc report.Document) {
	if len(doc.Buildings) == 0 {
		fmt.Fprintf(w, "Nothing to pay in %s\n", doc.Project)
		return
	}
	fmt.Fprintf(w, "Payments for %s (%s)\n", doc.Project, doc.Date)
	for _, b := range doc.Buildings {
		fmt.Fprintf(w, "  %s\n", b.Name)
		for _, st := range b.Stages {
			fmt.Fprintf(w, "    %s\n", st.Name)
			for _, row := range st.Rows {
				fmt.Fprintf(w, "      %-28s %12s\n", row.Substage, row.LaborCost)
			}
			fmt.Fprintf(w, "      %-28s %12s\n", "stage subtotal", st.Subtotal)
		}
		fmt.Fprintf(w, "    %-30s %12s\n", "building subtotal", b.Subtotal)
	}
	fmt.Fprintf(w, "  %-32s %12s\n", "TOTAL", doc.GrandTotal)
}

func dateRange(start, end *time.Time) string {
	if start == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(start.Format(domain.DateLayout))
	b.WriteString(" -> ")
	if end != nil {
		b.WriteString(end.Format(domain.DateLayout))
	}
	return b.String()
}
