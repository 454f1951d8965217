package catalog

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/okian/fuelplan/internal/domain/model"
)

// WriteTimeline writes legs as CSV with a header row.
func WriteTimeline(w io.Writer, legs []model.FuelLeg) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(model.FuelLeg{}); err != nil {
		return fmt.Errorf("encode timeline header: %w", err)
	}
	for _, leg := range legs {
		if err := enc.Encode(leg); err != nil {
			return fmt.Errorf("encode leg %d: %w", leg.Hour, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush timeline: %w", err)
	}
	return nil
}
