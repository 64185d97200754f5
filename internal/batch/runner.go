package batch

import (
	"context"
	"io"
	"time"

	"github.com/andresuchdata/kitchen-planner/internal/domain"
	"github.com/andresuchdata/kitchen-planner/internal/planner"
	"github.com/andresuchdata/kitchen-planner/internal/report"
	"github.com/rs/zerolog/log"
)

// Summary aggregates a replay run.
type Summary struct {
	Days          int     `json:"days"`
	OverLimitDays int     `json:"over_limit_days"`
	Deliveries    int     `json:"deliveries"`
	MaxWasteRatio float64 `json:"max_waste_ratio"`
	FirstDate     string  `json:"first_date,omitempty"`
	LastDate      string  `json:"last_date,omitempty"`
}

// Runner replays daily scenarios through the planner, one line at a time.
type Runner struct {
	BOM    []planner.BOMEntry
	Config planner.Configuration
	// Defaults, when set, fills missing stock or waste cells.
	Defaults *planner.IngredientState
	// Now dates lines that carry no date; time.Now when nil.
	Now func() time.Time
}

// Run evaluates every line of in and writes one CSV row per ingredient per day to out.
// It stops at the first invalid line; rows for earlier lines are already flushed.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (Summary, error) {
	var summary Summary

	if err := planner.ValidateBOM(r.BOM); err != nil {
		return summary, err
	}
	if err := r.Config.Validate(); err != nil {
		return summary, err
	}

	reader, err := NewReader(in, r.BOM, r.Defaults)
	if err != nil {
		return summary, err
	}
	if r.Now != nil {
		reader.now = r.Now
	}

	w := report.NewCSVWriter(out)
	defer func() {
		if ferr := w.Flush(); ferr != nil {
			log.Error().Err(ferr).Msg("batch: flush report failed")
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		sc, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, err
		}

		plan, err := planner.Evaluate(r.BOM, sc.Sales, sc.States, r.Config)
		if err != nil {
			return summary, &LineError{Line: sc.Line, Err: err}
		}

		resp := domain.NewPlanResponse(plan)
		if err := w.WritePlan(resp); err != nil {
			return summary, err
		}

		summary.add(resp, plan)

		log.Debug().
			Int("line", sc.Line).
			Str("date", resp.Date).
			Int("deliveries", plan.DeliveriesNeeded()).
			Bool("waste_over_limit", plan.KPI.OverLimit).
			Msg("batch: line evaluated")
	}

	if err := w.Flush(); err != nil {
		return summary, err
	}

	log.Info().
		Int("days", summary.Days).
		Int("over_limit_days", summary.OverLimitDays).
		Int("deliveries", summary.Deliveries).
		Msg("batch: replay finished")

	return summary, nil
}

func (s *Summary) add(resp *domain.PlanResponse, plan planner.Plan) {
	s.Days++
	s.Deliveries += plan.DeliveriesNeeded()
	if plan.KPI.OverLimit {
		s.OverLimitDays++
	}
	if plan.KPI.WasteRatio > s.MaxWasteRatio {
		s.MaxWasteRatio = plan.KPI.WasteRatio
	}
	if s.FirstDate == "" {
		s.FirstDate = resp.Date
	}
	s.LastDate = resp.Date
}
