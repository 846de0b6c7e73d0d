package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/etnz/endgame/date"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Builder returns a fresh scenario for an iteration. Everything random in
// the scenario must draw from rng.
type Builder func(iteration int, rng *rand.Rand) (*Scenario, error)

// Runner runs a scenario, once or many times.
type Runner struct {
	Build      Builder
	Iterations int // at least one
	// Isolate records a failed iteration in its History and carries on
	// with the next one, instead of aborting the run.
	Isolate bool
	// Seed makes the run reproducible. Iteration i draws from a PCG
	// source seeded with (Seed, i).
	Seed    uint64
	Log     logrus.FieldLogger
	Metrics *Metrics
	// RunID tags every log entry. A random one is assigned when empty.
	RunID string
}

// IterationError is a fatal error during an iteration.
type IterationError struct {
	Iteration int
	Date      date.Date // zero when the scenario could not be built
	Err       error
}

func (e *IterationError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("iteration %d: %v", e.Iteration, e.Err)
	}
	return fmt.Sprintf("iteration %d on %s: %v", e.Iteration, e.Date, e.Err)
}

func (e *IterationError) Unwrap() error { return e.Err }

// Run runs every iteration and returns their histories. Unless Isolate is
// set, the first failure stops the run and is returned along with the
// histories so far, the failed one last.
func (r *Runner) Run(ctx context.Context) ([]*History, error) {
	if r.Build == nil {
		return nil, errors.New("runner has no scenario builder")
	}
	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}
	if r.Log == nil {
		r.Log = logrus.StandardLogger()
	}
	n := max(r.Iterations, 1)
	histories := make([]*History, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return histories, err
		}
		h, err := r.iterate(ctx, i)
		if err != nil {
			h.Err = err
		}
		r.Metrics.iteration(h)
		histories = append(histories, h)
		if err == nil {
			continue
		}
		if !r.Isolate || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return histories, err
		}
		r.Log.WithFields(logrus.Fields{"run": r.RunID, "iteration": i}).WithError(err).Warn("iteration failed")
	}
	return histories, nil
}

func (r *Runner) iterate(ctx context.Context, i int) (*History, error) {
	h := &History{Iteration: i}
	rng := rand.New(rand.NewPCG(r.Seed, uint64(i)))
	sc, err := r.Build(i, rng)
	if err != nil {
		return h, &IterationError{Iteration: i, Err: err}
	}
	if err := sc.Validate(); err != nil {
		return h, &IterationError{Iteration: i, Err: err}
	}
	sc.init(r.Log.WithFields(logrus.Fields{"run": r.RunID, "iteration": i}), rng, r.Metrics)
	if err := simulate(ctx, sc, h); err != nil {
		return h, err
	}
	t := h.Totals()
	sc.Log.WithFields(logrus.Fields{
		"years":     t.Years,
		"gross":     t.CashFlow.Total().String(),
		"tax":       t.Summary.TaxPayable.String(),
		"avg_gross": t.AverageCashFlow.Total().String(),
		"avg_tax":   t.AverageSummary.TaxPayable.String(),
	}).Info("iteration done")
	return h, nil
}

// simulate steps through every day of the scenario, filling h.
func simulate(ctx context.Context, sc *Scenario, h *History) error {
	fail := func(day date.Date, err error) error {
		return &IterationError{Iteration: h.Iteration, Date: day, Err: err}
	}
	for day := sc.Period.From; !day.After(sc.Period.To); day = day.Add(1) {
		if day.IsStartOfYear() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if day != sc.Period.From {
				if err := sc.newYear(day); err != nil {
					return fail(day, err)
				}
			}
		}
		for _, t := range sc.Transactions {
			if err := t.ExecuteOnDate(day, sc); err != nil {
				return fail(day, err)
			}
		}
		if !day.IsEndOfYear() {
			continue
		}
		y, err := sc.yearEnd(day)
		if err != nil {
			return fail(day, err)
		}
		h.Years = append(h.Years, y)
		sc.LastYear = &y.Summary
		if !sc.SurvivalTest {
			continue
		}
		alive, err := sc.Survival.SurvivesYear(day.Year(), sc.Birth, sc.Rand)
		if err != nil {
			return fail(day, err)
		}
		if !alive {
			h.DeathYear = day.Year()
			sc.Log.WithField("date", day.String()).Infof("died at %d", y.Age)
			return nil
		}
	}
	return nil
}

// newYear resets the yearly state on January 1.
func (sc *Scenario) newYear(day date.Date) error {
	year := day.Year()
	log := sc.Log.WithField("date", day.String())
	sc.CashFlow = NewCashFlow()
	sc.refreshOpeningValues()
	if sc.RIF != nil {
		minimum, err := sc.RifMinimum(year)
		if err != nil {
			return err
		}
		log.Infof("RIF minimum withdrawal %s", minimum)
	}
	if sc.LIF != nil {
		minimum, err := sc.LifMinimum(year)
		if err != nil {
			return err
		}
		maximum, applies, err := sc.LifMaximum(year)
		if err != nil {
			return err
		}
		if applies {
			log.Infof("LIF withdrawals between %s and %s", minimum, maximum)
		}
	}
	sc.Federal.ResetNewYear(year)
	if sc.Room != nil {
		sc.Room.YearlyIncrease()
		log.Infof("TFSA room %s", sc.Room.RoomFor(year))
	}
	return nil
}

// yearEnd takes the snapshot of December 31.
func (sc *Scenario) yearEnd(day date.Date) (YearEnd, error) {
	s, err := sc.Federal.Summary()
	if err != nil {
		return YearEnd{}, err
	}
	accounts := sc.Snapshot()
	y := YearEnd{
		Year:     day.Year(),
		Age:      sc.Age(day),
		Summary:  s,
		CashFlow: *sc.CashFlow,
		Accounts: accounts,
		NetWorth: accounts.NetWorth(),
	}
	if sc.Survival != nil {
		from := date.YearsOnly(sc.Birth, sc.StartYear())
		if p, err := sc.Survival.Probability(from, date.YearsOnly(sc.Birth, day.Year())); err == nil {
			y.Survival = math.Round(p*10000) / 100
		}
	}
	sc.Log.WithFields(logrus.Fields{"date": day.String(), "net_worth": y.NetWorth.String()}).
		Infof("year end: tax payable %s, cash generated %s", s.TaxPayable, y.CashFlow.Total())
	return y, nil
}
