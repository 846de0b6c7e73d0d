package sim

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/schedule"
	"github.com/sirupsen/logrus"
)

// Action changes the state of a scenario, usually the state of its accounts.
//
// An action that cannot be carried out for a discretionary reason (no cash
// to buy, nothing left to redeem) logs the fact and returns nil. A returned
// error is fatal to the iteration.
type Action interface {
	Execute(day date.Date, sc *Scenario) error
	String() string
}

// Transaction is an Action with the days it runs on.
type Transaction struct {
	When   schedule.Schedule
	Action Action
}

// ExecuteOnDate executes the action if day matches the schedule.
func (t Transaction) ExecuteOnDate(day date.Date, sc *Scenario) error {
	if !t.When.Matches(day) {
		return nil
	}
	sc.Metrics.executed(kindOf(t.Action))
	if err := t.Action.Execute(day, sc); err != nil {
		return fmt.Errorf("%s: %w", t.Action, err)
	}
	return nil
}

func (t Transaction) String() string { return fmt.Sprintf("%s %s", t.When, t.Action) }

// kindOf names an action by its type, for metrics.
func kindOf(a Action) string {
	t := reflect.TypeOf(a)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// logFor returns the logger of an action on day.
func logFor(sc *Scenario, day date.Date, a Action) *logrus.Entry {
	return sc.Log.WithFields(logrus.Fields{"date": day.String(), "action": kindOf(a)})
}

// skip logs a discretionary action that did not happen.
func skip(sc *Scenario, day date.Date, a Action, format string, args ...any) {
	sc.Metrics.skipped(kindOf(a))
	logFor(sc, day, a).Warnf("%s skipped: %s", a, fmt.Sprintf(format, args...))
}

func holders(hs []Holder) string {
	names := make([]string, len(hs))
	for i, h := range hs {
		names[i] = strings.ToUpper(string(h))
	}
	return strings.Join(names, ",")
}
