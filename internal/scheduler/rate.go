package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// TickPeriod is the base cadence of the scheduler. Every cooldown and rate is
// expressed in whole ticks of this period.
const TickPeriod = 50 * time.Millisecond

// Rate is how often a registered task runs, in milliseconds.
type Rate int64

const (
	Min64   Rate = 3840000
	Min32   Rate = 1920000
	Min16   Rate = 960000
	Min08   Rate = 480000
	Min04   Rate = 240000
	Min02   Rate = 120000
	Min01   Rate = 60000
	Slowest Rate = 32000
	Slower  Rate = 16000
	Sec10   Rate = 10000
	Sec8    Rate = 8000
	Sec6    Rate = 6000
	Sec4    Rate = 4000
	Sec2    Rate = 2000
	Sec     Rate = 1000
	Fast    Rate = 500
	Faster  Rate = 250
	Fastest Rate = 125
	Tick    Rate = 50
	Instant Rate = 0
)

var rateNames = []struct {
	name string
	rate Rate
}{
	{"MIN_64", Min64},
	{"MIN_32", Min32},
	{"MIN_16", Min16},
	{"MIN_08", Min08},
	{"MIN_04", Min04},
	{"MIN_02", Min02},
	{"MIN_01", Min01},
	{"SLOWEST", Slowest},
	{"SLOWER", Slower},
	{"SEC_10", Sec10},
	{"SEC_8", Sec8},
	{"SEC_6", Sec6},
	{"SEC_4", Sec4},
	{"SEC_2", Sec2},
	{"SEC", Sec},
	{"FAST", Fast},
	{"FASTER", Faster},
	{"FASTEST", Fastest},
	{"TICK", Tick},
	{"INSTANT", Instant},
}

// ParseRate resolves a rate by its configuration name (case-insensitive).
func ParseRate(name string) (Rate, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for _, r := range rateNames {
		if r.name == n {
			return r.rate, nil
		}
	}
	return 0, fmt.Errorf("unknown rate %q", name)
}

func (r Rate) String() string {
	for _, n := range rateNames {
		if n.rate == r {
			return n.name
		}
	}
	return fmt.Sprintf("Rate(%dms)", int64(r))
}

// Duration converts the rate to wall-clock time.
func (r Rate) Duration() time.Duration {
	return time.Duration(r) * time.Millisecond
}

// Ticks is the number of scheduler ticks between two runs, never less than one.
func (r Rate) Ticks() int64 {
	t := int64(r.Duration() / TickPeriod)
	if t < 1 {
		return 1
	}
	return t
}
