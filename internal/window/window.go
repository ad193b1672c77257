// Package window turns a user-facing date range into the half-open and
// inclusive predicates pushed to the ad_spend and leads queries.
//
// The two tables use different rules on purpose and must stay that way:
// ad_spend.date is a calendar date compared inclusively on both ends, while
// leads.created_at is a timestamp compared against [from 00:00, to+1 00:00).
package window

import (
	"fmt"
	"time"

	"marketing_dashboard_backend/platform/apperr"
)

const dateLayout = "2006-01-02"

// SignatureAll identifies queries without a date bound.
const SignatureAll = "all"

// Range is a calendar-day range. Only the date part of From and To is used.
type Range struct {
	From time.Time
	To   time.Time
}

type Options struct {
	// SkipFilter drops the date bound entirely.
	SkipFilter bool
}

// DateBounds is the inclusive ad_spend rule: date >= From AND date <= To.
type DateBounds struct {
	From string
	To   string
}

// TimeBounds is the half-open leads rule: created_at >= From AND created_at < Before.
type TimeBounds struct {
	From   time.Time
	Before time.Time
}

// Predicates are the normalized bounds for one range. A nil *Predicates
// means unbounded.
type Predicates struct {
	AdSpend DateBounds
	Leads   TimeBounds
}

// Normalizer resolves day boundaries in the reporting location.
type Normalizer struct {
	loc *time.Location
}

func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// Location returns the reporting location day boundaries are computed in.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Normalize validates r and returns the predicates for both tables.
func (n *Normalizer) Normalize(r Range, opts Options) (*Predicates, error) {
	if opts.SkipFilter {
		return nil, nil
	}
	if r.From.IsZero() || r.To.IsZero() {
		return nil, apperr.Validation("date range requires both from and to")
	}

	from := n.startOfDay(r.From)
	to := n.startOfDay(r.To)
	if from.After(to) {
		return nil, apperr.Validation(fmt.Sprintf("date range start %s is after end %s",
			from.Format(dateLayout), to.Format(dateLayout)))
	}

	return &Predicates{
		AdSpend: DateBounds{
			From: from.Format(dateLayout),
			To:   to.Format(dateLayout),
		},
		Leads: TimeBounds{
			From:   from,
			Before: to.AddDate(0, 0, 1),
		},
	}, nil
}

// Parse reads "YYYY-MM-DD" bounds in the reporting location.
func (n *Normalizer) Parse(from, to string) (Range, error) {
	f, err := time.ParseInLocation(dateLayout, from, n.loc)
	if err != nil {
		return Range{}, apperr.Validation("from must be formatted as YYYY-MM-DD")
	}
	t, err := time.ParseInLocation(dateLayout, to, n.loc)
	if err != nil {
		return Range{}, apperr.Validation("to must be formatted as YYYY-MM-DD")
	}
	return Range{From: f, To: t}, nil
}

// Trailing is the caller-side default: the months before now, through today.
func (n *Normalizer) Trailing(now time.Time, months int) Range {
	today := n.startOfDay(now)
	return Range{From: today.AddDate(0, -months, 0), To: today}
}

func (n *Normalizer) startOfDay(t time.Time) time.Time {
	local := t.In(n.loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, n.loc)
}

// Signature is the stable cache-key component for the predicates.
func (p *Predicates) Signature() string {
	if p == nil {
		return SignatureAll
	}
	return p.AdSpend.From + "_" + p.AdSpend.To
}
