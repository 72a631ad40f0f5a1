package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func day(offset int) *time.Time {
	d := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	return &d
}

func TestCustodyDatesOrdered(t *testing.T) {
	cases := []struct {
		name                       string
		reception, sent, returned  *time.Time
		want                       bool
	}{
		{"all absent", nil, nil, nil, true},
		{"ordered", day(0), day(5), day(20), true},
		{"same day everywhere", day(3), day(3), day(3), true},
		{"sent before reception", day(10), day(5), nil, false},
		{"returned before sent", nil, day(10), day(2), false},
		{"returned before reception, no sent", day(10), nil, day(2), false},
		{"only returned", nil, nil, day(1), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := AssignmentModel{
				ReceptionDate:    tc.reception,
				SentToReaderDate: tc.sent,
				ReturnedDate:     tc.returned,
			}
			require.Equal(t, tc.want, a.CustodyDatesOrdered())
		})
	}
}

func TestCustodyDatesOrderedProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		gen := func(label string) *time.Time {
			if !rapid.Bool().Draw(rt, label+"_present") {
				return nil
			}
			return day(rapid.IntRange(0, 60).Draw(rt, label+"_offset"))
		}
		a := AssignmentModel{
			ReceptionDate:    gen("reception"),
			SentToReaderDate: gen("sent"),
			ReturnedDate:     gen("returned"),
		}

		ordered := func(earlier, later *time.Time) bool {
			return earlier == nil || later == nil || !later.Before(*earlier)
		}
		want := ordered(a.ReceptionDate, a.SentToReaderDate) &&
			ordered(a.SentToReaderDate, a.ReturnedDate) &&
			ordered(a.ReceptionDate, a.ReturnedDate)

		require.Equal(rt, want, a.CustodyDatesOrdered())
	})
}
