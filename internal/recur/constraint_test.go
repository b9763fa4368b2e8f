package recur

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icsexport/internal/model"
)

func TestSelectConstraint(t *testing.T) {
	tests := []struct {
		name     string
		rule     string
		wantOK   bool
		wantKind ConstraintKind
		wantName string
		wantRaw  []string
	}{
		{
			name:   "no BY part",
			rule:   "FREQ=DAILY;COUNT=3",
			wantOK: false,
		},
		{
			name:     "BYDAY is keyed as byweekday",
			rule:     "FREQ=WEEKLY;BYDAY=MO,WE",
			wantOK:   true,
			wantKind: ByDay,
			wantName: "byweekday",
			wantRaw:  []string{"MO", "WE"},
		},
		{
			name:     "BYMONTH beats BYDAY",
			rule:     "FREQ=YEARLY;BYDAY=SU;BYMONTH=3",
			wantOK:   true,
			wantKind: ByMonth,
			wantName: "bymonth",
			wantRaw:  []string{"3"},
		},
		{
			name:     "BYSECOND beats everything",
			rule:     "FREQ=DAILY;BYSETPOS=1;BYHOUR=9;BYSECOND=30",
			wantOK:   true,
			wantKind: BySecond,
			wantName: "bysecond",
			wantRaw:  []string{"30"},
		},
		{
			name:     "BYMONTHDAY before BYSETPOS",
			rule:     "FREQ=MONTHLY;BYSETPOS=-1;BYMONTHDAY=28,29,30",
			wantOK:   true,
			wantKind: ByMonthDay,
			wantName: "bymonthday",
			wantRaw:  []string{"28", "29", "30"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, ok := SelectConstraint(model.ParseRecurrenceRule(tt.rule))
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantKind, sel.Kind)
			assert.Equal(t, tt.wantName, sel.Name)
			assert.Equal(t, tt.wantRaw, sel.Raw)
		})
	}
}

func TestSelectConstraint_Deterministic(t *testing.T) {
	rule := model.ParseRecurrenceRule("FREQ=YEARLY;BYDAY=MO;BYMONTH=1;BYWEEKNO=20")
	for i := 0; i < 50; i++ {
		sel, ok := SelectConstraint(rule)
		require.True(t, ok)
		require.Equal(t, ByWeekNo, sel.Kind)
	}
}

func TestConstraintKind_InternalName(t *testing.T) {
	for _, k := range constraintPriority {
		name := k.InternalName()
		if k == ByDay {
			assert.Equal(t, "byweekday", name)
			continue
		}
		assert.NotEqual(t, "byweekday", name)
		assert.NotEqual(t, "byday", name)
	}
	assert.Equal(t, "byyearday", ByYearDay.InternalName())
}

func TestTranslateValues(t *testing.T) {
	values, dropped := TranslateValues([]string{"2TU", "-1FR", "MO", "15", "+3WE", "-2"})
	require.Empty(t, dropped)
	assert.Equal(t, []ConstraintValue{
		Ordinal(2, Tuesday),
		Ordinal(-1, Friday),
		Bare(Monday),
		Integer(15),
		Ordinal(3, Wednesday),
		Integer(-2),
	}, values)
}

func TestTranslateValues_DropsUnknownShapes(t *testing.T) {
	values, dropped := TranslateValues([]string{"XX", "MO", "-10FR", "2XY", "monday", "AFR"})
	assert.Equal(t, []ConstraintValue{Bare(Monday)}, values)
	require.Len(t, dropped, 5)
	for _, err := range dropped {
		assert.ErrorIs(t, err, ErrUnrecognizedConstraintValue)
	}
}

func TestParseWeekdayAndFrequency(t *testing.T) {
	wd, err := ParseWeekday("su")
	require.NoError(t, err)
	assert.Equal(t, Sunday, wd)

	_, err = ParseWeekday("XX")
	assert.ErrorIs(t, err, ErrUnknownWeekdaySymbol)

	f, err := ParseFrequency("monthly")
	require.NoError(t, err)
	assert.Equal(t, Monthly, f)
	assert.Equal(t, "MONTHLY", f.String())

	_, err = ParseFrequency("HOURLY")
	assert.ErrorIs(t, err, ErrUnknownFrequency)
}
