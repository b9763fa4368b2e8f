package recur

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icsexport/internal/model"
)

func marchWindow() model.Window {
	return model.Window{
		Begin: model.Floating(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		End:   model.Floating(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)),
	}
}

func floatingStart() model.Moment {
	return model.Floating(time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC))
}

func TestBuildDescriptor_Errors(t *testing.T) {
	tests := []struct {
		name    string
		rule    string
		start   model.Moment
		wantErr error
	}{
		{name: "missing FREQ", rule: "INTERVAL=2;COUNT=3", wantErr: ErrMissingFrequency},
		{name: "unknown FREQ", rule: "FREQ=HOURLY", wantErr: ErrUnknownFrequency},
		{name: "zero INTERVAL", rule: "FREQ=DAILY;INTERVAL=0", wantErr: ErrInvalidRule},
		{name: "bad COUNT", rule: "FREQ=DAILY;COUNT=x", wantErr: ErrInvalidRule},
		{name: "bad WKST", rule: "FREQ=WEEKLY;WKST=XX", wantErr: ErrUnknownWeekdaySymbol},
		{name: "bad UNTIL", rule: "FREQ=DAILY;UNTIL=tomorrow", wantErr: ErrInvalidRule},
		{name: "aware UNTIL with floating start", rule: "FREQ=DAILY;UNTIL=20240310T000000Z", wantErr: model.ErrTimezoneMismatch},
		{
			name:    "floating UNTIL with aware start",
			rule:    "FREQ=DAILY;UNTIL=20240310T000000",
			start:   model.Zoned(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
			wantErr: model.ErrTimezoneMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := tt.start
			if start.IsZero() {
				start = floatingStart()
			}
			_, err := BuildDescriptor(model.ParseRecurrenceRule(tt.rule), start, marchWindow())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBuildDescriptor_Defaults(t *testing.T) {
	d, err := BuildDescriptor(model.ParseRecurrenceRule("FREQ=WEEKLY;BYDAY=MO,WE"), floatingStart(), marchWindow())
	require.NoError(t, err)

	assert.Equal(t, Weekly, d.Frequency)
	assert.Equal(t, 1, d.Interval)
	assert.False(t, d.Count.IsPresent())
	assert.False(t, d.WeekStart.IsPresent())
	assert.Empty(t, d.Dropped)

	c, ok := d.Constraint.Get()
	require.True(t, ok)
	assert.Equal(t, "byweekday", c.Name)
	assert.Equal(t, []ConstraintValue{Bare(Monday), Bare(Wednesday)}, c.Values)
}

func TestBuildDescriptor_SynthesizesUntilFromWindow(t *testing.T) {
	d, err := BuildDescriptor(model.ParseRecurrenceRule("FREQ=DAILY"), floatingStart(), marchWindow())
	require.NoError(t, err)
	require.True(t, d.Bounded())

	until, ok := d.Until.Get()
	require.True(t, ok)
	assert.False(t, until.Aware())
	assert.Equal(t, "2024-03-31T00:00:00", until.String())
	assert.False(t, d.Count.IsPresent())
}

func TestBuildDescriptor_SynthesizedUntilTakesStartAwareness(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	start := model.Zoned(time.Date(2024, 2, 5, 10, 0, 0, 0, loc))

	d, err := BuildDescriptor(model.ParseRecurrenceRule("FREQ=DAILY"), start, marchWindow())
	require.NoError(t, err)

	until := d.Until.MustGet()
	assert.True(t, until.Aware())
	assert.Equal(t, loc, until.Time().Location())
	assert.Equal(t, 0, until.Time().Hour())
}

func TestBuildDescriptor_ExplicitBoundsKept(t *testing.T) {
	d, err := BuildDescriptor(model.ParseRecurrenceRule("FREQ=DAILY;COUNT=4;INTERVAL=3;WKST=SU"), floatingStart(), marchWindow())
	require.NoError(t, err)
	assert.Equal(t, mo.Some(4), d.Count)
	assert.False(t, d.Until.IsPresent())
	assert.Equal(t, 3, d.Interval)
	assert.Equal(t, mo.Some(Sunday), d.WeekStart)

	d, err = BuildDescriptor(model.ParseRecurrenceRule("FREQ=DAILY;UNTIL=20240601T000000"), floatingStart(), marchWindow())
	require.NoError(t, err)
	assert.False(t, d.Count.IsPresent())
	assert.Equal(t, "2024-06-01T00:00:00", d.Until.MustGet().String())
}

func TestBuildDescriptor_DropsMismatchedValues(t *testing.T) {
	d, err := BuildDescriptor(model.ParseRecurrenceRule("FREQ=WEEKLY;BYDAY=MO,1,9,BAD"), floatingStart(), marchWindow())
	require.NoError(t, err)

	c := d.Constraint.MustGet()
	assert.Equal(t, []ConstraintValue{Bare(Monday), Bare(Tuesday)}, c.Values)
	require.Len(t, d.Dropped, 2)
	for _, err := range d.Dropped {
		assert.ErrorIs(t, err, ErrUnrecognizedConstraintValue)
	}

	d, err = BuildDescriptor(model.ParseRecurrenceRule("FREQ=YEARLY;BYMONTH=3,MO"), floatingStart(), marchWindow())
	require.NoError(t, err)
	assert.Equal(t, []ConstraintValue{Integer(3)}, d.Constraint.MustGet().Values)
	assert.Len(t, d.Dropped, 1)
}

func TestBuildDescriptor_ListsIgnoredParts(t *testing.T) {
	tests := []struct {
		name string
		rule string
		want []string
	}{
		{name: "nothing ignored", rule: "FREQ=WEEKLY;INTERVAL=2;WKST=SU;BYDAY=MO;COUNT=4"},
		{name: "BYDAY loses to BYMONTH", rule: "FREQ=YEARLY;BYMONTH=3;BYDAY=MO", want: []string{"BYDAY"}},
		{name: "unknown keys", rule: "FREQ=DAILY;X-FOO=1;BYWEEKDAY=MO", want: []string{"BYWEEKDAY", "X-FOO"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := BuildDescriptor(model.ParseRecurrenceRule(tt.rule), floatingStart(), marchWindow())
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Ignored)
		})
	}
}
