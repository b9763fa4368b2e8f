// Package window parses the caller's begin/end date strings.
package window

import (
	"errors"
	"fmt"
	"time"

	"github.com/araddon/dateparse"

	"icsexport/internal/model"
)

var (
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidWindow     = errors.New("window end is before window begin")
)

// Parse reads free-form begin and end strings ("2024-03-01",
// "March 1, 2024 09:00", ...) into a window of floating date-times.
// Timezone awareness is assigned later, per event, by retagging.
func Parse(begin, end string) (model.Window, error) {
	b, err := parseBound("begin", begin)
	if err != nil {
		return model.Window{}, err
	}
	e, err := parseBound("end", end)
	if err != nil {
		return model.Window{}, err
	}
	if e.Time().Before(b.Time()) {
		return model.Window{}, fmt.Errorf("%w: %s < %s", ErrInvalidWindow, e, b)
	}
	return model.Window{Begin: b, End: e}, nil
}

func parseBound(name, s string) (model.Moment, error) {
	if s == "" {
		return model.Moment{}, fmt.Errorf("%w: %s date is empty", ErrInvalidDateFormat, name)
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return model.Moment{}, fmt.Errorf("%w: %s date %q: %v", ErrInvalidDateFormat, name, s, err)
	}
	return model.Floating(t), nil
}
