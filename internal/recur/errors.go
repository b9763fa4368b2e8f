package recur

import "errors"

var (
	ErrMissingFrequency            = errors.New("recurrence rule has no FREQ")
	ErrUnknownFrequency            = errors.New("unknown recurrence frequency")
	ErrUnknownWeekdaySymbol        = errors.New("unknown weekday symbol")
	ErrInvalidRule                 = errors.New("invalid recurrence rule")
	ErrUnrecognizedConstraintValue = errors.New("unrecognized constraint value")

	// ErrUnboundedRule means a descriptor reached expansion with neither
	// COUNT nor UNTIL. BuildDescriptor never produces one.
	ErrUnboundedRule = errors.New("recurrence descriptor has no bound")
)
