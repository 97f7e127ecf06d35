// Package booking holds the appointment slot rules: which times are bookable,
// which services exist, and how long each service occupies the shop.
package booking

import (
	"context"
	"fmt"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
	closingHour    = 17
)

// Slots are the bookable start times. The 12:00 hour is kept free for lunch.
var Slots = []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}

// serviceDurations doubles as the service-type enum: a type not listed here is
// not a valid service.
var serviceDurations = map[string]time.Duration{
	"oil-change":         60 * time.Minute,
	"tire-rotation":      45 * time.Minute,
	"brake-service":      120 * time.Minute,
	"general-inspection": 60 * time.Minute,
	"repair":             180 * time.Minute,
}

const defaultDuration = 60 * time.Minute

// Duration returns how long a service occupies a bay.
func Duration(serviceType string) time.Duration {
	if d, ok := serviceDurations[serviceType]; ok {
		return d
	}
	return defaultDuration
}

// Candidate is a proposed appointment as submitted by the client.
type Candidate struct {
	Date        string
	Time        string
	ServiceType string
}

// Result is the validation decision. Reason is set only when Valid is false.
type Result struct {
	Valid  bool
	Reason string
}

// SlotLookup reports whether an appointment already exists at date+slot.
type SlotLookup func(ctx context.Context, date, slot string) (bool, error)

// Options select the stricter rule set. Strict additionally enforces
// future timestamps (not just future days), weekdays only, no slot collisions
// (when Lookup is set), and that the service duration ends before closing.
type Options struct {
	Strict bool
	Lookup SlotLookup
}

// Validate evaluates the booking rules in order, stopping at the first
// failure. It is pure over the candidate and the supplied clock; the only
// external touch is the optional slot lookup. A non-nil error means the
// lookup failed, not that the candidate was rejected.
func Validate(ctx context.Context, c Candidate, now time.Time, opts Options) (Result, error) {
	loc := now.Location()

	day, err := time.ParseInLocation(dateLayout, c.Date, loc)
	if err != nil {
		return reject("Invalid appointment date, expected YYYY-MM-DD"), nil
	}
	start, err := time.ParseInLocation(dateTimeLayout, c.Date+" "+c.Time, loc)
	if err != nil {
		return reject("Invalid appointment time, expected HH:MM"), nil
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if day.Before(today) {
		return reject("Appointment date cannot be in the past"), nil
	}
	if opts.Strict && start.Before(now) {
		return reject("Appointments must be scheduled for future dates"), nil
	}

	if !slotAllowed(c.Time) {
		return reject("Invalid appointment time"), nil
	}

	if opts.Strict {
		if wd := start.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return reject("Appointments cannot be scheduled on weekends"), nil
		}
	}

	if _, ok := serviceDurations[c.ServiceType]; !ok {
		return reject("Invalid service type"), nil
	}

	if opts.Strict && opts.Lookup != nil {
		taken, err := opts.Lookup(ctx, c.Date, c.Time)
		if err != nil {
			return Result{}, err
		}
		if taken {
			return reject("This time slot is already booked"), nil
		}
	}

	if opts.Strict {
		d := Duration(c.ServiceType)
		closing := time.Date(day.Year(), day.Month(), day.Day(), closingHour, 0, 0, 0, loc)
		if !start.Add(d).Before(closing) {
			return reject(fmt.Sprintf("Service duration of %d minutes exceeds business hours", int(d.Minutes()))), nil
		}
	}

	return Result{Valid: true}, nil
}

func slotAllowed(slot string) bool {
	for _, s := range Slots {
		if s == slot {
			return true
		}
	}
	return false
}

func reject(reason string) Result {
	return Result{Valid: false, Reason: reason}
}
