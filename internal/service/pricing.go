package service

import (
	"math"

	"github.com/iliyamo/service-booking/internal/model"
)

// CalculateTotal prices a booking: the service's base price plus the price
// of every selected add-on plus the price of the chosen value of every
// option.  It returns the total rounded to cents and the add-on snapshots to
// store with the booking.
//
// Add-on names may repeat in the input; each add-on is charged once.  An
// optional option left empty is skipped.  Unknown add-ons, unknown options
// or values and missing required options are rejected.
func CalculateTotal(svc model.Service, addonNames []string, options map[string]string) (float64, []model.BookingAddon, error) {
	total := svc.Price

	selected := make([]model.BookingAddon, 0, len(addonNames))
	seen := make(map[string]bool, len(addonNames))
	for _, name := range addonNames {
		if name == "" || seen[name] {
			continue
		}
		a, ok := svc.Addon(name)
		if !ok {
			return 0, nil, NewValidationError("addons", "unknown add-on %q", name)
		}
		seen[name] = true
		total += a.Price
		selected = append(selected, model.BookingAddon{Name: a.Name, Price: a.Price})
	}

	for name := range options {
		if _, ok := svc.Option(name); !ok {
			return 0, nil, NewValidationError("options", "unknown option %q", name)
		}
	}
	for _, opt := range svc.Options {
		chosen := options[opt.Name]
		if chosen == "" {
			if opt.Required {
				return 0, nil, NewValidationError("options", "%s is required", opt.Name)
			}
			continue
		}
		v, ok := opt.Value(chosen)
		if !ok {
			return 0, nil, NewValidationError("options", "unknown value %q for %s", chosen, opt.Name)
		}
		total += v.Price
	}

	return roundCents(total), selected, nil
}

// SelectedOptions returns the non-empty entries of options.
func SelectedOptions(options map[string]string) map[string]string {
	out := make(map[string]string, len(options))
	for k, v := range options {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
