// Package catalog loads the service catalogue from Markdown content files.
//
// A service file looks like:
//
//	# Gel Manicure
//	Long-lasting colour with a glossy finish.
//	## Price: $35.00
//	Thumbnail: /images/gel.jpg
//	Category: Nails
//	### Addons:
//	- Nail Art: $10
//	  Description: Simple art on two nails
//	### Options:
//	- [select] Shape (required): Round, Square, Almond (+$5)
//
// Parsing never fails: lines that match no rule are ignored and malformed
// entries are skipped, leaving the zero-valued defaults in place.
package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/iliyamo/service-booking/internal/model"
)

const (
	titlePrefix     = "# "
	pricePrefix     = "## "
	thumbnailPrefix = "Thumbnail: "
	categoryPrefix  = "Category: "
	addonsMarker    = "### Addons:"
	optionsMarker   = "### Options:"
	itemPrefix      = "- "

	// addon descriptions historically sit on the next line behind a
	// fixed-width label
	addonDescriptionWidth = 12
	addonDescriptionLabel = "description:"
)

var (
	priceRe       = regexp.MustCompile(`\$(\d+(\.\d{1,2})?)`)
	optionRe      = regexp.MustCompile(`- \[(.*?)\] (.*?)( \(required\))?: (.*)`)
	optionValueRe = regexp.MustCompile(`(.*?) \(\+?\$([\d.]+)\)`)
	leadingNumRe  = regexp.MustCompile(`^\d+(\.\d+)?`)
)

type section int

const (
	sectionNone section = iota
	sectionAddons
	sectionOptions
)

// Parse converts the content of one service file into a Service.
func Parse(content string) model.Service {
	lines := strings.Split(content, "\n")
	svc := model.Service{
		Addons:  []model.Addon{},
		Options: []model.Option{},
	}

	current := sectionNone
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, titlePrefix):
			svc.Title = line[len(titlePrefix):]
		case i == 1:
			svc.Description = line
		case strings.HasPrefix(line, pricePrefix) && strings.Contains(strings.ToLower(line), "price"):
			if m := priceRe.FindStringSubmatch(line); m != nil {
				if p, err := strconv.ParseFloat(m[1], 64); err == nil {
					svc.Price = p
				}
			}
		case strings.HasPrefix(line, thumbnailPrefix):
			svc.Thumbnail = line[len(thumbnailPrefix):]
		case strings.HasPrefix(line, categoryPrefix):
			svc.Category = line[len(categoryPrefix):]
		case line == addonsMarker:
			current = sectionAddons
		case line == optionsMarker:
			current = sectionOptions
		case current == sectionAddons && strings.HasPrefix(line, itemPrefix):
			if a, ok := parseAddon(line, nextLine(lines, i)); ok {
				svc.Addons = append(svc.Addons, a)
			}
		case current == sectionOptions && strings.HasPrefix(line, itemPrefix):
			if o, ok := parseOption(line); ok {
				svc.Options = append(svc.Options, o)
			}
		}
	}
	return svc
}

// nextLine returns the trimmed line after index i, or "" past the end.
func nextLine(lines []string, i int) string {
	if i+1 >= len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[i+1])
}

// parseAddon splits "- Name: $12.50" and reads the description from the
// following line.
func parseAddon(line, next string) (model.Addon, bool) {
	name, priceText, found := strings.Cut(line[len(itemPrefix):], ": $")
	if !found {
		return model.Addon{}, false
	}
	price, ok := leadingFloat(priceText)
	if !ok {
		return model.Addon{}, false
	}
	return model.Addon{
		Name:        name,
		Price:       price,
		Description: addonDescription(next),
	}, true
}

func addonDescription(next string) string {
	if next == "" || strings.HasPrefix(next, itemPrefix) || strings.HasPrefix(next, "#") {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(next), addonDescriptionLabel) {
		return strings.TrimSpace(next[len(addonDescriptionLabel):])
	}
	if len(next) <= addonDescriptionWidth {
		return ""
	}
	return strings.TrimSpace(next[addonDescriptionWidth:])
}

// parseOption matches "- [type] Name (required): A, B (+$5)".
func parseOption(line string) (model.Option, bool) {
	m := optionRe.FindStringSubmatch(line)
	if m == nil {
		return model.Option{}, false
	}
	parts := strings.Split(m[4], ", ")
	values := make([]model.OptionValue, 0, len(parts))
	for _, v := range parts {
		values = append(values, parseOptionValue(v))
	}
	return model.Option{
		Type:     m[1],
		Name:     m[2],
		Required: m[3] != "",
		Values:   values,
	}, true
}

// parseOptionValue reads "Name (+$N)"; values without a price cost 0.
func parseOptionValue(v string) model.OptionValue {
	m := optionValueRe.FindStringSubmatch(v)
	if m == nil {
		return model.OptionValue{Name: v}
	}
	price, _ := leadingFloat(m[2])
	return model.OptionValue{Name: m[1], Price: price}
}

// leadingFloat parses the numeric prefix of s ("12.5 extra" -> 12.5).
func leadingFloat(s string) (float64, bool) {
	num := leadingNumRe.FindString(strings.TrimSpace(s))
	if num == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
