package model

// Service is one bookable offering parsed from a Markdown file in the
// services content directory.  Services are immutable at runtime and are
// identified by their Title; bookings reference a service by title only.
//
// Fields:
//  Title       – text of the level-1 heading.
//  Description – second line of the file.
//  Price       – base price from the "## Price" heading.
//  Thumbnail   – image path from the "Thumbnail: " line.
//  Category    – optional category from the "Category: " line.
//  Addons      – optional extras in file order.
//  Options     – configurable choices in file order.
type Service struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Thumbnail   string   `json:"thumbnail"`
	Category    string   `json:"category"`
	Addons      []Addon  `json:"addons"`
	Options     []Option `json:"options"`
}

// Addon is a named optional extra with a fixed additional price.
type Addon struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// Option is a configurable choice (select, radio, ...) whose chosen value
// may carry an additional price.
type Option struct {
	Type     string        `json:"type"`
	Name     string        `json:"name"`
	Required bool          `json:"required"`
	Values   []OptionValue `json:"values"`
}

// OptionValue is one selectable value of an Option.
type OptionValue struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Addon returns the add-on with the given name.
func (s Service) Addon(name string) (Addon, bool) {
	for _, a := range s.Addons {
		if a.Name == name {
			return a, true
		}
	}
	return Addon{}, false
}

// Option returns the option with the given name.
func (s Service) Option(name string) (Option, bool) {
	for _, o := range s.Options {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

// Value returns the option value with the given name.
func (o Option) Value(name string) (OptionValue, bool) {
	for _, v := range o.Values {
		if v.Name == name {
			return v, true
		}
	}
	return OptionValue{}, false
}
