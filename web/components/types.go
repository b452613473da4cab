package components

// Option is one entry of a select control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Range describes a numeric slider.
type Range struct {
	Min, Max, Step, Value int
}
