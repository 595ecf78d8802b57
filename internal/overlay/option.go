package overlay

import "strings"

// Opt is an override field that is either present or absent.
// The zero value is absent.
type Opt[T comparable] struct {
	value T
	set   bool
}

// Some returns a present value
func Some[T comparable](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// None returns an absent value
func None[T comparable]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the value is present
func (o Opt[T]) IsSet() bool {
	return o.set
}

// OrElse returns the value if present, otherwise fallback
func (o Opt[T]) OrElse(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

// Ptr returns a pointer to a copy of the value, or nil when absent
func (o Opt[T]) Ptr() *T {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// FromPtr converts a nil-able pointer into an Opt
func FromPtr[T comparable](p *T) Opt[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// Text trims s and treats the empty string as absent
func Text(s string) Opt[string] {
	s = strings.TrimSpace(s)
	if s == "" {
		return None[string]()
	}
	return Some(s)
}

// textUnless is Text, but a value equal to def is also absent
func textUnless(s, def string) Opt[string] {
	o := Text(s)
	if v, ok := o.Get(); ok && v == def {
		return None[string]()
	}
	return o
}
