package models

// Optional holds a value that may be absent. It keeps "missing" apart from the zero value,
// which matters when a response field is omitted rather than reported as 0.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPtr converts a decoded JSON pointer field into an Optional.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}

	return Some(*p)
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// Valid reports whether the value is present.
func (o Optional[T]) Valid() bool {
	return o.ok
}

// Or returns the value if present, def otherwise.
func (o Optional[T]) Or(def T) T {
	if !o.ok {
		return def
	}

	return o.value
}
