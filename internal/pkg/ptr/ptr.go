package ptr

// Of returns a pointer to a copy of v.
func Of[T any](v T) *T {
	return &v
}

// Value returns the value p points to, or fallback when p is nil.
func Value[T any](p *T, fallback T) T {
	if p != nil {
		return *p
	}
	return fallback
}

// Clone copies the value p points to; nil stays nil.
func Clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	return Of(*p)
}
