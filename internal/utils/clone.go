package utils

// ClonePtr copies the value behind p into a fresh pointer.
func ClonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
