package util

// Tern is the conditional expression Go lacks: cond ? a : b.
func Tern[T any](cond bool, a T, b T) T {
	if cond {
		return a
	}
	return b
}
