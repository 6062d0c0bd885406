package utils

// CycleEnum steps through 0..last, wrapping at both ends.
func CycleEnum[T ~int](current T, step int, last T) T {
	n := int(last) + 1
	return T(((int(current)+step)%n + n) % n)
}

func GetNextEnum[T ~int](current T, last T) T {
	return CycleEnum(current, 1, last)
}

func GetPrevEnum[T ~int](current T, last T) T {
	return CycleEnum(current, -1, last)
}
