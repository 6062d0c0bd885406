package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrNegativeSize = errors.New("byte size must not be negative")
	ErrOverflow     = errors.New("byte size overflow")
	ErrUnderflow    = errors.New("byte size underflow")
)

// ByteSize is a non-negative count of bytes.
type ByteSize int64

const (
	Byte ByteSize = 1
	KB   ByteSize = 1024 * Byte
	MB   ByteSize = 1024 * KB
	GB   ByteSize = 1024 * MB
	TB   ByteSize = 1024 * GB
	PB   ByteSize = 1024 * TB

	MaxByteSize ByteSize = math.MaxInt64
)

// NewByteSize rejects negative counts.
func NewByteSize(n int64) (ByteSize, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeSize, n)
	}
	return ByteSize(n), nil
}

// ClampBytes coerces a raw counter reading into a ByteSize.
// NaN and negative values become 0, values past the int64 range saturate.
func ClampBytes(v float64) ByteSize {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxInt64:
		return MaxByteSize
	default:
		return ByteSize(v)
	}
}

// BytesFromUint64 saturates at MaxByteSize.
func BytesFromUint64(n uint64) ByteSize {
	if n > math.MaxInt64 {
		return MaxByteSize
	}
	return ByteSize(n)
}

func (b ByteSize) Bytes() int64 {
	return int64(b)
}

func (b ByteSize) KB() float64 {
	return float64(b) / float64(KB)
}

func (b ByteSize) MB() float64 {
	return float64(b) / float64(MB)
}

func (b ByteSize) GB() float64 {
	return float64(b) / float64(GB)
}

// Add returns b+other or ErrOverflow. Negative operands yield ErrNegativeSize.
func (b ByteSize) Add(other ByteSize) (ByteSize, error) {
	if b < 0 || other < 0 {
		return 0, fmt.Errorf("%w: %d + %d", ErrNegativeSize, b, other)
	}
	if other > MaxByteSize-b {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, b, other)
	}
	return b + other, nil
}

// SaturatingAdd is Add pinned at MaxByteSize. Negative operands count as zero.
func (b ByteSize) SaturatingAdd(other ByteSize) ByteSize {
	sum, err := max(b, 0).Add(max(other, 0))
	if err != nil {
		return MaxByteSize
	}
	return sum
}

// Sub returns b-other or ErrUnderflow when the result would be negative.
// Negative operands yield ErrNegativeSize.
func (b ByteSize) Sub(other ByteSize) (ByteSize, error) {
	if b < 0 || other < 0 {
		return 0, fmt.Errorf("%w: %d - %d", ErrNegativeSize, b, other)
	}
	if other > b {
		return 0, fmt.Errorf("%w: %d - %d", ErrUnderflow, b, other)
	}
	return b - other, nil
}

func (b ByteSize) Cmp(other ByteSize) int {
	switch {
	case b < other:
		return -1
	case b > other:
		return 1
	default:
		return 0
	}
}

// Ratio returns b/other, or 0 when other is zero.
func (b ByteSize) Ratio(other ByteSize) float64 {
	if other == 0 {
		return 0
	}
	return float64(b) / float64(other)
}

// String returns a human-readable representation of the size
func (b ByteSize) String() string {
	if b <= 0 {
		return "0B"
	}

	formatValue := func(val float64, unit string) string {
		if val == float64(int64(val)) {
			return fmt.Sprintf("%.0f%s", val, unit)
		}
		return fmt.Sprintf("%.2f%s", val, unit)
	}

	switch {
	case b >= PB:
		return formatValue(float64(b)/float64(PB), "P")
	case b >= TB:
		return formatValue(float64(b)/float64(TB), "T")
	case b >= GB:
		return formatValue(float64(b)/float64(GB), "G")
	case b >= MB:
		return formatValue(float64(b)/float64(MB), "M")
	case b >= KB:
		return formatValue(float64(b)/float64(KB), "K")
	default:
		return fmt.Sprintf("%dB", b)
	}
}

// ParseByteSize parses a size string like "9M", "2G", "1024K"
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return 0, fmt.Errorf("empty byte size string")
	}

	multiplier := Byte
	valueStr := s[:len(s)-1]

	switch strings.ToUpper(s[len(s)-1:]) {
	case "P":
		multiplier = PB
	case "T":
		multiplier = TB
	case "G":
		multiplier = GB
	case "M":
		multiplier = MB
	case "K":
		multiplier = KB
	case "B":
	default:
		valueStr = s
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size: %s", s)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: %s", ErrNegativeSize, s)
	}

	return ClampBytes(value * float64(multiplier)), nil
}

// MarshalJSON writes the size as a plain byte count.
func (b ByteSize) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(b), 10)), nil
}

// UnmarshalJSON accepts a byte count or a quoted human string.
func (b *ByteSize) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	size, err := ParseByteSize(str)
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// MarshalYAML writes the human-readable form.
func (b ByteSize) MarshalYAML() (any, error) {
	return b.String(), nil
}
