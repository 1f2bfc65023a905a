package memsize

import "fmt"

// Defines the number of bytes in each unit.
const (
	B uint64 = 1 << (10 * iota)
	KB
	MB
	GB
	TB
)

// Defines the number of bits in each unit.
const (
	bit uint64 = 1 << (10 * iota)
	Kbit
	Mbit
	Gbit
)

// BitFormat converts b into a human readable string of bits.
func BitFormat(b uint64) string {
	switch {
	case b >= Gbit:
		return fmt.Sprintf("%.2fGbit", float64(b)/float64(Gbit))
	case b >= Mbit:
		return fmt.Sprintf("%.2fMbit", float64(b)/float64(Mbit))
	case b >= Kbit:
		return fmt.Sprintf("%.2fKbit", float64(b)/float64(Kbit))
	default:
		return fmt.Sprintf("%dbit", b)
	}
}

// Format converts b into a human readable string.
func Format(b uint64) string {
	switch {
	case b == 0:
		return "0B"
	case b >= TB:
		return fmt.Sprintf("%.2fTB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2fGB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2fMB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2fKB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%.2fB", float64(b))
	}
}

