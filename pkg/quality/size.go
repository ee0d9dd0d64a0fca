package quality

// BytesPerMiB is the unit used for every size comparison.
const BytesPerMiB = 1024 * 1024

// SizeMiB converts a byte length to mebibytes.
func SizeMiB(n int) float64 {
	return float64(n) / BytesPerMiB
}
