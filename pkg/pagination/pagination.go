package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 12
	// MaxLimit caps how many products any browse query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers.
type Params struct {
	Limit  int
	Offset int
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizeOffset clamps negative offsets to zero.
func NormalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// Window slices [offset, offset+limit) out of a total of n elements,
// returning the clamped bounds.
func Window(n int, p Params) (start, end int) {
	start = NormalizeOffset(p.Offset)
	if start > n {
		start = n
	}
	end = start + NormalizeLimit(p.Limit)
	if end > n {
		end = n
	}
	return start, end
}
