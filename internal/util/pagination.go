package util

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Normalize clamps page to >= 1 and size to (0, MaxPageSize].
func Normalize(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// Window returns the [from, to) bounds of page within n items.
func Window(n, page, size int) (from, to int) {
	page, size = Normalize(page, size)
	if n <= 0 {
		return 0, 0
	}
	// past the last page; also keeps (page-1)*size from overflowing
	if page-1 > n/size {
		return n, n
	}
	from = (page - 1) * size
	if from > n {
		from = n
	}
	to = from + size
	if to > n {
		to = n
	}
	return from, to
}
