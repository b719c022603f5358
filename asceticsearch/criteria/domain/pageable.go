package criteria

type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case Ascending, "asc", "":
		return Ascending, true
	case Descending, "desc":
		return Descending, true
	}
	return "", false
}

// SortOrder sorts by a dotted field path.
type SortOrder struct {
	Path      string
	Direction Direction
}

func Asc(path string) SortOrder {
	return SortOrder{Path: path, Direction: Ascending}
}

func Desc(path string) SortOrder {
	return SortOrder{Path: path, Direction: Descending}
}

// Sort is an ordered sequence of sort orders, most significant first.
type Sort []SortOrder

func SortBy(orders ...SortOrder) Sort {
	return Sort(orders)
}

// Pageable carries a zero-based page index, a page size and the sort.
// A zero size means unpaged.
type Pageable struct {
	Number int
	Size   int
	Sort   Sort
}

func PageRequest(number, size int, orders ...SortOrder) Pageable {
	return Pageable{
		Number: number,
		Size:   size,
		Sort:   SortBy(orders...),
	}
}

func Unpaged(orders ...SortOrder) Pageable {
	return Pageable{Sort: SortBy(orders...)}
}

func (p Pageable) IsPaged() bool {
	return p.Size > 0
}

// Offset returns the index of the first row of the page.
func (p Pageable) Offset() int {
	if !p.IsPaged() {
		return 0
	}
	return p.Number * p.Size
}
