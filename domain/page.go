package domain

// Pageable requests one page of a result. A zero Size means unpaged.
type Pageable struct {
	Page int
	Size int
	Sort Sort
}

// Unpaged requests the whole result.
var Unpaged = Pageable{}

// PageRequest requests page number page (zero based) of the given size.
func PageRequest(page, size int, sort ...Order) Pageable {
	return Pageable{Page: page, Size: size, Sort: Sort(sort)}
}

func (p Pageable) IsPaged() bool { return p.Size > 0 }

// Offset is the number of rows to skip.
func (p Pageable) Offset() int64 { return int64(p.Page) * int64(p.Size) }

// Next is the request for the following page.
func (p Pageable) Next() Pageable {
	p.Page++
	return p
}

// Page is one page of results together with the total element count.
type Page[T any] struct {
	Content  []T
	Pageable Pageable
	Total    int64
}

// TotalPages is the number of pages needed for Total elements.
func (p Page[T]) TotalPages() int {
	if !p.Pageable.IsPaged() {
		return 1
	}
	size := int64(p.Pageable.Size)
	return int((p.Total + size - 1) / size)
}

func (p Page[T]) HasNext() bool {
	return p.Pageable.IsPaged() && p.Pageable.Page+1 < p.TotalPages()
}
