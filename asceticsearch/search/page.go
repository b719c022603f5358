package search

// Page is one slice of a search result together with the total match count.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
}

// TotalPages is 1 for an unpaged non-empty result.
func (p Page[T]) TotalPages() int {
	if p.Size == 0 {
		if p.TotalElements > 0 {
			return 1
		}
		return 0
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages()
}

// MapPage converts the content of p keeping its paging metadata.
func MapPage[T, U any](p Page[T], f func(T) (U, error)) (Page[U], error) {
	content := make([]U, 0, len(p.Content))
	for _, item := range p.Content {
		u, err := f(item)
		if err != nil {
			return Page[U]{}, err
		}
		content = append(content, u)
	}
	return Page[U]{
		Content:       content,
		Number:        p.Number,
		Size:          p.Size,
		TotalElements: p.TotalElements,
	}, nil
}
