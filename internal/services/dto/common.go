package dto

// ListQuery - page/limit из query-строки
type ListQuery struct {
	Page   int    `form:"page" validate:"omitempty,gte=0"`
	Limit  int    `form:"limit" validate:"omitempty,gte=0"`
	Search string `form:"search" validate:"max=100"`
}

// Page - страница результатов. pages = ceil(total/limit).
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

func NewPage[T any](items []T, total int64, page, limit int) *Page[T] {
	if items == nil {
		items = make([]T, 0)
	}
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Page[T]{Items: items, Total: total, Page: page, Limit: limit, Pages: pages}
}

// MapPage переводит элементы страницы в другой тип, сохраняя счетчики
func MapPage[T, R any](p *Page[T], fn func(T) R) *Page[R] {
	out := make([]R, 0, len(p.Items))
	for _, item := range p.Items {
		out = append(out, fn(item))
	}
	return &Page[R]{Items: out, Total: p.Total, Page: p.Page, Limit: p.Limit, Pages: p.Pages}
}
