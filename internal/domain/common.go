package domain

import "time"

const (
	// DefaultPageSize кол-во записей на странице по умолчанию
	DefaultPageSize = 50
	// MaxPageSize максимальное кол-во записей на странице
	MaxPageSize = 1000
)

// Day — длительность суток, используется для подсчёта просрочек и сроков.
const Day = 24 * time.Hour

// NormalizePageSize нормализует размер страницы
func NormalizePageSize(size int32) int32 {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Pager — простая offset-пагинация для списков.
type Pager struct {
	page, perPage int32
}

func NewPager(page int32, perPage int32) *Pager {
	return &Pager{page: page, perPage: perPage}
}

// Limit вернет SQL LIMIT
func (p *Pager) Limit() int64 {
	if p == nil || p.perPage == 0 {
		return DefaultPageSize
	}

	return min(MaxPageSize, int64(p.perPage))
}

// Offset вернет для SQL OFFSET
func (p *Pager) Offset() int64 {
	if p == nil || p.page <= 1 {
		return 0
	}
	return int64((p.page - 1) * p.perPage)
}

// WholeDaysBetween возвращает число целых суток от from до to (с округлением вниз).
// Отрицательное значение означает, что to раньше from.
func WholeDaysBetween(from, to time.Time) int {
	d := to.Sub(from)
	days := int(d / Day)
	if d < 0 && d%Day != 0 {
		days--
	}
	return days
}

// ContactInfo — контактные данные клиента (jsonb contact_info).
type ContactInfo struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}
