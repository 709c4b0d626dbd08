package domain

import "time"

// Category группирует товары каталога. Уникальность имени не обеспечивается.
type Category struct {
	ID        int64
	Name      string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CategoryDraft — изменяемые клиентом поля категории.
type CategoryDraft struct {
	Name string
}

// Apply переносит поля черновика в категорию.
func (d CategoryDraft) Apply(c Category) Category {
	c.Name = d.Name
	return c
}
