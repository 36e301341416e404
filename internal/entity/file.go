package entity

import "time"

// File описывает загруженный файл (баннер встречи или аватар пользователя).
// Сервис работает только со ссылками на файлы, содержимое не обрабатывается.
type File struct {
	ID        int64     `json:"id" db:"id"`
	Path      string    `json:"path" db:"path"`
	URL       string    `json:"url" db:"url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
