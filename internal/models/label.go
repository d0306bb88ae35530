package models

import "time"

// Label é uma anotação local do quadro. Não existe no backend:
// vive só no store local e é resolvida por nome na renderização.
type Label struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji"`
	Color     string    `json:"color"`
	TextColor string    `json:"textColor"`
	Category  string    `json:"category"`
	Priority  int       `json:"priority"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
