package domain

import "time"

// Partner son los datos de la pareja que el usuario carga para simular descendencia.
type Partner struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	HeightCM   float64   `json:"height_cm"`
	IQ         float64   `json:"iq"`
	EyeColor   string    `json:"eye_color,omitempty"`
	Population string    `json:"population,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
