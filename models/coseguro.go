package models

import (
	"time"
)

// Coseguro representa la tabla Coseguro en la base de datos
type Coseguro struct {
	ID        int       `json:"id_coseguro" db:"id_coseguro"`
	Nombre    string    `json:"nombre" db:"nombre" validate:"required,max=100"`
	Activo    bool      `json:"activo" db:"activo"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
