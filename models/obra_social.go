package models

import (
	"time"
)

// ObraSocial representa la tabla ObraSocial en la base de datos.
// PermiteCoseguro indica si la obra social admite un coseguro secundario;
// cuando es false nunca se pregunta por coseguro al cargar una consulta.
type ObraSocial struct {
	ID              int       `json:"id_obra_social" db:"id_obra_social"`
	Nombre          string    `json:"nombre" db:"nombre" validate:"required,max=100"`
	Activa          bool      `json:"activa" db:"activa"`
	PermiteCoseguro bool      `json:"permite_coseguro" db:"permite_coseguro"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
