package models

import (
	"time"
)

// Paciente representa la tabla Paciente en la base de datos
type Paciente struct {
	ID              int       `json:"id_paciente" db:"id_paciente"`
	Nombre          string    `json:"nombre" db:"nombre" validate:"required,max=100"`
	Apellido        string    `json:"apellido" db:"apellido" validate:"required,max=100"`
	DNI             string    `json:"dni" db:"dni" validate:"required,max=20"`
	FechaNacimiento string    `json:"fecha_nacimiento" db:"fecha_nacimiento"`
	Telefono        string    `json:"telefono" db:"telefono"`
	Email           string    `json:"email" db:"email"`
	Direccion       string    `json:"direccion" db:"direccion"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
