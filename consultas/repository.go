package consultas

import (
	"context"
	"time"

	"github.com/ncastro/clinica-backend/models"
)

// PacienteRepository resuelve la existencia del paciente y el ancla del
// historial (fecha de su última consulta, nil si no tiene ninguna).
type PacienteRepository interface {
	Existe(ctx context.Context, id int) (bool, error)
	UltimaConsulta(ctx context.Context, pacienteID int) (*time.Time, error)
}

// ObraSocialRepository busca la obra social referenciada por un borrador.
// Devuelve ErrObraSocialNoEncontrada si no existe.
type ObraSocialRepository interface {
	Obtener(ctx context.Context, id int) (*models.ObraSocial, error)
}

// CoseguroRepository busca el coseguro referenciado por un borrador.
// Devuelve ErrCoseguroNoEncontrado si no existe.
type CoseguroRepository interface {
	Obtener(ctx context.Context, id int) (*models.Coseguro, error)
}

// ConsultaRepository persiste registros ya normalizados. Actualizar escribe
// el juego completo de campos de la matriz, incluidos los NULL, para que los
// valores de una clasificación anterior no sobrevivan a la edición.
type ConsultaRepository interface {
	Crear(ctx context.Context, pacienteID int, n *Normalizada) (*Consulta, error)
	Actualizar(ctx context.Context, id int, n *Normalizada) error
	PorID(ctx context.Context, id int) (*Consulta, error)
	PorPaciente(ctx context.Context, pacienteID int, v Ventana) ([]Consulta, error)
	Eliminar(ctx context.Context, id int) error
}
