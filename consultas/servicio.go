package consultas

import (
	"context"
	"time"

	"github.com/ncastro/clinica-backend/models"
)

// Servicio orquesta el alta, la edición y el historial de consultas.
//
// Un pase completo de escritura es siempre el mismo, para crear y para
// editar: existencia del paciente, búsqueda de la obra social si el borrador
// la referencia, normalización del borrador con el flag permite_coseguro de
// esa obra social, existencia del coseguro si la clasificación resultante lo
// exige, y recién ahí la escritura. Los chequeos cortan en el primero que
// falla. No hay transacción entre los chequeos y la escritura; las claves
// foráneas de la base son el respaldo final si una referencia desaparece en
// el medio.
type Servicio struct {
	pacientes     PacienteRepository
	obrasSociales ObraSocialRepository
	coseguros     CoseguroRepository
	consultas     ConsultaRepository
	ahora         func() time.Time
}

// NewServicio arma el servicio de consultas sobre los repositorios dados
func NewServicio(pacientes PacienteRepository, obrasSociales ObraSocialRepository, coseguros CoseguroRepository, consultas ConsultaRepository) *Servicio {
	return &Servicio{
		pacientes:     pacientes,
		obrasSociales: obrasSociales,
		coseguros:     coseguros,
		consultas:     consultas,
		ahora:         time.Now,
	}
}

// Crear valida y persiste una consulta nueva para el paciente
func (s *Servicio) Crear(ctx context.Context, pacienteID int, b Borrador) (*Consulta, error) {
	n, obraSocial, coseguro, err := s.validar(ctx, pacienteID, b)
	if err != nil {
		return nil, err
	}

	consulta, err := s.consultas.Crear(ctx, pacienteID, n)
	if err != nil {
		return nil, err
	}
	consulta.ObraSocial = resumenObraSocial(obraSocial)
	consulta.Coseguro = resumenCoseguro(coseguro)
	return consulta, nil
}

// Actualizar rehace la consulta completa desde el borrador nuevo. Nunca
// parchea campos sueltos: si la edición cambia la clasificación, los campos
// de la rama anterior quedan en NULL en la misma escritura.
func (s *Servicio) Actualizar(ctx context.Context, id int, b Borrador) (*Consulta, error) {
	existente, err := s.consultas.PorID(ctx, id)
	if err != nil {
		return nil, err
	}

	n, obraSocial, coseguro, err := s.validar(ctx, existente.IDPaciente, b)
	if err != nil {
		return nil, err
	}

	if err := s.consultas.Actualizar(ctx, id, n); err != nil {
		return nil, err
	}

	actualizada := &Consulta{
		ID:          id,
		IDPaciente:  existente.IDPaciente,
		Fecha:       existente.Fecha,
		Normalizada: *n,
		ObraSocial:  resumenObraSocial(obraSocial),
		Coseguro:    resumenCoseguro(coseguro),
	}
	return actualizada, nil
}

// PorID devuelve una consulta puntual
func (s *Servicio) PorID(ctx context.Context, id int) (*Consulta, error) {
	return s.consultas.PorID(ctx, id)
}

// Historial devuelve las consultas del paciente dentro de la ventana pedida.
// Si el cliente no mandó el rango completo, la ventana se resuelve con la
// última consulta del paciente (o ahora, si no tiene ninguna).
func (s *Servicio) Historial(ctx context.Context, pacienteID int, desde, hasta *time.Time) ([]Consulta, Ventana, error) {
	var ultima *time.Time
	if desde == nil || hasta == nil {
		u, err := s.pacientes.UltimaConsulta(ctx, pacienteID)
		if err != nil {
			return nil, Ventana{}, err
		}
		ultima = u
	}

	ventana := VentanaHistorial(desde, hasta, ultima, s.ahora())
	lista, err := s.consultas.PorPaciente(ctx, pacienteID, ventana)
	if err != nil {
		return nil, Ventana{}, err
	}
	return lista, ventana, nil
}

// Eliminar borra una consulta en forma permanente
func (s *Servicio) Eliminar(ctx context.Context, id int) error {
	return s.consultas.Eliminar(ctx, id)
}

// validar corre el pase chequeos + motor y devuelve el registro normalizado
// junto con las referencias resueltas para armar la respuesta.
func (s *Servicio) validar(ctx context.Context, pacienteID int, b Borrador) (*Normalizada, *models.ObraSocial, *models.Coseguro, error) {
	existe, err := s.pacientes.Existe(ctx, pacienteID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !existe {
		return nil, nil, nil, ErrPacienteNoEncontrado
	}

	var obraSocial *models.ObraSocial
	if b.Tipo == TipoObraSocial && b.IDObraSocial != nil {
		obraSocial, err = s.obrasSociales.Obtener(ctx, *b.IDObraSocial)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	n, err := Normalizar(b, obraSocial)
	if err != nil {
		return nil, nil, nil, err
	}

	var coseguro *models.Coseguro
	if n.IDCoseguro != nil {
		coseguro, err = s.coseguros.Obtener(ctx, *n.IDCoseguro)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	if n.IDObraSocial == nil {
		obraSocial = nil
	}
	return n, obraSocial, coseguro, nil
}
