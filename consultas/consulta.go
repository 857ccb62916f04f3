package consultas

import (
	"time"

	"github.com/ncastro/clinica-backend/models"
)

// TipoConsulta distingue la rama de facturación elegida al cargar la consulta
type TipoConsulta string

const (
	TipoParticular TipoConsulta = "particular"
	TipoObraSocial TipoConsulta = "obra-social"
)

// Clasificacion es la clasificación de facturación de una consulta. Cada
// consulta guardada pertenece a exactamente una clasificación, y el conjunto
// de campos no nulos del registro queda determinado por ella (ver Normalizar).
type Clasificacion string

const (
	// Particular: paga el paciente, monto obligatorio, sin obra social.
	Particular Clasificacion = "PARTICULAR"
	// ObraSocialSinOpcionCoseguro: la obra social no admite coseguro,
	// por lo que la pregunta de coseguro nunca se hace.
	ObraSocialSinOpcionCoseguro Clasificacion = "OBRA_SOCIAL_SIN_OPCION_COSEGURO"
	// ObraSocialConCoseguro: cubre el coseguro, sin monto.
	ObraSocialConCoseguro Clasificacion = "OBRA_SOCIAL_CON_COSEGURO"
	// ObraSocialSinCoseguro: la obra social admite coseguro pero el
	// paciente no lo usa; el monto vuelve a ser obligatorio.
	ObraSocialSinCoseguro Clasificacion = "OBRA_SOCIAL_SIN_COSEGURO"
)

// Borrador es la consulta tal como llega del cliente, sin validar.
// Los nombres de campo son los que consumen los formularios de alta y edición.
type Borrador struct {
	Motivo      string       `json:"motivoConsulta"`
	Diagnostico *string      `json:"diagnosticoConsulta"`
	Tratamiento *string      `json:"tratamientoConsulta"`
	Estudios    *string      `json:"estudiosComplementarios"`
	Tipo        TipoConsulta `json:"tipoConsulta"`

	IDObraSocial  *int     `json:"idObraSocial"`
	NroAfiliado   *string  `json:"nroAfiliado"`
	TieneCoseguro *bool    `json:"tieneCoseguro"`
	IDCoseguro    *int     `json:"idCoseguro"`
	Monto         *float64 `json:"montoConsulta"`
}

// Normalizada es la única forma que se persiste: los campos no nulos son
// exactamente los que exige su clasificación, tanto al crear como después de
// cada edición. Una edición nunca parchea el registro anterior; siempre se
// vuelve a derivar completa desde el borrador nuevo.
type Normalizada struct {
	Clasificacion Clasificacion `json:"clasificacion"`
	Motivo        string        `json:"motivoConsulta"`
	Diagnostico   *string       `json:"diagnosticoConsulta"`
	Tratamiento   *string       `json:"tratamientoConsulta"`
	Estudios      *string       `json:"estudiosComplementarios"`
	Tipo          TipoConsulta  `json:"tipoConsulta"`

	IDObraSocial  *int     `json:"idObraSocial"`
	NroAfiliado   *string  `json:"nroAfiliado"`
	TieneCoseguro *bool    `json:"tieneCoseguro"`
	IDCoseguro    *int     `json:"idCoseguro"`
	Monto         *float64 `json:"montoConsulta"`
}

// Borrador vuelve a expresar el registro normalizado como borrador.
// Normalizar(n.Borrador(), ...) devuelve un registro idéntico a n.
func (n *Normalizada) Borrador() Borrador {
	return Borrador{
		Motivo:        n.Motivo,
		Diagnostico:   n.Diagnostico,
		Tratamiento:   n.Tratamiento,
		Estudios:      n.Estudios,
		Tipo:          n.Tipo,
		IDObraSocial:  n.IDObraSocial,
		NroAfiliado:   n.NroAfiliado,
		TieneCoseguro: n.TieneCoseguro,
		IDCoseguro:    n.IDCoseguro,
		Monto:         n.Monto,
	}
}

// ResumenObraSocial acompaña la respuesta de una consulta con obra social
type ResumenObraSocial struct {
	ID     int    `json:"id_obra_social"`
	Nombre string `json:"nombre"`
}

// ResumenCoseguro acompaña la respuesta de una consulta con coseguro
type ResumenCoseguro struct {
	ID     int    `json:"id_coseguro"`
	Nombre string `json:"nombre"`
}

// Consulta es el registro completo, como se devuelve al cliente
type Consulta struct {
	ID         int       `json:"id_consulta"`
	IDPaciente int       `json:"id_paciente"`
	Fecha      time.Time `json:"fecha"`
	Normalizada
	ObraSocial *ResumenObraSocial `json:"obraSocial,omitempty"`
	Coseguro   *ResumenCoseguro   `json:"coseguro,omitempty"`
}

func resumenObraSocial(os *models.ObraSocial) *ResumenObraSocial {
	if os == nil {
		return nil
	}
	return &ResumenObraSocial{ID: os.ID, Nombre: os.Nombre}
}

func resumenCoseguro(cos *models.Coseguro) *ResumenCoseguro {
	if cos == nil {
		return nil
	}
	return &ResumenCoseguro{ID: cos.ID, Nombre: cos.Nombre}
}
