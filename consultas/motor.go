package consultas

import (
	"math"
	"strings"

	"github.com/ncastro/clinica-backend/models"
)

// Normalizar valida un borrador contra su clasificación de facturación y
// devuelve el registro normalizado. Es una función pura: se recalcula todo
// desde cero en cada llamada, sin mirar el registro guardado, así la misma
// regla sirve igual para el alta y para la edición.
//
// La clasificación sale de tres datos: tipoConsulta, permite_coseguro de la
// obra social (obraSocial, ya buscada por el servicio) y tieneCoseguro.
// Los campos de ramas no tomadas se fuerzan a nil aunque vengan cargados,
// para que nunca quede, por ejemplo, un idCoseguro viejo en una consulta
// que pasó a particular.
//
// Las reglas se chequean en orden fijo (motivo, tipo, campos de la rama,
// sub-rama de coseguro) y se devuelve solo el primer error.
func Normalizar(b Borrador, obraSocial *models.ObraSocial) (*Normalizada, error) {
	motivo := strings.TrimSpace(b.Motivo)
	if motivo == "" {
		return nil, errCampo("motivoConsulta", "el motivo de la consulta es obligatorio")
	}

	n := &Normalizada{
		Motivo:      motivo,
		Diagnostico: textoOpcional(b.Diagnostico),
		Tratamiento: textoOpcional(b.Tratamiento),
		Estudios:    textoOpcional(b.Estudios),
		Tipo:        b.Tipo,
	}

	switch b.Tipo {
	case TipoParticular:
		monto, err := montoObligatorio(b.Monto)
		if err != nil {
			return nil, err
		}
		n.Clasificacion = Particular
		n.Monto = monto
		return n, nil

	case TipoObraSocial:
		if b.IDObraSocial == nil || obraSocial == nil {
			return nil, errCampo("idObraSocial", "la obra social es obligatoria para consultas por obra social")
		}
		if b.NroAfiliado == nil || strings.TrimSpace(*b.NroAfiliado) == "" {
			return nil, errCampo("nroAfiliado", "el número de afiliado es obligatorio")
		}
		nro := strings.TrimSpace(*b.NroAfiliado)
		n.IDObraSocial = b.IDObraSocial
		n.NroAfiliado = &nro

		if !obraSocial.PermiteCoseguro {
			// La pregunta de coseguro no aplica: se descarta cualquier
			// respuesta que haya venido y el monto queda opcional.
			n.Clasificacion = ObraSocialSinOpcionCoseguro
			monto, err := montoOpcional(b.Monto)
			if err != nil {
				return nil, err
			}
			n.Monto = monto
			return n, nil
		}

		if b.TieneCoseguro == nil {
			return nil, errCampo("tieneCoseguro", "debe indicar si la consulta usa coseguro")
		}

		if *b.TieneCoseguro {
			if b.IDCoseguro == nil {
				return nil, errCampo("idCoseguro", "el coseguro es obligatorio cuando la consulta usa coseguro")
			}
			n.Clasificacion = ObraSocialConCoseguro
			si := true
			n.TieneCoseguro = &si
			n.IDCoseguro = b.IDCoseguro
			return n, nil
		}

		monto, err := montoObligatorio(b.Monto)
		if err != nil {
			return nil, err
		}
		n.Clasificacion = ObraSocialSinCoseguro
		no := false
		n.TieneCoseguro = &no
		n.Monto = monto
		return n, nil

	default:
		return nil, errCampo("tipoConsulta", "el tipo de consulta debe ser particular u obra-social")
	}
}

func montoObligatorio(monto *float64) (*float64, error) {
	if monto == nil {
		return nil, errCampo("montoConsulta", "el monto de la consulta es obligatorio")
	}
	if math.IsNaN(*monto) || math.IsInf(*monto, 0) {
		return nil, errCampo("montoConsulta", "el monto de la consulta debe ser un número válido")
	}
	m := *monto
	return &m, nil
}

func montoOpcional(monto *float64) (*float64, error) {
	if monto == nil {
		return nil, nil
	}
	if math.IsNaN(*monto) || math.IsInf(*monto, 0) {
		return nil, errCampo("montoConsulta", "el monto de la consulta debe ser un número válido")
	}
	m := *monto
	return &m, nil
}

func textoOpcional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
