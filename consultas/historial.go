package consultas

import (
	"time"
)

// Ventana es el rango [Desde, Hasta] con el que se consulta el historial
type Ventana struct {
	Desde time.Time `json:"desde"`
	Hasta time.Time `json:"hasta"`
}

// VentanaHistorial resuelve el rango de fechas de un pedido de historial.
//
// Si el cliente mandó ambos extremos se usan tal cual, sin chequear que
// desde <= hasta (un rango invertido simplemente devuelve cero consultas).
// Si falta alguno, el ancla es la última consulta del paciente, o ahora si
// no tiene ninguna, y la ventana son los seis meses calendario anteriores
// al ancla (AddDate, no una cuenta fija de días).
func VentanaHistorial(desde, hasta *time.Time, ultima *time.Time, ahora time.Time) Ventana {
	if desde != nil && hasta != nil {
		return Ventana{Desde: *desde, Hasta: *hasta}
	}

	ancla := ahora
	if ultima != nil {
		ancla = *ultima
	}
	return Ventana{Desde: ancla.AddDate(0, -6, 0), Hasta: ancla}
}
