package consultas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fecha(anio int, mes time.Month, dia int) time.Time {
	return time.Date(anio, mes, dia, 0, 0, 0, 0, time.UTC)
}

func TestVentanaHistorialConUltimaConsulta(t *testing.T) {
	ultima := fecha(2024, time.June, 15)
	ahora := fecha(2025, time.January, 10)

	v := VentanaHistorial(nil, nil, &ultima, ahora)

	assert.Equal(t, fecha(2023, time.December, 15), v.Desde)
	assert.Equal(t, fecha(2024, time.June, 15), v.Hasta)
}

func TestVentanaHistorialSinConsultas(t *testing.T) {
	ahora := fecha(2025, time.January, 10)

	v := VentanaHistorial(nil, nil, nil, ahora)

	assert.Equal(t, fecha(2024, time.July, 10), v.Desde)
	assert.Equal(t, fecha(2025, time.January, 10), v.Hasta)
}

func TestVentanaHistorialRangoExplicito(t *testing.T) {
	desde := fecha(2024, time.January, 1)
	hasta := fecha(2024, time.March, 1)
	ultima := fecha(2024, time.June, 15)

	v := VentanaHistorial(&desde, &hasta, &ultima, fecha(2025, time.January, 10))

	assert.Equal(t, desde, v.Desde)
	assert.Equal(t, hasta, v.Hasta)
}

func TestVentanaHistorialRangoInvertidoSeRespeta(t *testing.T) {
	// Un rango con desde > hasta se usa tal cual; la consulta de historial
	// simplemente no va a devolver filas.
	desde := fecha(2024, time.June, 1)
	hasta := fecha(2024, time.January, 1)

	v := VentanaHistorial(&desde, &hasta, nil, fecha(2025, time.January, 10))

	assert.Equal(t, desde, v.Desde)
	assert.Equal(t, hasta, v.Hasta)
}

func TestVentanaHistorialRangoIncompleto(t *testing.T) {
	// Con un solo extremo cargado vale la resolución por defecto,
	// igual que si no hubieran mandado nada.
	desde := fecha(2024, time.January, 1)
	ultima := fecha(2024, time.June, 15)

	v := VentanaHistorial(&desde, nil, &ultima, fecha(2025, time.January, 10))

	assert.Equal(t, fecha(2023, time.December, 15), v.Desde)
	assert.Equal(t, fecha(2024, time.June, 15), v.Hasta)
}

func TestVentanaHistorialResteCalendario(t *testing.T) {
	// La resta es de meses calendario: el 31 de diciembre menos seis meses
	// cae donde lo deje la aritmética de fechas de la plataforma (julio 1,
	// porque junio no tiene día 31), no en una cuenta fija de días.
	ultima := fecha(2024, time.December, 31)

	v := VentanaHistorial(nil, nil, &ultima, fecha(2025, time.January, 10))

	assert.Equal(t, fecha(2024, time.July, 1), v.Desde)
	assert.Equal(t, ultima, v.Hasta)
}
