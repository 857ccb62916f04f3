package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncastro/clinica-backend/consultas"
)

// servicioStub implementa ServicioConsultas con funciones reemplazables
type servicioStub struct {
	crear      func(ctx context.Context, pacienteID int, b consultas.Borrador) (*consultas.Consulta, error)
	actualizar func(ctx context.Context, id int, b consultas.Borrador) (*consultas.Consulta, error)
	porID      func(ctx context.Context, id int) (*consultas.Consulta, error)
	historial  func(ctx context.Context, pacienteID int, desde, hasta *time.Time) ([]consultas.Consulta, consultas.Ventana, error)
	eliminar   func(ctx context.Context, id int) error
}

func (s *servicioStub) Crear(ctx context.Context, pacienteID int, b consultas.Borrador) (*consultas.Consulta, error) {
	return s.crear(ctx, pacienteID, b)
}

func (s *servicioStub) Actualizar(ctx context.Context, id int, b consultas.Borrador) (*consultas.Consulta, error) {
	return s.actualizar(ctx, id, b)
}

func (s *servicioStub) PorID(ctx context.Context, id int) (*consultas.Consulta, error) {
	return s.porID(ctx, id)
}

func (s *servicioStub) Historial(ctx context.Context, pacienteID int, desde, hasta *time.Time) ([]consultas.Consulta, consultas.Ventana, error) {
	return s.historial(ctx, pacienteID, desde, hasta)
}

func (s *servicioStub) Eliminar(ctx context.Context, id int) error {
	return s.eliminar(ctx, id)
}

func appConsultas(t *testing.T, stub *servicioStub) *fiber.App {
	t.Helper()
	InitConsultas(stub)

	app := fiber.New()
	app.Post("/pacientes/:paciente_id/consultas", CrearConsulta)
	app.Get("/pacientes/:paciente_id/consultas", ObtenerHistorialPaciente)
	app.Get("/consultas/:id", ObtenerConsultaPorID)
	app.Put("/consultas/:id", ActualizarConsulta)
	app.Delete("/consultas/:id", EliminarConsulta)
	return app
}

func decodeBody(t *testing.T, r io.Reader) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func TestCrearConsultaParticular(t *testing.T) {
	var recibido consultas.Borrador
	stub := &servicioStub{
		crear: func(ctx context.Context, pacienteID int, b consultas.Borrador) (*consultas.Consulta, error) {
			recibido = b
			assert.Equal(t, 3, pacienteID)
			return &consultas.Consulta{
				ID:         10,
				IDPaciente: pacienteID,
				Fecha:      time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC),
				Normalizada: consultas.Normalizada{
					Clasificacion: consultas.Particular,
				},
			}, nil
		},
	}
	app := appConsultas(t, stub)

	payload := `{"motivoConsulta":"Dolor lumbar","tipoConsulta":"particular","montoConsulta":15000}`
	req := httptest.NewRequest("POST", "/pacientes/3/consultas", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	assert.Equal(t, "Dolor lumbar", recibido.Motivo)
	assert.Equal(t, consultas.TipoParticular, recibido.Tipo)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, float64(10), body["id_consulta"])
	assert.Equal(t, string(consultas.Particular), body["clasificacion"])
}

func TestCrearConsultaPacienteIDInvalido(t *testing.T) {
	app := appConsultas(t, &servicioStub{})

	req := httptest.NewRequest("POST", "/pacientes/abc/consultas", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestCrearConsultaErrorValidacion(t *testing.T) {
	stub := &servicioStub{
		crear: func(ctx context.Context, pacienteID int, b consultas.Borrador) (*consultas.Consulta, error) {
			return nil, &consultas.ErrorValidacion{Campo: "motivoConsulta", Mensaje: "El motivo de consulta es requerido"}
		},
	}
	app := appConsultas(t, stub)

	req := httptest.NewRequest("POST", "/pacientes/3/consultas", strings.NewReader(`{"tipoConsulta":"particular"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "El motivo de consulta es requerido", body["error"])
}

func TestCrearConsultaPacienteNoEncontrado(t *testing.T) {
	stub := &servicioStub{
		crear: func(ctx context.Context, pacienteID int, b consultas.Borrador) (*consultas.Consulta, error) {
			return nil, consultas.ErrPacienteNoEncontrado
		},
	}
	app := appConsultas(t, stub)

	req := httptest.NewRequest("POST", "/pacientes/99/consultas", strings.NewReader(`{"motivoConsulta":"x","tipoConsulta":"particular","montoConsulta":1}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestActualizarConsultaNoEncontrada(t *testing.T) {
	stub := &servicioStub{
		actualizar: func(ctx context.Context, id int, b consultas.Borrador) (*consultas.Consulta, error) {
			return nil, consultas.ErrConsultaNoEncontrada
		},
	}
	app := appConsultas(t, stub)

	req := httptest.NewRequest("PUT", "/consultas/44", strings.NewReader(`{"motivoConsulta":"x","tipoConsulta":"particular","montoConsulta":1}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestObtenerHistorialConRango(t *testing.T) {
	var gotDesde, gotHasta *time.Time
	stub := &servicioStub{
		historial: func(ctx context.Context, pacienteID int, desde, hasta *time.Time) ([]consultas.Consulta, consultas.Ventana, error) {
			gotDesde, gotHasta = desde, hasta
			return nil, consultas.Ventana{Desde: *desde, Hasta: *hasta}, nil
		},
	}
	app := appConsultas(t, stub)

	req := httptest.NewRequest("GET", "/pacientes/3/consultas?desde=2024-01-01&hasta=2024-03-01", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	require.NotNil(t, gotDesde)
	require.NotNil(t, gotHasta)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *gotDesde)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *gotHasta)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, float64(0), body["total"])
	assert.Contains(t, body, "ventana")
}

func TestObtenerHistorialFechaInvalida(t *testing.T) {
	app := appConsultas(t, &servicioStub{})

	req := httptest.NewRequest("GET", "/pacientes/3/consultas?desde=01-01-2024", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestObtenerHistorialSinRango(t *testing.T) {
	stub := &servicioStub{
		historial: func(ctx context.Context, pacienteID int, desde, hasta *time.Time) ([]consultas.Consulta, consultas.Ventana, error) {
			assert.Nil(t, desde)
			assert.Nil(t, hasta)
			v := consultas.Ventana{
				Desde: time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
				Hasta: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			}
			return []consultas.Consulta{{ID: 1, IDPaciente: pacienteID}}, v, nil
		},
	}
	app := appConsultas(t, stub)

	req := httptest.NewRequest("GET", "/pacientes/3/consultas", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, float64(1), body["total"])
}

func TestEliminarConsulta(t *testing.T) {
	eliminado := 0
	stub := &servicioStub{
		eliminar: func(ctx context.Context, id int) error {
			eliminado = id
			return nil
		},
	}
	app := appConsultas(t, stub)

	req := httptest.NewRequest("DELETE", "/consultas/7", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 7, eliminado)
}

func TestObtenerConsultaPorIDErrorInterno(t *testing.T) {
	stub := &servicioStub{
		porID: func(ctx context.Context, id int) (*consultas.Consulta, error) {
			return nil, assert.AnError
		},
	}
	app := appConsultas(t, stub)

	req := httptest.NewRequest("GET", "/consultas/5", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "Error interno del servidor", body["error"])
}
