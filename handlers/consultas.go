package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ncastro/clinica-backend/consultas"
	"github.com/ncastro/clinica-backend/middleware"
	"github.com/ncastro/clinica-backend/models"
)

// ServicioConsultas es lo que los handlers necesitan del servicio de
// consultas; en los tests se reemplaza por un stub.
type ServicioConsultas interface {
	Crear(ctx context.Context, pacienteID int, b consultas.Borrador) (*consultas.Consulta, error)
	Actualizar(ctx context.Context, id int, b consultas.Borrador) (*consultas.Consulta, error)
	PorID(ctx context.Context, id int) (*consultas.Consulta, error)
	Historial(ctx context.Context, pacienteID int, desde, hasta *time.Time) ([]consultas.Consulta, consultas.Ventana, error)
	Eliminar(ctx context.Context, id int) error
}

var servicioConsultas ServicioConsultas

// InitConsultas inyecta el servicio de consultas que usan los handlers
func InitConsultas(s ServicioConsultas) {
	servicioConsultas = s
}

// responderErrorConsulta traduce los errores del servicio al contrato HTTP:
// 400 para validación, 404 para referencias inexistentes, 500 para el resto.
func responderErrorConsulta(c *fiber.Ctx, err error) error {
	var ev *consultas.ErrorValidacion
	if errors.As(err, &ev) {
		return c.Status(400).JSON(fiber.Map{"error": ev.Mensaje})
	}

	if errors.Is(err, consultas.ErrPacienteNoEncontrado) ||
		errors.Is(err, consultas.ErrObraSocialNoEncontrada) ||
		errors.Is(err, consultas.ErrCoseguroNoEncontrado) ||
		errors.Is(err, consultas.ErrConsultaNoEncontrada) {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(500).JSON(fiber.Map{"error": "Error interno del servidor"})
}

// CrearConsulta crea una nueva consulta médica para un paciente
func CrearConsulta(c *fiber.Ctx) error {
	pacienteID, err := strconv.Atoi(c.Params("paciente_id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID de paciente inválido"})
	}

	var borrador consultas.Borrador
	if err := c.BodyParser(&borrador); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Datos inválidos"})
	}

	consulta, err := servicioConsultas.Crear(c.Context(), pacienteID, borrador)
	if err != nil {
		return responderErrorConsulta(c, err)
	}

	registrarEventoConsulta(c, "Consulta creada exitosamente", consulta, "consulta_created")

	return c.Status(201).JSON(consulta)
}

// ActualizarConsulta actualiza una consulta existente. La edición rehace la
// consulta completa desde el borrador nuevo, nunca parchea campos sueltos.
func ActualizarConsulta(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID inválido"})
	}

	var borrador consultas.Borrador
	if err := c.BodyParser(&borrador); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Datos inválidos"})
	}

	consulta, err := servicioConsultas.Actualizar(c.Context(), id, borrador)
	if err != nil {
		return responderErrorConsulta(c, err)
	}

	registrarEventoConsulta(c, "Consulta actualizada", consulta, "consulta_updated")

	return c.JSON(consulta)
}

// ObtenerConsultaPorID obtiene una consulta específica por ID
func ObtenerConsultaPorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID inválido"})
	}

	consulta, err := servicioConsultas.PorID(c.Context(), id)
	if err != nil {
		return responderErrorConsulta(c, err)
	}

	return c.JSON(consulta)
}

// ObtenerHistorialPaciente lista las consultas de un paciente. Si el rango
// desde/hasta no viene completo, la ventana se resuelve con la última
// consulta del paciente (o los últimos seis meses si no tiene ninguna).
func ObtenerHistorialPaciente(c *fiber.Ctx) error {
	pacienteID, err := strconv.Atoi(c.Params("paciente_id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID de paciente inválido"})
	}

	desde, err := parseFecha(c.Query("desde"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "El parámetro desde debe ser una fecha AAAA-MM-DD"})
	}
	hasta, err := parseFecha(c.Query("hasta"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "El parámetro hasta debe ser una fecha AAAA-MM-DD"})
	}

	lista, ventana, err := servicioConsultas.Historial(c.Context(), pacienteID, desde, hasta)
	if err != nil {
		return responderErrorConsulta(c, err)
	}

	return c.JSON(fiber.Map{
		"consultas": lista,
		"total":     len(lista),
		"ventana":   ventana,
	})
}

// EliminarConsulta elimina una consulta permanentemente
func EliminarConsulta(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID inválido"})
	}

	if err := servicioConsultas.Eliminar(c.Context(), id); err != nil {
		return responderErrorConsulta(c, err)
	}

	userEmail, _ := c.Locals("user_email").(string)
	userRol, _ := c.Locals("user_rol").(string)
	middleware.LogCustomEvent(models.LogLevelWarning, "Consulta eliminada", userEmail, userRol,
		map[string]interface{}{
			"consulta_id": id,
			"action":      "consulta_deleted",
		})

	return c.JSON(fiber.Map{"mensaje": "Consulta eliminada exitosamente"})
}

func parseFecha(valor string) (*time.Time, error) {
	if valor == "" {
		return nil, nil
	}
	f, err := time.Parse("2006-01-02", valor)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func registrarEventoConsulta(c *fiber.Ctx, mensaje string, consulta *consultas.Consulta, action string) {
	userEmail, _ := c.Locals("user_email").(string)
	userRol, _ := c.Locals("user_rol").(string)

	middleware.LogCustomEvent(models.LogLevelSuccess, mensaje, userEmail, userRol,
		map[string]interface{}{
			"consulta_id":   consulta.ID,
			"paciente_id":   consulta.IDPaciente,
			"clasificacion": consulta.Clasificacion,
			"action":        action,
		})
}
