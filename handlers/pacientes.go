package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ncastro/clinica-backend/database"
	"github.com/ncastro/clinica-backend/middleware"
	"github.com/ncastro/clinica-backend/models"
)

// CrearPaciente registra un nuevo paciente
func CrearPaciente(c *fiber.Ctx) error {
	var paciente models.Paciente
	if err := c.BodyParser(&paciente); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Datos inválidos"})
	}

	if paciente.Nombre == "" || paciente.Apellido == "" || paciente.DNI == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Nombre, apellido y DNI son requeridos"})
	}

	// Verificar que el DNI no esté repetido
	var existe bool
	err := database.GetDB().QueryRow(context.Background(),
		"SELECT EXISTS(SELECT 1 FROM Paciente WHERE dni = $1)", paciente.DNI).Scan(&existe)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error interno del servidor"})
	}
	if existe {
		return c.Status(409).JSON(fiber.Map{"error": "Ya existe un paciente con ese DNI"})
	}

	var nuevoID int
	err = database.GetDB().QueryRow(context.Background(),
		`INSERT INTO Paciente (nombre, apellido, dni, fecha_nacimiento, telefono, email, direccion)
		 VALUES ($1, $2, $3, NULLIF($4, '')::date, $5, $6, $7) RETURNING id_paciente`,
		paciente.Nombre, paciente.Apellido, paciente.DNI, paciente.FechaNacimiento,
		paciente.Telefono, paciente.Email, paciente.Direccion).Scan(&nuevoID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al crear el paciente"})
	}

	paciente.ID = nuevoID
	return c.Status(201).JSON(fiber.Map{
		"mensaje":  "Paciente creado exitosamente",
		"paciente": paciente,
	})
}

// ObtenerPacientes lista todos los pacientes, con búsqueda opcional por
// nombre, apellido o DNI
func ObtenerPacientes(c *fiber.Ctx) error {
	busqueda := c.Query("buscar")

	query := `SELECT id_paciente, nombre, apellido, dni,
	                 COALESCE(fecha_nacimiento::text, ''), COALESCE(telefono, ''),
	                 COALESCE(email, ''), COALESCE(direccion, ''), created_at, updated_at
	          FROM Paciente`
	var args []interface{}
	if busqueda != "" {
		query += ` WHERE nombre ILIKE '%' || $1 || '%' OR apellido ILIKE '%' || $1 || '%' OR dni ILIKE '%' || $1 || '%'`
		args = append(args, busqueda)
	}
	query += " ORDER BY apellido, nombre"

	rows, err := database.GetDB().Query(context.Background(), query, args...)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al obtener pacientes"})
	}
	defer rows.Close()

	var pacientes []models.Paciente
	for rows.Next() {
		var p models.Paciente
		err := rows.Scan(&p.ID, &p.Nombre, &p.Apellido, &p.DNI, &p.FechaNacimiento,
			&p.Telefono, &p.Email, &p.Direccion, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			continue
		}
		pacientes = append(pacientes, p)
	}

	return c.JSON(fiber.Map{
		"pacientes": pacientes,
		"total":     len(pacientes),
	})
}

// ObtenerPacientePorID obtiene un paciente específico
func ObtenerPacientePorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID inválido"})
	}

	var p models.Paciente
	err = database.GetDB().QueryRow(context.Background(),
		`SELECT id_paciente, nombre, apellido, dni,
		        COALESCE(fecha_nacimiento::text, ''), COALESCE(telefono, ''),
		        COALESCE(email, ''), COALESCE(direccion, ''), created_at, updated_at
		 FROM Paciente WHERE id_paciente = $1`, id).Scan(
		&p.ID, &p.Nombre, &p.Apellido, &p.DNI, &p.FechaNacimiento,
		&p.Telefono, &p.Email, &p.Direccion, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Paciente no encontrado"})
	}

	return c.JSON(p)
}

// ActualizarPaciente actualiza los datos de un paciente
func ActualizarPaciente(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID inválido"})
	}

	var paciente models.Paciente
	if err := c.BodyParser(&paciente); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Datos inválidos"})
	}

	if paciente.Nombre == "" || paciente.Apellido == "" || paciente.DNI == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Nombre, apellido y DNI son requeridos"})
	}

	tag, err := database.GetDB().Exec(context.Background(),
		`UPDATE Paciente
		 SET nombre = $1, apellido = $2, dni = $3, fecha_nacimiento = NULLIF($4, '')::date,
		     telefono = $5, email = $6, direccion = $7, updated_at = $8
		 WHERE id_paciente = $9`,
		paciente.Nombre, paciente.Apellido, paciente.DNI, paciente.FechaNacimiento,
		paciente.Telefono, paciente.Email, paciente.Direccion, time.Now(), id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al actualizar paciente"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Paciente no encontrado"})
	}

	return c.JSON(fiber.Map{"mensaje": "Paciente actualizado exitosamente"})
}

// EliminarPaciente elimina un paciente y sus consultas (solo admin)
func EliminarPaciente(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID inválido"})
	}

	tag, err := database.GetDB().Exec(context.Background(),
		"DELETE FROM Paciente WHERE id_paciente = $1", id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al eliminar el paciente"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Paciente no encontrado"})
	}

	userEmail, _ := c.Locals("user_email").(string)
	userRol, _ := c.Locals("user_rol").(string)
	middleware.LogCustomEvent(models.LogLevelWarning, "Paciente eliminado", userEmail, userRol,
		map[string]interface{}{"paciente_id": id, "action": "paciente_deleted"})

	return c.JSON(fiber.Map{"mensaje": "Paciente eliminado exitosamente"})
}
