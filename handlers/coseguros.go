package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ncastro/clinica-backend/database"
	"github.com/ncastro/clinica-backend/models"
)

// CrearCoseguro registra un nuevo coseguro (solo admin)
func CrearCoseguro(c *fiber.Ctx) error {
	var coseguro models.Coseguro
	if err := c.BodyParser(&coseguro); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Datos inválidos"})
	}

	if coseguro.Nombre == "" {
		return c.Status(400).JSON(fiber.Map{"error": "El nombre es requerido"})
	}

	var nuevoID int
	err := database.GetDB().QueryRow(context.Background(),
		"INSERT INTO Coseguro (nombre, activo) VALUES ($1, $2) RETURNING id_coseguro",
		coseguro.Nombre, coseguro.Activo).Scan(&nuevoID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al crear el coseguro"})
	}

	coseguro.ID = nuevoID
	return c.Status(201).JSON(fiber.Map{
		"mensaje":  "Coseguro creado exitosamente",
		"coseguro": coseguro,
	})
}

// ObtenerCoseguros lista los coseguros; por defecto solo los activos
func ObtenerCoseguros(c *fiber.Ctx) error {
	incluirInactivos := c.Query("incluir_inactivos") == "true"

	query := "SELECT id_coseguro, nombre, activo, created_at, updated_at FROM Coseguro"
	if !incluirInactivos {
		query += " WHERE activo = TRUE"
	}
	query += " ORDER BY nombre"

	rows, err := database.GetDB().Query(context.Background(), query)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al obtener coseguros"})
	}
	defer rows.Close()

	var coseguros []models.Coseguro
	for rows.Next() {
		var cs models.Coseguro
		if err := rows.Scan(&cs.ID, &cs.Nombre, &cs.Activo, &cs.CreatedAt, &cs.UpdatedAt); err != nil {
			continue
		}
		coseguros = append(coseguros, cs)
	}

	return c.JSON(fiber.Map{
		"coseguros": coseguros,
		"total":     len(coseguros),
	})
}

// ObtenerCoseguroPorID obtiene un coseguro específico
func ObtenerCoseguroPorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID inválido"})
	}

	var cs models.Coseguro
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT id_coseguro, nombre, activo, created_at, updated_at FROM Coseguro WHERE id_coseguro = $1",
		id).Scan(&cs.ID, &cs.Nombre, &cs.Activo, &cs.CreatedAt, &cs.UpdatedAt)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Coseguro no encontrado"})
	}

	return c.JSON(cs)
}

// ActualizarCoseguro actualiza un coseguro (solo admin)
func ActualizarCoseguro(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID inválido"})
	}

	var coseguro models.Coseguro
	if err := c.BodyParser(&coseguro); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Datos inválidos"})
	}

	if coseguro.Nombre == "" {
		return c.Status(400).JSON(fiber.Map{"error": "El nombre es requerido"})
	}

	tag, err := database.GetDB().Exec(context.Background(),
		"UPDATE Coseguro SET nombre = $1, activo = $2, updated_at = $3 WHERE id_coseguro = $4",
		coseguro.Nombre, coseguro.Activo, time.Now(), id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al actualizar el coseguro"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Coseguro no encontrado"})
	}

	return c.JSON(fiber.Map{"mensaje": "Coseguro actualizado exitosamente"})
}

// EliminarCoseguro da de baja lógica un coseguro (solo admin)
func EliminarCoseguro(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID inválido"})
	}

	tag, err := database.GetDB().Exec(context.Background(),
		"UPDATE Coseguro SET activo = FALSE, updated_at = NOW() WHERE id_coseguro = $1", id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al eliminar el coseguro"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Coseguro no encontrado"})
	}

	return c.JSON(fiber.Map{"mensaje": "Coseguro desactivado exitosamente"})
}
