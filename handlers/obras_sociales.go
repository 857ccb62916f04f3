package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ncastro/clinica-backend/database"
	"github.com/ncastro/clinica-backend/models"
)

// CrearObraSocial registra una nueva obra social (solo admin)
func CrearObraSocial(c *fiber.Ctx) error {
	var obraSocial models.ObraSocial
	if err := c.BodyParser(&obraSocial); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Datos inválidos"})
	}

	if obraSocial.Nombre == "" {
		return c.Status(400).JSON(fiber.Map{"error": "El nombre es requerido"})
	}

	var nuevoID int
	err := database.GetDB().QueryRow(context.Background(),
		`INSERT INTO ObraSocial (nombre, activa, permite_coseguro)
		 VALUES ($1, $2, $3) RETURNING id_obra_social`,
		obraSocial.Nombre, obraSocial.Activa, obraSocial.PermiteCoseguro).Scan(&nuevoID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al crear la obra social"})
	}

	obraSocial.ID = nuevoID
	return c.Status(201).JSON(fiber.Map{
		"mensaje":     "Obra social creada exitosamente",
		"obra_social": obraSocial,
	})
}

// ObtenerObrasSociales lista las obras sociales; por defecto solo las activas
func ObtenerObrasSociales(c *fiber.Ctx) error {
	incluirInactivas := c.Query("incluir_inactivas") == "true"

	query := `SELECT id_obra_social, nombre, activa, permite_coseguro, created_at, updated_at
	          FROM ObraSocial`
	if !incluirInactivas {
		query += " WHERE activa = TRUE"
	}
	query += " ORDER BY nombre"

	rows, err := database.GetDB().Query(context.Background(), query)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al obtener obras sociales"})
	}
	defer rows.Close()

	var obrasSociales []models.ObraSocial
	for rows.Next() {
		var os models.ObraSocial
		err := rows.Scan(&os.ID, &os.Nombre, &os.Activa, &os.PermiteCoseguro,
			&os.CreatedAt, &os.UpdatedAt)
		if err != nil {
			continue
		}
		obrasSociales = append(obrasSociales, os)
	}

	return c.JSON(fiber.Map{
		"obras_sociales": obrasSociales,
		"total":          len(obrasSociales),
	})
}

// ObtenerObraSocialPorID obtiene una obra social específica
func ObtenerObraSocialPorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID inválido"})
	}

	var os models.ObraSocial
	err = database.GetDB().QueryRow(context.Background(),
		`SELECT id_obra_social, nombre, activa, permite_coseguro, created_at, updated_at
		 FROM ObraSocial WHERE id_obra_social = $1`, id).Scan(
		&os.ID, &os.Nombre, &os.Activa, &os.PermiteCoseguro, &os.CreatedAt, &os.UpdatedAt)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Obra social no encontrada"})
	}

	return c.JSON(os)
}

// ActualizarObraSocial actualiza una obra social (solo admin)
func ActualizarObraSocial(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID inválido"})
	}

	var obraSocial models.ObraSocial
	if err := c.BodyParser(&obraSocial); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Datos inválidos"})
	}

	if obraSocial.Nombre == "" {
		return c.Status(400).JSON(fiber.Map{"error": "El nombre es requerido"})
	}

	tag, err := database.GetDB().Exec(context.Background(),
		`UPDATE ObraSocial
		 SET nombre = $1, activa = $2, permite_coseguro = $3, updated_at = $4
		 WHERE id_obra_social = $5`,
		obraSocial.Nombre, obraSocial.Activa, obraSocial.PermiteCoseguro, time.Now(), id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al actualizar la obra social"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Obra social no encontrada"})
	}

	return c.JSON(fiber.Map{"mensaje": "Obra social actualizada exitosamente"})
}

// EliminarObraSocial da de baja una obra social (solo admin). Las consultas
// históricas la siguen referenciando, por eso es baja lógica y no DELETE.
func EliminarObraSocial(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID inválido"})
	}

	tag, err := database.GetDB().Exec(context.Background(),
		"UPDATE ObraSocial SET activa = FALSE, updated_at = NOW() WHERE id_obra_social = $1", id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al eliminar la obra social"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Obra social no encontrada"})
	}

	return c.JSON(fiber.Map{"mensaje": "Obra social desactivada exitosamente"})
}
