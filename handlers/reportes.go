package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ncastro/clinica-backend/database"
	"github.com/ncastro/clinica-backend/models"
)

// GenerarReporteConsultas genera el resumen general del tablero de gestión
func GenerarReporteConsultas(c *fiber.Ctx) error {
	var reporte models.ReporteConsultas
	reporte.FechaGeneracion = time.Now()

	err := database.GetDB().QueryRow(context.Background(),
		"SELECT COUNT(*) FROM Consulta").Scan(&reporte.TotalConsultas)
	if err != nil {
		reporte.TotalConsultas = 0
	}

	hoy := time.Now().Format("2006-01-02")
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT COUNT(*) FROM Consulta WHERE DATE(fecha) = $1", hoy).Scan(&reporte.ConsultasHoy)
	if err != nil {
		reporte.ConsultasHoy = 0
	}

	inicioMes := time.Now().Format("2006-01") + "-01"
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT COUNT(*) FROM Consulta WHERE DATE(fecha) >= $1", inicioMes).Scan(&reporte.ConsultasMes)
	if err != nil {
		reporte.ConsultasMes = 0
	}

	err = database.GetDB().QueryRow(context.Background(),
		"SELECT COALESCE(SUM(monto), 0) FROM Consulta").Scan(&reporte.IngresosTotales)
	if err != nil {
		reporte.IngresosTotales = 0
	}

	err = database.GetDB().QueryRow(context.Background(),
		"SELECT COALESCE(SUM(monto), 0) FROM Consulta WHERE DATE(fecha) >= $1", inicioMes).Scan(&reporte.IngresosMes)
	if err != nil {
		reporte.IngresosMes = 0
	}

	return c.JSON(fiber.Map{
		"reporte": reporte,
		"mensaje": "Reporte generado exitosamente",
	})
}

// ObtenerConsultasPorMes devuelve la serie mensual de consultas e ingresos
// de los últimos doce meses
func ObtenerConsultasPorMes(c *fiber.Ctx) error {
	rows, err := database.GetDB().Query(context.Background(), `
		SELECT TO_CHAR(fecha, 'YYYY-MM') AS mes, COUNT(*), COALESCE(SUM(monto), 0)
		FROM Consulta
		WHERE fecha >= NOW() - INTERVAL '12 months'
		GROUP BY mes
		ORDER BY mes`)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al generar el reporte"})
	}
	defer rows.Close()

	var serie []models.ConsultasPorMes
	for rows.Next() {
		var m models.ConsultasPorMes
		if err := rows.Scan(&m.Mes, &m.Total, &m.Ingresos); err != nil {
			continue
		}
		serie = append(serie, m)
	}

	return c.JSON(fiber.Map{
		"consultas_por_mes": serie,
		"total":             len(serie),
	})
}

// ObtenerConsultasPorObraSocial agrupa las consultas por obra social.
// Las consultas particulares se agrupan bajo "Particular".
func ObtenerConsultasPorObraSocial(c *fiber.Ctx) error {
	rows, err := database.GetDB().Query(context.Background(), `
		SELECT c.id_obra_social, COALESCE(os.nombre, 'Particular'), COUNT(*)
		FROM Consulta c
		LEFT JOIN ObraSocial os ON os.id_obra_social = c.id_obra_social
		GROUP BY c.id_obra_social, os.nombre
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al generar el reporte"})
	}
	defer rows.Close()

	var grupos []models.ConsultasPorObraSocial
	for rows.Next() {
		var g models.ConsultasPorObraSocial
		if err := rows.Scan(&g.IDObraSocial, &g.Nombre, &g.Total); err != nil {
			continue
		}
		grupos = append(grupos, g)
	}

	return c.JSON(fiber.Map{
		"consultas_por_obra_social": grupos,
		"total":                     len(grupos),
	})
}

// ObtenerConsultasPorClasificacion agrupa las consultas por clasificación
// de facturación
func ObtenerConsultasPorClasificacion(c *fiber.Ctx) error {
	rows, err := database.GetDB().Query(context.Background(), `
		SELECT clasificacion, COUNT(*)
		FROM Consulta
		GROUP BY clasificacion
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al generar el reporte"})
	}
	defer rows.Close()

	var grupos []models.ConsultasPorClasificacion
	for rows.Next() {
		var g models.ConsultasPorClasificacion
		if err := rows.Scan(&g.Clasificacion, &g.Total); err != nil {
			continue
		}
		grupos = append(grupos, g)
	}

	return c.JSON(fiber.Map{
		"consultas_por_clasificacion": grupos,
		"total":                       len(grupos),
	})
}
