package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ncastro/clinica-backend/database"
	"github.com/ncastro/clinica-backend/models"
)

// ObtenerLogs obtiene los logs de auditoría con filtros opcionales (solo admin)
func ObtenerLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}
	offset := (page - 1) * limit

	logLevel := c.Query("log_level")
	method := c.Query("method")
	statusCode := c.Query("status_code")
	email := c.Query("email")
	ip := c.Query("ip")
	fechaInicio := c.Query("fecha_inicio")
	fechaFin := c.Query("fecha_fin")
	path := c.Query("path")

	var conditions []string
	var args []interface{}
	argIndex := 1

	if logLevel != "" {
		conditions = append(conditions, fmt.Sprintf("log_level = $%d", argIndex))
		args = append(args, logLevel)
		argIndex++
	}

	if method != "" {
		conditions = append(conditions, fmt.Sprintf("method = $%d", argIndex))
		args = append(args, method)
		argIndex++
	}

	if statusCode != "" {
		if code, err := strconv.Atoi(statusCode); err == nil {
			conditions = append(conditions, fmt.Sprintf("status_code = $%d", argIndex))
			args = append(args, code)
			argIndex++
		}
	}

	if email != "" {
		conditions = append(conditions, fmt.Sprintf("email ILIKE $%d", argIndex))
		args = append(args, "%"+email+"%")
		argIndex++
	}

	if ip != "" {
		conditions = append(conditions, fmt.Sprintf("ip = $%d", argIndex))
		args = append(args, ip)
		argIndex++
	}

	if path != "" {
		conditions = append(conditions, fmt.Sprintf("path ILIKE $%d", argIndex))
		args = append(args, "%"+path+"%")
		argIndex++
	}

	if fechaInicio != "" {
		if fecha, err := time.Parse("2006-01-02", fechaInicio); err == nil {
			conditions = append(conditions, fmt.Sprintf("timestamp >= $%d", argIndex))
			args = append(args, fecha)
			argIndex++
		}
	}

	if fechaFin != "" {
		if fecha, err := time.Parse("2006-01-02", fechaFin); err == nil {
			// Incluir todo el día final
			fecha = fecha.Add(24 * time.Hour)
			conditions = append(conditions, fmt.Sprintf("timestamp <= $%d", argIndex))
			args = append(args, fecha)
			argIndex++
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM Logs %s", whereClause)
	var total int
	err := database.GetDB().QueryRow(context.Background(), countQuery, args...).Scan(&total)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al contar logs"})
	}

	query := fmt.Sprintf(`
		SELECT id_log, method, path, protocol, status_code, response_time, user_agent, ip, hostname,
		       body, params, query, email, username, role, log_level, environment,
		       pid, timestamp, url, created_at
		FROM Logs %s
		ORDER BY timestamp DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, limit, offset)

	rows, err := database.GetDB().Query(context.Background(), query, args...)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al obtener logs"})
	}
	defer rows.Close()

	var logs []models.Log
	for rows.Next() {
		var log models.Log
		err := rows.Scan(
			&log.IDLog, &log.Method, &log.Path, &log.Protocol, &log.StatusCode,
			&log.ResponseTime, &log.UserAgent, &log.IP, &log.Hostname,
			&log.Body, &log.Params, &log.Query, &log.Email, &log.Username,
			&log.Role, &log.LogLevel, &log.Environment,
			&log.PID, &log.Timestamp, &log.URL, &log.CreatedAt,
		)
		if err != nil {
			continue
		}
		logs = append(logs, log)
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// ObtenerEstadisticasLogs resume la actividad de las últimas 24 horas (solo admin)
func ObtenerEstadisticasLogs(c *fiber.Ctx) error {
	logLevelStats := make(map[string]int)
	rows, err := database.GetDB().Query(context.Background(), `
		SELECT log_level, COUNT(*)
		FROM Logs
		WHERE timestamp >= NOW() - INTERVAL '24 hours'
		GROUP BY log_level
	`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var level string
			var count int
			rows.Scan(&level, &count)
			logLevelStats[level] = count
		}
	}

	methodStats := make(map[string]int)
	rows, err = database.GetDB().Query(context.Background(), `
		SELECT method, COUNT(*)
		FROM Logs
		WHERE timestamp >= NOW() - INTERVAL '24 hours'
		GROUP BY method
	`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var method string
			var count int
			rows.Scan(&method, &count)
			methodStats[method] = count
		}
	}

	statusStats := make(map[string]int)
	rows, err = database.GetDB().Query(context.Background(), `
		SELECT
			CASE
				WHEN status_code >= 200 AND status_code < 300 THEN 'success'
				WHEN status_code >= 300 AND status_code < 400 THEN 'redirect'
				WHEN status_code >= 400 AND status_code < 500 THEN 'client_error'
				WHEN status_code >= 500 THEN 'server_error'
				ELSE 'other'
			END as status_category,
			COUNT(*)
		FROM Logs
		WHERE timestamp >= NOW() - INTERVAL '24 hours'
		GROUP BY status_category
	`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var category string
			var count int
			rows.Scan(&category, &count)
			statusStats[category] = count
		}
	}

	var topIPs []fiber.Map
	rows, err = database.GetDB().Query(context.Background(), `
		SELECT ip, COUNT(*) as requests
		FROM Logs
		WHERE timestamp >= NOW() - INTERVAL '24 hours'
		GROUP BY ip
		ORDER BY requests DESC
		LIMIT 10
	`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var ip string
			var requests int
			rows.Scan(&ip, &requests)
			topIPs = append(topIPs, fiber.Map{
				"ip":       ip,
				"requests": requests,
			})
		}
	}

	var avgResponseTime float64
	database.GetDB().QueryRow(context.Background(), `
		SELECT COALESCE(AVG(response_time), 0)
		FROM Logs
		WHERE timestamp >= NOW() - INTERVAL '24 hours' AND response_time IS NOT NULL
	`).Scan(&avgResponseTime)

	return c.JSON(fiber.Map{
		"log_level_stats":   logLevelStats,
		"method_stats":      methodStats,
		"status_stats":      statusStats,
		"top_ips":           topIPs,
		"avg_response_time": avgResponseTime,
		"period":            "24 hours",
	})
}

// LimpiarLogs elimina logs anteriores a la cantidad de días indicada (solo admin)
func LimpiarLogs(c *fiber.Ctx) error {
	dias, _ := strconv.Atoi(c.Query("dias", "30"))
	if dias < 1 {
		dias = 30
	}

	result, err := database.GetDB().Exec(context.Background(),
		"DELETE FROM Logs WHERE timestamp < NOW() - make_interval(days => $1)", dias)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al limpiar logs"})
	}

	return c.JSON(fiber.Map{
		"mensaje":      "Logs limpiados exitosamente",
		"rows_deleted": result.RowsAffected(),
		"days_deleted": dias,
	})
}
