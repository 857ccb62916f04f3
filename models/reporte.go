package models

import (
	"time"
)

// ReporteConsultas representa el resumen general para el tablero de gestión
type ReporteConsultas struct {
	TotalConsultas  int       `json:"total_consultas"`
	ConsultasHoy    int       `json:"consultas_hoy"`
	ConsultasMes    int       `json:"consultas_mes"`
	IngresosTotales float64   `json:"ingresos_totales"`
	IngresosMes     float64   `json:"ingresos_mes"`
	FechaGeneracion time.Time `json:"fecha_generacion"`
}

// ConsultasPorMes es una serie mensual para los gráficos del tablero
type ConsultasPorMes struct {
	Mes      string  `json:"mes"` // formato 2006-01
	Total    int     `json:"total"`
	Ingresos float64 `json:"ingresos"`
}

// ConsultasPorObraSocial agrupa consultas por obra social
type ConsultasPorObraSocial struct {
	IDObraSocial *int   `json:"id_obra_social"`
	Nombre       string `json:"nombre"`
	Total        int    `json:"total"`
}

// ConsultasPorClasificacion agrupa consultas por tipo de facturación
type ConsultasPorClasificacion struct {
	Clasificacion string `json:"clasificacion"`
	Total         int    `json:"total"`
}
