package consultas

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ncastro/clinica-backend/models"
)

// db es la porción del pool que usan los repositorios; permite inyectar un
// mock en los tests.
type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresPacienteRepository resuelve pacientes contra la base
type PostgresPacienteRepository struct {
	db db
}

// NewPostgresPacienteRepository arma el repositorio sobre el pool
func NewPostgresPacienteRepository(pool *pgxpool.Pool) *PostgresPacienteRepository {
	return &PostgresPacienteRepository{db: pool}
}

// NewPostgresPacienteRepositoryWithDB permite inyectar un mock en los tests
func NewPostgresPacienteRepositoryWithDB(d db) *PostgresPacienteRepository {
	return &PostgresPacienteRepository{db: d}
}

// Existe indica si el paciente está cargado
func (r *PostgresPacienteRepository) Existe(ctx context.Context, id int) (bool, error) {
	var existe bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM Paciente WHERE id_paciente = $1)", id).Scan(&existe)
	if err != nil {
		return false, fmt.Errorf("consultas: error verificando paciente: %w", err)
	}
	return existe, nil
}

// UltimaConsulta devuelve la fecha de la última consulta del paciente,
// o nil si todavía no tiene ninguna.
func (r *PostgresPacienteRepository) UltimaConsulta(ctx context.Context, pacienteID int) (*time.Time, error) {
	var ultima *time.Time
	err := r.db.QueryRow(ctx,
		"SELECT MAX(fecha) FROM Consulta WHERE id_paciente = $1", pacienteID).Scan(&ultima)
	if err != nil {
		return nil, fmt.Errorf("consultas: error buscando última consulta: %w", err)
	}
	return ultima, nil
}

// PostgresObraSocialRepository resuelve obras sociales contra la base
type PostgresObraSocialRepository struct {
	db db
}

// NewPostgresObraSocialRepository arma el repositorio sobre el pool
func NewPostgresObraSocialRepository(pool *pgxpool.Pool) *PostgresObraSocialRepository {
	return &PostgresObraSocialRepository{db: pool}
}

// NewPostgresObraSocialRepositoryWithDB permite inyectar un mock en los tests
func NewPostgresObraSocialRepositoryWithDB(d db) *PostgresObraSocialRepository {
	return &PostgresObraSocialRepository{db: d}
}

// Obtener busca la obra social por id
func (r *PostgresObraSocialRepository) Obtener(ctx context.Context, id int) (*models.ObraSocial, error) {
	var os models.ObraSocial
	err := r.db.QueryRow(ctx,
		`SELECT id_obra_social, nombre, activa, permite_coseguro, created_at, updated_at
		 FROM ObraSocial WHERE id_obra_social = $1`, id).Scan(
		&os.ID, &os.Nombre, &os.Activa, &os.PermiteCoseguro, &os.CreatedAt, &os.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrObraSocialNoEncontrada
		}
		return nil, fmt.Errorf("consultas: error buscando obra social: %w", err)
	}
	return &os, nil
}

// PostgresCoseguroRepository resuelve coseguros contra la base
type PostgresCoseguroRepository struct {
	db db
}

// NewPostgresCoseguroRepository arma el repositorio sobre el pool
func NewPostgresCoseguroRepository(pool *pgxpool.Pool) *PostgresCoseguroRepository {
	return &PostgresCoseguroRepository{db: pool}
}

// NewPostgresCoseguroRepositoryWithDB permite inyectar un mock en los tests
func NewPostgresCoseguroRepositoryWithDB(d db) *PostgresCoseguroRepository {
	return &PostgresCoseguroRepository{db: d}
}

// Obtener busca el coseguro por id
func (r *PostgresCoseguroRepository) Obtener(ctx context.Context, id int) (*models.Coseguro, error) {
	var cos models.Coseguro
	err := r.db.QueryRow(ctx,
		`SELECT id_coseguro, nombre, activo, created_at, updated_at
		 FROM Coseguro WHERE id_coseguro = $1`, id).Scan(
		&cos.ID, &cos.Nombre, &cos.Activo, &cos.CreatedAt, &cos.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCoseguroNoEncontrado
		}
		return nil, fmt.Errorf("consultas: error buscando coseguro: %w", err)
	}
	return &cos, nil
}

// PostgresConsultaRepository persiste consultas normalizadas
type PostgresConsultaRepository struct {
	db db
}

// NewPostgresConsultaRepository arma el repositorio sobre el pool
func NewPostgresConsultaRepository(pool *pgxpool.Pool) *PostgresConsultaRepository {
	return &PostgresConsultaRepository{db: pool}
}

// NewPostgresConsultaRepositoryWithDB permite inyectar un mock en los tests
func NewPostgresConsultaRepositoryWithDB(d db) *PostgresConsultaRepository {
	return &PostgresConsultaRepository{db: d}
}

// Crear inserta la consulta normalizada y devuelve el registro persistido
func (r *PostgresConsultaRepository) Crear(ctx context.Context, pacienteID int, n *Normalizada) (*Consulta, error) {
	consulta := &Consulta{IDPaciente: pacienteID, Normalizada: *n}
	err := r.db.QueryRow(ctx,
		`INSERT INTO Consulta (id_paciente, clasificacion, motivo, diagnostico, tratamiento,
		        estudios_complementarios, tipo, id_obra_social, nro_afiliado, tiene_coseguro,
		        id_coseguro, monto)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id_consulta, fecha`,
		pacienteID, n.Clasificacion, n.Motivo, n.Diagnostico, n.Tratamiento,
		n.Estudios, n.Tipo, n.IDObraSocial, n.NroAfiliado, n.TieneCoseguro,
		n.IDCoseguro, n.Monto).Scan(&consulta.ID, &consulta.Fecha)
	if err != nil {
		return nil, fmt.Errorf("consultas: error insertando consulta: %w", err)
	}
	return consulta, nil
}

// Actualizar escribe el juego completo de campos de la matriz. Los campos
// que la clasificación nueva no usa se escriben como NULL, pisando cualquier
// valor que haya quedado de la clasificación anterior.
func (r *PostgresConsultaRepository) Actualizar(ctx context.Context, id int, n *Normalizada) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE Consulta
		 SET clasificacion = $1, motivo = $2, diagnostico = $3, tratamiento = $4,
		     estudios_complementarios = $5, tipo = $6, id_obra_social = $7,
		     nro_afiliado = $8, tiene_coseguro = $9, id_coseguro = $10, monto = $11,
		     updated_at = NOW()
		 WHERE id_consulta = $12`,
		n.Clasificacion, n.Motivo, n.Diagnostico, n.Tratamiento, n.Estudios,
		n.Tipo, n.IDObraSocial, n.NroAfiliado, n.TieneCoseguro, n.IDCoseguro,
		n.Monto, id)
	if err != nil {
		return fmt.Errorf("consultas: error actualizando consulta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConsultaNoEncontrada
	}
	return nil
}

const consultaSelect = `
	SELECT c.id_consulta, c.id_paciente, c.fecha, c.clasificacion, c.motivo,
	       c.diagnostico, c.tratamiento, c.estudios_complementarios, c.tipo,
	       c.id_obra_social, c.nro_afiliado, c.tiene_coseguro, c.id_coseguro, c.monto,
	       o.nombre, s.nombre
	FROM Consulta c
	LEFT JOIN ObraSocial o ON c.id_obra_social = o.id_obra_social
	LEFT JOIN Coseguro s ON c.id_coseguro = s.id_coseguro`

func scanConsulta(row pgx.Row) (*Consulta, error) {
	var c Consulta
	var nombreObraSocial, nombreCoseguro *string
	err := row.Scan(&c.ID, &c.IDPaciente, &c.Fecha, &c.Clasificacion, &c.Motivo,
		&c.Diagnostico, &c.Tratamiento, &c.Estudios, &c.Tipo,
		&c.IDObraSocial, &c.NroAfiliado, &c.TieneCoseguro, &c.IDCoseguro, &c.Monto,
		&nombreObraSocial, &nombreCoseguro)
	if err != nil {
		return nil, err
	}
	if c.IDObraSocial != nil && nombreObraSocial != nil {
		c.ObraSocial = &ResumenObraSocial{ID: *c.IDObraSocial, Nombre: *nombreObraSocial}
	}
	if c.IDCoseguro != nil && nombreCoseguro != nil {
		c.Coseguro = &ResumenCoseguro{ID: *c.IDCoseguro, Nombre: *nombreCoseguro}
	}
	return &c, nil
}

// PorID busca una consulta puntual con sus referencias resueltas
func (r *PostgresConsultaRepository) PorID(ctx context.Context, id int) (*Consulta, error) {
	row := r.db.QueryRow(ctx, consultaSelect+" WHERE c.id_consulta = $1", id)
	consulta, err := scanConsulta(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConsultaNoEncontrada
		}
		return nil, fmt.Errorf("consultas: error buscando consulta: %w", err)
	}
	return consulta, nil
}

// PorPaciente lista las consultas del paciente dentro de la ventana
func (r *PostgresConsultaRepository) PorPaciente(ctx context.Context, pacienteID int, v Ventana) ([]Consulta, error) {
	rows, err := r.db.Query(ctx,
		consultaSelect+` WHERE c.id_paciente = $1 AND c.fecha >= $2 AND c.fecha <= $3
		 ORDER BY c.fecha DESC`,
		pacienteID, v.Desde, v.Hasta)
	if err != nil {
		return nil, fmt.Errorf("consultas: error listando consultas: %w", err)
	}
	defer rows.Close()

	var lista []Consulta
	for rows.Next() {
		c, err := scanConsulta(rows)
		if err != nil {
			return nil, fmt.Errorf("consultas: error leyendo consulta: %w", err)
		}
		lista = append(lista, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("consultas: error recorriendo consultas: %w", err)
	}
	return lista, nil
}

// Eliminar borra la consulta en forma permanente
func (r *PostgresConsultaRepository) Eliminar(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM Consulta WHERE id_consulta = $1", id)
	if err != nil {
		return fmt.Errorf("consultas: error eliminando consulta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConsultaNoEncontrada
	}
	return nil
}
