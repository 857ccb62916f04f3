package consultas

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacienteRepositoryExiste(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM Paciente WHERE id_paciente = \$1\)`).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewPostgresPacienteRepositoryWithDB(mock)
	existe, err := repo.Existe(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, existe)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPacienteRepositoryUltimaConsultaSinFilas(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// MAX sobre cero filas devuelve NULL
	mock.ExpectQuery(`SELECT MAX\(fecha\) FROM Consulta WHERE id_paciente = \$1`).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow((*time.Time)(nil)))

	repo := NewPostgresPacienteRepositoryWithDB(mock)
	ultima, err := repo.UltimaConsulta(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, ultima)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObraSocialRepositoryObtenerNoEncontrada(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id_obra_social, nombre, activa, permite_coseguro`).
		WithArgs(9).
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresObraSocialRepositoryWithDB(mock)
	_, err = repo.Obtener(context.Background(), 9)
	assert.ErrorIs(t, err, ErrObraSocialNoEncontrada)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoseguroRepositoryObtener(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ahora := time.Now()
	mock.ExpectQuery(`SELECT id_coseguro, nombre, activo`).
		WithArgs(4).
		WillReturnRows(pgxmock.NewRows([]string{"id_coseguro", "nombre", "activo", "created_at", "updated_at"}).
			AddRow(4, "Coseguro Salud", true, ahora, ahora))

	repo := NewPostgresCoseguroRepositoryWithDB(mock)
	cos, err := repo.Obtener(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Coseguro Salud", cos.Nombre)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultaRepositoryCrearParticular(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	fechaAlta := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	n := &Normalizada{
		Clasificacion: Particular,
		Motivo:        "Control",
		Tipo:          TipoParticular,
		Monto:         f64Ptr(150),
	}

	mock.ExpectQuery(`INSERT INTO Consulta`).
		WithArgs(1, Particular, "Control", (*string)(nil), (*string)(nil), (*string)(nil),
			TipoParticular, (*int)(nil), (*string)(nil), (*bool)(nil), (*int)(nil), f64Ptr(150)).
		WillReturnRows(pgxmock.NewRows([]string{"id_consulta", "fecha"}).AddRow(11, fechaAlta))

	repo := NewPostgresConsultaRepositoryWithDB(mock)
	c, err := repo.Crear(context.Background(), 1, n)
	require.NoError(t, err)

	assert.Equal(t, 11, c.ID)
	assert.Equal(t, 1, c.IDPaciente)
	assert.Equal(t, fechaAlta, c.Fecha)
	assert.Equal(t, Particular, c.Clasificacion)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultaRepositoryActualizarEscribeLosNulos(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// la consulta pasó a particular: los campos de obra social viajan como NULL
	n := &Normalizada{
		Clasificacion: Particular,
		Motivo:        "Control",
		Tipo:          TipoParticular,
		Monto:         f64Ptr(300),
	}

	mock.ExpectExec(`UPDATE Consulta`).
		WithArgs(Particular, "Control", (*string)(nil), (*string)(nil), (*string)(nil),
			TipoParticular, (*int)(nil), (*string)(nil), (*bool)(nil), (*int)(nil), f64Ptr(300), 11).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewPostgresConsultaRepositoryWithDB(mock)
	require.NoError(t, repo.Actualizar(context.Background(), 11, n))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultaRepositoryActualizarInexistente(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	n := &Normalizada{Clasificacion: Particular, Motivo: "Control", Tipo: TipoParticular, Monto: f64Ptr(1)}

	mock.ExpectExec(`UPDATE Consulta`).
		WithArgs(Particular, "Control", (*string)(nil), (*string)(nil), (*string)(nil),
			TipoParticular, (*int)(nil), (*string)(nil), (*bool)(nil), (*int)(nil), f64Ptr(1), 99).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresConsultaRepositoryWithDB(mock)
	err = repo.Actualizar(context.Background(), 99, n)
	assert.ErrorIs(t, err, ErrConsultaNoEncontrada)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultaRepositoryPorIDConReferencias(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	fechaConsulta := time.Date(2024, time.June, 15, 9, 30, 0, 0, time.UTC)
	columnas := []string{
		"id_consulta", "id_paciente", "fecha", "clasificacion", "motivo",
		"diagnostico", "tratamiento", "estudios_complementarios", "tipo",
		"id_obra_social", "nro_afiliado", "tiene_coseguro", "id_coseguro", "monto",
		"nombre", "nombre",
	}
	mock.ExpectQuery(`SELECT c.id_consulta, c.id_paciente, c.fecha`).
		WithArgs(11).
		WillReturnRows(pgxmock.NewRows(columnas).AddRow(
			11, 1, fechaConsulta, ObraSocialConCoseguro, "Control",
			(*string)(nil), (*string)(nil), (*string)(nil), TipoObraSocial,
			intPtr(7), strPtr("123"), boolPtr(true), intPtr(4), (*float64)(nil),
			strPtr("OSDE"), strPtr("Coseguro Salud")))

	repo := NewPostgresConsultaRepositoryWithDB(mock)
	c, err := repo.PorID(context.Background(), 11)
	require.NoError(t, err)

	assert.Equal(t, ObraSocialConCoseguro, c.Clasificacion)
	require.NotNil(t, c.ObraSocial)
	assert.Equal(t, "OSDE", c.ObraSocial.Nombre)
	require.NotNil(t, c.Coseguro)
	assert.Equal(t, "Coseguro Salud", c.Coseguro.Nombre)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultaRepositoryEliminarInexistente(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM Consulta WHERE id_consulta = \$1`).
		WithArgs(99).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPostgresConsultaRepositoryWithDB(mock)
	err = repo.Eliminar(context.Background(), 99)
	assert.ErrorIs(t, err, ErrConsultaNoEncontrada)

	assert.NoError(t, mock.ExpectationsWereMet())
}
