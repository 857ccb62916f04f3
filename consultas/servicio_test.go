package consultas

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncastro/clinica-backend/models"
)

// fakes en memoria que registran el orden de llamadas para verificar que los
// chequeos corren en orden fijo y cortan en el primero que falla.

type registro struct {
	llamadas []string
}

func (r *registro) anotar(paso string) {
	r.llamadas = append(r.llamadas, paso)
}

type pacientesFake struct {
	reg       *registro
	existe    bool
	ultima    *time.Time
	errUltima error
}

func (f *pacientesFake) Existe(ctx context.Context, id int) (bool, error) {
	f.reg.anotar("paciente.existe")
	return f.existe, nil
}

func (f *pacientesFake) UltimaConsulta(ctx context.Context, pacienteID int) (*time.Time, error) {
	f.reg.anotar("paciente.ultima")
	return f.ultima, f.errUltima
}

type obrasSocialesFake struct {
	reg *registro
	os  *models.ObraSocial
}

func (f *obrasSocialesFake) Obtener(ctx context.Context, id int) (*models.ObraSocial, error) {
	f.reg.anotar("obrasocial.obtener")
	if f.os == nil || f.os.ID != id {
		return nil, ErrObraSocialNoEncontrada
	}
	return f.os, nil
}

type cosegurosFake struct {
	reg *registro
	cos *models.Coseguro
}

func (f *cosegurosFake) Obtener(ctx context.Context, id int) (*models.Coseguro, error) {
	f.reg.anotar("coseguro.obtener")
	if f.cos == nil || f.cos.ID != id {
		return nil, ErrCoseguroNoEncontrado
	}
	return f.cos, nil
}

type consultasFake struct {
	reg        *registro
	guardadas  map[int]*Consulta
	ultimaNorm *Normalizada
	proximoID  int
}

func newConsultasFake(reg *registro) *consultasFake {
	return &consultasFake{reg: reg, guardadas: map[int]*Consulta{}, proximoID: 1}
}

func (f *consultasFake) Crear(ctx context.Context, pacienteID int, n *Normalizada) (*Consulta, error) {
	f.reg.anotar("consulta.crear")
	f.ultimaNorm = n
	c := &Consulta{
		ID:          f.proximoID,
		IDPaciente:  pacienteID,
		Fecha:       fecha(2025, time.March, 3),
		Normalizada: *n,
	}
	f.guardadas[c.ID] = c
	f.proximoID++
	return c, nil
}

func (f *consultasFake) Actualizar(ctx context.Context, id int, n *Normalizada) error {
	f.reg.anotar("consulta.actualizar")
	c, ok := f.guardadas[id]
	if !ok {
		return ErrConsultaNoEncontrada
	}
	f.ultimaNorm = n
	c.Normalizada = *n
	return nil
}

func (f *consultasFake) PorID(ctx context.Context, id int) (*Consulta, error) {
	f.reg.anotar("consulta.porid")
	c, ok := f.guardadas[id]
	if !ok {
		return nil, ErrConsultaNoEncontrada
	}
	return c, nil
}

func (f *consultasFake) PorPaciente(ctx context.Context, pacienteID int, v Ventana) ([]Consulta, error) {
	f.reg.anotar("consulta.porpaciente")
	var lista []Consulta
	for _, c := range f.guardadas {
		if c.IDPaciente == pacienteID && !c.Fecha.Before(v.Desde) && !c.Fecha.After(v.Hasta) {
			lista = append(lista, *c)
		}
	}
	return lista, nil
}

func (f *consultasFake) Eliminar(ctx context.Context, id int) error {
	f.reg.anotar("consulta.eliminar")
	if _, ok := f.guardadas[id]; !ok {
		return ErrConsultaNoEncontrada
	}
	delete(f.guardadas, id)
	return nil
}

type entorno struct {
	reg       *registro
	pacientes *pacientesFake
	obras     *obrasSocialesFake
	coseguros *cosegurosFake
	consultas *consultasFake
	servicio  *Servicio
}

func nuevoEntorno() *entorno {
	reg := &registro{}
	e := &entorno{
		reg:       reg,
		pacientes: &pacientesFake{reg: reg, existe: true},
		obras:     &obrasSocialesFake{reg: reg, os: obraSocialConCoseguro(7)},
		coseguros: &cosegurosFake{reg: reg, cos: &models.Coseguro{ID: 4, Nombre: "Coseguro Salud", Activo: true}},
		consultas: newConsultasFake(reg),
	}
	e.servicio = NewServicio(e.pacientes, e.obras, e.coseguros, e.consultas)
	e.servicio.ahora = func() time.Time { return fecha(2025, time.January, 10) }
	return e
}

func borradorConCoseguro() Borrador {
	return Borrador{
		Motivo:        "Control",
		Tipo:          TipoObraSocial,
		IDObraSocial:  intPtr(7),
		NroAfiliado:   strPtr("123"),
		TieneCoseguro: boolPtr(true),
		IDCoseguro:    intPtr(4),
	}
}

func TestServicioCrearParticular(t *testing.T) {
	e := nuevoEntorno()

	c, err := e.servicio.Crear(context.Background(), 1, Borrador{
		Motivo: "Control",
		Tipo:   TipoParticular,
		Monto:  f64Ptr(150),
	})
	require.NoError(t, err)

	assert.Equal(t, Particular, c.Clasificacion)
	assert.Nil(t, c.ObraSocial)
	assert.Nil(t, c.Coseguro)
	assert.Equal(t, []string{"paciente.existe", "consulta.crear"}, e.reg.llamadas)
}

func TestServicioCrearConCoseguroResuelveReferencias(t *testing.T) {
	e := nuevoEntorno()

	c, err := e.servicio.Crear(context.Background(), 1, borradorConCoseguro())
	require.NoError(t, err)

	require.NotNil(t, c.ObraSocial)
	assert.Equal(t, "OSDE", c.ObraSocial.Nombre)
	require.NotNil(t, c.Coseguro)
	assert.Equal(t, "Coseguro Salud", c.Coseguro.Nombre)
	assert.Equal(t, []string{
		"paciente.existe",
		"obrasocial.obtener",
		"coseguro.obtener",
		"consulta.crear",
	}, e.reg.llamadas)
}

func TestServicioCrearPacienteInexistenteCortaEnSeco(t *testing.T) {
	e := nuevoEntorno()
	e.pacientes.existe = false

	_, err := e.servicio.Crear(context.Background(), 99, borradorConCoseguro())

	assert.ErrorIs(t, err, ErrPacienteNoEncontrado)
	// no se buscó la obra social ni se escribió nada
	assert.Equal(t, []string{"paciente.existe"}, e.reg.llamadas)
}

func TestServicioCrearObraSocialInexistente(t *testing.T) {
	e := nuevoEntorno()
	e.obras.os = nil

	_, err := e.servicio.Crear(context.Background(), 1, borradorConCoseguro())

	assert.ErrorIs(t, err, ErrObraSocialNoEncontrada)
	assert.Equal(t, []string{"paciente.existe", "obrasocial.obtener"}, e.reg.llamadas)
}

func TestServicioCrearCoseguroInexistente(t *testing.T) {
	e := nuevoEntorno()
	e.coseguros.cos = nil

	_, err := e.servicio.Crear(context.Background(), 1, borradorConCoseguro())

	assert.ErrorIs(t, err, ErrCoseguroNoEncontrado)
	assert.NotContains(t, e.reg.llamadas, "consulta.crear")
}

func TestServicioCrearBorradorInvalidoNoEscribe(t *testing.T) {
	e := nuevoEntorno()

	_, err := e.servicio.Crear(context.Background(), 1, Borrador{
		Motivo: "Control",
		Tipo:   TipoParticular, // sin monto
	})

	var ev *ErrorValidacion
	require.ErrorAs(t, err, &ev)
	assert.Equal(t, "montoConsulta", ev.Campo)
	assert.NotContains(t, e.reg.llamadas, "consulta.crear")
}

func TestServicioActualizarRederivaDesdeCero(t *testing.T) {
	e := nuevoEntorno()

	// consulta guardada con obra social y coseguro
	guardada, err := e.servicio.Crear(context.Background(), 1, borradorConCoseguro())
	require.NoError(t, err)

	// la edición la pasa a particular: todos los campos de la rama anterior
	// tienen que quedar en nil en la misma escritura
	actualizada, err := e.servicio.Actualizar(context.Background(), guardada.ID, Borrador{
		Motivo: "Control",
		Tipo:   TipoParticular,
		Monto:  f64Ptr(300),
	})
	require.NoError(t, err)

	assert.Equal(t, Particular, actualizada.Clasificacion)
	assert.Nil(t, actualizada.IDObraSocial)
	assert.Nil(t, actualizada.NroAfiliado)
	assert.Nil(t, actualizada.TieneCoseguro)
	assert.Nil(t, actualizada.IDCoseguro)
	assert.Nil(t, actualizada.ObraSocial)
	assert.Nil(t, actualizada.Coseguro)

	// lo que llegó al repositorio es el juego completo ya normalizado
	require.NotNil(t, e.consultas.ultimaNorm)
	assert.Nil(t, e.consultas.ultimaNorm.IDObraSocial)
	assert.Nil(t, e.consultas.ultimaNorm.IDCoseguro)
	require.NotNil(t, e.consultas.ultimaNorm.Monto)
	assert.Equal(t, 300.0, *e.consultas.ultimaNorm.Monto)
}

func TestServicioActualizarConsultaInexistente(t *testing.T) {
	e := nuevoEntorno()

	_, err := e.servicio.Actualizar(context.Background(), 42, borradorConCoseguro())

	assert.ErrorIs(t, err, ErrConsultaNoEncontrada)
}

func TestServicioHistorialRangoExplicitoNoConsultaElAncla(t *testing.T) {
	e := nuevoEntorno()
	desde := fecha(2025, time.January, 1)
	hasta := fecha(2025, time.June, 1)

	_, v, err := e.servicio.Historial(context.Background(), 1, &desde, &hasta)
	require.NoError(t, err)

	assert.Equal(t, desde, v.Desde)
	assert.Equal(t, hasta, v.Hasta)
	assert.NotContains(t, e.reg.llamadas, "paciente.ultima")
}

func TestServicioHistorialResuelveVentanaPorUltimaConsulta(t *testing.T) {
	e := nuevoEntorno()
	ultima := fecha(2024, time.June, 15)
	e.pacientes.ultima = &ultima

	_, v, err := e.servicio.Historial(context.Background(), 1, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, fecha(2023, time.December, 15), v.Desde)
	assert.Equal(t, ultima, v.Hasta)
}

func TestServicioHistorialPacienteSinConsultas(t *testing.T) {
	e := nuevoEntorno()

	lista, v, err := e.servicio.Historial(context.Background(), 1, nil, nil)
	require.NoError(t, err)

	assert.Empty(t, lista)
	assert.Equal(t, fecha(2024, time.July, 10), v.Desde)
	assert.Equal(t, fecha(2025, time.January, 10), v.Hasta)
}
