package consultas

import "errors"

var (
	// ErrPacienteNoEncontrado se devuelve cuando el paciente referenciado no existe
	ErrPacienteNoEncontrado = errors.New("paciente no encontrado")

	// ErrObraSocialNoEncontrada se devuelve cuando la obra social referenciada no existe
	ErrObraSocialNoEncontrada = errors.New("obra social no encontrada")

	// ErrCoseguroNoEncontrado se devuelve cuando el coseguro referenciado no existe
	ErrCoseguroNoEncontrado = errors.New("coseguro no encontrado")

	// ErrConsultaNoEncontrada se devuelve cuando la consulta pedida no existe
	ErrConsultaNoEncontrada = errors.New("consulta no encontrada")
)

// ErrorValidacion señala el primer campo inválido del borrador. La validación
// se corta en la primera regla que falla; nunca se acumulan varios errores.
type ErrorValidacion struct {
	Campo   string
	Mensaje string
}

func (e *ErrorValidacion) Error() string {
	return e.Mensaje
}

func errCampo(campo, mensaje string) error {
	return &ErrorValidacion{Campo: campo, Mensaje: mensaje}
}
