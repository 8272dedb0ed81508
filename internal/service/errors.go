package service

import (
	"fmt"

	"comandas/internal/apierror"
	"comandas/internal/model"
)

// Client-facing errors. Handlers turn them into responses with
// apierror.FromError; anything else becomes a 500.
var (
	ErrCredencialesInvalidas = apierror.New(apierror.KindAuth, "Credenciales invalidas")
	ErrUsuarioDuplicado      = apierror.Conflict("Ya existe un usuario con ese email")

	ErrComandaNoEncontrada = apierror.NotFound("Comanda no encontrada")
	ErrSinProductos        = apierror.Validation("La comanda debe incluir al menos un producto")
	ErrMetodoPagoRequerido = apierror.Validation("metodo_pago es obligatorio para marcar la comanda como pagada")
	ErrReferenciaInvalida  = apierror.Validation("usuario_id o producto inexistente")

	ErrProductoNoEncontrado = apierror.NotFound("Producto no encontrado")
	ErrProductoDuplicado    = apierror.Conflict("Ya existe un producto con ese nombre")
	ErrProductoEnUso        = apierror.Conflict("El producto figura en comandas: desactivelo en lugar de eliminarlo")

	ErrEventoNoEncontrado = apierror.NotFound("Evento no encontrado")
	ErrEventoSolapado     = apierror.Conflict("Ya existe un evento con ese nombre que se superpone en fechas")
	ErrEventoEnUso        = apierror.Conflict("El evento tiene comandas asociadas")
	ErrFechasInvalidas    = apierror.NewValidation(map[string]string{"fecha_fin": "debe ser posterior a fecha_inicio"})
)

// TransicionInvalidaError is the cause carried by illegal_transition errors.
type TransicionInvalidaError struct {
	Desde model.EstadoComanda
	Hasta model.EstadoComanda
}

func (e *TransicionInvalidaError) Error() string {
	return fmt.Sprintf("transicion %s -> %s no permitida", e.Desde, e.Hasta)
}

func transicionInvalida(desde, hasta model.EstadoComanda) error {
	cause := &TransicionInvalidaError{Desde: desde, Hasta: hasta}
	return &apierror.Error{
		Kind:    apierror.KindIllegalTransition,
		Message: fmt.Sprintf("No se puede pasar una comanda %s a %s", desde, hasta),
		Err:     cause,
	}
}

func persistencia(op string, err error) error {
	return apierror.Persistence(fmt.Errorf("%s: %w", op, err))
}
