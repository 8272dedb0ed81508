package infra

import (
	"bytes"
	"testing"
	"time"

	"comandas/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTicketPDF(t *testing.T) {
	metodo := model.MetodoEfectivo
	c := &model.Comanda{
		ID:            uuid.New(),
		NombreCliente: "Mesa 4 Ñandú",
		Total:         decimal.NewFromInt(2500),
		Estado:        model.EstadoPagado,
		MetodoPago:    &metodo,
		CreatedAt:     time.Now(),
		Items: []model.ComandaItem{
			{Cantidad: 2, Subtotal: decimal.NewFromInt(2000), Producto: model.Producto{Nombre: "Cerveza tirada IPA de la casa"}},
			{Cantidad: 1, Subtotal: decimal.NewFromInt(500), Producto: model.Producto{Nombre: "Agua"}},
		},
	}

	out, err := GenerateTicketPDF(c, "La Trastienda", time.UTC)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestGenerateQRPNG(t *testing.T) {
	png, err := GenerateQRPNG(uuid.NewString(), 128)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
