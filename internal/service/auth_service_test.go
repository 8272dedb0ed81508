package service

import (
	"context"
	"testing"

	"comandas/internal/apierror"
	"comandas/internal/config"
	"comandas/internal/dto"
	"comandas/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-con-al-menos-32-caracteres!!"

func newAuthFixture(t *testing.T) (*stubUsuarioRepo, AuthService) {
	t.Helper()
	repo := newStubUsuarioRepo()
	svc := NewAuthService(repo, &config.Config{JWTSecret: testSecret, JWTExpirationHours: 8})
	_, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Email: "Caja@Local.com", Nombre: "Caja", Password: "secreta123", Rol: model.RolStaff,
	})
	require.NoError(t, err)
	return repo, svc
}

func TestLogin_OK(t *testing.T) {
	_, svc := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "caja@local.com ", Password: "secreta123"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "caja@local.com", resp.User.Email)

	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, tok.Valid)
	assert.Equal(t, model.RolStaff, claims["rol"])
	assert.Equal(t, resp.User.ID, claims["user_id"])
}

func TestLogin_PasswordIncorrecto(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "caja@local.com", Password: "otra"})

	assert.ErrorIs(t, err, ErrCredencialesInvalidas)
	assert.Equal(t, apierror.KindAuth, kindOf(t, err))
}

func TestLogin_EmailDesconocido(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "nadie@local.com", Password: "secreta123"})

	assert.ErrorIs(t, err, ErrCredencialesInvalidas)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	repo, svc := newAuthFixture(t)
	repo.usuarios["caja@local.com"].Activo = false

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "caja@local.com", Password: "secreta123"})

	assert.ErrorIs(t, err, ErrCredencialesInvalidas)
}

func TestCrearUsuario_Duplicado(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Email: "caja@local.com", Nombre: "Otra", Password: "secreta123", Rol: model.RolStaff,
	})

	assert.ErrorIs(t, err, ErrUsuarioDuplicado)
	assert.Equal(t, apierror.KindConflict, kindOf(t, err))
}

func TestAsegurarUsuario_ReemplazaPassword(t *testing.T) {
	repo, svc := newAuthFixture(t)
	antes := repo.usuarios["caja@local.com"].ID

	resp, err := svc.AsegurarUsuario(context.Background(), dto.CrearUsuarioRequest{
		Email: "caja@local.com", Nombre: "Caja", Password: "nueva-clave", Rol: model.RolAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, antes.String(), resp.ID)
	assert.Equal(t, model.RolAdmin, resp.Rol)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "caja@local.com", Password: "nueva-clave"})
	assert.NoError(t, err)
}
