package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"comandas/internal/config"
	"comandas/internal/dto"
	"comandas/internal/model"
	"comandas/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	// AsegurarUsuario creates the user or resets password, nombre and rol of
	// an existing one with the same email.
	AsegurarUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, normalizarEmail(req.Email))
	if errors.Is(err, repository.ErrNoEncontrado) {
		return nil, ErrCredencialesInvalidas
	}
	if err != nil {
		return nil, persistencia("buscar usuario", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredencialesInvalidas
	}

	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Success:     true,
		User:        usuarioResponse(user),
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
	}, nil
}

func (s *authService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := nuevoUsuario(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, ErrUsuarioDuplicado
		}
		return nil, persistencia("crear usuario", err)
	}
	resp := usuarioResponse(user)
	return &resp, nil
}

func (s *authService) AsegurarUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := nuevoUsuario(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, user); err != nil {
		return nil, persistencia("guardar usuario", err)
	}
	resp := usuarioResponse(user)
	return &resp, nil
}

func nuevoUsuario(req dto.CrearUsuarioRequest) (*model.Usuario, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	return &model.Usuario{
		Email:        normalizarEmail(req.Email),
		Nombre:       strings.TrimSpace(req.Nombre),
		PasswordHash: string(hash),
		Rol:          req.Rol,
		Activo:       true,
	}, nil
}

func normalizarEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func usuarioResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:     u.ID.String(),
		Email:  u.Email,
		Nombre: u.Nombre,
		Rol:    u.Rol,
		Activo: u.Activo,
	}
}

func (s *authService) generateToken(user *model.Usuario, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"nombre":  user.Nombre,
		"rol":     user.Rol,
		"exp":     time.Now().Add(duration).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
