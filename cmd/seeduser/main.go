// Crea o actualiza un usuario (por defecto el admin de demo).
// Uso: go run ./cmd/seeduser [-email x] [-password y] [-rol admin|staff]
package main

import (
	"context"
	"os"
	"time"

	"comandas/internal/dto"
	"comandas/internal/infra"
	"comandas/internal/model"
	"comandas/internal/repository"
	"comandas/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	dsn := flag.String("database-url", os.Getenv("DATABASE_URL"), "DSN de postgres")
	email := flag.String("email", "admin@comandas.local", "email del usuario")
	password := flag.String("password", "admin1234", "password (minimo 8 caracteres)")
	nombre := flag.String("nombre", "Admin Demo", "nombre visible")
	rol := flag.String("rol", model.RolAdmin, "admin | staff")
	flag.Parse()

	if *dsn == "" {
		log.Fatal().Msg("DATABASE_URL es obligatorio")
	}
	if *rol != model.RolAdmin && *rol != model.RolStaff {
		log.Fatal().Str("rol", *rol).Msg("rol invalido")
	}
	if len(*password) < 8 {
		log.Fatal().Msg("password demasiado corto")
	}

	db, err := infra.NewDatabase(*dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := service.NewAuthService(repository.NewUsuarioRepository(db), nil)
	u, err := svc.AsegurarUsuario(ctx, dto.CrearUsuarioRequest{
		Email:    *email,
		Nombre:   *nombre,
		Password: *password,
		Rol:      *rol,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo guardar el usuario")
	}
	log.Info().Str("id", u.ID).Str("email", u.Email).Str("rol", u.Rol).Msg("usuario creado/actualizado")
}
