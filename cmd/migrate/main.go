// Applies or rolls back the embedded schema migrations.
// Uso: go run ./cmd/migrate [-down N] [-version]
package main

import (
	"os"
	"time"

	"comandas/internal/infra"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	down := flag.Int("down", 0, "revertir N migraciones (-1 = todas)")
	version := flag.Bool("version", false, "mostrar la version actual y salir")
	dsn := flag.String("database-url", os.Getenv("DATABASE_URL"), "DSN de postgres")
	flag.Parse()

	if *dsn == "" {
		log.Fatal().Msg("DATABASE_URL es obligatorio")
	}

	mg, err := infra.NewMigrator(*dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo crear el migrador")
	}
	defer func() {
		if err := mg.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrando migrador")
		}
	}()

	switch {
	case *version:
		v, dirty, err := mg.Version()
		if err != nil {
			log.Fatal().Err(err).Msg("version")
		}
		log.Info().Uint("version", v).Bool("dirty", dirty).Msg("schema")
	case *down != 0:
		if err := mg.Down(*down); err != nil {
			log.Fatal().Err(err).Msg("down")
		}
		log.Info().Int("steps", *down).Msg("migraciones revertidas")
	default:
		if err := mg.Up(); err != nil {
			log.Fatal().Err(err).Msg("up")
		}
	}
}
