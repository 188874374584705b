package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/justinabrahms/checkers/internal/auth"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var out string
	flag.StringVar(&out, "out", "", "Write the key to this file instead of stdout")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Generate new ECDSA key pair for ES256
	key, err := auth.GenerateKey()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate private key")
	}

	pemBytes, err := auth.EncodePrivateKeyPEM(key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode private key")
	}

	if out == "" {
		fmt.Print(string(pemBytes))
		return
	}

	if err := os.WriteFile(out, pemBytes, 0o600); err != nil {
		log.Fatal().Err(err).Str("path", out).Msg("Failed to write private key")
	}
	log.Info().Str("path", out).Msg("Session key written, point session.key_path at it")
	fmt.Fprintln(os.Stderr, "NEVER commit the private key to version control")
}
