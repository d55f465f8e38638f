package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"qrquicker/internal/commands"
)

// Populated at build-time via -ldflags.
var version = "dev"

func main() {
	_ = godotenv.Load(".env", ".env.local")

	if err := commands.NewRoot(version).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
