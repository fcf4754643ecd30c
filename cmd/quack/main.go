package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/doeshing/quack-go/internal/infrastructure/cli"
	"github.com/doeshing/quack-go/internal/infrastructure/cli/commands"
)

func main() {
	ctx := context.Background()
	root, cleanup := cli.NewRootCmd(cli.Options{Verbose: isVerbose()})

	err := root.ExecuteContext(ctx)
	cleanup()
	if err != nil {
		if !errors.Is(err, commands.ErrReported) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("QUACK_DEBUG"), "1") || strings.EqualFold(os.Getenv("QUACK_DEBUG"), "true")
}
