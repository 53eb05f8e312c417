// atlaspack: packs images into texture atlas pages.
//
// Build:
//   go build -o atlaspack ./cmd/atlaspack
//
// Set the version at link time:
//   go build -ldflags "-X github.com/piwi3910/atlaspack/internal/model.Version=1.2.0" ./cmd/atlaspack

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/piwi3910/atlaspack/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
