// Binary wg-conf generates WireGuard configuration files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-faster/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Root().ExecuteContext(ctx); err != nil {
		if errors.Is(err, ctx.Err()) {
			return
		}
		_, _ = fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		stop()
		os.Exit(1)
	}
}
