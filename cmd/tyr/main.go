// Command tyr runs SQL SELECT statements against CSV and Parquet files
// and URLs, writing the result as CSV.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

// Version is set at build time.
var Version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
