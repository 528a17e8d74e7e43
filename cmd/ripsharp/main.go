package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			// Operator interrupt; the rip command already logged the outcome.
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "ripsharp: %v\n", err)
		os.Exit(1)
	}
}
