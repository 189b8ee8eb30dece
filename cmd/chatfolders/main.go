package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nikbrunner/chatfolders/internal/commands"
)

func main() {
	if err := commands.New(commands.Params{}).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
