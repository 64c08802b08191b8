package main

import (
	"context"
	"os"

	"github.com/abhisek/drillgym/cmd"
)

func main() {
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
