package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/bowlofstew/sql-layer-adapter-go/internal/cli"
	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(fdbsql.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(fdbsql.ExitCodeForError(err))
	}
}
