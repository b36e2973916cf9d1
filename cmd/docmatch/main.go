package main

import (
	"os"

	"github.com/loaddocs/docmatch/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
