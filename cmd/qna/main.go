package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/idilsaglam/qna/internal/cli"
)

func main() {
	// Root flags (apply to every subcommand)
	server := flag.String("server", "", "override the server base URL (QNA_SERVER works too)")
	flag.Parse()

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	code := cli.Run(args, cli.Options{
		Server: *server,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
