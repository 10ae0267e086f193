// Command kiln compiles dependency-injection binding models into construction
// plans, or reports why a component cannot be built.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/xraph/kiln/cli"
)

var (
	// Version information (set by ldflags during build).
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Execute(ctx, newApp(os.Stdout))
	stop()
	os.Exit(code)
}

func newApp(out io.Writer) cli.CLI {
	app := cli.New(cli.Config{
		Name:        "kiln",
		Version:     version,
		Description: "Compile-time dependency-injection graph compiler",
		Output:      out,
	})

	for _, cmd := range []cli.Command{
		newCompileCommand(),
		newCheckCommand(),
		newGraphCommand(),
		newConfigCommand(),
		newVersionCommand(),
	} {
		// names are distinct
		_ = app.AddCommand(cmd)
	}

	return app
}
