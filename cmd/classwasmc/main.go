// Command classwasmc is the compiler's CLI entry point: compile reads a
// JSON-described class set and emits .wasm/.wat/.map files, serve starts
// the JSON-RPC façade, version prints the build identity.
package main

import (
	"io"
	"os"

	"github.com/wasmforge/classwasm/internal/clog"
)

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr, os.Args[1:]))
}

// doMain is separated out from main so tests can drive the command tree
// against in-memory buffers instead of the real os.Stdout/Stderr.
func doMain(stdOut, stdErr io.Writer, args []string) int {
	root := newRootCommand(stdOut, stdErr)
	root.SetOut(stdOut)
	root.SetErr(stdErr)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		clog.ReportException(stdErr, asWasmException(err))
		return 1
	}
	return 0
}
