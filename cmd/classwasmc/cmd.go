package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	classwasm "github.com/wasmforge/classwasm"
	"github.com/wasmforge/classwasm/internal/classfile"
	"github.com/wasmforge/classwasm/internal/clog"
	"github.com/wasmforge/classwasm/internal/driver"
	"github.com/wasmforge/classwasm/internal/errs"
	"github.com/wasmforge/classwasm/internal/rpcserver"
)

// version is the CLI's own reported build identity, overwritten at link
// time in a real release build via -ldflags; "dev" otherwise.
var version = "dev"

func newRootCommand(stdOut, stdErr io.Writer) *cobra.Command {
	var verbose bool
	var cacheDir string
	var tracingURL string

	root := &cobra.Command{
		Use:           "classwasmc",
		Short:         "Compile source bytecode classes into WebAssembly modules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "persistent compilation cache path (empty disables caching)")
	root.PersistentFlags().StringVar(&tracingURL, "otlp-endpoint", "", "OTLP/HTTP endpoint for trace export (empty disables tracing)")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		clog.Init(level)
	}

	root.AddCommand(
		newCompileCommand(stdOut, stdErr, &cacheDir, &tracingURL),
		newServeCommand(stdOut, &cacheDir, &tracingURL),
		newVersionCommand(stdOut),
	)
	return root
}

func newVersionCommand(stdOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the compiler's version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(stdOut, version+"\n")
			return err
		},
	}
}

func newCompileCommand(stdOut, stdErr io.Writer, cacheDir, tracingURL *string) *cobra.Command {
	var outPath string
	var watPath string
	var mapPath string

	cmd := &cobra.Command{
		Use:   "compile <classes.json>",
		Short: "Compile a JSON-described class set into a Wasm module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classes, moduleName, err := loadClasses(args[0])
			if err != nil {
				return err
			}

			cfg := buildConfig(*cacheDir, *tracingURL)
			out, err := classwasm.Compile(cmd.Context(), cfg, moduleName, classes)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = moduleName + ".wasm"
			}
			if err := driver.WriteFile(func() error { return os.WriteFile(outPath, out.Wasm, 0o644) }); err != nil {
				return errs.Wrap(errs.KindIO, err, "write %q", outPath)
			}
			if watPath != "" {
				if err := os.WriteFile(watPath, []byte(out.Wat), 0o644); err != nil {
					return errs.Wrap(errs.KindIO, err, "write %q", watPath)
				}
			}
			if mapPath != "" {
				if err := os.WriteFile(mapPath, []byte(out.SourceMap), 0o644); err != nil {
					return errs.Wrap(errs.KindIO, err, "write %q", mapPath)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output .wasm path (default <module>.wasm)")
	cmd.Flags().StringVar(&watPath, "wat", "", "also write the .wat text rendering to this path")
	cmd.Flags().StringVar(&mapPath, "sourcemap", "", "also write the source-map v3 document to this path")
	return cmd
}

func newServeCommand(stdOut io.Writer, cacheDir, tracingURL *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compiler over JSON-RPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := buildConfig(*cacheDir, *tracingURL)
			handler := rpcserver.NewHTTPHandler(cfg.Opts())
			clog.Logger.Info("rpc server listening", "addr", addr)
			return http.ListenAndServe(addr, handler)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8085", "address to listen on")
	return cmd
}

func buildConfig(cacheDir, tracingURL string) classwasm.CompilerConfig {
	cfg := classwasm.NewCompilerConfig()
	if cacheDir != "" {
		cfg = cfg.WithCache(cacheDir)
	}
	if tracingURL != "" {
		cfg = cfg.WithTracing(tracingURL)
	}
	return cfg
}

// wireFile is the on-disk JSON shape compile reads: an object with a
// moduleName and a classes array, each class carrying base64-encoded method bodies, matching
// rpcserver's own wire types so a single class-file-to-JSON collaborator
// can feed either the CLI or the RPC service.
type wireFile struct {
	ModuleName string                  `json:"moduleName"`
	Classes    []rpcserver.ClassInput `json:"classes"`
}

func loadClasses(path string) ([]*classfile.Class, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errs.Wrap(errs.KindIO, err, "read %q", path)
	}
	var wf wireFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, "", errs.Wrap(errs.KindInput, err, "parse %q", path)
	}

	classes := make([]*classfile.Class, len(wf.Classes))
	for i, ci := range wf.Classes {
		c, err := rpcserver.ToClassfile(ci)
		if err != nil {
			return nil, "", err
		}
		classes[i] = c
	}
	if wf.ModuleName == "" {
		wf.ModuleName = "module"
	}
	return classes, wf.ModuleName, nil
}

func asWasmException(err error) *errs.WasmException {
	var we *errs.WasmException
	if errors.As(err, &we) {
		return we
	}
	return errs.Wrap(errs.KindIO, err, "%s", err.Error())
}
