// Package rpcserver exposes the compiler driver over JSON-RPC for the
// classwasmc serve subcommand (SPEC_FULL.md §7), using gorilla/rpc's
// net/rpc-flavoured HTTP handler: one registered service whose exported
// methods each take (*http.Request, *Args, *Reply) and return an error.
package rpcserver

import (
	"encoding/base64"
	"net/http"

	"github.com/gorilla/rpc"
	gorillajson "github.com/gorilla/rpc/json"

	"github.com/wasmforge/classwasm/internal/classfile"
	"github.com/wasmforge/classwasm/internal/clog"
	"github.com/wasmforge/classwasm/internal/driver"
	"github.com/wasmforge/classwasm/internal/ir"
)

func byteToValueType(b byte) ir.ValueType { return ir.ValueType(b) }

// ClassInput is one class's wire-transmissible shape. The bytecode
// parser itself stays an external collaborator (spec.md §1): callers are
// expected to have already decoded a class file into this shape before
// it crosses the RPC boundary.
type ClassInput struct {
	Name         string              `json:"name"`
	SuperClass   string              `json:"superClass"`
	MajorVersion int                 `json:"majorVersion"`
	MinorVersion int                 `json:"minorVersion"`
	Fields       []FieldInput        `json:"fields"`
	Methods      []MethodInput       `json:"methods"`
}

// FieldInput mirrors classfile.Field over the wire.
type FieldInput struct {
	Name   string `json:"name"`
	Type   byte   `json:"type"`
	Static bool   `json:"static"`
}

// MethodInput mirrors classfile.Method over the wire; Code is
// base64-encoded since JSON has no byte-string type.
type MethodInput struct {
	Name        string `json:"name"`
	Descriptor  string `json:"descriptor"`
	Static      bool   `json:"static"`
	Abstract    bool   `json:"abstract"`
	Native      bool   `json:"native"`
	CodeBase64  string `json:"codeBase64"`
	Export      bool   `json:"export"`
	Import      bool   `json:"import"`
	ImportModule string `json:"importModule"`
	ImportName   string `json:"importName"`
}

// CompileArgs is the Compile method's request payload.
type CompileArgs struct {
	ModuleName string       `json:"moduleName"`
	Classes    []ClassInput `json:"classes"`
}

// CompileReply is the Compile method's response payload.
type CompileReply struct {
	WasmBase64 string `json:"wasmBase64"`
	Wat        string `json:"wat"`
	SourceMap  string `json:"sourceMap"`
}

// CompileService is the gorilla/rpc service registered at "Compiler".
type CompileService struct {
	opts *driver.Options
}

// NewCompileService returns a service wrapping opts; a fresh Driver is
// constructed per request so concurrent RPC calls never share
// typesystem/translator state.
func NewCompileService(opts *driver.Options) *CompileService {
	return &CompileService{opts: opts}
}

// Compile translates args.Classes into a Wasm module and its text/source
// map renderings.
func (s *CompileService) Compile(r *http.Request, args *CompileArgs, reply *CompileReply) error {
	d, err := driver.New(s.opts)
	if err != nil {
		return err
	}
	defer d.Close()

	classes := make([]*classfile.Class, len(args.Classes))
	for i, ci := range args.Classes {
		c, err := ToClassfile(ci)
		if err != nil {
			return err
		}
		classes[i] = c
	}

	out, err := d.Compile(r.Context(), driver.Input{ModuleName: args.ModuleName, Classes: classes})
	if err != nil {
		clog.Logger.Error("rpc compile failed", "module", args.ModuleName, "error", err)
		return err
	}

	reply.WasmBase64 = base64.StdEncoding.EncodeToString(out.Wasm)
	reply.Wat = out.Wat
	reply.SourceMap = out.SourceMap
	return nil
}

// ToClassfile converts one wire-transmissible ClassInput into the
// classfile.Class shape the driver consumes; exported so classwasmc's
// compile subcommand can parse the same JSON shape outside an RPC call.
func ToClassfile(ci ClassInput) (*classfile.Class, error) {
	fields := make([]classfile.Field, len(ci.Fields))
	for i, f := range ci.Fields {
		fields[i] = classfile.Field{Name: f.Name, Type: byteToValueType(f.Type), Static: f.Static}
	}

	methods := make([]classfile.Method, len(ci.Methods))
	for i, m := range ci.Methods {
		code, err := base64.StdEncoding.DecodeString(m.CodeBase64)
		if err != nil {
			return nil, err
		}
		methods[i] = classfile.Method{
			Name:        m.Name,
			Descriptor:  m.Descriptor,
			AccessFlags: classfile.AccessFlags{Static: m.Static, Abstract: m.Abstract, Native: m.Native},
			Code:        code,
			Annotations: classfile.MethodAnnotations{
				Export:       m.Export,
				Import:       m.Import,
				ImportModule: m.ImportModule,
				ImportName:   m.ImportName,
			},
		}
	}

	return &classfile.Class{
		Name:         ci.Name,
		SuperClass:   ci.SuperClass,
		MajorVersion: ci.MajorVersion,
		MinorVersion: ci.MinorVersion,
		Fields:       fields,
		Methods:      methods,
		ConstantPool: classfile.MapConstantPool{},
	}, nil
}

// NewHTTPHandler builds the gorilla/rpc server, registers the JSON-RPC
// codec and the Compile service under "Compiler", and returns the
// resulting http.Handler ready to mount at a path like "/rpc".
func NewHTTPHandler(opts *driver.Options) http.Handler {
	server := rpc.NewServer()
	server.RegisterCodec(gorillajson.NewCodec(), "application/json")
	server.RegisterService(NewCompileService(opts), "Compiler")
	return server
}
