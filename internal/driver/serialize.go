package driver

import (
	"bytes"
	"encoding/gob"

	"github.com/wasmforge/classwasm/internal/errs"
	"github.com/wasmforge/classwasm/internal/ir"
)

// encodeEntry gob-encodes a translated method's code and scratch locals
// for the cache, which only knows about opaque byte blobs
// (internal/cache never imports internal/ir, keeping the two packages
// independently testable).
func encodeEntry(code *ir.InstructionList, scratch []ir.ValueType) (body, scratchBytes []byte, err error) {
	var bodyBuf, scratchBuf bytes.Buffer
	if err := gob.NewEncoder(&bodyBuf).Encode(code.Items); err != nil {
		return nil, nil, errs.Wrap(errs.KindIO, err, "encode cache entry body")
	}
	if err := gob.NewEncoder(&scratchBuf).Encode(scratch); err != nil {
		return nil, nil, errs.Wrap(errs.KindIO, err, "encode cache entry scratch locals")
	}
	return bodyBuf.Bytes(), scratchBuf.Bytes(), nil
}

// decodeEntry is encodeEntry's inverse.
func decodeEntry(body, scratchBytes []byte) (*ir.InstructionList, []ir.ValueType, error) {
	var items []ir.Instruction
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&items); err != nil {
		return nil, nil, errs.Wrap(errs.KindIO, err, "decode cache entry body")
	}
	var scratch []ir.ValueType
	if len(scratchBytes) > 0 {
		if err := gob.NewDecoder(bytes.NewReader(scratchBytes)).Decode(&scratch); err != nil {
			return nil, nil, errs.Wrap(errs.KindIO, err, "decode cache entry scratch locals")
		}
	}
	return &ir.InstructionList{Items: items}, scratch, nil
}
