package rpsl

import (
	"errors"
)

/*
err.go contains predefined error instances that
describe certain known aberrant conditions.
*/

var (
	ErrMalformedObject,
	ErrNoPrimaryKey,
	ErrEmptyObject,
	ErrSchemaNotFound,
	ErrNilObject,
	ErrNilSchema,
	ErrNilConfig,
	ErrNilStore,
	ErrNotRPSLPath,
	ErrUnterminatedBundle,
	ErrMissingBegin,
	ErrInvalidNetwork,
	ErrOverlayLocked error
)

func init() {
	ErrMalformedObject = errors.New("object does not parse: no attribute line found")
	ErrNoPrimaryKey = errors.New("type declares no primary key and first attribute is empty")
	ErrEmptyObject = errors.New("object has no attributes")
	ErrSchemaNotFound = errors.New("no schema registered for this object's type")
	ErrNilObject = errors.New("object is nil")
	ErrNilSchema = errors.New("schema is nil")
	ErrNilConfig = errors.New("config is nil")
	ErrNilStore = errors.New("store is nil")
	ErrNotRPSLPath = errors.New("no .rpsl sidecar directory found in path or its ancestors")
	ErrUnterminatedBundle = errors.New("transaction bundle missing .END terminator")
	ErrMissingBegin = errors.New("transaction bundle missing .BEGIN header")
	ErrInvalidNetwork = errors.New("value does not parse as an IP network")
	ErrOverlayLocked = errors.New("store has no overlay; obtain one with WithOverlay before appending")
}

func errorf(msg string, x ...any) error {
	if len(msg) == 0 {
		return nil
	}
	return errors.New(sprintf(msg, x...))
}
