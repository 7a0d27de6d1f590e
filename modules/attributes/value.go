package attributes

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
	"github.com/e7canasta/orion-mediakit/modules/comobj"
)

// ValueType tags the payload held by a Value.
type ValueType int

const (
	TypeEmpty ValueType = iota
	TypeUint32
	TypeUint64
	TypeDouble
	TypeGUID
	TypeString
	TypeBlob
	TypeUnknown
)

// String returns a human-readable representation of the value type
func (t ValueType) String() string {
	switch t {
	case TypeUint32:
		return "uint32"
	case TypeUint64:
		return "uint64"
	case TypeDouble:
		return "double"
	case TypeGUID:
		return "guid"
	case TypeString:
		return "string"
	case TypeBlob:
		return "blob"
	case TypeUnknown:
		return "unknown"
	default:
		return "empty"
	}
}

// Value is a tagged attribute value. The zero Value is TypeEmpty.
//
// Values holding an interface pointer do not own a reference by themselves;
// the Store adds one when the value is stored and drops it when replaced.
type Value struct {
	typ  ValueType
	num  uint64
	dbl  float64
	guid uuid.UUID
	str  string
	blob []byte
	unk  comobj.Unknown
}

// Uint32Value wraps v.
func Uint32Value(v uint32) Value { return Value{typ: TypeUint32, num: uint64(v)} }

// Uint64Value wraps v.
func Uint64Value(v uint64) Value { return Value{typ: TypeUint64, num: v} }

// DoubleValue wraps v.
func DoubleValue(v float64) Value { return Value{typ: TypeDouble, dbl: v} }

// GUIDValue wraps v.
func GUIDValue(v uuid.UUID) Value { return Value{typ: TypeGUID, guid: v} }

// StringValue wraps v.
func StringValue(v string) Value { return Value{typ: TypeString, str: v} }

// BlobValue wraps a copy of v.
func BlobValue(v []byte) Value {
	return Value{typ: TypeBlob, blob: append([]byte(nil), v...)}
}

// UnknownValue wraps an interface pointer.
func UnknownValue(v comobj.Unknown) Value { return Value{typ: TypeUnknown, unk: v} }

// Type returns the value tag.
func (v Value) Type() ValueType { return v.typ }

func (v Value) mismatch(want ValueType) error {
	return fmt.Errorf("want %s, have %s: %w", want, v.typ, comerr.ErrTypeMismatch)
}

// Uint32 returns the payload of a TypeUint32 value.
func (v Value) Uint32() (uint32, error) {
	if v.typ != TypeUint32 {
		return 0, v.mismatch(TypeUint32)
	}
	return uint32(v.num), nil
}

// Uint64 returns the payload of a TypeUint64 value.
func (v Value) Uint64() (uint64, error) {
	if v.typ != TypeUint64 {
		return 0, v.mismatch(TypeUint64)
	}
	return v.num, nil
}

// Double returns the payload of a TypeDouble value.
func (v Value) Double() (float64, error) {
	if v.typ != TypeDouble {
		return 0, v.mismatch(TypeDouble)
	}
	return v.dbl, nil
}

// GUID returns the payload of a TypeGUID value.
func (v Value) GUID() (uuid.UUID, error) {
	if v.typ != TypeGUID {
		return uuid.Nil, v.mismatch(TypeGUID)
	}
	return v.guid, nil
}

// Str returns the payload of a TypeString value.
func (v Value) Str() (string, error) {
	if v.typ != TypeString {
		return "", v.mismatch(TypeString)
	}
	return v.str, nil
}

// Blob returns a copy of the payload of a TypeBlob value.
func (v Value) Blob() ([]byte, error) {
	if v.typ != TypeBlob {
		return nil, v.mismatch(TypeBlob)
	}
	return append([]byte(nil), v.blob...), nil
}

// Unknown returns the interface pointer of a TypeUnknown value without
// adding a reference.
func (v Value) Unknown() (comobj.Unknown, error) {
	if v.typ != TypeUnknown {
		return nil, v.mismatch(TypeUnknown)
	}
	return v.unk, nil
}

// Equal compares tag and payload. Interface pointers compare by identity.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeUint32, TypeUint64:
		return v.num == o.num
	case TypeDouble:
		return v.dbl == o.dbl
	case TypeGUID:
		return v.guid == o.guid
	case TypeString:
		return v.str == o.str
	case TypeBlob:
		return bytes.Equal(v.blob, o.blob)
	case TypeUnknown:
		return v.unk == o.unk
	default:
		return true
	}
}
