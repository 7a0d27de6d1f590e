package attributes

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
)

// blobItem is the wire form of one entry.
type blobItem struct {
	Key   string    `msgpack:"k"`
	Type  ValueType `msgpack:"t"`
	Num   uint64    `msgpack:"n,omitempty"`
	Dbl   float64   `msgpack:"d,omitempty"`
	Str   string    `msgpack:"s,omitempty"`
	Bytes []byte    `msgpack:"b,omitempty"`
}

// MarshalBlob serializes the store to MsgPack. Interface-pointer entries
// cannot leave the process and are skipped.
func (s *Store) MarshalBlob() ([]byte, error) {
	s.mu.RLock()
	out := make([]blobItem, 0, len(s.items))
	for _, it := range s.items {
		bi := blobItem{Key: it.key.String(), Type: it.value.typ}
		switch it.value.typ {
		case TypeUint32, TypeUint64:
			bi.Num = it.value.num
		case TypeDouble:
			bi.Dbl = it.value.dbl
		case TypeGUID:
			bi.Str = it.value.guid.String()
		case TypeString:
			bi.Str = it.value.str
		case TypeBlob:
			bi.Bytes = it.value.blob
		default:
			continue
		}
		out = append(out, bi)
	}
	s.mu.RUnlock()

	data, err := msgpack.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("attributes: failed to marshal blob: %w", err)
	}
	return data, nil
}

// UnmarshalBlob decodes a blob produced by MarshalBlob and sets every entry
// with Set semantics. The blob is fully decoded before the store is touched.
func (s *Store) UnmarshalBlob(data []byte) error {
	var in []blobItem
	if err := msgpack.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("attributes: failed to unmarshal blob: %v: %w", err, comerr.ErrInvalidArgument)
	}

	type decoded struct {
		key   uuid.UUID
		value Value
	}
	values := make([]decoded, 0, len(in))
	for _, bi := range in {
		key, err := uuid.Parse(bi.Key)
		if err != nil {
			return fmt.Errorf("attributes: bad key %q: %w", bi.Key, comerr.ErrInvalidArgument)
		}

		var v Value
		switch bi.Type {
		case TypeUint32:
			if bi.Num > math.MaxUint32 {
				return fmt.Errorf("attributes: uint32 value %d for %s out of range: %w", bi.Num, key, comerr.ErrInvalidArgument)
			}
			v = Uint32Value(uint32(bi.Num))
		case TypeUint64:
			v = Uint64Value(bi.Num)
		case TypeDouble:
			v = DoubleValue(bi.Dbl)
		case TypeGUID:
			g, err := uuid.Parse(bi.Str)
			if err != nil {
				return fmt.Errorf("attributes: bad guid value for %s: %w", key, comerr.ErrInvalidArgument)
			}
			v = GUIDValue(g)
		case TypeString:
			v = StringValue(bi.Str)
		case TypeBlob:
			v = BlobValue(bi.Bytes)
		default:
			return fmt.Errorf("attributes: unexpected type %s for %s: %w", bi.Type, key, comerr.ErrInvalidArgument)
		}
		values = append(values, decoded{key: key, value: v})
	}

	for _, d := range values {
		if err := s.Set(d.key, d.value); err != nil {
			return err
		}
	}
	return nil
}
