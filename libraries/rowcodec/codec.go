// Copyright 2024 The Accumulo Connector Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rowcodec is the injected RowSerializer capability (§4.B, §6):
// encoding logical values to lexicographically ordered byte strings, and
// extracting per-element bytes out of array-typed cells. The exact byte
// layout is explicitly a Non-goal of the core (§1); this package supplies one
// concrete, order-preserving implementation so the rest of the module has
// something real to depend on, behind the Serializer interface the core
// actually consumes.
package rowcodec

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/sqlkv/accumulo-connector/libraries/schema"
)

// Serializer is the capability the Indexer and split planner depend on. Swap
// implementations by passing a different Serializer to index.New /
// planner.New; nothing in this module does a runtime type switch on a
// concrete serializer.
type Serializer interface {
	// Encode produces a lexicographically ordered encoding of v as type t.
	Encode(t schema.Type, v interface{}) ([]byte, error)
	// ArrayElements decodes v (an array-typed cell of element type elem) into
	// its element byte encodings, in the original array order. Distinctness
	// is the caller's responsibility (I1: one index cell per distinct
	// element).
	ArrayElements(elem schema.Kind, v interface{}) ([][]byte, error)
}

// Default is the order-preserving byte encoding used when no other
// serializer is injected.
type Default struct{}

var _ Serializer = Default{}

func (Default) Encode(t schema.Type, v interface{}) ([]byte, error) {
	if t.IsArray() {
		return nil, errors.Errorf("rowcodec: cannot Encode an array-typed value directly, use ArrayElements")
	}
	return encodeScalar(t.Kind, v)
}

func (Default) ArrayElements(elem schema.Kind, v interface{}) ([][]byte, error) {
	switch vals := v.(type) {
	case []string:
		out := make([][]byte, len(vals))
		for i, e := range vals {
			b, err := encodeScalar(elem, e)
			if err != nil {
				return nil, err
			}
			out[i] = b
		}
		return out, nil
	case []int64:
		out := make([][]byte, len(vals))
		for i, e := range vals {
			b, err := encodeScalar(elem, e)
			if err != nil {
				return nil, err
			}
			out[i] = b
		}
		return out, nil
	case []float64:
		out := make([][]byte, len(vals))
		for i, e := range vals {
			b, err := encodeScalar(elem, e)
			if err != nil {
				return nil, err
			}
			out[i] = b
		}
		return out, nil
	default:
		return nil, errors.Errorf("rowcodec: unsupported array value type %T for element kind %s", v, elem)
	}
}

func encodeScalar(k schema.Kind, v interface{}) ([]byte, error) {
	switch k {
	case schema.Varchar:
		s, ok := v.(string)
		if !ok {
			return nil, errors.Errorf("rowcodec: VARCHAR value must be string, got %T", v)
		}
		return []byte(s), nil
	case schema.BigInt:
		n, err := asInt64(v)
		if err != nil {
			return nil, err
		}
		return encodeOrderedInt64(n), nil
	case schema.Double:
		f, err := asFloat64(v)
		if err != nil {
			return nil, err
		}
		return encodeOrderedFloat64(f), nil
	case schema.Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, errors.Errorf("rowcodec: BOOLEAN value must be bool, got %T", v)
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case schema.Timestamp:
		switch t := v.(type) {
		case time.Time:
			return encodeOrderedInt64(t.UnixNano()), nil
		case int64:
			return encodeOrderedInt64(t), nil
		default:
			return nil, errors.Errorf("rowcodec: TIMESTAMP value must be time.Time or int64, got %T", v)
		}
	default:
		return nil, errors.Errorf("rowcodec: unsupported scalar kind %s", k)
	}
}

func asInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	default:
		return 0, errors.Errorf("rowcodec: BIGINT value must be an integer type, got %T", v)
	}
}

func asFloat64(v interface{}) (float64, error) {
	switch f := v.(type) {
	case float64:
		return f, nil
	case float32:
		return float64(f), nil
	default:
		return 0, errors.Errorf("rowcodec: DOUBLE value must be a float type, got %T", v)
	}
}

// encodeOrderedInt64 flips the sign bit so that big-endian unsigned byte
// comparison matches signed integer ordering.
func encodeOrderedInt64(n int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n)^(1<<63))
	return buf
}

// encodeOrderedFloat64 applies the standard IEEE-754 order-preserving
// transform: flip the sign bit for non-negatives, flip all bits for
// negatives, so that big-endian unsigned byte comparison matches float
// ordering (including across the zero boundary).
func encodeOrderedFloat64(f float64) []byte {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, bits)
	return buf
}
