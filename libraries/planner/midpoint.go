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

package planner

import (
	"bytes"

	"github.com/sqlkv/accumulo-connector/libraries/kv"
)

// midpoint computes the byte-wise midpoint of two equal-length byte arrays
// (P6): order (a, b) ascending, then treat both as big-endian unsigned
// integers and compute lo + (hi-lo)/2 with ordinary multi-byte arithmetic
// (borrow on subtract, carry on halve and on add). The result has the same
// length as the inputs and satisfies a <= midpoint(a,b) <= b for a <= b.
func midpoint(a, b []byte) []byte {
	lo, hi := a, b
	if bytes.Compare(lo, hi) > 0 {
		lo, hi = hi, lo
	}
	return addBytes(lo, halveBytes(subtractBytes(hi, lo)))
}

// subtractBytes computes hi-lo for equal-length big-endian byte arrays,
// assuming hi >= lo as unsigned integers.
func subtractBytes(hi, lo []byte) []byte {
	out := make([]byte, len(hi))
	borrow := 0
	for i := len(hi) - 1; i >= 0; i-- {
		v := int(hi[i]) - int(lo[i]) - borrow
		if v < 0 {
			v += 256
			borrow = 1
		} else {
			borrow = 0
		}
		out[i] = byte(v)
	}
	return out
}

// halveBytes divides a big-endian byte array by 2, carrying the remainder
// from each byte into the next (most significant byte first).
func halveBytes(v []byte) []byte {
	out := make([]byte, len(v))
	carry := 0
	for i := range v {
		total := carry*256 + int(v[i])
		out[i] = byte(total / 2)
		carry = total % 2
	}
	return out
}

// addBytes adds two equal-length big-endian byte arrays, carrying from
// least to most significant byte. A carry out of the most significant byte
// is dropped: midpoint only ever adds half of (hi-lo) to lo, which never
// overflows the shared width.
func addBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	carry := 0
	for i := len(a) - 1; i >= 0; i-- {
		total := int(a[i]) + int(b[i]) + carry
		out[i] = byte(total % 256)
		carry = total / 256
	}
	return out
}

// bisect recursively splits r into up to 2^levels sub-ranges by repeated
// byte-wise midpoint bisection (§4.D step 6), clamping unbounded endpoints
// to first/last. first and last must be equal-length byte arrays (row-ID
// encodings share one fixed-width type per table).
func bisect(r kv.Range, first, last []byte, levels int) []kv.Range {
	if levels <= 0 {
		return []kv.Range{r}
	}
	lo := r.Start
	if lo == nil {
		lo = first
	}
	hi := r.End
	if hi == nil {
		hi = last
	}
	if len(lo) != len(hi) || bytes.Compare(lo, hi) >= 0 {
		return []kv.Range{r}
	}
	mid := midpoint(lo, hi)

	left := kv.Range{Start: r.Start, StartInclusive: r.StartInclusive, End: mid, EndInclusive: true}
	right := kv.Range{Start: mid, StartInclusive: false, End: r.End, EndInclusive: r.EndInclusive}

	out := bisect(left, first, last, levels-1)
	out = append(out, bisect(right, first, last, levels-1)...)
	return out
}
