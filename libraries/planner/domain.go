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
	"github.com/sqlkv/accumulo-connector/libraries/kv"
	"github.com/sqlkv/accumulo-connector/libraries/kverrors"
	"github.com/sqlkv/accumulo-connector/libraries/rowcodec"
	"github.com/sqlkv/accumulo-connector/libraries/schema"
)

// Bound is how a ValueRange endpoint binds its value.
type Bound int

const (
	// Exactly means the endpoint is inclusive of Value.
	Exactly Bound = iota
	// Above means the endpoint is exclusive, just above Value.
	Above
	// Below means the endpoint is exclusive, just below Value.
	Below
)

// Endpoint is one bound of a ValueRange. A nil *Endpoint means unbounded on
// that side.
type Endpoint struct {
	Value interface{}
	Bound Bound
}

// ValueRange is a single contiguous logical-value range: [Low, High], with
// either side possibly unbounded. A single-value range has Low and High both
// set to the same value with Bound Exactly.
type ValueRange struct {
	Low  *Endpoint
	High *Endpoint
}

// Domain is a disjunction of ValueRanges over one column's logical type
// (Presto's column-domain concept, §4.D). An empty Domain means unbounded.
type Domain []ValueRange

// UnboundedDomain is the domain matching every value.
func UnboundedDomain() Domain { return nil }

// SingleValueDomain is the domain matching exactly v.
func SingleValueDomain(v interface{}) Domain {
	return Domain{{Low: &Endpoint{Value: v, Bound: Exactly}, High: &Endpoint{Value: v, Bound: Exactly}}}
}

// storageRanges translates domain into storage-ranges via serializer,
// following the Range translation rules (§4.D): unbounded domain yields one
// unbounded range; each ValueRange yields one storage range whose
// inclusivity mirrors its Bound.
func storageRanges(serializer rowcodec.Serializer, t schema.Type, domain Domain) ([]kv.Range, error) {
	if len(domain) == 0 {
		return []kv.Range{kv.UnboundedRange()}, nil
	}
	out := make([]kv.Range, 0, len(domain))
	for _, vr := range domain {
		r, err := storageRange(serializer, t, vr)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func storageRange(serializer rowcodec.Serializer, t schema.Type, vr ValueRange) (kv.Range, error) {
	var r kv.Range
	if vr.Low != nil {
		enc, err := serializer.Encode(t, vr.Low.Value)
		if err != nil {
			return kv.Range{}, kverrors.Misconfiguration("encode range lower bound: " + err.Error())
		}
		r.Start = enc
		r.StartInclusive = vr.Low.Bound == Exactly
	}
	if vr.High != nil {
		enc, err := serializer.Encode(t, vr.High.Value)
		if err != nil {
			return kv.Range{}, kverrors.Misconfiguration("encode range upper bound: " + err.Error())
		}
		r.End = enc
		r.EndInclusive = vr.High.Bound == Exactly
	}
	return r, nil
}

// ColumnConstraint pairs an indexed-or-not column with the domain a query
// predicate restricts it to.
type ColumnConstraint struct {
	Column schema.Column
	Domain Domain
}
