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

// Package kverrors defines the three error kinds that cross the core
// boundary: Backend, Misconfiguration, and Invariant. None are recovered
// internally; callers match on kind with Is.
package kverrors

import (
	"github.com/pkg/errors"
	goerrors "gopkg.in/src-d/go-errors.v1"
)

var (
	// BackendKind wraps any storage fault: timeout, auth, not-found.
	BackendKind = goerrors.NewKind("backend error: %s")

	// MisconfigurationKind wraps missing or malformed schema properties,
	// an unknown serializer, or a constraint referring to an unindexed
	// column.
	MisconfigurationKind = goerrors.NewKind("misconfiguration: %s")

	// InvariantKind wraps violations that indicate external corruption of
	// T_idx_metrics, such as more than one sentinel metrics row observed.
	InvariantKind = goerrors.NewKind("invariant violation: %s")
)

// Backend builds a Backend-kind error with context, wrapping cause if given.
func Backend(cause error, msg string) error {
	return wrap(BackendKind.New(msg), cause)
}

// Misconfiguration builds a Misconfiguration-kind error.
func Misconfiguration(msg string) error {
	return MisconfigurationKind.New(msg)
}

// Invariant builds an Invariant-kind error with context, wrapping cause if given.
func Invariant(cause error, msg string) error {
	return wrap(InvariantKind.New(msg), cause)
}

// wrap attaches cause to kindErr while keeping kindErr (the go-errors.v1
// typed sentinel) as the head of the Cause/Unwrap chain, so IsBackend /
// IsMisconfiguration / IsInvariant still match after wrapping. The display
// message itself is built with pkg/errors.Wrap, so the wrapped cause keeps
// its own stack trace instead of being flattened into a plain string.
func wrap(kindErr error, cause error) error {
	if cause == nil {
		return kindErr
	}
	return &wrappedError{kind: kindErr, cause: errors.Wrap(cause, kindErr.Error())}
}

type wrappedError struct {
	kind  error
	cause error
}

func (e *wrappedError) Error() string { return e.cause.Error() }

func (e *wrappedError) Cause() error  { return e.kind }
func (e *wrappedError) Unwrap() error { return e.kind }

// IsBackend reports whether err (or a wrapped cause) is a Backend-kind error.
func IsBackend(err error) bool { return BackendKind.Is(err) }

// IsMisconfiguration reports whether err is a Misconfiguration-kind error.
func IsMisconfiguration(err error) bool { return MisconfigurationKind.Is(err) }

// IsInvariant reports whether err is an Invariant-kind error.
func IsInvariant(err error) bool { return InvariantKind.Is(err) }
