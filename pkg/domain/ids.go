// Package domain defines the typed identifiers shared across the ledger.
//
// IDs are distinct Go types so the compiler rejects cross-assignment between,
// say, a project id and a milestone id. Numeric ids are assigned sequentially
// starting at 1; zero means "does not exist".
package domain

import (
	"strconv"
	"strings"

	dErrors "fundledger/pkg/domain-errors"
)

// Principal is an authenticated caller identity. It is opaque to the ledger:
// the transport layer resolves it from credentials, the core only compares it.
type Principal string

// ParsePrincipal validates a raw principal string from a trust boundary.
func ParsePrincipal(raw string) (Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal must not be empty")
	}
	return Principal(raw), nil
}

func (p Principal) String() string { return string(p) }

// IsZero reports whether the principal is unset.
func (p Principal) IsZero() bool { return p == "" }

// ProjectID identifies a funded project.
type ProjectID uint64

// MilestoneID identifies a milestone. The sequence is global, not per project.
type MilestoneID uint64

// Amount is a monetary value in indivisible base units.
type Amount uint64

func (id ProjectID) IsZero() bool   { return id == 0 }
func (id MilestoneID) IsZero() bool { return id == 0 }

func (id ProjectID) String() string   { return strconv.FormatUint(uint64(id), 10) }
func (id MilestoneID) String() string { return strconv.FormatUint(uint64(id), 10) }

// ParseProjectID validates a raw project id from a trust boundary.
func ParseProjectID(raw string) (ProjectID, error) {
	n, err := parseID(raw, "project id")
	return ProjectID(n), err
}

// ParseMilestoneID validates a raw milestone id from a trust boundary.
func ParseMilestoneID(raw string) (MilestoneID, error) {
	n, err := parseID(raw, "milestone id")
	return MilestoneID(n), err
}

func parseID(raw, label string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, label+" must be a positive integer")
	}
	if n == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, label+" must not be zero")
	}
	return n, nil
}
