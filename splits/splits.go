// Package splits parses, validates and resolves multi-recipient payout
// lists of the form "recipient:percentage,recipient:percentage".
package splits

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxRecipients is the largest split set the distributor accepts.
const MaxRecipients = 10

// NameSuffix marks a recipient that is a name rather than an address.
const NameSuffix = ".eth"

type Split struct {
	Recipient       string `json:"recipient" validate:"required"`
	Percentage      int    `json:"percentage" validate:"min=1,max=100"`
	ResolvedAddress string `json:"resolvedAddress,omitempty"`
}

type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindMalformedEntry
	KindEmptyRecipient
	KindPercentageOutOfRange
	KindSumNot100
	KindTooManyRecipients
	KindInvalidRecipient
	KindDuplicateRecipient
)

var ErrInvalidSplits = errors.New("invalid splits")

// Error is a split set rejection. It matches ErrInvalidSplits with errors.Is.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalidSplits
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

type ParsedSplits struct {
	Splits          []Split `json:"splits"`
	IsValid         bool    `json:"isValid"`
	Error           *Error  `json:"-"`
	TotalPercentage int     `json:"totalPercentage"`
}

// ErrorMessage is empty for valid sets.
func (p ParsedSplits) ErrorMessage() string {
	if p.Error == nil {
		return ""
	}
	return p.Error.Message
}

func invalid(err *Error) ParsedSplits {
	return ParsedSplits{Splits: []Split{}, IsValid: false, Error: err}
}

// Parse reads a serialized split set. Each entry is split on its last colon.
// An empty string is a valid empty set.
func Parse(raw string) ParsedSplits {
	if strings.TrimSpace(raw) == "" {
		return ParsedSplits{Splits: []Split{}, IsValid: true}
	}

	splits := []Split{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		colon := strings.LastIndex(part, ":")
		if colon == -1 {
			return invalid(newError(KindMalformedEntry, "Invalid split format: %q (missing colon)", part))
		}
		recipient := strings.TrimSpace(part[:colon])
		percentageStr := strings.TrimSpace(part[colon+1:])
		if recipient == "" {
			return invalid(newError(KindEmptyRecipient, "Empty recipient in split"))
		}
		percentage, err := strconv.Atoi(percentageStr)
		if err != nil || percentage < 1 || percentage > 100 {
			return invalid(newError(KindPercentageOutOfRange, "Invalid percentage %q for %s", percentageStr, recipient))
		}
		splits = append(splits, Split{Recipient: recipient, Percentage: percentage})
	}

	total := TotalPercentage(splits)
	if total != 100 {
		return ParsedSplits{
			Splits:          splits,
			IsValid:         false,
			Error:           newError(KindSumNot100, "Percentages must sum to 100 (currently %d)", total),
			TotalPercentage: total,
		}
	}
	return ParsedSplits{Splits: splits, IsValid: true, TotalPercentage: total}
}

// Serialize is the inverse of Parse for valid sets.
func Serialize(splits []Split) string {
	return Key(splits)
}

// Key identifies a split set by content: recipients and percentages in
// order. Resolved addresses are not part of the key.
func Key(splits []Split) string {
	parts := make([]string, 0, len(splits))
	for _, s := range splits {
		parts = append(parts, fmt.Sprintf("%s:%d", s.Recipient, s.Percentage))
	}
	return strings.Join(parts, ",")
}

func TotalPercentage(splits []Split) int {
	total := 0
	for _, s := range splits {
		total += s.Percentage
	}
	return total
}

// IsName reports whether recipient must be resolved through the naming
// system.
func IsName(recipient string) bool {
	return strings.HasSuffix(recipient, NameSuffix)
}
