package splits

import (
	"strings"

	"github.com/tranvictor/feedme/common"
)

type Validation struct {
	IsValid bool   `json:"isValid"`
	Error   *Error `json:"-"`
}

func (v Validation) ErrorMessage() string {
	if v.Error == nil {
		return ""
	}
	return v.Error.Message
}

func (v Validation) Err() error {
	if v.Error == nil {
		return nil
	}
	return v.Error
}

func rejected(err *Error) Validation {
	return Validation{IsValid: false, Error: err}
}

// ValidateSplit checks one entry in isolation.
func ValidateSplit(s Split) Validation {
	if strings.TrimSpace(s.Recipient) == "" {
		return rejected(newError(KindEmptyRecipient, "Recipient is required"))
	}
	if !common.IsAddress(s.Recipient) && !IsName(s.Recipient) {
		return rejected(newError(KindInvalidRecipient, "Must be an address (0x...) or ENS name (*.eth)"))
	}
	if s.Percentage < 1 || s.Percentage > 100 {
		return rejected(newError(KindPercentageOutOfRange, "Percentage must be a whole number between 1-100"))
	}
	return Validation{IsValid: true}
}

// Validate never fails: it always returns a decision. Checks run in order:
// count, each entry, total, duplicates.
func Validate(splits []Split) Validation {
	if len(splits) == 0 {
		return Validation{IsValid: true}
	}
	if len(splits) > MaxRecipients {
		return rejected(newError(KindTooManyRecipients, "Maximum %d split recipients allowed", MaxRecipients))
	}
	for _, s := range splits {
		if v := ValidateSplit(s); !v.IsValid {
			return v
		}
	}
	if total := TotalPercentage(splits); total != 100 {
		return rejected(newError(KindSumNot100, "Percentages must sum to 100 (currently %d)", total))
	}
	seen := map[string]bool{}
	for _, s := range splits {
		r := strings.ToLower(s.Recipient)
		if seen[r] {
			return rejected(newError(KindDuplicateRecipient, "Duplicate recipients not allowed"))
		}
		seen[r] = true
	}
	return Validation{IsValid: true}
}
