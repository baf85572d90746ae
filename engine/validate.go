package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/tranvictor/feedme/ens"
	"github.com/tranvictor/feedme/networks"
	"github.com/tranvictor/feedme/splits"
)

var ErrInvalidConfig = errors.New("invalid payment config")

func suggestion(input string, options []string) string {
	matches := fuzzy.Find(strings.ToLower(input), options)
	if len(matches) == 0 {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", matches[0].Str)
}

func protocolKeys() []string {
	keys := []string{}
	for _, p := range networks.GetProtocols() {
		keys = append(keys, p.Key)
	}
	return keys
}

// ValidateConfig checks a config before it is written: the chain, token and
// protocol must be supported together, the monster type must be known and
// the splits, if any, must be valid.
func ValidateConfig(c ens.PaymentConfig) error {
	if !c.IsSet() {
		return fmt.Errorf("%w: chain, token and protocol are required", ErrInvalidConfig)
	}
	network, err := networks.GetNetwork(c.Chain)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	if _, err := network.TokenAddress(c.Token); err != nil {
		return fmt.Errorf("%w: %s on %s%s", ErrInvalidConfig, err, network.GetDisplayName(),
			suggestion(c.Token, network.SupportedTokens()))
	}
	p, err := networks.GetProtocol(c.Protocol)
	if err != nil {
		return fmt.Errorf("%w: %s%s", ErrInvalidConfig, err, suggestion(c.Protocol, protocolKeys()))
	}
	if !p.SupportsChain(network.GetChainID()) {
		return fmt.Errorf("%w: %s is not available on %s", ErrInvalidConfig, p.Name, network.GetDisplayName())
	}
	if !p.SupportsToken(c.Token) {
		return fmt.Errorf("%w: %s does not take %s", ErrInvalidConfig, p.Name, strings.ToUpper(c.Token))
	}
	if c.MonsterType != "" && !ens.IsMonsterType(c.MonsterType) {
		return fmt.Errorf("%w: unknown monster type %q%s", ErrInvalidConfig, c.MonsterType,
			suggestion(c.MonsterType, ens.MonsterTypes))
	}
	if c.Splits != "" {
		if _, err := ValidateSplits(c.Splits); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// ValidateSplits parses and validates a serialized split list.
func ValidateSplits(raw string) ([]splits.Split, error) {
	parsed := splits.Parse(raw)
	if !parsed.IsValid {
		return nil, parsed.Error
	}
	if v := splits.Validate(parsed.Splits); !v.IsValid {
		return nil, v.Err()
	}
	return parsed.Splits, nil
}
