package ens

import "strings"

// Text record keys.
const (
	KeyChain       = "feedme.chain"
	KeyToken       = "feedme.token"
	KeyProtocol    = "feedme.protocol"
	KeyMonsterName = "feedme.monsterName"
	KeyMonsterType = "feedme.monsterType"
	KeySplits      = "feedme.splits"
)

// ConfigKeys is the read order of a configuration batch.
var ConfigKeys = []string{
	KeyChain,
	KeyToken,
	KeyProtocol,
	KeyMonsterName,
	KeyMonsterType,
	KeySplits,
}

const (
	DefaultMonsterName = "Monster"
	DefaultMonsterType = "octopus"
)

var MonsterTypes = []string{"octopus", "dragon", "blob", "kraken", "plant"}

func IsMonsterType(t string) bool {
	for _, m := range MonsterTypes {
		if m == t {
			return true
		}
	}
	return false
}

// PaymentConfig is what a recipient publishes on their name.
type PaymentConfig struct {
	Chain       string `json:"chain" yaml:"chain" validate:"required"`
	Token       string `json:"token" yaml:"token" validate:"required"`
	Protocol    string `json:"protocol" yaml:"protocol" validate:"required"`
	MonsterName string `json:"monsterName" yaml:"monsterName"`
	MonsterType string `json:"monsterType" yaml:"monsterType"`
	Splits      string `json:"splits,omitempty" yaml:"splits,omitempty"`
}

// IsSet reports whether chain, token and protocol are all present. A config
// missing any of them must be treated as absent.
func (c PaymentConfig) IsSet() bool {
	return strings.TrimSpace(c.Chain) != "" &&
		strings.TrimSpace(c.Token) != "" &&
		strings.TrimSpace(c.Protocol) != ""
}

func (c PaymentConfig) withDefaults() PaymentConfig {
	if c.MonsterName == "" {
		c.MonsterName = DefaultMonsterName
	}
	if c.MonsterType == "" {
		c.MonsterType = DefaultMonsterType
	}
	return c
}

// Record is one text record write.
type Record struct {
	Key   string
	Value string
}

// Records lists every text record a config write sets, in ConfigKeys order.
// Splits are always written so that clearing them takes effect.
func (c PaymentConfig) Records() []Record {
	return []Record{
		{KeyChain, c.Chain},
		{KeyToken, c.Token},
		{KeyProtocol, c.Protocol},
		{KeyMonsterName, c.MonsterName},
		{KeyMonsterType, c.MonsterType},
		{KeySplits, c.Splits},
	}
}

func configFromRecords(values map[string]string) PaymentConfig {
	return PaymentConfig{
		Chain:       values[KeyChain],
		Token:       values[KeyToken],
		Protocol:    values[KeyProtocol],
		MonsterName: values[KeyMonsterName],
		MonsterType: values[KeyMonsterType],
		Splits:      values[KeySplits],
	}.withDefaults()
}
