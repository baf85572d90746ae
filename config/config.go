// Package config holds the values bound to command line flags and the
// settings file shared by the CLI and the server.
package config

var (
	ConfigFile string
	LogLevel   string

	// payment intent
	Amount    string
	Token     string
	Chain     string
	Recipient string

	// name config
	Protocol    string
	MonsterName string
	MonsterType string
	Splits      string

	// signing
	From        string
	Keystore    string
	PrivKeyFile string

	Yes               bool
	DontBroadcast     bool
	DontWaitToBeMined bool
	JSONOutput        bool

	Listen string
)
