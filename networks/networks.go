package networks

import (
	"sync"
)

var (
	cachedNetwork Network
	mu            sync.Mutex
)

// NetworkString is bound to the --network flag.
var NetworkString string

// CurrentNetwork returns the network selected on the command line. Commands
// validate the flag with SetNetwork first, so mainnet is only the answer when
// no network was given.
func CurrentNetwork() Network {
	mu.Lock()
	defer mu.Unlock()
	if cachedNetwork != nil {
		return cachedNetwork
	}
	if NetworkString == "" {
		cachedNetwork = EthereumMainnet
		return cachedNetwork
	}
	n, err := GetNetwork(NetworkString)
	if err != nil {
		cachedNetwork = EthereumMainnet
		return cachedNetwork
	}
	cachedNetwork = n
	return cachedNetwork
}

// SetNetwork switches the current network. Unknown names are rejected and
// leave the current network untouched.
func SetNetwork(networkStr string) error {
	n, err := GetNetwork(networkStr)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	cachedNetwork = n
	NetworkString = networkStr
	return nil
}
