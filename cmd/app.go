package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/feedme/config"
	"github.com/tranvictor/feedme/engine"
	"github.com/tranvictor/feedme/ens"
	"github.com/tranvictor/feedme/feeders"
	"github.com/tranvictor/feedme/lifi"
	"github.com/tranvictor/feedme/networks"
	"github.com/tranvictor/feedme/quote"
	"github.com/tranvictor/feedme/ui"
	"github.com/tranvictor/feedme/util"
	"github.com/tranvictor/feedme/util/account"
	"github.com/tranvictor/feedme/util/cache"
	"github.com/tranvictor/feedme/util/monitor"
)

const httpTimeout = 20 * time.Second

var errNoKey = errors.New("no signing key: pass --keystore or --privkey")

// buildEngine connects the engine to mainnet for names, the aggregator for
// quotes and every supported chain's history provider for feeds.
func buildEngine() *engine.Engine {
	client := &http.Client{Timeout: httpTimeout}

	cachePath := settings.CachePath
	if cachePath == "" {
		cachePath = cache.DefaultPath()
	}
	mainnet := util.EthReader(networks.EthereumMainnet, settings)
	resolver := ens.NewResolver(mainnet, networks.EthereumMainnet.MultiCallContract(), cache.New(cachePath), log)

	aggregator := lifi.NewClient(
		settings.Aggregator.BaseURL,
		settings.Aggregator.APIKey,
		settings.Aggregator.Integrator,
		client,
		log,
	)

	allowances := engine.ChainAllowances{}
	for _, n := range networks.GetSupportedNetworks() {
		allowances[n.GetChainID()] = util.EthReader(n, settings)
	}

	return engine.New(engine.Options{
		Names:      resolver,
		OwnedNames: ens.NewSubgraph(settings.SubgraphURL, client),
		Quoter:     quote.NewRouter(aggregator, log),
		Feeds:      feeders.NewAggregator(util.TransferHistories(settings, client, log), nil, resolver, log),
		Allowances: allowances,
	}, log)
}

// walletBackends connects a wallet to any supported chain.
func walletBackends(chainID uint64) (account.Backend, error) {
	n, err := networks.GetNetworkByID(chainID)
	if err != nil {
		return account.Backend{}, err
	}
	return account.Backend{
		Reader:      util.EthReader(n, settings),
		Broadcaster: util.EthBroadcaster(n, settings, log),
	}, nil
}

func txMonitor(chainID uint64) (*monitor.TxMonitor, error) {
	n, err := networks.GetNetworkByID(chainID)
	if err != nil {
		return nil, err
	}
	return util.EthTxMonitor(n, settings), nil
}

// unlockAccount opens the key given on the command line. When --from is set
// the key must belong to that address.
func unlockAccount() (*account.Account, error) {
	var (
		acc *account.Account
		err error
	)
	switch {
	case config.Keystore != "":
		pwd, perr := account.ReadPassword("Keystore password: ")
		if perr != nil {
			return nil, perr
		}
		acc, err = account.NewKeystoreAccount(config.Keystore, pwd)
	case config.PrivKeyFile != "":
		acc, err = account.NewPrivateKeyFileAccount(config.PrivKeyFile)
	default:
		return nil, errNoKey
	}
	if err != nil {
		return nil, err
	}
	if err := checkFrom(config.From, acc.Address()); err != nil {
		return nil, err
	}
	return acc, nil
}

func checkFrom(from string, unlocked ethcommon.Address) error {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil
	}
	if ethcommon.HexToAddress(from) != unlocked {
		return fmt.Errorf("unlocked key is %s, not %s", unlocked.Hex(), from)
	}
	return nil
}

// newWallet starts on the --network chain and asks before switching away
// from it unless --yes is set.
func newWallet(acc *account.Account) *account.Wallet {
	w := account.NewWallet(acc, networks.CurrentNetwork().GetChainID(), walletBackends, log)
	w.OnSwitch(func(from, to uint64) bool {
		if config.Yes {
			return true
		}
		return appUI.Confirm(
			fmt.Sprintf("Switch wallet from %s to %s?", ui.ChainName(from), ui.ChainName(to)),
			true,
		)
	})
	return w
}
