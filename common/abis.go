package common

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const multicallABI = `[{"constant":false,"inputs":[{"components":[{"name":"target","type":"address"},{"name":"callData","type":"bytes"}],"name":"calls","type":"tuple[]"}],"name":"aggregate","outputs":[{"name":"blockNumber","type":"uint256"},{"name":"returnData","type":"bytes[]"}],"payable":false,"stateMutability":"nonpayable","type":"function"}]`

const erc20ABI = `[{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}]`

const ensRegistryABI = `[{"inputs":[{"name":"node","type":"bytes32"}],"name":"owner","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},{"inputs":[{"name":"node","type":"bytes32"}],"name":"resolver","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}]`

const ensResolverABI = `[{"inputs":[{"name":"node","type":"bytes32"},{"name":"key","type":"string"}],"name":"text","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},{"inputs":[{"name":"node","type":"bytes32"},{"name":"key","type":"string"},{"name":"value","type":"string"}],"name":"setText","outputs":[],"stateMutability":"nonpayable","type":"function"},{"inputs":[{"name":"data","type":"bytes[]"}],"name":"multicall","outputs":[{"name":"results","type":"bytes[]"}],"stateMutability":"nonpayable","type":"function"},{"inputs":[{"name":"node","type":"bytes32"}],"name":"addr","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},{"inputs":[{"name":"node","type":"bytes32"}],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"}]`

const nameWrapperABI = `[{"inputs":[{"name":"id","type":"uint256"}],"name":"ownerOf","outputs":[{"name":"owner","type":"address"}],"stateMutability":"view","type":"function"}]`

const distributorABI = `[{"inputs":[{"name":"token","type":"address"},{"name":"recipients","type":"address[]"},{"name":"bps","type":"uint256[]"}],"name":"distribute","outputs":[],"stateMutability":"nonpayable","type":"function"},{"inputs":[{"name":"recipients","type":"address[]"},{"name":"bps","type":"uint256[]"}],"name":"distributeETH","outputs":[],"stateMutability":"payable","type":"function"},{"inputs":[{"name":"token","type":"address"},{"name":"aavePool","type":"address"},{"name":"recipients","type":"address[]"},{"name":"bps","type":"uint256[]"}],"name":"distributeToAave","outputs":[],"stateMutability":"nonpayable","type":"function"}]`

const lendingPoolABI = `[{"inputs":[{"name":"asset","type":"address"},{"name":"amount","type":"uint256"},{"name":"onBehalfOf","type":"address"},{"name":"referralCode","type":"uint16"}],"name":"deposit","outputs":[],"stateMutability":"nonpayable","type":"function"}]`

func mustParseABI(raw string) *abi.ABI {
	result, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return &result
}

var (
	multicall   = mustParseABI(multicallABI)
	erc20       = mustParseABI(erc20ABI)
	ensRegistry = mustParseABI(ensRegistryABI)
	ensResolver = mustParseABI(ensResolverABI)
	nameWrapper = mustParseABI(nameWrapperABI)
	distributor = mustParseABI(distributorABI)
	lendingPool = mustParseABI(lendingPoolABI)
)

func GetMultiCallABI() *abi.ABI { return multicall }

func GetERC20ABI() *abi.ABI { return erc20 }

func GetENSRegistryABI() *abi.ABI { return ensRegistry }

// GetENSResolverABI covers text records, the batched multicall entry point
// and the addr/name records used for forward and reverse lookups.
func GetENSResolverABI() *abi.ABI { return ensResolver }

func GetNameWrapperABI() *abi.ABI { return nameWrapper }

// GetDistributorABI returns the split distributor ABI. Native and protocol
// payouts are exposed by the deployed contract as distributeETH and
// distributeToAave.
func GetDistributorABI() *abi.ABI { return distributor }

func GetLendingPoolABI() *abi.ABI { return lendingPool }

func PackERC20Data(function string, params ...interface{}) ([]byte, error) {
	return erc20.Pack(function, params...)
}
