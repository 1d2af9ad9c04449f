package blockchain

import "github.com/ethereum/go-ethereum/common"

// Multicall3Address is the canonical Multicall3 deployment, identical on
// every chain that carries it.
var Multicall3Address = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")

// WorldChainMorpho is the Morpho Blue deployment on World Chain.
var WorldChainMorpho = common.HexToAddress("0xE741BC7c34758b4caE05062794E8Ae24978AF432")

// World Chain token addresses for the known symbol set.
var (
	WorldChainWLD  = common.HexToAddress("0x2cFc85d8E48F8EAB294be644d9E25C3030863003")
	WorldChainUSDC = common.HexToAddress("0x79A02482A880bCE3F13e09Da970dC34db4CD24d1")
	WorldChainWBTC = common.HexToAddress("0x03C7054BCB39f7b2e5B2c7AcB37583e32D70Cfa3")
	WorldChainWETH = common.HexToAddress("0x4200000000000000000000000000000000000006")
)
