package address

import "github.com/ethereum/go-ethereum/common"

// HatcheryProcessorAddress is the well-known account under which every
// hatchery storage slot lives. The trailing bytes spell "hatch".
var HatcheryProcessorAddress = common.HexToAddress("0x0000000000000000000000000000006861746368")
