package chains

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type Blockchain struct {
	ID    uint64 `json:"id"`
	IDHex string `json:"idHex"`
	Name  string `json:"name"`
}

var (
	Array = []*Blockchain{
		{ID: 1, IDHex: "0x1", Name: "Ethereum Mainnet"},
		{ID: 3, IDHex: "0x3", Name: "Ropsten Testnet"},
		{ID: 4, IDHex: "0x4", Name: "Rinkeby Testnet"},
		{ID: 5, IDHex: "0x5", Name: "Goerli Testnet"},
		{ID: 42, IDHex: "0x2a", Name: "Kovan Testnet"},
		{ID: 11155111, IDHex: "0xaa36a7", Name: "Sepolia Testnet"},
		{ID: 137, IDHex: "0x89", Name: "Polygon"},
		{ID: 80001, IDHex: "0x13881", Name: "Polygon Mumbai"},
		{ID: 56, IDHex: "0x38", Name: "BNB Smart Chain"},
		{ID: 97, IDHex: "0x61", Name: "BNB Smart Chain Testnet"},
		{ID: 43114, IDHex: "0xa86a", Name: "Avalanche"},
		{ID: 43113, IDHex: "0xa869", Name: "Avalanche Fuji"},
		{ID: 250, IDHex: "0xfa", Name: "Fantom"},
		{ID: 25, IDHex: "0x19", Name: "Cronos"},
	}

	Mapping = make(map[uint64]*Blockchain, len(Array))
)

func init() {
	for _, chain := range Array {
		Mapping[chain.ID] = chain
	}
}

// Parse reads a chain id given as 0x-prefixed hex or as decimal.
func Parse(chainID string) (uint64, bool) {
	id := strings.TrimSpace(chainID)
	if len(id) > 2 && (strings.HasPrefix(id, "0x") || strings.HasPrefix(id, "0X")) {
		digits := strings.TrimLeft(id[2:], "0")
		if digits == "" {
			return 0, true
		}
		n, err := hexutil.DecodeUint64("0x" + digits)
		return n, err == nil
	}
	n, err := strconv.ParseUint(id, 10, 64)
	return n, err == nil
}

// Lookup returns the known network for chainID, nil when unknown.
func Lookup(chainID string) *Blockchain {
	id, ok := Parse(chainID)
	if !ok {
		return nil
	}
	return Mapping[id]
}

// DisplayName renders chainID for humans. Unknown ids keep their raw form.
func DisplayName(chainID string) string {
	if chain := Lookup(chainID); chain != nil {
		return chain.Name
	}
	return fmt.Sprintf("Unknown Chain (%s)", chainID)
}

// Hex returns the canonical hex form of chainID, or chainID itself when it
// cannot be parsed.
func Hex(chainID string) string {
	id, ok := Parse(chainID)
	if !ok {
		return chainID
	}
	return hexutil.EncodeUint64(id)
}
