package moralis

import (
	"errors"
	"fmt"
)

// ErrUnknownOperation is returned by URL for an operation with no endpoint
var ErrUnknownOperation = errors.New("unknown operation")

// Operation identifies one upstream ERC-20 endpoint
type Operation string

const (
	WalletBalance     Operation = "wallet_balance"
	WalletTransfers   Operation = "wallet_transfers"
	ContractTransfers Operation = "contract_transfers"
)

// URL joins baseURL (ending in "/") with the sanitized address.
//
//	wallet_balance      <base><address>/erc20
//	wallet_transfers    <base><address>/erc20/transfers
//	contract_transfers  <base>erc20/<address>/transfers
func (op Operation) URL(baseURL, address string) (string, error) {
	switch op {
	case WalletBalance:
		return baseURL + address + "/erc20", nil
	case WalletTransfers:
		return baseURL + address + "/erc20/transfers", nil
	case ContractTransfers:
		return baseURL + "erc20/" + address + "/transfers", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, string(op))
	}
}
