package display

import (
	"fmt"
	"strings"
	"time"
)

const DefaultNetwork = "sepolia"

// FormatTimestamp renders unix seconds as a M/D/YYYY date in UTC.
func FormatTimestamp(timestamp int64) string {
	return time.Unix(timestamp, 0).UTC().Format("1/2/2006")
}

func GetEtherscanURL(txHash, network string) string {
	return fmt.Sprintf("%s/tx/%s", explorerBase(network), txHash)
}

func GetEtherscanAddressURL(address, network string) string {
	return fmt.Sprintf("%s/address/%s", explorerBase(network), address)
}

func explorerBase(network string) string {
	network = strings.ToLower(strings.TrimSpace(network))
	switch network {
	case "":
		network = DefaultNetwork
	case "mainnet":
		return "https://etherscan.io"
	}
	return fmt.Sprintf("https://%s.etherscan.io", network)
}
