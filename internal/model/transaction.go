package model

import "time"

type TransactionState string

const (
	TransactionSuccess TransactionState = "success"
	TransactionPending TransactionState = "pending"
	TransactionFailed  TransactionState = "failed"
)

type TransactionStatus struct {
	Hash        string           `json:"hash"`
	BlockNumber uint64           `json:"blockNumber"`
	Timestamp   *time.Time       `json:"timestamp,omitempty"`
	From        string           `json:"from"`
	To          string           `json:"to"`
	GasUsed     uint64           `json:"gasUsed"`
	Status      TransactionState `json:"status"`
	ExplorerURL string           `json:"explorerUrl"`
}
