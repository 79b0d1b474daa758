// Package txtypes holds the small, dependency-free types shared between
// pkg/contractclient and pkg/txlistener so neither package needs to import
// the other.
package txtypes

// SendKind selects how a contract invocation should be broadcast.
// Standard covers the common case; the other values exist for parity with
// chains that distinguish relayed / cross-shard submission from a plain
// call, which the executor's execute-order path exercises.
type SendKind int

const (
	Standard SendKind = iota
	CrossShard
)

// TxReceipt is a JSON/string-friendly mirror of go-ethereum's
// *types.Receipt. Amounts and hex-encoded fields travel as strings so they
// survive round-tripping through logs, the status API and gorm columns
// without precision loss.
type TxReceipt struct {
	TxHash            string    `json:"txHash"`
	BlockNumber       string    `json:"blockNumber"`
	GasUsed           string    `json:"gasUsed"`
	EffectiveGasPrice string    `json:"effectiveGasPrice"`
	Status            string    `json:"status"` // "0x1" success, "0x0" reverted
	Logs              []LogEntry `json:"logs,omitempty"`
}

// LogEntry is a minimal, string-safe mirror of *types.Log sufficient to
// re-decode events against an ABI after the fact.
type LogEntry struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"` // hex-encoded
}
