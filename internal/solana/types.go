package solana

// Transaction represents a Solana transaction fetched with json encoding.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMeta contains transaction metadata.
type TransactionMeta struct {
	Err               interface{}
	LogMessages       []string
	InnerInstructions []InnerInstructions
	PostTokenBalances []TokenBalance
	LoadedAddresses   *LoadedAddresses
}

// TransactionMessage contains the compiled transaction message.
type TransactionMessage struct {
	AccountKeys  []string
	Instructions []CompiledInstruction
}

// CompiledInstruction references accounts by index into the full account list.
type CompiledInstruction struct {
	ProgramIDIndex int
	Accounts       []int
	Data           string // base58
}

// InnerInstructions are CPI instructions issued by top-level instruction Index.
type InnerInstructions struct {
	Index        int
	Instructions []CompiledInstruction
}

// TokenBalance is a post-execution SPL token balance entry.
type TokenBalance struct {
	AccountIndex int
	Mint         string
	Owner        string
}

// LoadedAddresses are address lookup table entries of a v0 transaction.
type LoadedAddresses struct {
	Writable []string
	Readonly []string
}

// AccountKeys returns static keys followed by loaded writable and readonly
// addresses, the order instruction account indices refer to.
func (tx *Transaction) AccountKeys() []string {
	if tx == nil || tx.Message == nil {
		return nil
	}
	keys := make([]string, 0, len(tx.Message.AccountKeys))
	keys = append(keys, tx.Message.AccountKeys...)
	if tx.Meta != nil && tx.Meta.LoadedAddresses != nil {
		keys = append(keys, tx.Meta.LoadedAddresses.Writable...)
		keys = append(keys, tx.Meta.LoadedAddresses.Readonly...)
	}
	return keys
}

// AllInstructions returns top-level instructions followed by inner instructions.
func (tx *Transaction) AllInstructions() []CompiledInstruction {
	if tx == nil || tx.Message == nil {
		return nil
	}
	out := make([]CompiledInstruction, 0, len(tx.Message.Instructions))
	out = append(out, tx.Message.Instructions...)
	if tx.Meta != nil {
		for _, inner := range tx.Meta.InnerInstructions {
			out = append(out, inner.Instructions...)
		}
	}
	return out
}
