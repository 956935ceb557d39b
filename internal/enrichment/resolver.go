package enrichment

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"solana-launch-monitor/internal/decoder"
	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/solana"
)

// Account positions of a launchpad buy instruction.
const (
	buyerIndex = 0
	poolIndex  = 4
	mintIndex  = 9
	quoteIndex = 10
)

// ErrUnresolved is returned when a transaction holds no launchpad buy.
var ErrUnresolved = errors.New("no launchpad buy in transaction")

var poolSeed = []byte("pool")

// Resolver extracts buy accounts from a fetched transaction.
type Resolver struct {
	classifier *decoder.Classifier
}

// NewResolver creates a resolver over the default launchpad discriminators.
func NewResolver() *Resolver {
	return &Resolver{classifier: decoder.NewClassifier()}
}

// Resolve returns the launchpad buy carried by tx. Instruction accounts are
// preferred; post-token balances held by the launchpad authority are the
// fallback when no buy instruction can be decoded.
func (r *Resolver) Resolve(tx *solana.Transaction) (*domain.LaunchpadBuy, error) {
	keys := tx.AccountKeys()
	if len(keys) == 0 {
		return nil, ErrUnresolved
	}

	buy := r.fromInstructions(keys, tx.AllInstructions())
	if buy == nil {
		buy = r.fromBalances(keys, tx.Meta)
	}
	if buy == nil {
		return nil, ErrUnresolved
	}
	buy.Signature = tx.Signature

	pool, err := PoolAddress(buy.Mint, buy.Quote)
	if err != nil {
		return nil, fmt.Errorf("derive pool: %w", err)
	}
	if buy.Pool == "" {
		buy.Pool = pool
	}
	buy.PoolVerified = buy.Pool == pool
	return buy, nil
}

func (r *Resolver) fromInstructions(keys []string, ixs []solana.CompiledInstruction) *domain.LaunchpadBuy {
	for _, ix := range ixs {
		if ix.ProgramIDIndex < 0 || ix.ProgramIDIndex >= len(keys) || keys[ix.ProgramIDIndex] != decoder.LaunchpadProgram {
			continue
		}
		if len(ix.Accounts) <= quoteIndex {
			continue
		}
		data, err := base58.Decode(ix.Data)
		if err != nil {
			continue
		}
		tag := r.classifier.ClassifyFor(decoder.LaunchpadProgram, data)
		if !tag.IsBuy() {
			continue
		}

		account := func(pos int) string {
			idx := ix.Accounts[pos]
			if idx < 0 || idx >= len(keys) {
				return ""
			}
			return keys[idx]
		}
		buy := &domain.LaunchpadBuy{
			Buyer:    account(buyerIndex),
			Pool:     account(poolIndex),
			Mint:     account(mintIndex),
			Quote:    account(quoteIndex),
			ExactOut: tag == decoder.TagBuyExactOut,
		}
		if buy.Mint == "" || buy.Quote == "" {
			continue
		}
		return buy
	}
	return nil
}

func (r *Resolver) fromBalances(keys []string, meta *solana.TransactionMeta) *domain.LaunchpadBuy {
	if meta == nil {
		return nil
	}

	var mint, quote string
	for _, b := range meta.PostTokenBalances {
		if b.Owner != decoder.LaunchpadAuthority {
			continue
		}
		if decoder.IsQuoteMint(b.Mint) {
			if quote == "" {
				quote = b.Mint
			}
			continue
		}
		if mint == "" {
			mint = b.Mint
		}
	}
	if mint == "" {
		return nil
	}
	if quote == "" {
		quote = decoder.WSOLMint
	}
	return &domain.LaunchpadBuy{
		Buyer: keys[0], // fee payer
		Mint:  mint,
		Quote: quote,
	}
}

// PoolAddress derives the launchpad pool state address for mint and quote.
func PoolAddress(mint, quote string) (string, error) {
	mintKey, err := solana.DecodeAddress(mint)
	if err != nil {
		return "", err
	}
	quoteKey, err := solana.DecodeAddress(quote)
	if err != nil {
		return "", err
	}
	addr, _, err := solana.FindProgramAddress([][]byte{poolSeed, mintKey, quoteKey}, decoder.LaunchpadProgram)
	return addr, err
}
