package decoder

// Known program and account addresses.
const (
	// PumpFunProgram is the pump.fun bonding curve program ID.
	PumpFunProgram = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
	// LaunchpadProgram is the Raydium LaunchLab program ID.
	LaunchpadProgram = "LanMV9sAd7wArD4vJFi2qDdfnVhFxYSUg6eADduJ3uj"
	// LaunchpadAuthority owns launchpad pool vaults.
	LaunchpadAuthority = "WLHv2UAZm6z4KyaaELi5pjdbJh6RESMva1Rnn8pJVVh"

	WSOLMint = "So11111111111111111111111111111111111111112"
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDTMint = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

// IsQuoteMint reports whether mint is one of the launchpad quote assets.
func IsQuoteMint(mint string) bool {
	switch mint {
	case WSOLMint, USDCMint, USDTMint:
		return true
	}
	return false
}

// DiscriminatorSize is the length of the tag prefix on every payload.
const DiscriminatorSize = 8

// Discriminator is the 8-byte tag prefix identifying a payload layout.
type Discriminator [DiscriminatorSize]byte

// pump.fun event discriminators.
var (
	CreateEventDiscriminator   = Discriminator{27, 114, 169, 77, 222, 235, 99, 118}
	TradeEventDiscriminator    = Discriminator{189, 219, 127, 211, 78, 230, 97, 238}
	CompleteEventDiscriminator = Discriminator{95, 114, 97, 156, 212, 46, 152, 8}
)

// Launchpad instruction discriminators.
var (
	InitializeDiscriminator   = Discriminator{175, 175, 109, 31, 13, 152, 155, 237}
	BuyExactInDiscriminator   = Discriminator{250, 234, 13, 123, 213, 156, 19, 236}
	SellExactInDiscriminator  = Discriminator{149, 39, 222, 155, 211, 124, 152, 26}
	BuyExactOutDiscriminator  = Discriminator{24, 211, 116, 40, 105, 3, 153, 56}
	SellExactOutDiscriminator = Discriminator{95, 200, 71, 34, 8, 9, 11, 166}
)
