package cmd

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tipsea/tipsea-solana/pkg/metrics"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/client"
)

const (
	solLamports = 1_000_000_000

	scenarioTipsMetricName = "Tipseactl/scenario_tips"
)

var (
	decimals       uint8
	payerTokens    uint64
	tipAmount      uint64
	tipCount       int
	withdrawAmount uint64
	transfer       bool
	memoText       string
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Initialize a fund, issue claims, redeem them and withdraw the remainder",
	Args:  cobra.NoArgs,
	RunE:  runScenario,
}

func init() {
	rootCmd.AddCommand(scenarioCmd)

	scenarioCmd.Flags().Uint8Var(&decimals, "decimals", 6, "decimals of the underlying mint")
	scenarioCmd.Flags().Uint64Var(&payerTokens, "payer-tokens", 1_000_000_000, "underlying tokens minted to the payer, in base units")
	scenarioCmd.Flags().Uint64Var(&tipAmount, "tip-amount", 100_000_000, "amount backing each claim, in base units")
	scenarioCmd.Flags().IntVar(&tipCount, "tips", 2, "number of claims to issue")
	scenarioCmd.Flags().Uint64Var(&withdrawAmount, "withdraw", 0, "amount the authority withdraws at the end, in base units")
	scenarioCmd.Flags().BoolVar(&transfer, "transfer", true, "send the first claim to a second holder before redeeming it")
	scenarioCmd.Flags().StringVar(&memoText, "memo", "enjoy", "memo attached to claim transfers")
}

type participant struct {
	name string
	key  ed25519.PrivateKey
}

func (p participant) public() ed25519.PublicKey {
	return p.key.Public().(ed25519.PublicKey)
}

func newParticipant(ctx context.Context, name string, lamports uint64) (participant, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return participant{}, errors.Wrap(err, "error generating keypair")
	}

	p := participant{name: name, key: key}
	if lamports > 0 {
		if _, err := tipseaClient.RequestAirdrop(ctx, p.public(), lamports); err != nil {
			return participant{}, errors.Wrapf(err, "error funding %s", name)
		}
	}
	return p, nil
}

func runScenario(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if tipCount < 1 {
		return errors.New("at least one tip is required")
	}

	authority, err := newParticipant(ctx, "authority", 10*solLamports)
	if err != nil {
		return err
	}
	issuer, err := newParticipant(ctx, "issuer", uint64(tipCount+1)*solLamports)
	if err != nil {
		return err
	}
	payer, err := newParticipant(ctx, "payer", solLamports)
	if err != nil {
		return err
	}
	holder, err := newParticipant(ctx, "holder", solLamports)
	if err != nil {
		return err
	}
	receiver, err := newParticipant(ctx, "receiver", solLamports)
	if err != nil {
		return err
	}
	creator, err := newParticipant(ctx, "creator", 0)
	if err != nil {
		return err
	}

	_, mintKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return errors.Wrap(err, "error generating underlying mint")
	}
	mint := mintKey.Public().(ed25519.PublicKey)

	if _, err := tipseaClient.CreateMint(ctx, authority.key, mintKey, authority.public(), decimals); err != nil {
		return errors.Wrap(err, "error creating underlying mint")
	}
	if _, err := tipseaClient.MintTo(ctx, authority.key, mint, payer.public(), payerTokens); err != nil {
		return errors.Wrap(err, "error minting underlying tokens")
	}

	fund, err := tipseaClient.InitializeFund(ctx, authority.key, mint)
	if err != nil {
		return errors.Wrap(err, "error initializing fund")
	}
	log.WithFields(logrus.Fields{
		"fund": base58.Encode(fund),
		"mint": base58.Encode(mint),
	}).Info("fund initialized")

	claims := make([]*client.MintNftResult, 0, tipCount)
	for i := 0; i < tipCount; i++ {
		res, err := tipseaClient.MintNft(ctx, &client.MintNftArgs{
			MintAuthority: issuer.key,
			Payer:         payer.key,
			Recipient:     holder.public(),
			Creator:       creator.public(),
			Mint:          mint,
			Amount:        tipAmount,
			Name:          fmt.Sprintf("Tipsea #%d", i+1),
			Symbol:        "TIP",
			Uri:           fmt.Sprintf("https://tipsea.example/claims/%d.json", i+1),
		})
		if err != nil {
			return errors.Wrapf(err, "error issuing claim %d", i+1)
		}

		log.WithFields(logrus.Fields{
			"claim_mint": base58.Encode(res.ClaimMint),
			"signature":  base58.Encode(res.Signature[:]),
		}).Info("claim issued")
		claims = append(claims, res)
	}
	metrics.RecordCount(ctx, scenarioTipsMetricName, uint64(len(claims)))

	participants := []participant{authority, issuer, payer, holder, receiver, creator}
	if err := printBalances(ctx, "after issuance", mint, participants); err != nil {
		return err
	}

	for i, claim := range claims {
		redeemer := holder
		if i == 0 && transfer {
			if _, err := tipseaClient.SendNft(ctx, holder.key, claim.ClaimMint, receiver.public(), memoText); err != nil {
				return errors.Wrap(err, "error sending claim")
			}
			redeemer = receiver
		}

		if _, err := tipseaClient.Redeem(ctx, redeemer.key, mint, claim.ClaimMint); err != nil {
			return errors.Wrapf(err, "error redeeming claim %d", i+1)
		}

		tip, err := tipseaClient.GetTip(ctx, claim.ClaimMint)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"claim_mint": base58.Encode(claim.ClaimMint),
			"redeemer":   redeemer.name,
			"state":      tip.State.String(),
		}).Info("claim redeemed")
	}

	if withdrawAmount > 0 {
		if _, err := tipseaClient.Withdraw(ctx, authority.key, mint, authority.public(), withdrawAmount); err != nil {
			return errors.Wrap(err, "error withdrawing from fund")
		}
	}

	if err := printBalances(ctx, "after redemption", mint, participants); err != nil {
		return err
	}
	return printFund(ctx, mint)
}

func printBalances(ctx context.Context, title string, mint ed25519.PublicKey, participants []participant) error {
	fmt.Printf("\n%s\n", title)
	fmt.Printf("%-10s %-44s %20s %20s\n", "account", "address", "SOL", "tokens")

	for _, p := range participants {
		lamports, err := tipseaClient.GetLamports(ctx, p.public())
		if err != nil {
			return err
		}
		tokens, err := tipseaClient.GetTokenBalance(ctx, p.public(), mint)
		if err != nil {
			return err
		}

		fmt.Printf(
			"%-10s %-44s %20s %20s\n",
			p.name,
			base58.Encode(p.public()),
			client.FormatAmount(lamports, 9),
			client.FormatAmount(tokens, decimals),
		)
	}

	vault, err := tipseaClient.GetFundBalance(ctx, mint)
	if err != nil {
		return err
	}
	fmt.Printf("%-10s %-44s %20s %20s\n", "vault", "", "", client.FormatAmount(vault, decimals))
	return nil
}

func printFund(ctx context.Context, mint ed25519.PublicKey) error {
	fund, err := tipseaClient.GetFund(ctx, mint)
	if err != nil {
		return err
	}

	fmt.Printf("\nfund\n")
	fmt.Printf("%-16s %s\n", "authority", base58.Encode(fund.Authority))
	fmt.Printf("%-16s %s\n", "vault", base58.Encode(fund.Vault))
	fmt.Printf("%-16s %d\n", "tips", fund.NumTips)
	fmt.Printf("%-16s %s\n", "deposited", client.FormatAmount(fund.TotalDeposited, decimals))
	fmt.Printf("%-16s %s\n", "redeemed", client.FormatAmount(fund.TotalRedeemed, decimals))
	fmt.Printf("%-16s %s\n", "withdrawn", client.FormatAmount(fund.TotalWithdrawn, decimals))
	return nil
}
