package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/eden-finance/vest-sub001/x/vest/types"
)

const (
	flagMinInvestment  = "min-investment"
	flagMaxInvestment  = "max-investment"
	flagUtilizationCap = "utilization-cap"
	flagTaxRateBps     = "tax-rate-bps"
	flagPaused         = "paused"
	flagTitle          = "title"
	flagDeadline       = "deadline"
)

// GetTxCmd returns the transaction commands for the vest module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "vest",
		Short:                      "Vest module transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdInvest(),
		CmdInvestWithSwap(),
		CmdWithdraw(),
		CmdCreatePool(),
		CmdUpdatePoolConfig(),
		CmdSetPoolActive(),
		CmdSetActualReturns(),
		CmdSetGlobalTaxRate(),
		CmdSetProtocolTreasury(),
		CmdEmergencyWithdraw(),
	)

	return cmd
}

// CmdInvest returns the command to deposit into a pool
func CmdInvest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invest [pool-id] [amount]",
		Short: "Deposit the settlement asset into a time-locked pool",
		Long: `Deposit the settlement asset into a time-locked pool.

Examples:
  edenvestd tx vest invest pool-1 1000000 --from alice
  edenvestd tx vest invest pool-1 1000000 --title "q3 treasury" --from alice`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			title, _ := cmd.Flags().GetString(flagTitle)

			msg := &types.MsgInvest{
				Investor: clientCtx.GetFromAddress().String(),
				PoolID:   args[0],
				Amount:   args[1],
				Title:    title,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String(flagTitle, "", "Optional label for the position")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdInvestWithSwap returns the command to swap into the settlement asset and
// deposit the proceeds in one transaction
func CmdInvestWithSwap() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invest-with-swap [pool-id] [token-in] [amount-in] [min-amount-out]",
		Short: "Swap a token for the settlement asset and deposit the proceeds",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			deadline, err := cmd.Flags().GetInt64(flagDeadline)
			if err != nil {
				return err
			}
			title, _ := cmd.Flags().GetString(flagTitle)

			msg := &types.MsgInvestWithSwap{
				Investor:     clientCtx.GetFromAddress().String(),
				PoolID:       args[0],
				TokenIn:      args[1],
				AmountIn:     args[2],
				MinAmountOut: args[3],
				Deadline:     deadline,
				Title:        title,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().Int64(flagDeadline, 0, "Unix time after which the swap must not execute")
	cmd.Flags().String(flagTitle, "", "Optional label for the position")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdWithdraw returns the command to redeem a matured position
func CmdWithdraw() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw [pool-id] [receipt-id] [share-amount]",
		Short: "Redeem a matured position for principal plus return",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgWithdraw{
				Investor:    clientCtx.GetFromAddress().String(),
				PoolID:      args[0],
				ReceiptID:   args[1],
				ShareAmount: args[2],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdCreatePool returns the command to register a new pool
func CmdCreatePool() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-pool [name] [admin] [custodian] [reporter] [lock-days] [rate-bps]",
		Short: "Register a new investment pool (authority only)",
		Long: `Register a new investment pool. The lock is given in days and the
expected rate in basis points.

Example:
  edenvestd tx vest create-pool "Treasury Notes" eden1adm... eden1cus... eden1rep... 90 1200 \
    --min-investment 1000000 --tax-rate-bps 150 --from authority`,
		Args: cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			lockDays, err := strconv.ParseInt(args[4], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid lock days: %v", err)
			}
			rateBps, err := strconv.ParseInt(args[5], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rate: %v", err)
			}

			minInvestment, _ := cmd.Flags().GetString(flagMinInvestment)
			maxInvestment, _ := cmd.Flags().GetString(flagMaxInvestment)
			utilizationCap, _ := cmd.Flags().GetString(flagUtilizationCap)
			taxRateBps, _ := cmd.Flags().GetInt64(flagTaxRateBps)
			paused, _ := cmd.Flags().GetBool(flagPaused)

			msg := &types.MsgCreatePool{
				Authority: clientCtx.GetFromAddress().String(),
				Name:      args[0],
				Admin:     args[1],
				Custodian: args[2],
				Reporter:  args[3],
				Config: types.MsgPoolConfig{
					LockDuration:      lockDays * 24 * 3600,
					MinInvestment:     minInvestment,
					MaxInvestment:     maxInvestment,
					UtilizationCap:    utilizationCap,
					ExpectedRateBps:   rateBps,
					TaxRateBps:        taxRateBps,
					AcceptingDeposits: !paused,
				},
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String(flagMinInvestment, "1", "Smallest accepted deposit")
	cmd.Flags().String(flagMaxInvestment, "0", "Largest accepted deposit, 0 for none")
	cmd.Flags().String(flagUtilizationCap, "0", "Total deposit ceiling, 0 for unbounded")
	cmd.Flags().Int64(flagTaxRateBps, 0, "Pool tax in basis points, 0 for the protocol default")
	cmd.Flags().Bool(flagPaused, false, "Start with deposits paused")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdUpdatePoolConfig returns the command to replace a pool's config
func CmdUpdatePoolConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-pool-config [pool-id] [lock-days] [rate-bps]",
		Short: "Replace a pool's configuration (pool admin only)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			lockDays, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid lock days: %v", err)
			}
			rateBps, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rate: %v", err)
			}

			minInvestment, _ := cmd.Flags().GetString(flagMinInvestment)
			maxInvestment, _ := cmd.Flags().GetString(flagMaxInvestment)
			utilizationCap, _ := cmd.Flags().GetString(flagUtilizationCap)
			taxRateBps, _ := cmd.Flags().GetInt64(flagTaxRateBps)
			paused, _ := cmd.Flags().GetBool(flagPaused)

			msg := &types.MsgUpdatePoolConfig{
				Creator: clientCtx.GetFromAddress().String(),
				PoolID:  args[0],
				Config: types.MsgPoolConfig{
					LockDuration:      lockDays * 24 * 3600,
					MinInvestment:     minInvestment,
					MaxInvestment:     maxInvestment,
					UtilizationCap:    utilizationCap,
					ExpectedRateBps:   rateBps,
					TaxRateBps:        taxRateBps,
					AcceptingDeposits: !paused,
				},
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String(flagMinInvestment, "1", "Smallest accepted deposit")
	cmd.Flags().String(flagMaxInvestment, "0", "Largest accepted deposit, 0 for none")
	cmd.Flags().String(flagUtilizationCap, "0", "Total deposit ceiling, 0 for unbounded")
	cmd.Flags().Int64(flagTaxRateBps, 0, "Pool tax in basis points, 0 for the protocol default")
	cmd.Flags().Bool(flagPaused, false, "Pause deposits")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetPoolActive returns the command to flip a pool's active flag
func CmdSetPoolActive() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-pool-active [pool-id] [true|false]",
		Short: "Activate or deactivate a pool (authority only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			active, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid active flag: %v", err)
			}

			msg := &types.MsgSetPoolActive{
				Authority: clientCtx.GetFromAddress().String(),
				PoolID:    args[0],
				Active:    active,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetActualReturns returns the command to report realized returns
func CmdSetActualReturns() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-actual-returns [pool-id] [id=return,...]",
		Short: "Report realized returns for matured investments (reporter only)",
		Long: `Report realized returns for a batch of matured investments.

Example:
  edenvestd tx vest set-actual-returns pool-1 inv-4=10250,inv-7=9800 --from reporter`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			var ids, returns []string
			for _, pair := range strings.Split(args[1], ",") {
				parts := strings.SplitN(pair, "=", 2)
				if len(parts) != 2 {
					return fmt.Errorf("invalid entry %q (use id=return)", pair)
				}
				ids = append(ids, parts[0])
				returns = append(returns, parts[1])
			}

			msg := &types.MsgSetActualReturns{
				Reporter:      clientCtx.GetFromAddress().String(),
				PoolID:        args[0],
				InvestmentIDs: ids,
				ActualReturns: returns,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetGlobalTaxRate returns the command to update the protocol tax default
func CmdSetGlobalTaxRate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-global-tax-rate [rate-bps]",
		Short: "Update the protocol-wide default tax rate (authority only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			rateBps, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rate: %v", err)
			}

			msg := &types.MsgSetGlobalTaxRate{
				Authority:  clientCtx.GetFromAddress().String(),
				TaxRateBps: rateBps,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetProtocolTreasury returns the command to update the treasury address
func CmdSetProtocolTreasury() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-protocol-treasury [address]",
		Short: "Update the protocol treasury address (authority only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgSetProtocolTreasury{
				Authority: clientCtx.GetFromAddress().String(),
				Address:   args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdEmergencyWithdraw returns the command to sweep stray module funds
func CmdEmergencyWithdraw() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emergency-withdraw [denom] [amount] [reason]",
		Short: "Sweep stray module funds to the treasury (authority only)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgEmergencyWithdraw{
				Authority: clientCtx.GetFromAddress().String(),
				Denom:     args[0],
				Amount:    args[1],
				Reason:    args[2],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
