package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
)

// GetQueryCmd returns the cli query commands for the vest module
func GetQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "vest",
		Short:                      "Querying commands for the vest module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdQueryPool(),
		CmdQueryInvestment(),
		CmdQueryInvestorPositions(),
		CmdQueryPendingMaturities(),
	)

	return cmd
}

// CmdQueryPool returns the command to query a pool and its running totals
func CmdQueryPool() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool [pool-id]",
		Short: "Query a pool and its running totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID := args[0]

			// For MVP demo, return sample pool
			pool := map[string]interface{}{
				"pool_id":     poolID,
				"name":        "Treasury Notes",
				"share_denom": "share/" + poolID,
				"active":      true,
				"config": map[string]interface{}{
					"lock_duration":      "90d",
					"min_investment":     "1000000",
					"expected_rate_bps":  1200,
					"tax_rate_bps":       150,
					"accepting_deposits": true,
				},
				"total_deposited": "250000000",
				"total_withdrawn": "40000000",
				"total_shares":    "210000000",
			}

			output, _ := json.MarshalIndent(pool, "", "  ")
			fmt.Println(string(output))
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryInvestment returns the command to query a single investment
func CmdQueryInvestment() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "investment [pool-id] [investment-id]",
		Short: "Query a single investment by ID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Investment query for %s/%s requires running node connection\n", args[0], args[1])
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryInvestorPositions returns the command to query positions by investor
func CmdQueryInvestorPositions() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "positions [investor]",
		Short: "Query all positions held by an investor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Positions query for investor: %s requires running node connection\n", args[0])
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryPendingMaturities returns the command to list locks that have elapsed
func CmdQueryPendingMaturities() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending-maturities",
		Short: "List investments whose lock has elapsed without a reported return",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Pending maturities query requires running node connection")
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}
