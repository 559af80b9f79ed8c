package cli

import (
	"fmt"

	"github.com/2beens/dailyscore/pkg"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func newHashKeyCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-key <key>",
		Short: "Print the bcrypt hash of a submit key, for DAILYSCORE_SUBMIT_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
				return fmt.Errorf("cost must be within %d-%d", bcrypt.MinCost, bcrypt.MaxCost)
			}
			hash, err := pkg.HashPasswordWithCost(args[0], cost)
			if err != nil {
				return fmt.Errorf("hash key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", 14, "bcrypt cost")

	return cmd
}
