package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached orders, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders := deps.cache().List(cmd.Context())
			if len(orders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no cached orders")
				return nil
			}

			for _, o := range orders {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s x%d\t%s\t%s\n",
					o.ID, o.Status, o.ProductName, o.Quantity, o.TotalPrice.String(),
					o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			return nil
		},
	}
}
