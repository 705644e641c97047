package cli

import (
	"github.com/spf13/cobra"

	"github.com/chicommerce/catalog-api/internal/utils"
)

type genKeyResult struct {
	Key  string `json:"key"`
	Hash string `json:"hash,omitempty"`
}

// NewGenKeyCommand creates the genkey command.
func NewGenKeyCommand(rootOpts *RootOptions) *cobra.Command {
	var hash bool

	cmd := &cobra.Command{
		Use:   "genkey",
		Short: "Generate an admin API key",
		Long: `Generate a random admin API key. With --hash the bcrypt hash is printed as
well; put the hash in ADMIN_API_KEY and hand the key to the operator.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := utils.GenerateAdminKey()
			if err != nil {
				return err
			}
			result := genKeyResult{Key: key}
			text := "key:  " + key + "\n"
			if hash {
				if result.Hash, err = utils.HashAPIKey(key); err != nil {
					return err
				}
				text += "hash: " + result.Hash + "\n"
			}
			return newPrinter(rootOpts, cmd.OutOrStdout()).print(text, result)
		},
	}

	cmd.Flags().BoolVar(&hash, "hash", false, "also print the bcrypt hash for ADMIN_API_KEY")
	return cmd
}
