package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/credrotate/internal/password"
)

// NewPasswordCommand prints generated passwords
func NewPasswordCommand(g *Globals) *cobra.Command {
	var (
		count  int
		policy = password.DefaultPolicy()
	)

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Generate passwords with the rotation policy",
		Long: `Print passwords the way createSecret generates them: at least one
lowercase letter, uppercase letter, digit and special character.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := policy.Validate(); err != nil {
				return err
			}

			gen := password.NewGenerator(policy)
			for i := 0; i < count; i++ {
				pw, err := gen.Generate()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), pw)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&policy.Length, "length", policy.Length, "Password length")
	cmd.Flags().StringVar(&policy.SpecialCharacters, "special", policy.SpecialCharacters, "Special characters to draw from")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of passwords to print")

	return cmd
}
