package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/systmms/credrotate/internal/backend"
	"github.com/systmms/credrotate/internal/credential"
	"github.com/systmms/credrotate/internal/password"
	"github.com/systmms/credrotate/internal/rotation"
	"github.com/systmms/credrotate/internal/secretstore"
)

const simulatedSecretID = "simulated-secret"

// NewSimulateCommand runs a full rotation against an in-memory secret
func NewSimulateCommand(g *Globals) *cobra.Command {
	var (
		username  string
		initial   string
		rotations int
		policy    = password.DefaultPolicy()
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Rotate an in-memory secret through all four steps",
		Long: `Run createSecret, setSecret, testSecret and finishSecret against an
in-memory secret store with the rotation-only backend, then print every
version with its stage labels. Nothing leaves the process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := policy.Validate(); err != nil {
				return err
			}

			store := secretstore.NewMemory()
			seed, err := credential.Record{Username: username}.WithPassword(initial).Encode()
			if err != nil {
				return err
			}
			if err := store.CreateSecret(simulatedSecretID, uuid.NewString(), seed); err != nil {
				return err
			}

			h := rotation.NewHandler(store, backend.RotationOnly{},
				rotation.WithLogger(g.Logger),
				rotation.WithGenerator(password.NewGenerator(policy)),
			)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			for i := 0; i < rotations; i++ {
				token := uuid.NewString()
				for _, step := range rotation.Steps() {
					err := h.Dispatch(ctx, rotation.Event{
						SecretID:           simulatedSecretID,
						ClientRequestToken: token,
						Step:               step.String(),
					})
					if err != nil {
						return fmt.Errorf("rotation %d: %w", i+1, err)
					}
				}
			}

			return printVersions(cmd, store)
		},
	}

	cmd.Flags().StringVar(&username, "username", "app_user", "Username stored in the secret")
	cmd.Flags().StringVar(&initial, "password", "initial-password", "Initial password of the secret")
	cmd.Flags().IntVar(&rotations, "rotations", 1, "Number of rotations to run")
	cmd.Flags().IntVar(&policy.Length, "length", policy.Length, "Generated password length")
	cmd.Flags().StringVar(&policy.SpecialCharacters, "special", policy.SpecialCharacters, "Special characters to draw from")

	return cmd
}

func printVersions(cmd *cobra.Command, store *secretstore.Memory) error {
	ctx := context.Background()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VERSION\tSTAGES\tUSERNAME\tPASSWORD")

	for _, id := range store.Versions(simulatedSecretID) {
		v, err := store.GetSecretValue(ctx, simulatedSecretID, secretstore.VersionSelector{VersionID: id})
		if err != nil {
			return err
		}
		rec, err := credential.Parse(v.SecretString)
		if err != nil {
			return err
		}

		stages := strings.Join(v.Stages, ",")
		if stages == "" {
			stages = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, stages, rec.Username, maskPassword(rec.PasswordString()))
	}
	return w.Flush()
}

// maskPassword keeps the first two characters so versions can be told apart
func maskPassword(pw string) string {
	if len(pw) <= 2 {
		return strings.Repeat("*", len(pw))
	}
	return pw[:2] + strings.Repeat("*", len(pw)-2)
}
