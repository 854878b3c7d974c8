package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/orderflow/intake/internal/application/intake"
	"github.com/orderflow/intake/internal/config"
	"github.com/orderflow/intake/internal/domain/catalog"
	"github.com/orderflow/intake/internal/extraction/delivery"
	"github.com/orderflow/intake/internal/extraction/notes"
	"github.com/orderflow/intake/internal/extraction/productline"
	"github.com/orderflow/intake/internal/infrastructure/monitoring/logging"
	"github.com/orderflow/intake/internal/infrastructure/storage/memory"
	"github.com/orderflow/intake/pkg/errors"
)

// newProcessCommand builds `intake process <email-file>`: run the extraction
// pipeline over a text file and print the resulting order as JSON.
func newProcessCommand(opts *rootOptions) *cobra.Command {
	var sender string
	var receivedAt string

	cmd := &cobra.Command{
		Use:   "process <email-file>",
		Short: "Extract an order from an email text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeBadRequest, "read email file")
			}

			email := intake.Email{RawContent: string(raw), Sender: sender}
			if receivedAt != "" {
				ts, err := time.Parse(time.RFC3339, receivedAt)
				if err != nil {
					return errors.InvalidParam("--received-at must be RFC3339").WithCause(err)
				}
				email.ReceivedAt = &ts
			}

			service, err := buildService(cfg, logger)
			if err != nil {
				return err
			}

			o, err := service.ProcessEmail(cmd.Context(), email)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(o, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "sender email address")
	cmd.Flags().StringVar(&receivedAt, "received-at", "", "receipt timestamp (RFC3339)")
	return cmd
}

// buildService assembles a one-shot intake service over an in-memory store.
func buildService(cfg *config.Config, logger logging.Logger) (*intake.Service, error) {
	index, err := catalog.Load(cfg.Catalog.Path, nil, cfg.Intake.CatalogSimilarity)
	if err != nil {
		return nil, err
	}

	assembler := intake.NewAssembler(
		productline.NewExtractor(index, nil, cfg.Intake.CandidateSimilarity),
		delivery.NewExtractor(),
		notes.NewExtractor(),
		intake.NewValidator(index, cfg.Intake.SuggestionCount, cfg.Intake.SuggestionSimilarity),
		cfg.Intake.KeepConfidence,
	)
	return intake.NewService(assembler, memory.NewOrderRepository(), nil, nil, logger), nil
}
