package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pratik-mahalle/wardroberec/internal/capture"
	"github.com/pratik-mahalle/wardroberec/internal/catalog"
	apperrors "github.com/pratik-mahalle/wardroberec/internal/pkg/errors"
	"github.com/pratik-mahalle/wardroberec/internal/workflow"
)

func newUploadCmd() *cobra.Command {
	var meta workflow.Metadata

	cmd := &cobra.Command{
		Use:   "upload <image>",
		Short: "Upload a garment photo with its details",
		Long: `Upload a garment photo. Category, color, material and occasion are
required and must be one of the values shown by 'wardrobe options'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			normalized, err := normalizeMetadata(meta)
			if err != nil {
				return err
			}

			sess := workflow.NewCaptureSession(capture.NewFileCamera(args[0]), apiClient.Clothes(), log)
			defer func() {
				if err := sess.Reset(); err != nil {
					log.ErrorWithErr(err, "could not reset capture")
				}
			}()

			ctx := cmd.Context()
			if err := sess.Capture(ctx); err != nil {
				return err
			}
			if err := sess.SetMetadata(normalized); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for {
				conf, err := sess.Upload(ctx)
				if err == nil {
					if getOutputFormat() != "table" {
						return printOutput(out, conf)
					}
					fmt.Fprintf(out, "%s %s (id %d)\n", formatStatus(out, "uploaded"), conf.Message, conf.ID)
					return nil
				}

				fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", formatStatus(out, "failed"), err)
				if apperrors.Code(err) == apperrors.ErrCodeValidation || !confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Retry upload?") {
					return err
				}
			}
		},
	}

	cmd.Flags().StringVar(&meta.Category, "category", "", "garment category (required)")
	cmd.Flags().StringVar(&meta.Color, "color", "", "garment color (required)")
	cmd.Flags().StringVar(&meta.Material, "material", "", "garment material (required)")
	cmd.Flags().StringVar(&meta.Occasion, "occasion", "", "occasion the garment suits (required)")

	return cmd
}

// normalizeMetadata maps each value onto its catalog label. Blank values
// pass through so the upload validation reports them together.
func normalizeMetadata(m workflow.Metadata) (workflow.Metadata, error) {
	var err error
	if m.Category, err = catalog.Normalize(catalog.FieldCategory, m.Category); err != nil {
		return m, err
	}
	if m.Color, err = catalog.Normalize(catalog.FieldColor, m.Color); err != nil {
		return m, err
	}
	if m.Material, err = catalog.Normalize(catalog.FieldMaterial, m.Material); err != nil {
		return m, err
	}
	if m.Occasion, err = catalog.Normalize(catalog.FieldOccasion, m.Occasion); err != nil {
		return m, err
	}
	return m, nil
}

// confirm asks a yes/no question. It answers no without asking when in is
// not an interactive terminal.
func confirm(in io.Reader, out io.Writer, question string) bool {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// parseID parses a positive item id argument
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
