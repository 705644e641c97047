package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chicommerce/catalog-api/internal/models"
	"github.com/chicommerce/catalog-api/internal/validation"
)

type definitionResult struct {
	Valid bool          `json:"valid"`
	Error string        `json:"error,omitempty"`
	Zones []zoneSummary `json:"zones,omitempty"`
}

type zoneSummary struct {
	Key       string   `json:"key"`
	Type      string   `json:"type"`
	MaxLength *int     `json:"max_length,omitempty"`
	Formats   []string `json:"formats,omitempty"`
}

// NewValidateDefinitionCommand creates the validate-definition command.
func NewValidateDefinitionCommand(rootOpts *RootOptions) *cobra.Command {
	var zonesPath string

	cmd := &cobra.Command{
		Use:   "validate-definition <definition.json|->",
		Short: "Validate a template definition without touching the database",
		Long: `Validate a template definition document. With --zones, the zone records
in the given JSON array are checked against the definition as a template
create would.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "read definition", Err: err}
			}
			var zones []models.ZoneInput
			if zonesPath != "" {
				zr, err := os.ReadFile(zonesPath)
				if err != nil {
					return &ExitError{Code: ExitCommandError, Message: "read zones", Err: err}
				}
				if err := json.Unmarshal(zr, &zones); err != nil {
					return &ExitError{Code: ExitCommandError, Message: "zones must be a JSON array of zone records", Err: err}
				}
			}
			return runValidateDefinition(rootOpts, cmd.OutOrStdout(), raw, zones)
		},
	}

	cmd.Flags().StringVar(&zonesPath, "zones", "", "JSON file with customization zone records to check")
	return cmd
}

func runValidateDefinition(opts *RootOptions, w io.Writer, raw []byte, zones []models.ZoneInput) error {
	p := newPrinter(opts, w)

	def, err := validation.ParseDefinition(raw)
	if err == nil && zones != nil {
		if err = validation.ValidateZoneInputs(zones); err == nil {
			err = validation.CheckZoneKeys(def, zones)
		}
	}
	if err != nil {
		if perr := p.print("invalid: "+err.Error()+"\n", definitionResult{Valid: false, Error: err.Error()}); perr != nil {
			return perr
		}
		return &ExitError{Code: ExitFailure, Message: "definition is invalid", Err: err}
	}

	result := definitionResult{Valid: true}
	var b strings.Builder
	fmt.Fprintf(&b, "valid: %d zones\n", len(def.Zones))
	for _, key := range def.ZoneKeys() {
		spec := def.Zones[key]
		s := zoneSummary{Key: key, Type: string(spec.Type), MaxLength: spec.MaxLength, Formats: spec.Formats}
		result.Zones = append(result.Zones, s)

		line := fmt.Sprintf("  %s: %s", key, spec.Type)
		if spec.MaxLength != nil {
			line += fmt.Sprintf(" (max_length %d)", *spec.MaxLength)
		}
		if len(spec.Formats) > 0 {
			line += " (formats " + strings.Join(spec.Formats, ", ") + ")"
		}
		b.WriteString(line + "\n")
	}
	return p.print(b.String(), result)
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
