package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"caliper-hq/dccbridge/pkg/dcc"
	"caliper-hq/dccbridge/pkg/engine"
	"caliper-hq/dccbridge/pkg/profile/parser"
)

var convertFlags struct {
	profilePath string
	outputPath  string
	noRepair    bool
}

var convertCmd = &cobra.Command{
	Use:   "convert <certificate.xml>",
	Short: "Convert a source certificate to DCC XML",
	Long: `Convert a single source certificate to a digital calibration
certificate without starting the server.

The mapping profile selects and transforms fields from the source
document. The resulting DCC XML is written to stdout or to the file
given with --output. Warnings and rule errors go to stderr.

Examples:
  # Convert a certificate with a mapping profile
  dccbridge convert --profile profiles/fluke.json cert.xml

  # Write the result to a file
  dccbridge convert -p profiles/fluke.json -o cert-dcc.xml cert.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertFlags.profilePath, "profile", "p", "", "mapping profile file (required)")
	convertCmd.Flags().StringVarP(&convertFlags.outputPath, "output", "o", "", "write DCC XML to file instead of stdout")
	convertCmd.Flags().BoolVar(&convertFlags.noRepair, "no-repair", false, "disable lenient profile parsing")
	convertCmd.MarkFlagRequired("profile")
}

func runConvert(cmd *cobra.Command, args []string) error {
	p := parser.NewParser().WithRepair(!convertFlags.noRepair)
	profile, err := p.Parse(convertFlags.profilePath)
	if err != nil {
		return fmt.Errorf("parsing profile: %w", err)
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading certificate: %w", err)
	}

	mappingEngine := engine.NewMappingEngine(nil, nil)
	conversion, err := mappingEngine.Convert(cmd.Context(), source, profile)
	if err != nil {
		return fmt.Errorf("converting: %w", err)
	}

	for _, re := range conversion.RuleErrors {
		fmt.Fprintf(os.Stderr, "rule error: %s[%d] (%s): %v\n", re.Target, re.Index, re.Type, re.Err)
	}

	xml, warnings := dcc.NewGenerator().Generate(conversion.DCC)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if convertFlags.outputPath != "" {
		if err := os.WriteFile(convertFlags.outputPath, []byte(xml), 0o644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", convertFlags.outputPath)
		return nil
	}

	fmt.Print(xml)
	return nil
}
