package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"caliper-hq/dccbridge/pkg/cli"
	"caliper-hq/dccbridge/pkg/profile/manager"
	"caliper-hq/dccbridge/pkg/profile/parser"
)

var profilesFlags struct {
	dir    string
	format string
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List mapping profiles",
	Long: `List the mapping profiles found in a profile directory.

Examples:
  # List profiles from the default directory
  dccbridge profiles --dir profiles/

  # JSON output
  dccbridge profiles --dir profiles/ --format json`,
	RunE: listProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)

	profilesCmd.Flags().StringVarP(&profilesFlags.dir, "dir", "d", "", "profile directory (required)")
	profilesCmd.Flags().StringVar(&profilesFlags.format, "format", "text", "output format: text, json")
	profilesCmd.MarkFlagRequired("dir")
}

type profileInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Rules       int    `json:"rules"`
	Source      string `json:"source"`
}

func listProfiles(cmd *cobra.Command, args []string) error {
	profiles, err := manager.New(manager.Config{
		Dir:    profilesFlags.dir,
		Parser: parser.NewParser(),
	})
	if err != nil {
		return err
	}
	if err := profiles.LoadAll(cmd.Context()); err != nil {
		return err
	}

	infos := make([]profileInfo, 0, profiles.Count())
	for _, p := range profiles.List() {
		infos = append(infos, profileInfo{
			Name:        p.Name,
			Description: p.Description,
			Rules:       len(p.Mappings),
			Source:      p.SourceFile,
		})
	}

	if profilesFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, infos)
	}

	if len(infos) == 0 {
		fmt.Println("no profiles found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRULES\tSOURCE\tDESCRIPTION")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", info.Name, info.Rules, info.Source, info.Description)
	}
	return w.Flush()
}
