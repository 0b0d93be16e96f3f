package cli

import (
	"github.com/spf13/cobra"
)

func (c *Cli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoSession: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			c.printVersion()
		},
	}
}

func (c *Cli) printVersion() {
	c.io.Printf("Lingua Client\n")
	c.io.Printf("Version:    %s\n", c.build.Version)
	c.io.Printf("Build Date: %s\n", c.build.BuildDate)
	c.io.Printf("Git Commit: %s\n", c.build.GitCommit)
}
