// Command voicegate-cli is the operator tool for the gateway: config
// validation, capability listing, and version info.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	voicegate "github.com/harborplan/voicegate"
	"github.com/harborplan/voicegate/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:           "voicegate-cli",
		Short:         "Operator tool for the voicegate gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCmd(), newCapabilitiesCmd(), newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a gateway configuration file (JSON/YAML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := voicegate.LoadConfig(args[0])
			if err != nil {
				return err
			}
			if err := voicegate.ValidateConfig(*cfg); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Config is valid")
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "  Origins:\t%d\n", len(cfg.Origins))
			for _, class := range []string{voicegate.ClassSTT, voicegate.ClassTTS, voicegate.ClassLLM} {
				q := cfg.Quotas[class]
				fmt.Fprintf(tw, "  %s:\t%d req / %dms, timeout %v\n",
					class, q.MaxRequests, q.WindowMS, cfg.TimeoutFor(class))
			}
			if sink := cfg.Audit.Sink; sink != "" && sink != "log" {
				fmt.Fprintf(tw, "  Audit sink:\t%s\n", sink)
			}
			return tw.Flush()
		},
	}
}

func newCapabilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "List the gateway's capability endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCLASS\tPATH")
			fmt.Fprintf(tw, "stt\t%s\t/api/voice/stt\n", voicegate.ClassSTT)
			fmt.Fprintf(tw, "tts\t%s\t/api/voice/tts\n", voicegate.ClassTTS)
			fmt.Fprintf(tw, "normalize\t%s\t/api/llm/normalize\n", voicegate.ClassLLM)
			fmt.Fprintf(tw, "polish\t%s\t/api/llm/polish\n", voicegate.ClassLLM)
			return tw.Flush()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
