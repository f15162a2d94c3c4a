package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

type runOptions struct {
	envFile        string
	lexicon        string
	noAudio        bool
	showTranscript bool
	noDefinition   bool
}

var opts runOptions

var rootCmd = &cobra.Command{
	Use:   "perspective",
	Short: "Talk a decision through and build a perspective grid as you go",
	Long: `perspective is a hold-to-talk voice assistant for thinking through decisions.
It keeps track of options, facts and constraints as you talk and proposes
entries for a decision grid that you accept or discard.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), opts)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file with credentials and overrides")
	flags.StringVar(&opts.lexicon, "lexicon", "", "Path to a YAML lexicon overriding confirmation phrases, negation markers and criteria")
	flags.BoolVar(&opts.noAudio, "no-audio", false, "Run without microphone and speaker, text input only")
	flags.BoolVar(&opts.showTranscript, "show-transcript", false, "Show the chat transcript")
	flags.BoolVar(&opts.noDefinition, "no-definition", false, "Skip the problem definition dialogue")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
