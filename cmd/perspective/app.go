package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	coordinator "github.com/koscakluka/ema-perspective/core"
	"github.com/koscakluka/ema-perspective/core/audio/miniaudio"
	"github.com/koscakluka/ema-perspective/core/enrichment/openai"
	"github.com/koscakluka/ema-perspective/core/realtime"
	"github.com/koscakluka/ema-perspective/internal/config"
)

func run(ctx context.Context, opts runOptions) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}
	if opts.lexicon != "" {
		cfg.LexiconPath = opts.lexicon
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	matcher, err := cfg.Matcher()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var program *tea.Program
	coordinatorOpts := []coordinator.CoordinatorOption{
		coordinator.WithConnector(connector(cfg)),
		coordinator.WithMatcher(matcher),
		coordinator.WithTimings(cfg.Timings),
		coordinator.WithSessionSettings(coordinator.SessionSettings{
			Voice:              cfg.Voice,
			TranscriptionModel: cfg.TranscriptionModel,
		}),
		coordinator.WithDefinitionGate(!opts.noDefinition),
		coordinator.WithTranscriptInView(opts.showTranscript),
		coordinator.WithViewCallback(func(v coordinator.View) {
			if program != nil {
				program.Send(viewMsg(v))
			}
		}),
	}
	if cfg.APIKey != "" {
		coordinatorOpts = append(coordinatorOpts, coordinator.WithGateway(openai.NewClient(cfg.APIKey,
			openai.WithModel(cfg.EnrichmentModel),
			openai.WithBaseURL(cfg.EnrichmentBaseURL))))
	}
	if !opts.noAudio {
		device, err := miniaudio.NewClient()
		if err != nil {
			return fmt.Errorf("failed to open audio devices (use --no-audio for text only): %w", err)
		}
		defer device.Close()
		coordinatorOpts = append(coordinatorOpts, coordinator.WithAudioDevice(device))
	}

	c := coordinator.New(coordinatorOpts...)
	program = tea.NewProgram(newModel(c, !opts.noAudio), tea.WithAltScreen(), tea.WithContext(ctx))

	runErr := make(chan error, 1)
	go func() {
		err := c.Run(ctx)
		runErr <- err
		program.Send(runDoneMsg{err: err})
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	cancel()
	if err := <-runErr; err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func connector(cfg config.Config) coordinator.Connector {
	dialer := realtime.NewDialer(
		realtime.WithAPIKey(cfg.APIKey),
		realtime.WithSessionURL(cfg.RealtimeSessionURL),
		realtime.WithModel(cfg.RealtimeModel),
		realtime.WithVoice(cfg.Voice),
		realtime.WithURL(cfg.RealtimeURL),
	)
	return func(ctx context.Context) (coordinator.Channel, error) {
		session, err := dialer.Connect(ctx)
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}
