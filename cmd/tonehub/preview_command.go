package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tonehub/internal/api"
	"tonehub/internal/app"
	"tonehub/internal/preview"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var mute bool

	cmd := &cobra.Command{
		Use:   "preview <id>",
		Short: "Audition an impulse response through a synthesized burst",
		Long: `Fetch an impulse response, convolve it with a short low sine burst and play
the result. Only IR items with an http(s) location can be previewed. Press
Ctrl-C to stop early.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if mute {
				ctx.appOptions.Mute = true
			}
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return ctx.withLibrary(signalCtx, func(rt *app.App, lib *api.Library) error {
				item, err := lib.Lookup(args[0])
				if err != nil {
					return err
				}
				engine := rt.Preview()
				out := cmd.OutOrStdout()

				events := make(chan preview.Event, 8)
				unsubscribe := engine.Subscribe(func(ev preview.Event) {
					select {
					case events <- ev:
					default:
					}
				})
				defer unsubscribe()

				if _, err := engine.Start(signalCtx, item); err != nil {
					return err
				}
				if !ctx.jsonOutput() {
					fmt.Fprintf(out, "Loading %s...\n", item.Name)
				}
				final, err := waitForIdle(signalCtx, engine, events, func(ev preview.Event) {
					if ev.Phase == preview.PhasePlaying && !ctx.jsonOutput() {
						fmt.Fprintf(out, "Playing %s (%s)\n", ev.Session.Name, ev.Session.Duration.Round(10*time.Millisecond))
					}
				})
				if ctx.jsonOutput() {
					status := api.FromSession(final.Session, true, engine.Supported())
					status.Phase = final.Phase.String()
					status.Status = final.Reason
					if encodeErr := writeJSON(cmd, status); encodeErr != nil {
						return encodeErr
					}
					return err
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Preview %s.\n", final.Reason)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&mute, "mute", false, "Run the preview pipeline without opening the audio device")
	return cmd
}

// waitForIdle blocks until the engine publishes a return to Idle. A
// cancelled ctx stops playback and waits for the resulting Idle event.
func waitForIdle(ctx context.Context, engine *preview.Engine, events <-chan preview.Event, onPhase func(preview.Event)) (preview.Event, error) {
	done := ctx.Done()
	for {
		select {
		case ev := <-events:
			if ev.Phase != preview.PhaseIdle {
				onPhase(ev)
				continue
			}
			if ev.Kind == preview.EventError {
				return ev, ev.Err
			}
			return ev, nil
		case <-done:
			done = nil
			if !engine.Stop() {
				return preview.Event{Phase: preview.PhaseIdle, Reason: "stopped"}, nil
			}
		}
	}
}
