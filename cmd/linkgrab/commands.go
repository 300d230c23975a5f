package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/elsanchez/linkgrab/internal/config"
	"github.com/elsanchez/linkgrab/internal/domain"
	"github.com/elsanchez/linkgrab/internal/logging"
)

const (
	maxVideoOptions = 3
	maxAudioOptions = 1
)

func newCLIApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, logging.NewLogger(cfg.LogLevel, os.Stderr)), nil
}

func newResolveCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Show the downloadable media of a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newCLIApp(ctx)
			if err != nil {
				return err
			}

			info, err := a.resolver.Resolve(ctx, args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			printInfo(info)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newGetCmd() *cobra.Command {
	var (
		pick  int
		audio bool
	)

	cmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Resolve a link and download one of its medias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newCLIApp(ctx)
			if err != nil {
				return err
			}

			info, err := a.resolver.Resolve(ctx, args[0])
			if err != nil {
				return err
			}

			media, err := chooseMedia(info, pick, audio)
			if err != nil {
				return err
			}

			fmt.Printf("Downloading %s (%s)\n", info.Title, media.Quality)

			t, err := a.engine.Download(ctx, media, info.Title)
			if err != nil {
				return err
			}

			for ev := range t.Events() {
				fmt.Printf("\r  %3d%%", ev.Percent)
			}
			fmt.Println()

			return reportOutcome(t.Wait())
		},
	}

	cmd.Flags().IntVarP(&pick, "pick", "p", 1, "Option number from 'linkgrab resolve'")
	cmd.Flags().BoolVar(&audio, "audio", false, "Download the audio track instead")
	return cmd
}

// options devuelve las mismas opciones que muestra el TUI
func options(info *domain.VideoInfo) []domain.MediaDescriptor {
	return append(info.Videos(maxVideoOptions), info.Audios(maxAudioOptions)...)
}

func chooseMedia(info *domain.VideoInfo, pick int, audio bool) (domain.MediaDescriptor, error) {
	if !info.HasMedia() {
		return domain.MediaDescriptor{}, fmt.Errorf("no downloadable media found for %s, try another link", info.OriginalURL)
	}

	if audio {
		audios := info.Audios(maxAudioOptions)
		if len(audios) == 0 {
			return domain.MediaDescriptor{}, errors.New("this link has no audio track")
		}
		return audios[0], nil
	}

	opts := options(info)
	if pick < 1 || pick > len(opts) {
		return domain.MediaDescriptor{}, fmt.Errorf("--pick must be between 1 and %d", len(opts))
	}
	return opts[pick-1], nil
}

func printInfo(info *domain.VideoInfo) {
	fmt.Printf("%s\n", info.Title)
	fmt.Printf("  Platform: %s\n", info.Platform)
	fmt.Printf("  Duration: %s\n", info.Duration)
	if info.Source == domain.SourceFallback {
		fmt.Println("  Source:   AI preview")
	}

	opts := options(info)
	if len(opts) == 0 {
		fmt.Println("\nNo downloadable media found. Try another link.")
		return
	}

	fmt.Println()
	for i, m := range opts {
		label := m.Quality
		if m.Estimated {
			label += " ~"
		}
		fmt.Printf("  %d. [%s] %s\n", i+1, m.Kind, label)
	}
}

func reportOutcome(outcome domain.DownloadOutcome) error {
	switch outcome.Status {
	case domain.OutcomeCompleted:
		fmt.Printf("✓ Saved to %s\n", outcome.Path)
		return nil
	case domain.OutcomeOpenedExternally:
		fmt.Println("✓ Direct download refused, opened in your browser")
		return nil
	case domain.OutcomeBlocked:
		fmt.Println(outcome.Notice)
		return outcome.Cause
	default:
		if outcome.Cause != nil {
			return outcome.Cause
		}
		return fmt.Errorf("download %s", outcome.Status)
	}
}
