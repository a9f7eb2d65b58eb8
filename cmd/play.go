package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"beatbridge/client"
	"beatbridge/controller"
	"beatbridge/resolver"
)

var playServer string

var playCmd = &cobra.Command{
	Use:   "play [query or url...]",
	Short: "Queue lookups from a running server and control playback from stdin",
	Long: `play resolves each argument through the server and queues the results.
Commands on stdin:
  t          toggle play/pause
  n          next track
  p          previous track
  a <query>  resolve and append to the queue
  q          quit`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playServer, "server", "http://localhost:8080", "resolver base URL")
}

// lookupFor treats anything that looks like a link as a URL lookup.
func lookupFor(arg string) resolver.LookupRequest {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return resolver.ByURL(arg)
	}
	return resolver.ByQuery(arg)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c := client.New(playServer)

	if _, err := c.Health(ctx); err != nil {
		return fmt.Errorf("resolver at %s is not reachable: %w", playServer, err)
	}

	queue := controller.NewQueue()
	for _, arg := range args {
		track, err := c.SearchAndExtract(ctx, lookupFor(arg))
		if err != nil {
			return fmt.Errorf("failed to resolve %q: %w", arg, err)
		}
		queue.Add(track)
	}

	player := controller.NewPlayer(queue)
	player.NextTrack()

	return runPlayer(ctx, c, queue, player, cmd.InOrStdin(), cmd.OutOrStdout())
}

// runPlayer renders every published state and applies stdin commands until
// q, EOF or ctx is done.
func runPlayer(ctx context.Context, c *client.Client, queue *controller.Queue, player *controller.Player, in io.Reader, out io.Writer) error {
	logger := log.WithFields(log.Fields{"module": "play"})
	out = &lockedWriter{w: out}
	states, unsubscribe := player.Subscribe()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for s := range states {
			render(out, s, queue)
		}
		return nil
	})

	g.Go(func() error {
		defer unsubscribe()

		lines := make(chan string)
		go func() {
			defer close(lines)
			scanner := bufio.NewScanner(in)
			for scanner.Scan() {
				select {
				case lines <- scanner.Text():
				case <-gCtx.Done():
					return
				}
			}
		}()

		for {
			select {
			case <-gCtx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				command, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
				switch command {
				case "t":
					player.TogglePlayPause()
				case "n":
					if !player.NextTrack() {
						fmt.Fprintln(out, "end of queue")
					}
				case "p":
					if !player.PreviousTrack() {
						fmt.Fprintln(out, "start of queue")
					}
				case "a":
					track, err := c.SearchAndExtract(gCtx, lookupFor(arg))
					if err != nil {
						logger.Warnf("failed to resolve %q: %v", arg, err)
						continue
					}
					queue.Add(track)
					fmt.Fprintf(out, "queued %s\n", track.Title())
				case "q":
					return nil
				case "":
				default:
					fmt.Fprintf(out, "unknown command %q\n", command)
				}
			}
		}
	})

	return g.Wait()
}

func render(out io.Writer, s controller.State, queue *controller.Queue) {
	status := "paused"
	if s.IsPlaying {
		status = "playing"
	}

	title := s.DisplayTitle()
	if glyph := s.Glyph(); glyph != "" {
		title = glyph + " " + title
	}

	fmt.Fprintf(out, "[%s] %s (%d/%d)\n", status, title, queue.Position()+1, queue.Len())
}

// lockedWriter serializes the render loop and command replies.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
