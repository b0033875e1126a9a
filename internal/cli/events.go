package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/wordsession/internal/model"
	"github.com/mcoot/wordsession/internal/services/synchronizer"
	"github.com/mcoot/wordsession/internal/web/sse"
)

// errStreamDone stops a stream without reporting a failure
var errStreamDone = errors.New("stream done")

func newEventsCmd() *cobra.Command {
	var (
		jsonOutput bool
		untilEnd   bool
	)

	cmd := &cobra.Command{
		Use:   "events <id>",
		Short: "Follow a game session live",
		Long: `Connect to the session's event stream and keep a local replica of
the game up to date.

The stream opens with a snapshot of the session, then relays:
  - player-joined: a player took a seat
  - move-made: a move was committed
  - session-ended: the game is over

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return followGame(ctx, cmd.OutOrStdout(), args[0], jsonOutput, untilEnd)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().BoolVar(&untilEnd, "until-end", false, "Disconnect once the session is seen to have ended")

	return cmd
}

// StreamEvent is one event as printed by the events command
type StreamEvent struct {
	Time    time.Time `json:"time"`
	Event   string    `json:"event"`
	Version int64     `json:"version"`
	Data    string    `json:"data"`
}

func followGame(ctx context.Context, w io.Writer, id string, jsonOutput, untilEnd bool) error {
	body, err := client.Stream(ctx, gamePath(id, "events"))
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	if !jsonOutput {
		fmt.Fprintf(w, "Connected to game %s\n", strings.ToUpper(id))
	}

	replica := synchronizer.NewReplica(model.SessionID(strings.ToUpper(id)))
	err = ReadEvents(body, func(name, data string) error {
		if _, err := ApplyStreamEvent(replica, name, []byte(data)); err != nil {
			if cfg.Verbose {
				fmt.Fprintf(w, "skipping %s: %s\n", name, err)
			}
			return nil
		}
		session := replica.Snapshot()
		printStreamEvent(w, session, name, data, jsonOutput)
		if untilEnd && session != nil && session.IsEnded() {
			return errStreamDone
		}
		return nil
	})

	switch {
	case errors.Is(err, errStreamDone):
	case err != nil && ctx.Err() == nil:
		return fmt.Errorf("stream error: %w", err)
	}
	if !jsonOutput {
		fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

// ApplyStreamEvent feeds one server-sent event into a replica. Returns
// whether the replica's view changed.
func ApplyStreamEvent(replica *synchronizer.Replica, name string, data []byte) (bool, error) {
	if name == sse.SnapshotEvent {
		var session model.GameSession
		if err := json.Unmarshal(data, &session); err != nil {
			return false, err
		}
		return replica.OnRemoteMove(&session), nil
	}

	payload, err := synchronizer.DecodePayload(model.EventType(name), data)
	if err != nil {
		return false, err
	}
	return replica.Apply(model.Event{
		Type:    model.EventType(name),
		Payload: payload,
	})
}

// ReadEvents parses a server-sent event stream, calling fn once per named
// event. Comment lines are ignored. Stops at the first error fn returns.
func ReadEvents(r io.Reader, fn func(name, data string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		name string
		data []string
	)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if name != "" {
				if err := fn(name, strings.Join(data, "\n")); err != nil {
					return err
				}
			}
			name, data = "", nil
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	return scanner.Err()
}

func printStreamEvent(w io.Writer, session *model.GameSession, name, data string, jsonOutput bool) {
	now := time.Now()
	var version int64
	if session != nil {
		version = session.Version
	}

	if jsonOutput {
		line, _ := json.Marshal(StreamEvent{Time: now, Event: name, Version: version, Data: data})
		fmt.Fprintln(w, string(line))
		return
	}

	fmt.Fprintf(w, "[%s] %s v%d", now.Format("2006-01-02 15:04:05"), name, version)
	if session != nil {
		scores := make([]string, len(session.Players))
		for i, p := range session.Players {
			scores[i] = fmt.Sprintf("%s %d", p.Name, p.Score)
		}
		fmt.Fprintf(w, " %s [%s]", session.Status, strings.Join(scores, ", "))
		if session.EndReason != "" {
			fmt.Fprintf(w, " (%s)", session.EndReason)
		}
	}
	fmt.Fprintln(w)
}
