package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/wordsession/internal/api/request"
	"github.com/mcoot/wordsession/internal/api/response"
)

var errNoPlayer = errors.New("no player id: join a game first or pass --player")

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game session commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGamePlaceCmd())
	cmd.AddCommand(newGameResetCmd())
	cmd.AddCommand(newGameSubmitCmd())
	cmd.AddCommand(newGameResignCmd())

	return cmd
}

func newGameCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new game session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session
			if err := client.Post(cmd.Context(), "/api/v1/games", nil, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a game session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session
			if err := client.Get(cmd.Context(), gamePath(args[0]), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <id> <name>",
		Short: "Join a game session and remember the issued player id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.JoinResponse
			req := request.JoinRequest{PlayerName: args[1]}
			if err := client.Post(cmd.Context(), gamePath(args[0], "players"), req, &result); err != nil {
				return err
			}
			if err := cfg.SavePlayerID(result.Player.ID); err != nil {
				return fmt.Errorf("failed to save player id: %w", err)
			}
			client.SetPlayerID(result.Player.ID)

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGamePlaceCmd() *cobra.Command {
	var letter string

	cmd := &cobra.Command{
		Use:   "place <id> <tile-id> <row> <col>",
		Short: "Lay a rack tile on the board as part of the pending move",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.PlayerID == "" {
				return errNoPlayer
			}
			row, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid row: %w", err)
			}
			col, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("invalid col: %w", err)
			}

			req := request.PlaceRequest{TileID: args[1], Row: row, Col: col, Letter: letter}
			var result response.Session
			if err := client.Post(cmd.Context(), gamePath(args[0], "pending"), req, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&letter, "letter", "", "Letter a blank tile stands for")
	return cmd
}

func newGameResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <id>",
		Short: "Take back every pending tile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.PlayerID == "" {
				return errNoPlayer
			}
			var result response.Session
			if err := client.Delete(cmd.Context(), gamePath(args[0], "pending"), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <id>",
		Short: "Submit the pending tiles as a move",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.PlayerID == "" {
				return errNoPlayer
			}
			var result response.MoveResponse
			if err := client.Post(cmd.Context(), gamePath(args[0], "moves"), nil, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameResignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resign <id>",
		Short: "Resign, ending the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.PlayerID == "" {
				return errNoPlayer
			}
			var result response.Session
			if err := client.Post(cmd.Context(), gamePath(args[0], "resign"), nil, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
