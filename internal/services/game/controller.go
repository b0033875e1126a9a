package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/mcoot/wordsession/internal/dependencies/clock"
	"github.com/mcoot/wordsession/internal/dependencies/ids"
	"github.com/mcoot/wordsession/internal/dependencies/random"
	"github.com/mcoot/wordsession/internal/metrics"
	"github.com/mcoot/wordsession/internal/model"
	"github.com/mcoot/wordsession/internal/services/board"
	"github.com/mcoot/wordsession/internal/services/scoring"
	"github.com/mcoot/wordsession/internal/services/synchronizer"
	"github.com/mcoot/wordsession/internal/services/tilebag"
	"github.com/mcoot/wordsession/internal/storage"
)

const (
	// SessionIDLength is the length of generated session codes
	SessionIDLength = 6

	// MaxPlayerNameLength bounds display names
	MaxPlayerNameLength = 32

	maxSessionIDAttempts = 5
)

// ErrSessionIDExhausted is returned when no free session id could be generated
var ErrSessionIDExhausted = errors.New("could not allocate a session id")

// Controller is the turn manager: the single authority that applies commands
// to sessions. Commands on one session are serialized.
type Controller struct {
	storage      storage.Storage
	boardService board.ServiceInterface
	scorer       scoring.ServiceInterface
	bag          tilebag.ServiceInterface
	sync         *synchronizer.Synchronizer
	clock        clock.Clock
	random       random.Random
	ids          ids.Generator
	metrics      metrics.Recorder
	logger       *slog.Logger
	locks        *sessionLocks
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	boardService board.ServiceInterface,
	scorer scoring.ServiceInterface,
	bag tilebag.ServiceInterface,
	sync *synchronizer.Synchronizer,
	clock clock.Clock,
	random random.Random,
	idGen ids.Generator,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *Controller {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Controller{
		storage:      storage,
		boardService: boardService,
		scorer:       scorer,
		bag:          bag,
		sync:         sync,
		clock:        clock,
		random:       random,
		ids:          idGen,
		metrics:      recorder,
		logger:       logger.With(slog.String("component", "game")),
		locks:        newSessionLocks(),
	}
}

// CreateSession starts an empty session awaiting players
func (c *Controller) CreateSession(ctx context.Context) (*model.GameSession, error) {
	id, err := c.newSessionID(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	session := &model.GameSession{
		ID:          id,
		Board:       c.boardService.NewBoard(),
		Players:     []model.Player{},
		Bag:         c.bag.NewBag(),
		MoveHistory: []model.Move{},
		Pending:     []model.PendingTile{},
		Status:      model.SessionStatusAwaitingPlayers,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		c.logger.Error("failed to save session",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.metrics.RecordSessionCreated()
	c.logger.Info("session created", slog.String("session_id", string(id)))
	return session, nil
}

func (c *Controller) newSessionID(ctx context.Context) (model.SessionID, error) {
	for range maxSessionIDAttempts {
		id := model.SessionID(c.random.String(SessionIDLength, random.CodeAlphabet))
		if id == "" {
			continue
		}
		exists, err := c.storage.SessionExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", ErrSessionIDExhausted
}

// GetSession returns the current snapshot of a session
func (c *Controller) GetSession(ctx context.Context, id model.SessionID) (*model.GameSession, error) {
	return c.storage.GetSession(ctx, id)
}

// Join adds a player with a freshly drawn rack. The first player takes the
// turn; later joins never change it. Nothing is stored unless the join
// notification is acknowledged.
func (c *Controller) Join(ctx context.Context, id model.SessionID, name string) (*model.GameSession, *model.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > MaxPlayerNameLength {
		return nil, nil, model.ErrInvalidName
	}

	unlock := c.locks.lock(id)
	defer unlock()

	session, err := c.loadActive(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	player := model.Player{
		ID:   model.PlayerID(c.ids.NewID()),
		Name: name,
		Rack: c.bag.Draw(&session.Bag, model.RackSize),
	}
	if len(session.Players) == 0 {
		player.IsCurrentTurn = true
		session.CurrentPlayerID = player.ID
	}
	session.Players = append(session.Players, player)
	if len(session.Players) >= model.MinPlayersForRotation {
		session.Status = model.SessionStatusInProgress
	}
	c.touch(session)

	if err := c.sync.PublishJoin(ctx, session, player, c.commit(session)); err != nil {
		c.logger.Warn("join not completed",
			slog.String("session_id", string(id)),
			slog.String("player_name", name),
			slog.String("error", err.Error()),
		)
		return nil, nil, err
	}

	c.metrics.RecordPlayerJoined()
	c.logger.Info("player joined",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(player.ID)),
		slog.Int("player_count", len(session.Players)),
	)
	return session, &player, nil
}

// PlacePending moves a tile from the current player's rack onto the board as
// an uncommitted placement. Blanks need an assigned letter.
func (c *Controller) PlacePending(ctx context.Context, id model.SessionID, playerID model.PlayerID, tileID model.TileID, pos model.Position, letter model.Letter) (*model.GameSession, error) {
	unlock := c.locks.lock(id)
	defer unlock()

	session, err := c.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}
	player := session.GetPlayer(playerID)
	if player == nil {
		return nil, model.ErrPlayerNotFound
	}
	if session.CurrentPlayerID != playerID {
		return nil, model.ErrNotPlayerTurn
	}

	idx := player.RackTile(tileID)
	if idx < 0 {
		return nil, model.ErrTileNotInRack
	}
	tile := player.Rack[idx]

	if err := c.boardService.PlaceTile(&session.Board, pos, tile, letter); err != nil {
		return nil, err
	}
	player.Rack = append(player.Rack[:idx], player.Rack[idx+1:]...)
	session.Pending = append(session.Pending, model.PendingTile{
		PlayerID: playerID,
		Tile:     tile,
		Position: pos,
		Letter:   session.Board.Cell(pos).Letter,
	})
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ResetPendingMove returns the player's uncommitted tiles to their rack.
// It is a no-op when the player has nothing pending and never changes the turn.
func (c *Controller) ResetPendingMove(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.GameSession, error) {
	unlock := c.locks.lock(id)
	defer unlock()

	session, err := c.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.GetPlayer(playerID) == nil {
		return nil, model.ErrPlayerNotFound
	}
	if len(session.PendingFor(playerID)) == 0 {
		return session, nil
	}

	c.returnPending(session, playerID)
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// returnPending takes a player's pending tiles off the board and back into their rack
func (c *Controller) returnPending(session *model.GameSession, playerID model.PlayerID) {
	player := session.GetPlayer(playerID)
	for _, p := range session.PendingFor(playerID) {
		if tile, ok := c.boardService.RemovePending(&session.Board, p.Position); ok && player != nil {
			player.Rack = append(player.Rack, tile)
		}
	}
	session.Pending = lo.Reject(session.Pending, func(p model.PendingTile, _ int) bool {
		return p.PlayerID == playerID
	})
}

// SubmitMove validates and commits the current player's pending tiles.
//
// An invalid move leaves the placements pending. A valid move is applied to
// a copy of the session (commit board, add score, append history, refill
// rack, pass the turn) which is only stored once the move notification has
// been acknowledged.
func (c *Controller) SubmitMove(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.GameSession, *model.Move, error) {
	unlock := c.locks.lock(id)
	defer unlock()

	session, err := c.loadActive(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if session.GetPlayer(playerID) == nil {
		return nil, nil, model.ErrPlayerNotFound
	}
	if session.CurrentPlayerID != playerID {
		c.metrics.RecordMoveRejected("not_player_turn")
		return nil, nil, model.ErrNotPlayerTurn
	}

	pending := session.PendingFor(playerID)
	if len(pending) == 0 {
		c.metrics.RecordMoveRejected("empty_move")
		return nil, nil, model.ErrEmptyMove
	}

	result, err := c.scorer.ValidateMove(ctx, &session.Board, pending)
	if err != nil {
		c.metrics.RecordMoveRejected("invalid_placement")
		return nil, nil, err
	}
	if !result.IsValid {
		c.metrics.RecordMoveRejected("invalid_word")
		c.logger.Info("move rejected",
			slog.String("session_id", string(id)),
			slog.String("player_id", string(playerID)),
			slog.Any("words", result.WordStrings()),
		)
		if len(result.Words) == 0 {
			return nil, nil, fmt.Errorf("%w: no word of two or more letters formed", model.ErrInvalidWord)
		}
		return nil, nil, fmt.Errorf("%w: %s", model.ErrInvalidWord, strings.Join(result.WordStrings(), ", "))
	}

	now := c.clock.Now()
	next := session.Clone()
	c.boardService.Commit(&next.Board)
	next.Pending = []model.PendingTile{}

	move := model.Move{
		PlayerID: playerID,
		Score:    result.Score,
		Tiles: lo.Map(pending, func(p model.PendingTile, _ int) model.PlacedLetter {
			return model.PlacedLetter{Letter: p.Letter, Position: p.Position}
		}),
		Words:    result.WordStrings(),
		PlayedAt: now,
	}
	next.MoveHistory = append(next.MoveHistory, move)

	mover := next.GetPlayer(playerID)
	mover.Score += result.Score
	mover.Rack = c.bag.Refill(&next.Bag, mover.Rack)
	c.advanceTurn(next)

	if next.Bag.IsEmpty() && len(mover.Rack) == 0 {
		next.Status = model.SessionStatusEnded
		next.EndReason = "tiles exhausted"
	}
	c.touch(next)

	details := model.MoveDetails{PlayerID: playerID, Score: move.Score, Words: move.Words}
	if err := c.sync.PublishMove(ctx, next, details, c.commit(next)); err != nil {
		if errors.Is(err, model.ErrNotificationFailure) {
			c.metrics.RecordMoveRejected("notification_failure")
		}
		return nil, nil, err
	}

	c.metrics.RecordMoveSubmitted(move.Score)
	c.logger.Info("move committed",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(playerID)),
		slog.Int("score", move.Score),
		slog.Any("words", move.Words),
		slog.String("next_player_id", string(next.CurrentPlayerID)),
	)

	if next.IsEnded() {
		c.logger.Info("session ended",
			slog.String("session_id", string(id)),
			slog.String("reason", next.EndReason),
		)
		if err := c.sync.PublishEnded(ctx, next, noCommit); err != nil {
			return nil, nil, err
		}
	}
	return next, &move, nil
}

// Resign ends the session on behalf of a player. Pending tiles go back to
// their owner's rack.
func (c *Controller) Resign(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.GameSession, error) {
	unlock := c.locks.lock(id)
	defer unlock()

	session, err := c.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}
	player := session.GetPlayer(playerID)
	if player == nil {
		return nil, model.ErrPlayerNotFound
	}

	owners := lo.Uniq(lo.Map(session.Pending, func(p model.PendingTile, _ int) model.PlayerID {
		return p.PlayerID
	}))
	for _, owner := range owners {
		c.returnPending(session, owner)
	}
	session.Status = model.SessionStatusEnded
	session.EndReason = fmt.Sprintf("%s resigned", player.Name)
	c.touch(session)

	if err := c.sync.PublishEnded(ctx, session, c.commit(session)); err != nil {
		return nil, err
	}

	c.logger.Info("session ended",
		slog.String("session_id", string(id)),
		slog.String("reason", session.EndReason),
	)
	return session, nil
}

// Forget drops per-session bookkeeping for sessions that no longer exist
func (c *Controller) Forget(ids ...model.SessionID) {
	for _, id := range ids {
		c.locks.forget(id)
	}
}

func (c *Controller) loadActive(ctx context.Context, id model.SessionID) (*model.GameSession, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsEnded() {
		return nil, model.ErrSessionEnded
	}
	return session, nil
}

// advanceTurn passes the turn to the next player in join order.
// With fewer than two players the turn never rotates.
func (c *Controller) advanceTurn(session *model.GameSession) {
	if len(session.Players) < model.MinPlayersForRotation {
		return
	}
	next := (session.PlayerIndex(session.CurrentPlayerID) + 1) % len(session.Players)
	for i := range session.Players {
		session.Players[i].IsCurrentTurn = i == next
	}
	session.CurrentPlayerID = session.Players[next].ID
}

// touch records a committed change
func (c *Controller) touch(session *model.GameSession) {
	session.Version++
	session.UpdatedAt = c.clock.Now()
}

func (c *Controller) commit(session *model.GameSession) synchronizer.CommitFunc {
	return func(ctx context.Context) error {
		return c.storage.SaveSession(ctx, session)
	}
}

func noCommit(context.Context) error { return nil }

// Interface for dependency injection
type ControllerInterface interface {
	CreateSession(ctx context.Context) (*model.GameSession, error)
	GetSession(ctx context.Context, id model.SessionID) (*model.GameSession, error)
	Join(ctx context.Context, id model.SessionID, name string) (*model.GameSession, *model.Player, error)
	PlacePending(ctx context.Context, id model.SessionID, playerID model.PlayerID, tileID model.TileID, pos model.Position, letter model.Letter) (*model.GameSession, error)
	ResetPendingMove(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.GameSession, error)
	SubmitMove(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.GameSession, *model.Move, error)
	Resign(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.GameSession, error)
	Forget(ids ...model.SessionID)
}

var _ ControllerInterface = (*Controller)(nil)
