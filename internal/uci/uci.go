// Package uci speaks the Universal Chess Interface protocol on top of the
// engine. Only coordinate moves without promotion are understood, and
// positions can only be set up from the standard start.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/hailam/chester/internal/board"
	"github.com/hailam/chester/internal/book"
	"github.com/hailam/chester/internal/engine"
	"github.com/hailam/chester/internal/game"
)

// Option bounds advertised to the GUI.
const (
	maxThreads = 64
	maxHashMB  = 1024

	// hashEntriesPerMB converts the Hash option to score cache entries.
	hashEntriesPerMB = 1 << 14
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	cfg    engine.Config
	engine *engine.Engine
	game   *game.Game
	log    logr.Logger

	// limits applies to "go" commands that carry no limits of their own.
	limits engine.Limits

	// Opening book
	book    *book.Book
	ownBook bool
	rng     *rand.Rand

	mu  sync.Mutex // guards out
	out io.Writer

	// searchDone is non-nil while a search goroutine runs; cancelSearch
	// stops it. Only the command loop touches them.
	searchDone   chan struct{}
	cancelSearch context.CancelFunc
}

// New creates a protocol handler writing responses to out.
func New(cfg engine.Config, limits engine.Limits, out io.Writer) (*UCI, error) {
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &UCI{
		cfg:    cfg,
		engine: eng,
		game:   game.NewStandard(),
		log:    log.WithName("uci"),
		limits: limits,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		out:    out,
	}, nil
}

// SetBook installs an opening book and enables it. A nil book disables
// book moves.
func (u *UCI) SetBook(bk *book.Book, rng *rand.Rand) {
	u.book = bk
	u.ownBook = bk != nil
	if rng != nil {
		u.rng = rng
	}
}

// Run reads commands from in until "quit" or end of input. At end of input
// a running search is allowed to finish and report its move.
func (u *UCI) Run(in io.Reader) error {
	defer u.engine.Close()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]
		u.log.V(1).Info("command", "line", line)

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.engine.Flush()
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.handleDisplay()
		case "perft":
			u.handlePerft(args)
		default:
			u.printf("info string Unknown command: %s\n", cmd)
		}
	}

	u.waitSearch()
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}

func (u *UCI) printf(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

func (u *UCI) println(s string) {
	u.printf("%s\n", s)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name Chester")
	u.println("id author Chester Authors")
	u.println("")
	u.printf("option name Depth type spin default %d min 0 max %d\n", u.cfg.Depth, engine.MaxDepth)
	u.printf("option name Threads type spin default %d min 1 max %d\n", u.cfg.Workers, maxThreads)
	u.printf("option name Hash type spin default %d min 0 max %d\n", u.cfg.CacheEntries/hashEntriesPerMB, maxHashMB)
	u.println("option name Difficulty type combo default none var none var easy var medium var hard")
	u.printf("option name OwnBook type check default %v\n", u.ownBook)
	u.println("option name BookFile type string default <empty>")
	u.println("uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.engine.Clear()
	u.game = game.NewStandard()
}

// handlePosition sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//
// Moves are applied until the first one that is malformed or illegal.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "startpos":
	case "fen":
		u.println("info string FEN positions are not supported")
		return
	default:
		u.printf("info string Unknown position type: %s\n", args[0])
		return
	}

	u.game = game.NewStandard()

	// Find "moves" keyword
	moveStart := len(args)
	for i, arg := range args {
		if arg == "moves" {
			moveStart = i + 1
			break
		}
	}

	for _, moveStr := range args[moveStart:] {
		m, err := board.ParseMove(moveStr)
		if err == nil {
			err = u.game.Play(m.From, m.To)
		}
		if err != nil {
			u.printf("info string Invalid move %s: %v\n", moveStr, err)
			return
		}
	}
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth    int // plies
	MoveTime time.Duration
	Infinite bool
	Clock    engine.TimeControl
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	u.handleStop()

	opts := parseGoOptions(args)
	color := u.game.ActivePlayer()

	if u.ownBook && !opts.Infinite {
		if m, ok := u.book.Probe(u.game.Board(), color, u.rng); ok {
			u.println("info string book move")
			u.printf("bestmove %s\n", m)
			return
		}
	}
	limits := u.calculateLimits(opts, color)

	// The search owns a copy so that later commands may replace the game.
	b := u.game.Board().Clone()
	eng := u.engine
	eng.OnInfo = u.sendInfo

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	u.searchDone = done
	u.cancelSearch = cancel

	go func() {
		defer close(done)

		res, err := eng.Search(ctx, b, color, limits)
		switch {
		case errors.Is(err, engine.ErrNoLegalMoves):
			u.println("bestmove 0000")
		case err != nil:
			u.printf("info string Search failed: %v\n", err)
			u.println("bestmove 0000")
		default:
			u.printf("bestmove %s\n", res.Move)
		}
	}()
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) GoOptions {
	var opts GoOptions

	ms := func(i int) time.Duration {
		n, _ := strconv.Atoi(args[i])
		return time.Duration(n) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		hasValue := i+1 < len(args)
		switch args[i] {
		case "infinite":
			opts.Infinite = true
			continue
		case "depth", "movetime", "wtime", "btime", "winc", "binc", "movestogo":
			if !hasValue {
				continue
			}
		default:
			continue
		}

		switch args[i] {
		case "depth":
			// UCI depth counts plies; one ply is the shallowest search.
			n, _ := strconv.Atoi(args[i+1])
			opts.Depth = max(n, 1)
		case "movetime":
			opts.MoveTime = ms(i + 1)
		case "wtime":
			opts.Clock.Time[board.White] = ms(i + 1)
		case "btime":
			opts.Clock.Time[board.Black] = ms(i + 1)
		case "winc":
			opts.Clock.Inc[board.White] = ms(i + 1)
		case "binc":
			opts.Clock.Inc[board.Black] = ms(i + 1)
		case "movestogo":
			opts.Clock.MovesToGo, _ = strconv.Atoi(args[i+1])
		}
		i++
	}

	return opts
}

// calculateLimits converts GoOptions to engine.Limits. A go command with
// neither depth nor time falls back to the handler's default limits.
func (u *UCI) calculateLimits(opts GoOptions, us board.Color) engine.Limits {
	if opts.Infinite {
		return engine.Limits{Infinite: true}
	}

	limits := engine.Limits{Plies: opts.Depth}
	if opts.MoveTime > 0 {
		limits.MoveTime = opts.MoveTime
	} else if budget := opts.Clock.Budget(us, len(u.game.History())); budget > 0 {
		limits.MoveTime = budget
		u.printf("info string time_allocated=%dms\n", budget.Milliseconds())
	}

	if limits.Plies == 0 && limits.MoveTime == 0 {
		return u.limits
	}
	return limits
}

// sendInfo outputs search info in UCI format. Depth is reported in plies,
// one more than the engine depth. Scores are material units scaled to
// centipawns. Mate scores carry no distance, so the search
// horizon in moves is reported instead.
func (u *UCI) sendInfo(info engine.Result) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth+1))

	horizon := info.Depth/2 + 1
	switch {
	case info.Score >= engine.MateScore:
		parts = append(parts, fmt.Sprintf("score mate %d", horizon))
	case info.Score <= -engine.MateScore:
		parts = append(parts, fmt.Sprintf("score mate -%d", horizon))
	default:
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score*100))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	parts = append(parts, fmt.Sprintf("pv %s", info.Move))

	u.printf("info %s\n", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for its bestmove.
// Cancelling the context rather than calling Engine.Stop also covers a
// stop that arrives before the search goroutine has started.
func (u *UCI) handleStop() {
	if u.searchDone != nil {
		u.cancelSearch()
		u.waitSearch()
	}
}

// waitSearch waits for a running search to finish on its own.
func (u *UCI) waitSearch() {
	if u.searchDone != nil {
		<-u.searchDone
		u.cancelSearch()
		u.searchDone = nil
		u.cancelSearch = nil
	}
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	cfg := u.cfg
	switch strings.ToLower(name) {
	case "depth":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > engine.MaxDepth {
			u.printf("info string Invalid Depth: %s\n", value)
			return
		}
		cfg.Depth = n
	case "threads":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > maxThreads {
			u.printf("info string Invalid Threads: %s\n", value)
			return
		}
		cfg.Workers = n
	case "hash":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > maxHashMB {
			u.printf("info string Invalid Hash: %s\n", value)
			return
		}
		cfg.CacheEntries = n * hashEntriesPerMB
	case "ownbook":
		u.ownBook = strings.EqualFold(value, "true") && u.book != nil
		return
	case "bookfile":
		if value == "" || value == "<empty>" {
			u.SetBook(nil, nil)
			return
		}
		bk, err := book.Load(value)
		if err != nil {
			u.printf("info string Failed to load book: %v\n", err)
			return
		}
		u.SetBook(bk, nil)
		u.printf("info string Book loaded: %d positions\n", bk.Size())
		return
	case "difficulty":
		if strings.EqualFold(value, "none") {
			u.limits = engine.Limits{}
			return
		}
		d, err := engine.ParseDifficulty(strings.ToLower(value))
		if err != nil {
			u.printf("info string Invalid Difficulty: %v\n", err)
			return
		}
		u.limits = engine.DifficultySettings[d]
		return
	default:
		u.printf("info string Unknown option: %s\n", name)
		return
	}

	u.handleStop()
	eng, err := engine.New(cfg)
	if err != nil {
		u.printf("info string Failed to apply %s: %v\n", name, err)
		return
	}
	u.engine.Close()
	u.engine = eng
	u.cfg = cfg
	u.log.V(1).Info("engine reconfigured", "depth", cfg.Depth, "workers", cfg.Workers, "cacheEntries", cfg.CacheEntries)
}

// handleDisplay prints the board and game status.
func (u *UCI) handleDisplay() {
	b := u.game.Board()
	u.printf("%v\n", b)
	u.printf("Side to move: %v\n", u.game.ActivePlayer())
	u.printf("State: %v\n", u.game.State())
	u.printf("Hash: %016x\n", b.Hash())
}

// handlePerft runs a perft test.
func (u *UCI) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes := engine.Perft(u.game.Board().Clone(), u.game.ActivePlayer(), depth)
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		u.printf("NPS: %.0f\n", nps)
	}
}
