// Command chester plays a game in the terminal. Each side is a human
// typing coordinate moves such as "e2e4", the negamax engine, or the
// random mover.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"

	"github.com/hailam/chester/internal/board"
	"github.com/hailam/chester/internal/book"
	"github.com/hailam/chester/internal/config"
	"github.com/hailam/chester/internal/engine"
	"github.com/hailam/chester/internal/game"
)

var (
	configPath = flag.String("config", config.Path(), "JSON config file (default $"+config.EnvPath+")")
	white      = flag.String("white", "human", "white player: human, engine or random")
	black      = flag.String("black", "engine", "black player: human, engine or random")
	depth      = flag.Int("depth", -1, "engine search depth (overrides the config file)")
	bookPath   = flag.String("book", "", "opening book for the engine (overrides the config file)")
	maxMoves   = flag.Int("maxmoves", 0, "stop after this many moves (0 = no limit)")
	seed       = flag.Uint64("seed", 0, "random mover seed (0 = time based)")
	verbosity  = flag.Int("v", -1, "log verbosity (overrides the config file)")
)

// errQuit is returned by the human player on "quit" or end of input.
var errQuit = errors.New("quit")

func main() {
	flag.Parse()

	std := log.New(os.Stderr, "chester ", log.LstdFlags)
	logger := stdr.New(std)

	cfg, err := config.Load(*configPath)
	if err != nil {
		std.Fatal(err)
	}
	if *depth >= 0 {
		cfg.Engine.Depth = *depth
	}
	if *verbosity >= 0 {
		cfg.Log.Verbosity = *verbosity
	}
	if err := cfg.Validate(); err != nil {
		std.Fatal(err)
	}
	stdr.SetVerbosity(cfg.Log.Verbosity)

	eng, err := engine.New(cfg.EngineConfig(logger))
	if err != nil {
		std.Fatal(err)
	}
	defer eng.Close()

	s := *seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}

	var bk *book.Book
	if *bookPath != "" {
		cfg.Engine.Book = *bookPath
	}
	if cfg.Engine.Book != "" {
		if bk, err = book.Load(cfg.Engine.Book); err != nil {
			std.Fatal(err)
		}
		logger.Info("opening book loaded", "path", cfg.Engine.Book, "positions", bk.Size())
	}

	in := bufio.NewScanner(os.Stdin)

	var players [2]engine.Chooser
	for color, name := range map[board.Color]string{board.White: *white, board.Black: *black} {
		p, err := newPlayer(name, eng, cfg.Limits(), bk, rand.NewPCG(s, uint64(color)), in, os.Stdout)
		if err != nil {
			std.Fatal(err)
		}
		players[color] = p
	}

	logger.Info("starting game", "white", *white, "black", *black, "depth", cfg.Engine.Depth, "seed", s)
	if err := play(game.NewStandard(), players, *maxMoves, os.Stdout, logger); err != nil && !errors.Is(err, errQuit) {
		std.Fatal(err)
	}
}

// play runs the game loop until a terminal state, the move limit, or a
// player quits. maxMoves <= 0 means no limit.
func play(g *game.Game, players [2]engine.Chooser, maxMoves int, out io.Writer, logger logr.Logger) error {
	for {
		fmt.Fprint(out, g.Board())

		if st := g.State(); st.IsOver() {
			fmt.Fprintf(out, "Game over: %v after %d moves\n", st, len(g.History()))
			return nil
		}
		if maxMoves > 0 && len(g.History()) >= maxMoves {
			fmt.Fprintf(out, "Move limit of %d reached\n", maxMoves)
			return nil
		}

		color := g.ActivePlayer()
		m, err := players[color].ChooseMove(g.Board(), color)
		if err != nil {
			return err
		}
		if err := g.Play(m.From, m.To); err != nil {
			// Only a human can produce an illegal move; ask again.
			fmt.Fprintf(out, "%v\n", err)
			continue
		}
		logger.V(1).Info("move", "color", color, "move", m)
		fmt.Fprintf(out, "%v plays %v\n", color, m)
	}
}

func newPlayer(name string, eng *engine.Engine, limits engine.Limits, bk *book.Book, src rand.Source, in *bufio.Scanner, out io.Writer) (engine.Chooser, error) {
	switch name {
	case "human":
		return &human{in: in, out: out}, nil
	case "engine":
		return &searcher{eng: eng, limits: limits, book: bk, rng: rand.New(src)}, nil
	case "random":
		return engine.NewRandom(src), nil
	}
	return nil, fmt.Errorf("unknown player %q: want human, engine or random", name)
}

// searcher plays book moves while the book lasts, then searches with
// the configured limits.
type searcher struct {
	eng    *engine.Engine
	limits engine.Limits
	book   *book.Book
	rng    *rand.Rand
}

func (s *searcher) ChooseMove(b *board.Board, color board.Color) (board.Move, error) {
	if m, ok := s.book.Probe(b, color, s.rng); ok {
		return m, nil
	}
	res, err := s.eng.Search(context.Background(), b, color, s.limits)
	return res.Move, err
}

// human reads coordinate moves from the terminal.
type human struct {
	in  *bufio.Scanner
	out io.Writer
}

func (h *human) ChooseMove(_ *board.Board, color board.Color) (board.Move, error) {
	for {
		fmt.Fprintf(h.out, "%v to move (e.g. e2e4, quit): ", color)
		if !h.in.Scan() {
			return board.NoMove, errQuit
		}
		line := strings.TrimSpace(h.in.Text())
		if line == "quit" {
			return board.NoMove, errQuit
		}
		m, err := board.ParseMove(line)
		if err != nil {
			fmt.Fprintf(h.out, "%v\n", err)
			continue
		}
		return m, nil
	}
}
