package main

import (
	"bufio"
	"bytes"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/go-logr/logr"

	"github.com/hailam/chester/internal/board"
	"github.com/hailam/chester/internal/book"
	"github.com/hailam/chester/internal/engine"
	"github.com/hailam/chester/internal/game"
	"github.com/hailam/chester/internal/testutil"
)

func TestHumanRetriesUntilLegal(t *testing.T) {
	in := bufio.NewScanner(strings.NewReader("e2e5\nxx\ne2e4\nquit\n"))
	var out bytes.Buffer
	players := [2]engine.Chooser{
		&human{in: in, out: &out},
		&human{in: in, out: &out},
	}

	g := game.NewStandard()
	err := play(g, players, 0, &out, logr.Discard())
	if !errors.Is(err, errQuit) {
		t.Fatalf("play error = %v, want errQuit", err)
	}

	for _, want := range []string{"illegal move", "invalid move", "White plays e2e4", "Black to move"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
	testutil.AssertEqual(t, g.History(), []board.Move{testutil.Move(t, "e2e4")}, "history")
}

func TestEngineAgainstRandom(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Depth = 0
	cfg.CacheEntries = 0
	eng, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	defer eng.Close()

	bk, err := book.LoadLines(strings.NewReader("d2d4\n"))
	if err != nil {
		t.Fatalf("LoadLines: %v", err)
	}

	players := [2]engine.Chooser{
		&searcher{eng: eng, book: bk, rng: rand.New(rand.NewPCG(1, 1))},
		engine.NewRandom(rand.NewPCG(3, 5)),
	}

	var out bytes.Buffer
	g := game.NewStandard()
	if err := play(g, players, 12, &out, logr.Discard()); err != nil {
		t.Fatalf("play: %v", err)
	}

	if first := g.History()[0]; first != testutil.Move(t, "d2d4") {
		t.Errorf("first move %v, want the book move d2d4", first)
	}
	if n := len(g.History()); n > 12 {
		t.Errorf("played %d moves past the limit of 12", n)
	}
	if !strings.Contains(out.String(), "Move limit of 12 reached") && !strings.Contains(out.String(), "Game over") {
		t.Errorf("game ended without a reason:\n%s", out.String())
	}
}

func TestUnknownPlayer(t *testing.T) {
	if _, err := newPlayer("alien", nil, engine.Limits{}, nil, rand.NewPCG(1, 1), nil, nil); err == nil {
		t.Error("expected an error for an unknown player")
	}
}
