package engine_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/hailam/chester/internal/board"
	"github.com/hailam/chester/internal/engine"
	"github.com/hailam/chester/internal/testutil"
)

var (
	_ engine.Chooser = (*engine.Engine)(nil)
	_ engine.Chooser = (*engine.Random)(nil)
)

func newEngine(t *testing.T, mutate func(*engine.Config)) *engine.Engine {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.CacheEntries = 1 << 14
	if mutate != nil {
		mutate(&cfg)
	}
	eng, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(eng.Close)
	return eng
}

func TestCapturesFreeQueen(t *testing.T) {
	for depth := 0; depth <= 2; depth++ {
		t.Run("depth "+strconv.Itoa(depth), func(t *testing.T) {
			b := testutil.Board(t, "Ka1", "kh8", "Rd1", "qd5")
			eng := newEngine(t, func(c *engine.Config) { c.Depth = depth })

			m, err := eng.ChooseMove(b, board.White)
			if err != nil {
				t.Fatalf("ChooseMove: %v", err)
			}
			if want := testutil.Move(t, "d1d5"); m != want {
				t.Errorf("ChooseMove = %v, want %v", m, want)
			}
		})
	}
}

func TestFindsMateForBothColors(t *testing.T) {
	tests := []struct {
		name   string
		pieces []string
		color  board.Color
		want   string
	}{
		{"white mates", []string{"Kb6", "ka8", "Rh1"}, board.White, "h1h8"},
		{"black mates", []string{"Ka1", "kb3", "rh8"}, board.Black, "h8h1"},
	}

	for _, tc := range tests {
		for _, cutoff := range []int{12, -1} {
			name := tc.name + "/probe"
			if cutoff < 0 {
				name = tc.name + "/no probe"
			}
			t.Run(name, func(t *testing.T) {
				b := testutil.Board(t, tc.pieces...)
				eng := newEngine(t, func(c *engine.Config) {
					c.Depth = 1
					c.StateProbeCutoff = cutoff
				})

				res, err := eng.Search(context.Background(), b, tc.color, engine.Limits{})
				if err != nil {
					t.Fatalf("Search: %v", err)
				}
				if want := testutil.Move(t, tc.want); res.Move != want {
					t.Errorf("Move = %v, want %v", res.Move, want)
				}
				if res.Score != engine.MateScore {
					t.Errorf("Score = %d, want MateScore", res.Score)
				}
			})
		}
	}
}

func TestLeafProbeSeesMate(t *testing.T) {
	// At depth 0 only the probe tells the mate Rh8 apart from quiet moves,
	// which all score the material balance of rook plus pawn.
	tests := []struct {
		cutoff    int
		wantScore int
	}{
		{12, engine.MateScore},
		{2, engine.RookValue + engine.PawnValue}, // White has three pieces
		{-1, engine.RookValue + engine.PawnValue},
	}

	for _, tc := range tests {
		t.Run("cutoff "+strconv.Itoa(tc.cutoff), func(t *testing.T) {
			b := testutil.Board(t, "Kb6", "ka8", "Rh1", "Pc2")
			eng := newEngine(t, func(c *engine.Config) {
				c.Depth = 0
				c.StateProbeCutoff = tc.cutoff
			})

			res, err := eng.Search(context.Background(), b, board.White, engine.Limits{})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if res.Score != tc.wantScore {
				t.Errorf("Score = %d, want %d", res.Score, tc.wantScore)
			}
		})
	}
}

func TestNoLegalMoves(t *testing.T) {
	tests := []struct {
		name      string
		pieces    []string
		color     board.Color
		wantScore int
	}{
		{"checkmated", []string{"Ka1", "kh8", "Ra7", "Qb8"}, board.Black, -engine.MateScore},
		{"stalemated", []string{"Kb6", "ka8", "Qc7"}, board.Black, -5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := testutil.Board(t, tc.pieces...)
			eng := newEngine(t, nil)

			res, err := eng.Search(context.Background(), b, tc.color, engine.Limits{})
			if !errors.Is(err, engine.ErrNoLegalMoves) {
				t.Fatalf("Search error = %v, want ErrNoLegalMoves", err)
			}
			if res.Move != board.NoMove {
				t.Errorf("Move = %v, want NoMove", res.Move)
			}
			if res.Score != tc.wantScore {
				t.Errorf("Score = %d, want %d", res.Score, tc.wantScore)
			}
		})
	}
}

func TestTiesKeepEnumerationOrder(t *testing.T) {
	b := testutil.Board(t, "Ke1", "ke8")
	eng := newEngine(t, func(c *engine.Config) { c.Depth = 1 })

	res, err := eng.Search(context.Background(), b, board.White, engine.Limits{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	var got []board.Move
	for _, sm := range res.Ranked {
		if sm.Score != 0 {
			t.Errorf("%v scored %d, want 0", sm.Move, sm.Score)
		}
		got = append(got, sm.Move)
	}
	testutil.AssertEqual(t, got, b.LegalMoves(board.White), "ranked moves")
	if want := testutil.Move(t, "e1d1"); res.Move != want {
		t.Errorf("Move = %v, want %v", res.Move, want)
	}
}

func TestSearchRestoresBoard(t *testing.T) {
	b := board.NewStandard()
	before := *b

	eng := newEngine(t, func(c *engine.Config) { c.Depth = 1 })
	if _, err := eng.ChooseMove(b, board.White); err != nil {
		t.Fatalf("ChooseMove: %v", err)
	}
	if *b != before {
		t.Errorf("board changed by search:\n%v", b)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	positions := map[string]*board.Board{
		"standard": board.NewStandard(),
		"middlegame": testutil.Board(t,
			"Kg1", "kg8", "Qd1", "Re1", "Bf4", "Nf3", "Pa2", "Pb2",
			"re8", "qb6", "bb7", "nc6", "pa7", "pg7"),
	}

	for name, b := range positions {
		t.Run(name, func(t *testing.T) {
			var want []engine.ScoredMove
			for _, cfg := range []struct {
				workers, cache int
			}{
				{1, 0},
				{1, 1 << 14},
				{4, 0},
				{4, 1 << 14},
			} {
				eng := newEngine(t, func(c *engine.Config) {
					c.Depth = 2
					c.Workers = cfg.workers
					c.CacheEntries = cfg.cache
				})
				res, err := eng.Search(context.Background(), b.Clone(), board.White, engine.Limits{})
				if err != nil {
					t.Fatalf("workers=%d cache=%d: %v", cfg.workers, cfg.cache, err)
				}
				if want == nil {
					want = res.Ranked
					continue
				}
				testutil.AssertEqual(t, res.Ranked, want, "ranked moves")
			}
		})
	}
}

func TestRepeatedSearchUsesCache(t *testing.T) {
	b := board.NewStandard()
	eng := newEngine(t, func(c *engine.Config) { c.Depth = 1 })

	first, err := eng.Search(context.Background(), b, board.White, engine.Limits{})
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	eng.Flush()
	second, err := eng.Search(context.Background(), b, board.White, engine.Limits{})
	if err != nil {
		t.Fatalf("second search: %v", err)
	}

	testutil.AssertEqual(t, second.Ranked, first.Ranked, "ranked moves")
	if second.CacheHits == 0 {
		t.Error("second search should hit the cache")
	}
	if second.Nodes >= first.Nodes {
		t.Errorf("second search visited %d nodes, first %d; want fewer", second.Nodes, first.Nodes)
	}
}

func TestCancelledContextKeepsDepthZero(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := board.NewStandard()
	eng := newEngine(t, nil)
	res, err := eng.Search(ctx, b, board.White, engine.Limits{Depth: 3})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Depth != 0 {
		t.Errorf("Depth = %d, want 0", res.Depth)
	}
	if res.Move == board.NoMove {
		t.Error("expected a move from the depth 0 iteration")
	}
}

func TestPliesLimit(t *testing.T) {
	tests := []struct {
		limits engine.Limits
		want   int
	}{
		{engine.Limits{Plies: 1}, 0},
		{engine.Limits{Plies: 2}, 1},
		{engine.Limits{Depth: 2, Plies: 1}, 0},
		{engine.Limits{Depth: 1}, 1},
	}

	eng := newEngine(t, func(cfg *engine.Config) { cfg.CacheEntries = 0 })
	for _, tc := range tests {
		res, err := eng.Search(context.Background(), board.NewStandard(), board.White, tc.limits)
		if err != nil {
			t.Fatalf("Search(%+v): %v", tc.limits, err)
		}
		if res.Depth != tc.want {
			t.Errorf("Search(%+v).Depth = %d, want %d", tc.limits, res.Depth, tc.want)
		}
	}
}

func TestCancellationDoesNotLeakIntoNextSearch(t *testing.T) {
	eng := newEngine(t, nil)

	for i := range 200 {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := eng.Search(ctx, board.NewStandard(), board.White, engine.Limits{Depth: 1}); err != nil {
			t.Fatalf("cancelled Search: %v", err)
		}

		res, err := eng.Search(context.Background(), board.NewStandard(), board.White, engine.Limits{Depth: 1})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if res.Depth != 1 {
			t.Fatalf("iteration %d: Depth = %d after a cancelled search, want 1", i, res.Depth)
		}
	}
}

func TestMoveTimeBoundsInfiniteSearch(t *testing.T) {
	b := board.NewStandard()
	eng := newEngine(t, nil)

	start := time.Now()
	res, err := eng.Search(context.Background(), b, board.White, engine.Limits{Infinite: true, MoveTime: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("search took %v with a 50ms budget", elapsed)
	}
	if res.Depth >= engine.MaxDepth {
		t.Errorf("Depth = %d, expected the deadline to cut deepening short", res.Depth)
	}
	legal := false
	for _, m := range b.LegalMoves(board.White) {
		legal = legal || m == res.Move
	}
	if !legal {
		t.Errorf("Move %v is not legal", res.Move)
	}
}

func TestStopKeepsLastIteration(t *testing.T) {
	b := board.NewStandard()
	eng := newEngine(t, nil)

	var depths []int
	eng.OnInfo = func(r engine.Result) {
		depths = append(depths, r.Depth)
		if r.Depth == 1 {
			eng.Stop()
		}
	}

	res, err := eng.Search(context.Background(), b, board.White, engine.Limits{Infinite: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Depth != 1 {
		t.Errorf("Depth = %d, want 1", res.Depth)
	}
	testutil.AssertEqual(t, depths, []int{0, 1}, "reported depths")
}

func TestPerft(t *testing.T) {
	tests := []struct {
		depth int
		want  uint64
	}{
		{0, 1},
		{1, 20},
		{2, 400},
		{3, 8902},
	}

	for _, tc := range tests {
		b := board.NewStandard()
		if got := engine.Perft(b, board.White, tc.depth); got != tc.want {
			t.Errorf("Perft(%d) = %d, want %d", tc.depth, got, tc.want)
		}
	}
}

func TestEvaluate(t *testing.T) {
	if got := engine.Evaluate(board.NewStandard(), board.White); got != 0 {
		t.Errorf("standard setup: got %d, want 0", got)
	}

	b := testutil.Board(t, "Ka1", "kh8", "Qd1", "rd8", "pa7")
	if got := engine.Evaluate(b, board.White); got != 1 {
		t.Errorf("White: got %d, want 1", got)
	}
	if got := engine.Evaluate(b, board.Black); got != -1 {
		t.Errorf("Black: got %d, want -1", got)
	}
}
