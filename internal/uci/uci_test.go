package uci

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hailam/chester/internal/board"
	"github.com/hailam/chester/internal/engine"
)

// run feeds script to a fresh handler and returns everything it wrote.
func run(t *testing.T, script ...string) string {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.CacheEntries = 1 << 12

	var out bytes.Buffer
	u, err := New(cfg, engine.Limits{}, &out)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := u.Run(strings.NewReader(strings.Join(script, "\n") + "\n")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestHandshake(t *testing.T) {
	out := run(t, "uci", "isready")
	assertContains(t, out,
		"id name Chester",
		"option name Depth type spin default 3",
		"option name Threads type spin default 1",
		"option name Hash type spin default 0",
		"uciok",
		"readyok",
	)
}

func TestFindsFoolsMate(t *testing.T) {
	out := run(t,
		"ucinewgame",
		"position startpos moves f2f3 e7e5 g2g4",
		"go depth 2",
	)
	assertContains(t, out, "info depth 1 ", "info depth 2 score mate 1", "bestmove d8h4")
}

func TestGoDepthCountsPlies(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
	}{
		{"one ply", "go depth 1"},
		{"zero clamps to one ply", "go depth 0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := run(t, tc.cmd)
			assertContains(t, out, "info depth 1 ", "bestmove ")
			if strings.Contains(out, "info depth 2 ") {
				t.Errorf("%q searched deeper than one ply:\n%s", tc.cmd, out)
			}
		})
	}
}

func TestMatedSideHasNoMove(t *testing.T) {
	out := run(t,
		"position startpos moves f2f3 e7e5 g2g4 d8h4",
		"go depth 1",
	)
	assertContains(t, out, "bestmove 0000")
}

func TestPositionRejectsIllegalMoves(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		want string
	}{
		{"illegal", "position startpos moves e2e5", "info string Invalid move e2e5"},
		{"wrong side", "position startpos moves e7e5", "info string Invalid move e7e5"},
		{"promotion syntax", "position startpos moves e2e4 e7e5 a2a4q", "info string Invalid move a2a4q"},
		{"fen", "position fen 8/8/8/8/8/8/8/K6k w - - 0 1", "info string FEN positions are not supported"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertContains(t, run(t, tc.cmd), tc.want)
		})
	}
}

func TestPositionStopsAtFirstBadMove(t *testing.T) {
	out := run(t, "position startpos moves e2e4 e2e4 d7d5", "d")
	assertContains(t, out, "Invalid move e2e4", "Side to move: Black")
}

func TestPerft(t *testing.T) {
	out := run(t, "perft 2")
	assertContains(t, out, "Nodes: 400")

	out = run(t, "position startpos moves e2e4", "perft 1")
	assertContains(t, out, "Nodes: 20")
}

func TestDisplay(t *testing.T) {
	out := run(t, "d")
	assertContains(t, out, "a b c d e f g h", "Side to move: White", "State: Playing", "Hash: ")
}

func TestStopReportsBestMove(t *testing.T) {
	out := run(t, "go infinite", "stop", "quit")
	if strings.Count(out, "bestmove ") != 1 {
		t.Fatalf("want exactly one bestmove:\n%s", out)
	}

	line := out[strings.Index(out, "bestmove "):]
	moveStr := strings.TrimSpace(strings.TrimPrefix(line, "bestmove "))
	m, err := board.ParseMove(moveStr)
	if err != nil {
		t.Fatalf("bestmove %q: %v", moveStr, err)
	}
	legal := false
	for _, lm := range board.NewStandard().LegalMoves(board.White) {
		legal = legal || lm == m
	}
	if !legal {
		t.Errorf("bestmove %v is not legal from the start", m)
	}
}

func TestSetOption(t *testing.T) {
	out := run(t,
		"setoption name Threads value 2",
		"setoption name Hash value 1",
		"setoption name Depth value 0",
		"setoption name Difficulty value easy",
		"setoption name Difficulty value none",
		"setoption name Threads value 0",
		"setoption name Colour value red",
		"position startpos moves f2f3 e7e5 g2g4",
		"go",
	)
	assertContains(t, out,
		"info string Invalid Threads: 0",
		"info string Unknown option: Colour",
	)
	// Depth 0 searches one ply and cannot see the mate; the move must
	// still be reported.
	if strings.Contains(out, "info depth 2 ") {
		t.Errorf("Depth option ignored:\n%s", out)
	}
	assertContains(t, out, "bestmove ")
}

func TestParseGoOptions(t *testing.T) {
	opts := parseGoOptions(strings.Fields("wtime 60000 btime 30000 winc 1000 binc 500 movestogo 20 depth 4"))

	if opts.Depth != 4 {
		t.Errorf("Depth = %d, want 4", opts.Depth)
	}
	if opts.Clock.Time[board.White].Milliseconds() != 60000 || opts.Clock.Time[board.Black].Milliseconds() != 30000 {
		t.Errorf("Time = %v", opts.Clock.Time)
	}
	if opts.Clock.Inc[board.White].Milliseconds() != 1000 || opts.Clock.Inc[board.Black].Milliseconds() != 500 {
		t.Errorf("Inc = %v", opts.Clock.Inc)
	}
	if opts.Clock.MovesToGo != 20 {
		t.Errorf("MovesToGo = %d, want 20", opts.Clock.MovesToGo)
	}

	if !parseGoOptions([]string{"infinite"}).Infinite {
		t.Error("infinite not parsed")
	}
	// A trailing keyword without value is ignored.
	if got := parseGoOptions([]string{"depth"}).Depth; got != 0 {
		t.Errorf("Depth = %d for dangling keyword, want 0", got)
	}
	if got := parseGoOptions([]string{"depth", "0"}).Depth; got != 1 {
		t.Errorf("Depth = %d for depth 0, want 1", got)
	}
}

func TestBookMoves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.txt")
	if err := os.WriteFile(path, []byte("g1f3 g8f6\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := run(t,
		"setoption name BookFile value "+path,
		"position startpos",
		"go depth 1",
		"position startpos moves g1f3",
		"go depth 1",
		"setoption name OwnBook value false",
		"setoption name Depth value 0",
		"position startpos",
		"go",
	)
	assertContains(t, out, "Book loaded: 2 positions", "bestmove g1f3", "bestmove g8f6")
	if n := strings.Count(out, "info string book move"); n != 2 {
		t.Errorf("got %d book moves, want 2:\n%s", n, out)
	}
}
