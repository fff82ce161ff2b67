// Package book stores opening moves by position so that drivers can play
// the first moves of a game without searching.
package book

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hailam/chester/internal/board"
	"github.com/hailam/chester/internal/game"
)

// BookEntry represents a single book entry.
type BookEntry struct {
	Move   board.Move
	Weight uint16
}

// Book represents an opening book.
type Book struct {
	entries map[uint64][]BookEntry
}

// New creates an empty book.
func New() *Book {
	return &Book{
		entries: make(map[uint64][]BookEntry),
	}
}

// Key returns the book key of b with color to move.
func Key(b *board.Board, color board.Color) uint64 {
	key := b.Hash()
	if color == board.Black {
		key = ^key
	}
	return key
}

// Load reads a book file: coordinate-move lines when the name ends in
// ".txt", binary entries otherwise.
func Load(filename string) (*Book, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(filename), ".txt") {
		return LoadLines(file)
	}
	return LoadReader(file)
}

// entrySize is the binary entry layout:
// 8 bytes: position key (big-endian)
// 2 bytes: move (big-endian)
// 2 bytes: weight (big-endian)
// 4 bytes: reserved
const entrySize = 16

// LoadReader loads a binary book from a reader.
func LoadReader(r io.Reader) (*Book, error) {
	book := New()

	var entry [entrySize]byte
	for {
		_, err := io.ReadFull(r, entry[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read book entry %d: %w", book.count(), err)
		}

		key := binary.BigEndian.Uint64(entry[0:8])
		move := decodeMove(binary.BigEndian.Uint16(entry[8:10]))
		weight := binary.BigEndian.Uint16(entry[10:12])
		book.add(key, move, weight)
	}

	return book, nil
}

// WriteTo writes the book in binary form, entries sorted by key and then
// by descending weight.
func (b *Book) WriteTo(w io.Writer) (int64, error) {
	keys := make([]uint64, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var n int64
	var entry [entrySize]byte
	for _, k := range keys {
		for _, e := range b.ProbeAllKey(k) {
			binary.BigEndian.PutUint64(entry[0:8], k)
			binary.BigEndian.PutUint16(entry[8:10], encodeMove(e.Move))
			binary.BigEndian.PutUint16(entry[10:12], e.Weight)
			m, err := w.Write(entry[:])
			n += int64(m)
			if err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// LoadLines builds a book from lines of coordinate moves played from the
// standard setup, such as "e2e4 e7e5 g1f3". Every position on a line adds
// one to the weight of the move played from it. Blank lines and lines
// starting with '#' are skipped.
func LoadLines(r io.Reader) (*Book, error) {
	book := New()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		g := game.NewStandard()
		for _, s := range strings.Fields(line) {
			m, err := board.ParseMove(s)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			key := Key(g.Board(), g.ActivePlayer())
			if err := g.Play(m.From, m.To); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			book.add(key, m, 1)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return book, nil
}

// add merges weight into the entry for move, saturating at the uint16 limit.
func (b *Book) add(key uint64, move board.Move, weight uint16) {
	if move == board.NoMove {
		return
	}
	entries := b.entries[key]
	for i := range entries {
		if entries[i].Move == move {
			entries[i].Weight = uint16(min(int(entries[i].Weight)+int(weight), 0xFFFF))
			return
		}
	}
	b.entries[key] = append(entries, BookEntry{Move: move, Weight: weight})
}

func (b *Book) count() int {
	n := 0
	for _, e := range b.entries {
		n += len(e)
	}
	return n
}

// Move encoding (bits):
// 0-5: to cell
// 6-11: from cell
func encodeMove(m board.Move) uint16 {
	return uint16(m.To) | uint16(m.From)<<6
}

func decodeMove(data uint16) board.Move {
	return board.NewMove(board.Cell(data>>6&63), board.Cell(data&63))
}

// Probe looks up the position and returns a legal book move using
// weighted random selection from rng.
func (b *Book) Probe(bd *board.Board, color board.Color, rng *rand.Rand) (board.Move, bool) {
	entries := b.legalEntries(bd, color)
	if len(entries) == 0 {
		return board.NoMove, false
	}

	// Weighted random selection
	totalWeight := 0
	for _, e := range entries {
		totalWeight += int(e.Weight)
	}

	if totalWeight == 0 {
		// All weights are 0, just pick the first
		return entries[0].Move, true
	}

	r := rng.IntN(totalWeight)
	cumulative := 0
	for _, e := range entries {
		cumulative += int(e.Weight)
		if r < cumulative {
			return e.Move, true
		}
	}

	// Fallback to first entry
	return entries[0].Move, true
}

// legalEntries returns the entries for the position, highest weight first,
// keeping only moves the board generates.
func (b *Book) legalEntries(bd *board.Board, color board.Color) []BookEntry {
	var legal []BookEntry
	for _, e := range b.ProbeAll(bd, color) {
		p := bd.Get(e.Move.From)
		if !p.IsNone() && p.Color() == color && slices.Contains(bd.Moves(e.Move.From), e.Move.To) {
			legal = append(legal, e)
		}
	}
	return legal
}

// ProbeAll returns all book moves for the position, sorted by weight.
func (b *Book) ProbeAll(bd *board.Board, color board.Color) []BookEntry {
	return b.ProbeAllKey(Key(bd, color))
}

// ProbeAllKey returns all book moves stored under key, sorted by weight.
func (b *Book) ProbeAllKey(key uint64) []BookEntry {
	if b == nil {
		return nil
	}

	entries, ok := b.entries[key]
	if !ok {
		return nil
	}

	// Sort by weight (highest first)
	result := slices.Clone(entries)
	slices.SortStableFunc(result, func(x, y BookEntry) int {
		return int(y.Weight) - int(x.Weight)
	})

	return result
}

// Size returns the number of unique positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
