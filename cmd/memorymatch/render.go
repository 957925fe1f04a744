package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"memorymatch/core"
	"memorymatch/game"
	"memorymatch/recorder"
)

const cellWidth = 8

var (
	hiddenStyle  = color.New(color.FgHiBlack)
	faceUpStyle  = color.New(color.FgHiYellow, color.Bold)
	matchedStyle = color.New(color.FgGreen)
	labelStyle   = color.New(color.FgCyan)
	valueStyle   = color.New(color.FgHiWhite)
)

// columns picks a grid width that keeps rows even and fits the terminal.
func columns(cards, width int) int {
	maxCols := width / cellWidth
	if maxCols < 1 {
		maxCols = 1
	}
	best := 1
	for c := 2; c <= maxCols && c*c <= cards*2; c++ {
		if cards%c == 0 {
			best = c
		}
	}
	return best
}

func stars(n int) string {
	return strings.Repeat("★", n) + strings.Repeat("☆", 3-n)
}

func cardFace(c game.CardView) string {
	if c.Content.IsImage() {
		// terminals cannot show images; use the pair number
		return fmt.Sprintf("#%d", c.PairID+1)
	}
	return c.Content.Value
}

func renderBoard(w io.Writer, snap game.Snapshot, width int) {
	fmt.Fprintf(w, "%s %s  %s %d  %s %d/%d  %s %s  %s\n",
		labelStyle.Sprint("Level:"), valueStyle.Sprint(snap.Difficulty),
		labelStyle.Sprint("Moves:"), snap.Moves,
		labelStyle.Sprint("Pairs:"), snap.Matches, snap.Pairs,
		labelStyle.Sprint("Time:"), formatSeconds(snap.Seconds),
		faceUpStyle.Sprint(stars(snap.Stars)))

	cols := columns(len(snap.Cards), width)
	var row strings.Builder
	for i, c := range snap.Cards {
		var cell string
		switch {
		case c.Matched:
			cell = matchedStyle.Sprintf("%2d %s", i+1, cardFace(c))
		case c.FaceUp:
			cell = faceUpStyle.Sprintf("%2d %s", i+1, cardFace(c))
		default:
			cell = hiddenStyle.Sprintf("%2d ▒▒", i+1)
		}
		row.WriteString(cell)
		row.WriteString("   ")
		if (i+1)%cols == 0 || i == len(snap.Cards)-1 {
			fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
			row.Reset()
		}
	}
	if snap.State == game.StateIdle && snap.Moves > 0 {
		fmt.Fprintln(w, labelStyle.Sprint("Paused. Flip a card to resume."))
	}
}

func formatSeconds(s int) string {
	d := time.Duration(s) * time.Second
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), s%60)
}

func renderLeaderboard(w io.Writer, title string, entries []core.Score, source recorder.Source, mine *core.Score) {
	fmt.Fprintln(w, labelStyle.Sprint(title))
	if source == recorder.SourceLocal {
		fmt.Fprintln(w, hiddenStyle.Sprint("(leaderboard server unavailable, showing scores saved on this device)"))
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "  no scores yet")
		return
	}
	for i, s := range entries {
		line := fmt.Sprintf("%3d. %-20s %6s %5d moves  %-6s", i+1, s.Name, formatSeconds(s.Seconds), s.Moves, s.Difficulty)
		if mine != nil && s.Name == mine.Name && s.Seconds == mine.Seconds && s.Moves == mine.Moves && s.Difficulty == mine.Difficulty {
			line = faceUpStyle.Sprint(line + "  <- you")
		}
		fmt.Fprintln(w, line)
	}
}
