package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"memorymatch/core"
	"memorymatch/game"
)

func newPlayCmd(flags *globalFlags) *cobra.Command {
	var difficulty, name string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game and post the result to the leaderboard",
		Long: `Play deals a shuffled board and reads card numbers from standard input.
Enter two numbers to flip a pair. Other commands:
  p        pause the timer
  r        restart with a new deck
  easy|medium|hard   switch level and restart
  q        quit without recording`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			if difficulty == "" {
				difficulty = e.client.Difficulty
			}
			d, err := core.ParseDifficulty(difficulty)
			if err != nil {
				return err
			}
			if name == "" {
				name = e.client.PlayerName
			}
			return play(cmd.Context(), e, d, name)
		},
	}
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "easy, medium or hard")
	cmd.Flags().StringVarP(&name, "name", "n", "", "player name shown on the leaderboard")
	return cmd
}

func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ch <- strings.TrimSpace(sc.Text())
		}
	}()
	return ch
}

// boardKey identifies what a redraw would show, minus the clock.
type boardKey struct {
	state   game.State
	moves   int
	matches int
	flipped int
	cards   int
}

func keyOf(s game.Snapshot) boardKey {
	return boardKey{state: s.State, moves: s.Moves, matches: s.Matches, flipped: len(s.Flipped), cards: len(s.Cards)}
}

func play(ctx context.Context, e *env, d core.Difficulty, name string, opts ...game.Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	lines := readLines(e.in)

	if strings.TrimSpace(name) == "" {
		fmt.Fprint(e.out, "Your name: ")
		select {
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			name = l
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	name = core.NormalizeName(name)

	changed := make(chan struct{}, 1)
	done := make(chan game.Result, 1)
	opts = append([]game.Option{
		game.WithLogger(e.logger),
		game.WithOnChange(func(game.Snapshot) {
			select {
			case changed <- struct{}{}:
			default:
			}
		}),
		game.WithOnComplete(func(r game.Result) { done <- r }),
	}, opts...)
	sess, err := game.New(d, opts...)
	if err != nil {
		return err
	}
	defer sess.Close()

	last := keyOf(sess.Snapshot())
	renderBoard(e.out, sess.Snapshot(), e.width)
	redraw := func() {
		snap := sess.Snapshot()
		if k := keyOf(snap); k != last {
			last = k
			renderBoard(e.out, snap, e.width)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
			redraw()
		case res := <-done:
			redraw()
			return finish(ctx, e, name, res)
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := handleInput(e, sess, &d, l)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

func handleInput(e *env, sess *game.Session, d *core.Difficulty, line string) (bool, error) {
	switch strings.ToLower(line) {
	case "":
		return false, nil
	case "q", "quit", "exit":
		return true, nil
	case "p", "pause":
		if sess.Pause() {
			fmt.Fprintln(e.out, "Paused. Flip a card to resume.")
		}
		return false, nil
	case "r", "restart":
		return false, sess.RestartDifficulty(*d)
	}
	if nd, err := core.ParseDifficulty(line); err == nil {
		*d = nd
		return false, sess.RestartDifficulty(nd)
	}
	for _, f := range strings.Fields(line) {
		n, err := strconv.Atoi(f)
		if err != nil {
			fmt.Fprintf(e.out, "unknown command %q\n", f)
			return false, nil
		}
		if !sess.FlipAt(n - 1) {
			fmt.Fprintf(e.out, "card %d cannot be flipped now\n", n)
		}
	}
	return false, nil
}

func finish(ctx context.Context, e *env, name string, res game.Result) error {
	fmt.Fprintf(e.out, "\nAll %d pairs found in %s with %d moves %s\n",
		res.Pairs, formatSeconds(res.Seconds), res.Moves, stars(res.Stars))

	out := <-e.recorder.RecordAsync(ctx, name, res)
	if out.Submitted {
		fmt.Fprintln(e.out, "Score posted to the leaderboard.")
	} else {
		fmt.Fprintln(e.out, "Score saved on this device.")
	}
	renderLeaderboard(e.out, fmt.Sprintf("Top scores, %s, last 24h", res.Difficulty), out.Entries, out.Source, &out.Score)

	if out.Score.Name != core.DefaultName && e.prefs.Name != out.Score.Name {
		e.prefs.Name = out.Score.Name
		if err := savePreferences(e.prefsPath, e.prefs); err != nil {
			e.logger.Warn("saving preferences", "error", err)
		}
	}
	return nil
}
