package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gridwalk/gridwalk/internal/core/ecs"
	"github.com/gridwalk/gridwalk/internal/session"
	"github.com/gridwalk/gridwalk/internal/world"
)

// readLines feeds stdin lines to the simulation goroutine. The channel is
// closed at EOF.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case out <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// runCommand applies one console command to the session. It reports true
// when the user asked to quit.
func runCommand(sess *session.Session, line string, w io.Writer) bool {
	f := strings.Fields(line)
	if len(f) == 0 {
		return false
	}
	switch f[0] {
	case "quit", "exit":
		return true

	case "agents":
		for _, id := range sess.Agents() {
			a, _ := sess.Agent(id)
			ctrl, _ := sess.Controller(id)
			fmt.Fprintf(w, "  %-12s %s at %s speed %.2f budget %d %s\n",
				a.Name, id, a.GridPosition, a.Speed, a.MovementBudget, ctrl.State())
		}

	case "click":
		pos, rest, err := posArgs(f[1:])
		if err != nil {
			fmt.Fprintf(w, "  click: %v\n", err)
			return false
		}
		id, err := pickAgent(sess, rest)
		if err != nil {
			fmt.Fprintf(w, "  click: %v\n", err)
			return false
		}
		sess.ClickTile(id, pos)

	case "place":
		pos, rest, err := posArgs(f[1:])
		if err != nil || len(rest) == 0 {
			fmt.Fprintln(w, "  usage: place x z name")
			return false
		}
		ref, err := sess.PlaceItem(pos, strings.Join(rest, " "))
		if err != nil {
			fmt.Fprintf(w, "  place: %v\n", err)
			return false
		}
		fmt.Fprintf(w, "  placed %s (#%d) at %s\n", ref.Name, ref.ID, pos)

	case "clear":
		pos, _, err := posArgs(f[1:])
		if err != nil {
			fmt.Fprintf(w, "  clear: %v\n", err)
			return false
		}
		occ, err := sess.ClearTile(pos)
		if err != nil {
			fmt.Fprintf(w, "  clear: %v\n", err)
			return false
		}
		fmt.Fprintf(w, "  cleared %s at %s\n", occ, pos)

	case "block", "open":
		pos, _, err := posArgs(f[1:])
		if err != nil {
			fmt.Fprintf(w, "  %s: %v\n", f[0], err)
			return false
		}
		if err := sess.SetPassable(pos, f[0] == "open"); err != nil {
			fmt.Fprintf(w, "  %s: %v\n", f[0], err)
		}

	default:
		fmt.Fprintf(w, "  unknown command %q\n", f[0])
	}
	return false
}

func posArgs(args []string) (world.GridPos, []string, error) {
	if len(args) < 2 {
		return world.GridPos{}, nil, fmt.Errorf("need x and z")
	}
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return world.GridPos{}, nil, fmt.Errorf("bad x %q", args[0])
	}
	z, err := strconv.Atoi(args[1])
	if err != nil {
		return world.GridPos{}, nil, fmt.Errorf("bad z %q", args[1])
	}
	return world.GridPos{X: x, Z: z}, args[2:], nil
}

// parsePos reads "x,z".
func parsePos(s string) (world.GridPos, error) {
	xs, zs, ok := strings.Cut(s, ",")
	if !ok {
		return world.GridPos{}, fmt.Errorf("want x,z, got %q", s)
	}
	pos, _, err := posArgs([]string{strings.TrimSpace(xs), strings.TrimSpace(zs)})
	return pos, err
}

// pickAgent resolves an optional agent name; without one the first agent
// is used.
func pickAgent(sess *session.Session, rest []string) (ecs.EntityID, error) {
	if len(rest) > 0 {
		name := strings.Join(rest, " ")
		if id, ok := sess.AgentByName(name); ok {
			return id, nil
		}
		return 0, fmt.Errorf("no agent named %q", name)
	}
	ids := sess.Agents()
	if len(ids) == 0 {
		return 0, fmt.Errorf("level has no agents")
	}
	return ids[0], nil
}
