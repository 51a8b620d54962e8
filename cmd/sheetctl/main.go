// Command sheetctl is a line-oriented REPL over a sheet.Engine backed by an
// in-memory Store. It follows broyeztony-karl's main.go subcommand dispatch
// ("repl" launches repl.Start against stdin/stdout) and repl.go's prompt/
// banner/line-loop shape, simplified to the non-tty scanner path since
// sheetctl has no need for raw-mode line editing.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	sheet "sheetengine"
	"sheetengine/internal/liveserver"
)

const (
	prompt   = "sheet> "
	bannerTB = "════════════════════════════════════════"
)

func main() {
	if len(os.Args) < 2 {
		repl(os.Stdin, os.Stdout)
		return
	}

	switch os.Args[1] {
	case "-h", "--help", "help":
		usage()
	case "repl":
		repl(os.Stdin, os.Stdout)
	case "serve":
		addr := ":8080"
		if len(os.Args) > 2 {
			addr = os.Args[2]
			if !strings.Contains(addr, ":") {
				addr = ":" + addr
			}
		}
		os.Exit(serveCommand(addr))
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  sheetctl [repl]          start the interactive REPL (default)\n")
	fmt.Fprintf(os.Stderr, "  sheetctl serve [addr]    serve a live websocket view (default :8080)\n")
	fmt.Fprintf(os.Stderr, "  sheetctl help            show this help message\n")
}

func serveCommand(addr string) int {
	ctx := context.Background()
	engine, err := sheet.NewEngine(ctx, "sheet1", sheet.NewMemStore())
	if err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		return 1
	}
	defer engine.Close()

	hub := liveserver.NewHub(engine)
	http.Handle("/ws", http.HandlerFunc(hub.HandleWebSocket))
	fmt.Fprintf(os.Stdout, "listening on %s (ws://%s/ws)\n", addr, addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		return 1
	}
	return 0
}

// repl reads one mutation or query per line until EOF or :quit.
//
// Commands:
//
//	<cell> = <formula>     evaluate, persisting <formula> at <cell>
//	? <cell>               query a cell's value and formula
//	del <cell>             delete a cell
//	copy <dest> <src>      copy src's formula into dest, rebasing references
//	dump                   print all formulas in topological order
//	clear                  wipe the sheet
//	:help, :quit
func repl(in io.Reader, out io.Writer) {
	ctx := context.Background()
	engine, err := sheet.NewEngine(ctx, "sheet1", sheet.NewMemStore())
	if err != nil {
		fmt.Fprintf(out, "failed to start engine: %v\n", err)
		return
	}
	defer engine.Close()

	fmt.Fprintf(out, "%s\n", bannerTB)
	fmt.Fprintf(out, "  sheetctl - interactive spreadsheet shell\n")
	fmt.Fprintf(out, "%s\n", bannerTB)
	fmt.Fprintf(out, "Type `<cell> = <formula>`, `? <cell>`, `del <cell>`,\n")
	fmt.Fprintf(out, "`copy <dest> <src>`, `dump`, `clear`, or `:quit`.\n\n")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			return
		}
		if line == ":help" {
			fmt.Fprintf(out, "`<cell> = <formula>`, `? <cell>`, `del <cell>`, `copy <dest> <src>`, `dump`, `clear`, `:quit`\n")
			continue
		}
		dispatch(ctx, out, engine, line)
	}
}

func dispatch(ctx context.Context, out io.Writer, engine *sheet.Engine, line string) {
	switch {
	case strings.HasPrefix(line, "?"):
		cellSpec := strings.TrimSpace(strings.TrimPrefix(line, "?"))
		q, err := engine.Query(cellSpec)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "%s = %v (%q)\n", cellSpec, q.Value, q.Formula)

	case strings.HasPrefix(line, "del "):
		cellSpec := strings.TrimSpace(strings.TrimPrefix(line, "del "))
		updates, err := engine.Delete(ctx, cellSpec)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		printUpdates(out, updates)

	case strings.HasPrefix(line, "copy "):
		args := strings.Fields(strings.TrimPrefix(line, "copy "))
		if len(args) != 2 {
			fmt.Fprintf(out, "usage: copy <dest> <src>\n")
			return
		}
		updates, err := engine.Copy(ctx, args[0], args[1])
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		printUpdates(out, updates)

	case line == "dump":
		entries, err := engine.Dump()
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s: %s\n", e.Id, e.Formula)
		}

	case line == "clear":
		if err := engine.Clear(ctx); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}

	default:
		cellSpec, formula, ok := strings.Cut(line, "=")
		if !ok {
			fmt.Fprintf(out, "unrecognized input: %s\n", line)
			return
		}
		updates, err := engine.Eval(ctx, strings.TrimSpace(cellSpec), strings.TrimSpace(formula))
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		printUpdates(out, updates)
	}
}

func printUpdates(out io.Writer, updates map[sheet.CellId]float64) {
	ids := make([]string, 0, len(updates))
	for id := range updates {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(out, "%s = %v\n", id, updates[sheet.CellId(id)])
	}
}
