package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

const prompt = "todo> "

// runREPL reads commands line by line until EOF, "exit"/"quit" or ctx is
// cancelled. The prompt is only printed for interactive input.
func runREPL(ctx context.Context, h *Handler, scanner *bufio.Scanner, interactive bool, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		if interactive {
			fmt.Fprint(w, prompt)
		}
		if !scanner.Scan() {
			return
		}

		out, exit := h.Execute(scanner.Text())
		if out != "" {
			printlnFn(out)
		}
		if exit {
			return
		}
	}
}

type App struct {
	handler *Handler
	in      *os.File
	out     io.Writer
}

func NewApp() *App {
	return &App{handler: NewHandler(NewStore()), in: os.Stdin, out: os.Stdout}
}

// Run prints the welcome banner and serves the REPL on stdin.
func (a *App) Run(ctx context.Context) {
	printlnFn(welcomeText)
	interactive := isTerminal(int(a.in.Fd()))
	runREPL(ctx, a.handler, bufio.NewScanner(a.in), interactive, a.out)
}
