package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"playlist-browser/internal/catalog"
	"playlist-browser/internal/logging"
	"playlist-browser/internal/pagination"
	"playlist-browser/internal/playlist"

	"golang.org/x/term"
)

const (
	// Default timeout for fetching and parsing the playlist
	defaultTimeout = 2 * time.Minute
	// Width used when stdout is not a terminal
	defaultWidth = 100
	// Pages shown by the category and search commands
	pageSize = 25
)

func main() {
	args, level := logLevelFromArgs(os.Args[1:])
	if len(args) == 0 {
		printUsage(os.Stdout)
		os.Exit(1)
	}
	logging.SetLevel(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	source := os.Getenv("PLAYLIST_PATH")
	if source == "" {
		source = "playlist.m3u"
	}

	os.Exit(run(ctx, source, args, os.Stdout, os.Stderr, terminalWidth()))
}

// logLevelFromArgs strips leading -v flags. Loader output is limited to
// warnings unless -v is given.
func logLevelFromArgs(args []string) ([]string, logging.LogLevel) {
	level := logging.LevelWarn
	for len(args) > 0 && (args[0] == "-v" || args[0] == "--verbose") {
		level = logging.LevelDebug
		args = args[1:]
	}
	return args, level
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, source string, args []string, out, errOut io.Writer, width int) int {
	command := args[0]
	if !isCommand(command) {
		fmt.Fprintf(errOut, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage(errOut)
		return 1
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	index, stats, err := playlist.Load(ctx, source)
	if err != nil {
		fmt.Fprintf(errOut, "Error: Failed to load playlist: %v\n", err)
		fmt.Fprintf(errOut, "Make sure PLAYLIST_PATH is set correctly (current: %s)\n", source)
		return 1
	}

	switch command {
	case "stats":
		showStats(out, index, stats)
	case "categories":
		listCategories(out, index, width)
	case "category":
		if len(args) < 2 {
			fmt.Fprintln(errOut, "Error: category requires a name")
			return 1
		}
		category, ok := index.Lookup(args[1])
		if !ok {
			fmt.Fprintf(errOut, "Error: Category %q not found\n", args[1])
			return 1
		}
		p := pagination.Paginate(len(category.Channels), pageArg(args, 2), pageSize)
		fmt.Fprintf(out, "%s (page %d of %d, %d channels)\n\n", category.Name, p.Page, p.TotalPages, p.Total)
		for _, ch := range pagination.Slice(category.Channels, p) {
			printChannel(out, ch, width)
		}
	case "search":
		if len(args) < 2 {
			fmt.Fprintln(errOut, "Error: search requires a term")
			return 1
		}
		results := index.Search(args[1])
		p := pagination.Paginate(len(results), pageArg(args, 2), pageSize)
		fmt.Fprintf(out, "%d matches for %q (page %d of %d)\n\n", p.Total, args[1], p.Page, p.TotalPages)
		for _, r := range pagination.Slice(results, p) {
			fmt.Fprintf(out, "[%s]\n", truncate(r.Category, width))
			printChannel(out, r.Channel, width)
		}
	}
	return 0
}

func isCommand(cmd string) bool {
	switch cmd {
	case "stats", "categories", "category", "search":
		return true
	}
	return false
}

// sanitizeCommand returns a safe representation of a command string for
// display. Anything outside [a-zA-Z0-9_-] becomes '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Playlist Inspector")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: playlist-inspect [-v] <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  stats                   - Show parse statistics")
	fmt.Fprintln(w, "  categories              - List categories with channel counts")
	fmt.Fprintln(w, "  category <name> [page]  - List the channels of a category")
	fmt.Fprintln(w, "  search <term> [page]    - Search channel names")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -v, --verbose           - Show loader and parse logs")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PLAYLIST_PATH - Playlist file or http(s) URL (default: playlist.m3u)")
}

func showStats(w io.Writer, index *catalog.Index, stats playlist.Stats) {
	fmt.Fprintf(w, "Lines:               %d\n", stats.Lines)
	fmt.Fprintf(w, "Directives:          %d\n", stats.Directives)
	fmt.Fprintf(w, "Channels:            %d\n", stats.Channels)
	fmt.Fprintf(w, "Categories:          %d\n", index.CategoryCount())
	fmt.Fprintf(w, "Orphan stream lines: %d\n", stats.OrphanURLs)
}

func listCategories(w io.Writer, index *catalog.Index, width int) {
	for _, c := range index.ListCategories() {
		count := strconv.Itoa(c.ChannelCount)
		fmt.Fprintf(w, "%6s  %s\n", count, truncate(c.Name, width-8))
	}
}

func printChannel(w io.Writer, ch catalog.Channel, width int) {
	fmt.Fprintf(w, "  %s\n", truncate(ch.Name, width-2))
	fmt.Fprintf(w, "    %s\n", truncate(ch.URL, width-4))
}

// pageArg reads an optional 1-based page number from args[i].
func pageArg(args []string, i int) int {
	if len(args) <= i {
		return 1
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// truncate shortens s to at most width runes, marking the cut with "...".
func truncate(s string, width int) string {
	if width < 4 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}
