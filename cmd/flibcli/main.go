package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"flibproxy/internal/command"
	"flibproxy/internal/config"
	"flibproxy/internal/search"
)

const historyFile = ".flibcli_history"

const usage = `Commands:
  search <query> [limit:N]                 find books
  formats <id>                             list download formats
  get <id> [format:epub] [out:dir] [name:file]  download a book
  help                                     this text
  exit                                     leave the shell`

type shell struct {
	svc *search.Service
	cfg config.CLIConfig
	out io.Writer
}

func main() {
	path, required := config.Path()
	cfg, err := config.Load(path, required)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if cfg.CLI.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	svc, err := search.New(cfg.CLI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client: %v\n", err)
		os.Exit(1)
	}
	sh := &shell{svc: svc, cfg: cfg.CLI, out: os.Stdout}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(os.Args) > 1 {
		if err := sh.execute(ctx, quoteArgs(os.Args[1:])); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	sh.interactive(ctx)
}

func (sh *shell) interactive(ctx context.Context) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(sh.out, "Flibproxy Interactive Shell (help for commands)")
	for {
		input, err := line.Prompt("flib> ")
		if err != nil {
			// liner.ErrPromptAborted на Ctrl+C, io.EOF на Ctrl+D
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if input == "exit" || input == "quit" {
			return
		}
		if err := sh.execute(ctx, input); err != nil {
			fmt.Fprintf(sh.out, "Error: %v\n", err)
		}
	}
}

func (sh *shell) execute(ctx context.Context, input string) error {
	cmd, err := command.Parse(input)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"cmd": cmd.Name, "args": cmd.Args, "opts": cmd.Options}).Debug("cli.command")

	switch cmd.Name {
	case "search", "s":
		return sh.search(ctx, cmd)
	case "formats", "f":
		return sh.formats(ctx, cmd)
	case "get", "download", "d":
		return sh.get(ctx, cmd)
	case "help", "?":
		fmt.Fprintln(sh.out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q, try help", cmd.Name)
	}
}

func (sh *shell) search(ctx context.Context, cmd command.Command) error {
	query := cmd.Arg()
	if query == "" {
		return errors.New("usage: search <query>")
	}
	limit := 0
	if v, ok := cmd.Options["limit"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("bad limit %q", v)
		}
		limit = n
	}

	start := time.Now()
	res, err := sh.svc.Search(ctx, query, limit)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if len(res.Books) == 0 {
		fmt.Fprintln(sh.out, "No results found.")
	} else {
		fmt.Fprintf(sh.out, "%-8s | %-40s | %-25s\n", "ID", "Title", "Author")
		fmt.Fprintln(sh.out, strings.Repeat("-", 80))
		for _, b := range res.Books {
			fmt.Fprintf(sh.out, "%-8s | %-40s | %-25s\n", b.ID, clip(b.Title, 40), clip(b.DisplayAuthor(), 25))
		}
	}
	fmt.Fprintf(sh.out, "\n⏱ %d of %d, %v\n\n", len(res.Books), res.Total, elapsed.Round(time.Millisecond))
	return nil
}

func (sh *shell) formats(ctx context.Context, cmd command.Command) error {
	if len(cmd.Args) != 1 {
		return errors.New("usage: formats <id>")
	}
	formats, err := sh.svc.Formats(ctx, cmd.Args[0])
	if err != nil {
		return err
	}
	if len(formats) == 0 {
		fmt.Fprintln(sh.out, "No formats found.")
		return nil
	}
	for i, f := range formats {
		fmt.Fprintf(sh.out, "%2d. %-6s %s\n", i+1, f.Name, f.URL)
	}
	return nil
}

func (sh *shell) get(ctx context.Context, cmd command.Command) error {
	if len(cmd.Args) != 1 {
		return errors.New("usage: get <id> [format:epub] [out:dir] [name:file]")
	}
	id := cmd.Args[0]
	formats, err := sh.svc.Formats(ctx, id)
	if err != nil {
		return err
	}
	f, err := pickFormat(formats, cmd.Options["format"])
	if err != nil {
		return err
	}

	name := cmd.Options["name"]
	if name == "" {
		name = id + "." + f.Extension
	}
	dir := cmd.Options["out"]
	if dir == "" {
		dir = sh.cfg.DownloadDir
	}

	tr, err := sh.svc.Download(ctx, f, name)
	if err != nil {
		return err
	}
	defer tr.Body.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	// имя от сервера не должно выводить за пределы каталога
	target := filepath.Join(dir, filepath.Base(tr.Filename))
	tmp := target + ".part"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	bar := progressbar.DefaultBytes(tr.Size, "📥 "+filepath.Base(target))
	_, err = io.Copy(io.MultiWriter(file, bar), tr.Body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("download %s: %w", f.Name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "\nSaved %s\n", target)
	return nil
}

// pickFormat берет запрошенное расширение или первый формат (сервер уже отсортировал по приоритету)
func pickFormat(formats []search.FormatDTO, want string) (search.FormatDTO, error) {
	if len(formats) == 0 {
		return search.FormatDTO{}, errors.New("book has no downloadable formats")
	}
	if want == "" {
		return formats[0], nil
	}
	for _, f := range formats {
		if strings.EqualFold(f.Extension, want) {
			return f, nil
		}
	}
	available := make([]string, len(formats))
	for i, f := range formats {
		available[i] = f.Extension
	}
	return search.FormatDTO{}, fmt.Errorf("format %q not available (have %s)", want, strings.Join(available, ", "))
}

// quoteArgs собирает os.Args обратно в строку, сохраняя аргументы с пробелами
func quoteArgs(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " \t\"'") {
			a = strconv.Quote(a)
		}
		parts[i] = a
	}
	return strings.Join(parts, " ")
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func historyPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, historyFile)
	}
	return historyFile
}
