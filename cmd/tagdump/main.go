// Tagdump prints the normalized metadata record of audio files.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/dmulholl/janus-go/janus"
	"github.com/joho/godotenv"
	"github.com/juho05/log"
	"github.com/schollz/progressbar/v3"

	"github.com/simonhull/audiotag"
	"github.com/simonhull/audiotag/internal/config"
)

var helptext = fmt.Sprintf(`
Usage: %s [FLAGS] [OPTIONS] [ARGUMENTS]

  Print the artist, album, title, track number and playing time of each
  audio file. Files can be given as a list:

    $ tagdump one.flac two.m4a three.aac

  or an entire directory can be scanned:

    $ tagdump --dir /path/to/music

  Settings are read from the environment and from a .env file:
  LOG_LEVEL, LOG_FILE, LOG_APPEND, TAGDUMP_WORKERS, TAGDUMP_EXTENSIONS and
  TAGDUMP_SCAN_HIDDEN.

Arguments:
  [files]                 Files to read.

Options:
  -d, --dir <path>        Directory to scan recursively.
  -f, --format <name>     Force the format (aac, flac, m4a, m4b, mp3, ogg,
                          wav, aiff) instead of detecting it.

Flags:
  -h, --help              Display this help text and exit.
  -p, --progress          Show a progress bar on stderr.
  -q, --quiet             Only print records.
  -v, --version           Display the application's version number and exit.
`, filepath.Base(os.Args[0]))

func main() {
	parser := janus.NewParser()
	parser.Helptext = helptext
	parser.Version = audiotag.GetVersionInfo().String()
	parser.NewFlag("progress p")
	parser.NewFlag("quiet q")
	parser.NewString("dir d")
	parser.NewString("format f")
	parser.Parse()

	_ = godotenv.Load()

	conf, errs := config.Load(os.Environ())
	if len(errs) > 0 {
		for _, e := range errs {
			log.Errorf("ERROR: %s", e)
		}
		log.Fatalf("ERROR: failed to load config")
	}

	log.SetSeverity(conf.LogLevel)
	log.SetOutput(conf.LogFile)

	opts := []audiotag.Option{audiotag.WithConcurrency(conf.Workers)}

	if parser.Found("format") {
		format := audiotag.ParseFormat(parser.GetString("format"))
		if format == audiotag.FormatUnknown {
			fmt.Fprintf(os.Stderr, "Error: unknown format %q.\n", parser.GetString("format"))
			os.Exit(1)
		}
		opts = append(opts, audiotag.WithFormat(format))
	}

	var files []string
	if parser.Found("dir") {
		var err error
		files, err = collectFiles(parser.GetString("dir"), conf)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			fmt.Fprintln(os.Stderr, "Error: no files found.")
			os.Exit(1)
		}
	} else if parser.HasArgs() {
		files = parser.GetArgs()
	} else {
		fmt.Fprintln(os.Stderr, "Error: you must specify files to read.")
		os.Exit(1)
	}

	quiet := parser.GetFlag("quiet")
	if !quiet {
		log.Infof("reading %d files with %d workers", len(files), conf.Workers)
	}

	var bar *progressbar.ProgressBar
	if parser.GetFlag("progress") {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("reading"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		opts = append(opts, audiotag.WithProgress(func(string, *audiotag.Tag) {
			_ = bar.Add(1)
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tags, err := audiotag.ReadMany(ctx, files, opts...)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		log.Warnf("interrupted: %s", err)
		return
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for i, tag := range tags {
		if err := printRecord(out, files[i], tag, quiet); err != nil {
			log.Errorf("write output: %s", err)
			return
		}
	}
}

// printRecord writes the "file:" line followed by the record's debug form.
func printRecord(w io.Writer, path string, tag *audiotag.Tag, quiet bool) error {
	if tag == nil {
		if quiet {
			return nil
		}
		_, err := fmt.Fprintf(w, "file: %s\n# no metadata\n", path)
		return err
	}
	if _, err := fmt.Fprintf(w, "file: %s\n", path); err != nil {
		return err
	}
	_, err := tag.WriteTo(w)
	return err
}

// collectFiles walks root and returns the files whose extension is enabled
// in conf, skipping dot-directories unless conf.ScanHidden is set.
func collectFiles(root string, conf config.Config) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warnf("walk %s: %s", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && !conf.ScanHidden && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if conf.HasExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
