// Package process implements stylesheet processing command.
package process

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"brandcss/archive"
	"brandcss/state"
)

// stdoutDst as destination sends processed stylesheet to standard output.
const stdoutDst = "-"

var stdout = func() io.Writer { return os.Stdout }

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("process")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst != stdoutDst {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	pl, err := newPipeline(env.Cfg, log)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Strings("plugins", pl.Plugins()))
	defer func(start time.Time) {
		pl.summary()
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, pl, log)
}

// batch accounts for stylesheets found in a directory or archive. Failure of
// a single stylesheet does not stop processing.
type batch struct {
	found, done int
	errs        error
}

func (b *batch) fail(err error) {
	b.errs = multierr.Append(b.errs, err)
}

func (b *batch) result() error {
	if b.found > 0 && b.done == 0 {
		return fmt.Errorf("none of %d stylesheet(s) could be processed: %w", b.found, b.errs)
	}
	return nil
}

// process handles the core logic independently of CLI framework. It
// determines the input type (directory, archive, or single file) and
// processes accordingly. Path may continue inside an archive.
func process(ctx context.Context, src, dst string, pl *pipeline, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if dst == stdoutDst {
				return errors.New("standard output could only be used for a single stylesheet")
			}
			b := &batch{}
			if err := processDir(ctx, head, dst, pl, log, b); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			return b.result()
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if dst == stdoutDst && !archive.IsStylesheet(tail) {
				return errors.New("standard output could only be used for a single stylesheet")
			}
			b := &batch{}
			if err := processArchive(ctx, head, filepath.ToSlash(tail), "", dst, pl, log, b); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			if b.found == 0 && len(tail) != 0 {
				return fmt.Errorf("input source was not found in archive (%s) => (%s)", head, tail)
			}
			return b.result()
		}

		if len(tail) != 0 {
			return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}
		text, kind, err := isTextFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if !text {
			return fmt.Errorf("input was not recognized as stylesheet (%s), looks like %s", head, kind.MIME.Value)
		}
		file, err := os.Open(head)
		if err != nil {
			return fmt.Errorf("unable to process file: %w", err)
		}
		defer file.Close()
		return processStylesheet(ctx, file, filepath.Base(head), dst, pl, log)
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

// processDir walks directory tree finding stylesheets and archives and
// processes them in natural order of their paths.
func processDir(ctx context.Context, dir, dst string, pl *pipeline, log *zap.Logger, b *batch) error {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Sort(natural.StringSlice(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		isArchive, err := isArchiveFile(path)
		if err != nil {
			// checking format - but cannot open target file
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if isArchive {
			if err := processArchive(ctx, path, "", filepath.Dir(rel), dst, pl, log, b); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			continue
		}

		if !archive.IsStylesheet(path) {
			log.Debug("Skipping file, not recognized as stylesheet or archive", zap.String("file", path))
			continue
		}

		b.found++
		if err := processFile(ctx, path, rel, dst, pl, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			b.fail(err)
			continue
		}
		b.done++
	}

	if b.found == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return nil
}

func processFile(ctx context.Context, path, src, dst string, pl *pipeline, log *zap.Logger) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return processStylesheet(ctx, file, src, dst, pl, log)
}

// processArchive walks all stylesheets inside archive under "pathIn" and
// processes them. "pathOut" is prepended to the relative names of produced
// files.
func processArchive(ctx context.Context, arc, pathIn, pathOut, dst string, pl *pipeline, log *zap.Logger, b *batch) error {
	found := b.found
	err := archive.Walk(arc, pathIn, state.EnvFromContext(ctx).CodePage, func(name string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		b.found++
		src := filepath.Join(pathOut, filepath.FromSlash(name))
		if err := processEntry(ctx, f, src, dst, pl, log); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.Name), zap.Error(err))
			b.fail(err)
			return nil
		}
		b.done++
		return nil
	})
	if err == nil && b.found == found {
		log.Debug("Nothing to process", zap.String("archive", arc))
	}
	return err
}

func processEntry(ctx context.Context, f *zip.File, src, dst string, pl *pipeline, log *zap.Logger) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	return processStylesheet(ctx, r, src, dst, pl, log)
}

// processStylesheet processes single stylesheet. "src" is part of the source
// path (always including file name) relative to the original path. When
// actual file was specified it will be just base file name without a path.
// When looking inside archive or directory it will be relative path inside
// archive or directory. "dst" is the destination directory where the result
// should be written or "-" for standard output.
func processStylesheet(ctx context.Context, r io.Reader, src, dst string, pl *pipeline, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Stylesheet processing starting", zap.String("from", src))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Stylesheet processing ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("processing panic: %v", r)
		} else if rerr == nil {
			log.Info("Stylesheet processing completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("unable to read stylesheet (%s): %w", src, err)
	}

	text, enc, err := decodeStylesheet(data)
	if err != nil {
		return err
	}
	if enc != utf8Name {
		log.Debug("Stylesheet converted to UTF-8", zap.String("from", src), zap.String("encoding", enc))
	}

	root, err := pl.Parse(text, src)
	if err != nil {
		return fmt.Errorf("unable to parse stylesheet (%s): %w", src, err)
	}

	// Store stylesheet and its tree for debugging
	reportName := filepath.ToSlash(src)
	if env.Rpt != nil {
		env.Rpt.StoreData(path.Join("input", reportName), data)
		env.Rpt.StoreText(path.Join("tree", reportName+".before.txt"), root.Dump())
	}

	if err := pl.Run(root); err != nil {
		return err
	}
	result := root.String()

	if env.Rpt != nil {
		env.Rpt.StoreText(path.Join("output", reportName), result)
		env.Rpt.StoreText(path.Join("tree", reportName+".after.txt"), root.Dump())
	}

	if dst == stdoutDst {
		outputName = "<stdout>"
		_, err := io.WriteString(stdout(), result)
		return err
	}

	// Determine output file name and path based on input and configuration.
	outputName = buildOutputPath(src, dst, pl.Plugins(), env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(outputName, []byte(result), 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}
