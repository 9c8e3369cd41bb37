package converter

import (
	"context"
	stderrors "errors" // Standard errors package
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mcncl/konvert/internal/errors"
	"github.com/mcncl/konvert/internal/format"
)

// ConvertFile converts inPath into outPath, inferring both formats from the file
// extensions.
func (c *Converter) ConvertFile(inPath, outPath string) error {
	return c.ConvertFileAs(inPath, outPath, format.Unknown, format.Unknown)
}

// ConvertFileAs converts inPath into outPath. A format.Unknown from or to is inferred
// from the matching file extension; unsupported extensions are rejected before
// anything is read. The output file is written only when the whole conversion
// succeeds, and is replaced atomically.
func (c *Converter) ConvertFileAs(inPath, outPath string, from, to format.Format) error {
	var err error
	if from == format.Unknown {
		if from, err = format.FromPath(inPath); err != nil {
			return err
		}
	}
	if to == format.Unknown {
		if to, err = format.FromPath(outPath); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewInputError(fmt.Sprintf("cannot read %s", inPath), errors.ErrFileNotFound)
		}
		return errors.NewInputError(fmt.Sprintf("cannot read %s", inPath), err)
	}

	out, err := c.Convert(data, from, to)
	if err != nil {
		return withSource(err, inPath)
	}

	if err := writeFileAtomic(outPath, out); err != nil {
		return errors.NewOutputError(fmt.Sprintf("cannot write %s", outPath), err)
	}
	c.logger.Debug("wrote file", "input", inPath, "output", outPath, "bytes", len(out))
	return nil
}

// withSource records the input file on the typed conversion errors.
func withSource(err error, path string) error {
	var parseErr *errors.ParseError
	if stderrors.As(err, &parseErr) && parseErr.Path == "" {
		parseErr.Path = path
	}
	var structErr *errors.StructureError
	if stderrors.As(err, &structErr) && structErr.Source == "" {
		structErr.Source = path
	}
	return err
}

// writeFileAtomic writes data to a temporary file next to path and renames it into
// place, so readers never observe a partial document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	tmpName = ""
	return nil
}

// BatchResult reports the outcome of one file in a batch conversion.
type BatchResult struct {
	Input  string
	Output string
	Err    error
}

// BatchOutputPath returns where ConvertBatch writes the conversion of input: the
// same base name with the target extension, in outDir or, when outDir is empty, next
// to the input.
func BatchOutputPath(input string, to format.Format, outDir string) string {
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+to.Extension())
}

// ConvertBatch converts every input to the target format, running up to the
// configured number of conversions at once. Each file succeeds or fails on its own:
// a failure does not stop the others. The returned results follow the order of
// inputs, and the error joins every per-file failure.
func (c *Converter) ConvertBatch(ctx context.Context, inputs []string, to format.Format, outDir string) ([]BatchResult, error) {
	if to == format.Unknown {
		return nil, &errors.UnsupportedFormatError{Name: to.String()}
	}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, errors.NewOutputError(fmt.Sprintf("cannot create %s", outDir), err)
		}
	}

	sources := make(map[string]string, len(inputs))
	for _, input := range inputs {
		sources[filepath.Clean(input)] = input
	}

	results := make([]BatchResult, len(inputs))
	claimed := make(map[string]string, len(inputs))
	for i, input := range inputs {
		results[i] = BatchResult{Input: input, Output: BatchOutputPath(input, to, outDir)}
		out := filepath.Clean(results[i].Output)
		switch {
		case sources[out] != "":
			results[i].Err = errors.NewOutputError(fmt.Sprintf("output %s would overwrite input %s", results[i].Output, sources[out]), nil)
		case claimed[out] != "":
			results[i].Err = errors.NewOutputError(fmt.Sprintf("output %s is already written for %s", results[i].Output, claimed[out]), nil)
		default:
			claimed[out] = input
		}
	}

	var g errgroup.Group
	g.SetLimit(c.batchJobs)
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		g.Go(func() error {
			r := &results[i]
			if err := ctx.Err(); err != nil {
				r.Err = fmt.Errorf("%s: %w", r.Input, err)
				return nil
			}
			r.Err = c.ConvertFileAs(r.Input, r.Output, format.Unknown, to)
			if r.Err != nil {
				c.logger.Warn("conversion failed", "input", r.Input, "error", r.Err)
			} else {
				c.logger.Info("converted", "input", r.Input, "output", r.Output)
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, stderrors.Join(errs...)
}
