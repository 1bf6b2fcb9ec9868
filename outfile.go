package qplot

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
)

var (
	// ErrBadFilename is returned by OutputFile for names that are neither
	// strings nor fmt.Stringers.
	ErrBadFilename = errors.New("filename is not a string")

	// ErrUnsupportedFormat is returned for image formats that cannot be written.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

var getwd = os.Getwd

// Formats lists the image file extensions understood by Figure.Save.
var Formats = []string{"svg", "png", "pdf", "jpeg", "jpg", "tif", "tiff", "eps"}

// SupportedFormat reports whether ext is one of Formats.
func SupportedFormat(ext string) bool {
	for _, f := range Formats {
		if f == ext {
			return true
		}
	}
	return false
}

type outputConfig struct {
	titleBased bool
	infix      string
	dir        string
}

// OutputOption customizes OutputFile.
type OutputOption func(*outputConfig)

// TitleBased makes OutputFile treat name as a plain title which is used
// unchanged instead of the base name of a CSV file.
func TitleBased() OutputOption {
	return func(c *outputConfig) { c.titleBased = true }
}

// WithInfix replaces the default "_Image" between name and plot type.
func WithInfix(infix string) OutputOption {
	return func(c *outputConfig) { c.infix = infix }
}

// InDir places the output into dir below the working directory.
func InDir(dir string) OutputOption {
	return func(c *outputConfig) { c.dir = dir }
}

// OutputFile derives the path of the image file for the given input name.
//
// In the default mode name is a path to a CSV file: the last path element
// is taken and exactly one trailing ".csv" is replaced by
// "_Image<plotType>.<ext>". A name without that suffix gets the suffix
// appended too, instead of being returned unchanged, so the derived path
// never equals the input path. With TitleBased the whole name is used as
// the stem. The result is always located in the current working directory
// (or the directory given by InDir below it). Neither collisions nor
// existence of the directory are checked.
//
// name must be a string or a fmt.Stringer, everything else yields
// ErrBadFilename.
func OutputFile(name interface{}, plotType, ext string, opts ...OutputOption) (string, error) {
	var s string
	switch v := name.(type) {
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	default:
		return "", fmt.Errorf("%T has no path-splitting behaviour: %w", name, ErrBadFilename)
	}

	if !SupportedFormat(ext) {
		return "", fmt.Errorf("extension %q: %w", ext, ErrUnsupportedFormat)
	}

	cfg := outputConfig{infix: "_Image"}
	for _, opt := range opts {
		opt(&cfg)
	}

	suffix := cfg.infix + plotType + "." + ext
	var newName string
	if cfg.titleBased {
		newName = s + suffix
	} else {
		parts := strings.Split(s, "/")
		base := parts[len(parts)-1]
		newName = strings.TrimSuffix(base, ".csv") + suffix
	}

	cwd, err := getwd()
	if err != nil {
		return "", fmt.Errorf("output file: %w", err)
	}
	if cfg.dir != "" {
		return cwd + "/" + path.Clean(cfg.dir) + "/" + newName, nil
	}
	return cwd + "/" + newName, nil
}

// FormatOf returns the image format of filename judging by its extension.
func FormatOf(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if !SupportedFormat(ext) {
		return "", fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}
	return ext, nil
}
