package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/demobox/internal/domain/catalog"
	"github.com/osa030/demobox/internal/domain/segment"
)

type LocalProviderConfig struct {
	Root string `yaml:"root" mapstructure:"root" default:"." validate:"required"`
}

// LocalProvider serves demos from files on disk.
//
// Identifiers are paths relative to the root:
//
//	demos.py            table of contents from __demos__
//	demos.py:function   the body of one demo function
//	script.py           any other file, segmented whole
type LocalProvider struct {
	root string
}

// NewLocalProvider creates a new LocalProvider from provider settings.
func NewLocalProvider(settings map[string]any) (*LocalProvider, error) {
	var config LocalProviderConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	return &LocalProvider{root: config.Root}, nil
}

// Name returns the provider name.
func (p *LocalProvider) Name() string {
	return "local"
}

// String returns the root directory.
func (p *LocalProvider) String() string {
	return p.root
}

// CanHandle reports whether the identifier names an existing file.
func (p *LocalProvider) CanHandle(identifier string) bool {
	if identifier == "" || strings.HasPrefix(identifier, "<") {
		return false
	}
	file, _ := splitLocalIdentifier(identifier)
	info, err := os.Stat(p.resolve(file))
	return err == nil && info.Mode().IsRegular()
}

// Fetch returns a table of contents or the segments of a demo.
func (p *LocalProvider) Fetch(ctx context.Context, identifier string) (Result, error) {
	file, function := splitLocalIdentifier(identifier)

	src, err := os.ReadFile(p.resolve(file))
	if err != nil {
		return Result{}, errors.Wrapf(err, "failed to read %s", file)
	}

	if filepath.Ext(file) != ".py" {
		return CellsResult(segment.Split(string(src))), nil
	}

	mod, err := parsePython(ctx, src)
	if err != nil {
		return Result{}, err
	}
	defer mod.Close()

	funcs := mod.functions()

	if function != "" {
		fn, ok := funcs[function]
		if !ok {
			return Result{}, errors.Newf("The module %s has no function %s.", moduleName(file), function)
		}
		zlog.Debug().Msgf("local: extracting demo function: file=%s function=%s", file, function)
		return CellsResult(segment.Split(mod.body(fn))), nil
	}

	names, ok := mod.demoNames()
	if !ok {
		return Result{}, errors.Newf("The module %s has no demos available.", moduleName(file))
	}

	toc := catalog.TableOfContents{Name: identifier}
	for _, name := range names {
		entry := catalog.Entry{Name: name}
		if fn, ok := funcs[name]; ok {
			entry.Description = mod.docstring(fn)
		}
		toc.Entries = append(toc.Entries, entry)
	}
	return TableOfContentsResult(toc), nil
}

func (p *LocalProvider) resolve(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(p.root, file)
}

// splitLocalIdentifier splits "file.py:function" into its parts.
func splitLocalIdentifier(identifier string) (string, string) {
	i := strings.LastIndex(identifier, ":")
	if i <= 0 || strings.ContainsAny(identifier[i+1:], `/\`) {
		return identifier, ""
	}
	return identifier[:i], identifier[i+1:]
}

func moduleName(file string) string {
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}
