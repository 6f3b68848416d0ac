package source

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/demobox/internal/domain/catalog"
	"github.com/osa030/demobox/internal/domain/segment"
	"github.com/osa030/demobox/internal/infra/github"
)

// GitHubIdentifierPrefix starts every GitHub identifier: <gh_NAME>/path.
const GitHubIdentifierPrefix = "<gh_"

// GitHubClient defines the interface for GitHub contents operations.
type GitHubClient interface {
	GetFile(ctx context.Context, owner, repo, filePath, ref string) ([]byte, error)
	ListDirectory(ctx context.Context, owner, repo, dirPath, ref string) ([]github.ContentItem, error)
}

// GitHubProject is a repository directory that provides demos.
type GitHubProject struct {
	Owner string `yaml:"owner" mapstructure:"owner" validate:"required"`
	Repo  string `yaml:"repo" mapstructure:"repo" validate:"required"`
	Path  string `yaml:"path" mapstructure:"path"`
	Ref   string `yaml:"ref" mapstructure:"ref"`
}

type GitHubProviderConfig struct {
	Projects   map[string]GitHubProject `yaml:"projects" mapstructure:"projects" validate:"required,min=1,dive"`
	BaseURL    string                   `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Token      string                   `yaml:"token" mapstructure:"token"`
	TimeoutSec int                      `yaml:"timeout_sec" mapstructure:"timeout_sec" default:"10" validate:"gte=1"`
}

// GitHubProvider serves demos stored in GitHub repositories.
type GitHubProvider struct {
	client   GitHubClient
	projects map[string]GitHubProject
}

// NewGitHubProvider creates a new GitHubProvider from provider settings.
func NewGitHubProvider(ctx context.Context, settings map[string]any) (*GitHubProvider, error) {
	if len(settings) == 0 {
		return nil, errors.New("settings are required")
	}

	var config GitHubProviderConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	client, err := github.New(ctx, github.Config{
		BaseURL: config.BaseURL,
		Token:   config.Token,
		Timeout: time.Duration(config.TimeoutSec) * time.Second,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create github client")
	}

	return NewGitHubProviderWithClient(client, config.Projects), nil
}

// NewGitHubProviderWithClient creates a GitHubProvider on an existing client.
func NewGitHubProviderWithClient(client GitHubClient, projects map[string]GitHubProject) *GitHubProvider {
	return &GitHubProvider{
		client:   client,
		projects: projects,
	}
}

// Name returns the provider name.
func (p *GitHubProvider) Name() string {
	return "github"
}

// String lists the configured projects.
func (p *GitHubProvider) String() string {
	names := make([]string, 0, len(p.projects))
	for name := range p.projects {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		proj := p.projects[name]
		parts[i] = fmt.Sprintf("<gh_%s>: %s/%s/%s", name, proj.Owner, proj.Repo, proj.Path)
	}
	return strings.Join(parts, ", ")
}

// CanHandle reports whether identifier looks like <gh_NAME>/path.
func (p *GitHubProvider) CanHandle(identifier string) bool {
	return strings.HasPrefix(identifier, GitHubIdentifierPrefix) && strings.Contains(identifier, ">")
}

// Fetch returns the segments of a .py file or the table of contents of a directory.
func (p *GitHubProvider) Fetch(ctx context.Context, identifier string) (Result, error) {
	name, rel, err := parseGitHubIdentifier(identifier)
	if err != nil {
		return Result{}, err
	}

	project, ok := p.projects[name]
	if !ok {
		return Result{}, unknownSource("Unknown github demo source: %s", name)
	}

	repoPath := path.Join(project.Path, rel)

	if strings.HasSuffix(identifier, ".py") {
		data, err := p.client.GetFile(ctx, project.Owner, project.Repo, repoPath, project.Ref)
		if err != nil {
			return Result{}, errors.Wrapf(err, "failed to fetch %s", identifier)
		}
		return CellsResult(segment.Split(string(data))), nil
	}

	items, err := p.client.ListDirectory(ctx, project.Owner, project.Repo, repoPath, project.Ref)
	if err != nil {
		return Result{}, errors.Wrapf(err, "failed to list %s", identifier)
	}

	tocName := identifier
	if !strings.HasSuffix(tocName, "/") {
		tocName += "/"
	}

	toc := catalog.TableOfContents{Name: tocName}
	for _, item := range items {
		if item.Type == github.TypeFile && strings.HasSuffix(item.Name, ".py") {
			toc.Entries = append(toc.Entries, catalog.Entry{Name: tocName + item.Name})
		}
	}
	for _, item := range items {
		if item.Type == github.TypeDir {
			toc.Entries = append(toc.Entries, catalog.Entry{
				Name:        tocName + item.Name,
				Description: catalog.DirectoryDescription,
			})
		}
	}

	zlog.Debug().Msgf("github: listed demos: identifier=%s entries=%d", identifier, len(toc.Entries))
	return TableOfContentsResult(toc), nil
}

// parseGitHubIdentifier splits <gh_NAME>/some/path into NAME and some/path.
func parseGitHubIdentifier(identifier string) (string, string, error) {
	rest := strings.TrimPrefix(identifier, GitHubIdentifierPrefix)
	end := strings.Index(rest, ">")
	if !strings.HasPrefix(identifier, GitHubIdentifierPrefix) || end < 0 {
		return "", "", unknownSource("not a github demo identifier: %s", identifier)
	}
	return rest[:end], strings.Trim(rest[end+1:], "/"), nil
}
