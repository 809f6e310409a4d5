// Package github gathers pull-request review context from the GitHub API.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/code-council/internal/review"
)

// Files larger than this are skipped when building context; huge vendored
// blobs drown out the diff.
const maxFileBytes = 50000

// Client fetches the pieces of a pull request needed to assemble a
// review context.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient authenticates with a personal access token. An empty token
// yields an unauthenticated client, good enough for public repositories.
func NewClient(ctx context.Context, token string, logger *slog.Logger) *Client {
	if token == "" {
		return &Client{gh: github.NewClient(nil), logger: logger}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{gh: github.NewClient(oauth2.NewClient(ctx, ts)), logger: logger}
}

// ParsePRURL splits a GitHub pull-request URL into owner, repo and number.
func ParsePRURL(url string) (owner, repo string, number int, err error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	parts := strings.Split(strings.TrimSuffix(trimmed, "/"), "/")
	// github.com/<owner>/<repo>/pull/<number>
	if len(parts) != 5 || parts[0] != "github.com" || parts[3] != "pull" {
		return "", "", 0, fmt.Errorf("not a pull request URL: %s", url)
	}
	number, err = strconv.Atoi(parts[4])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid PR number in URL %s: %w", url, err)
	}
	return parts[1], parts[2], number, nil
}

// GatherPRContext fetches PR metadata, the raw diff, and the contents of
// every changed file, and assembles them into a review context.
func (c *Client) GatherPRContext(ctx context.Context, owner, repo string, number int) (*review.Context, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request %s/%s#%d: %w", owner, repo, number, err)
	}

	diff, _, err := c.gh.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{Type: github.Diff})
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request diff: %w", err)
	}

	rctx := &review.Context{
		Diff: diff,
		PRMetadata: &review.PRMetadata{
			Number:     number,
			Title:      pr.GetTitle(),
			Author:     pr.GetUser().GetLogin(),
			HeadBranch: pr.GetHead().GetRef(),
			BaseBranch: pr.GetBase().GetRef(),
			Additions:  pr.GetAdditions(),
			Deletions:  pr.GetDeletions(),
			Body:       pr.GetBody(),
		},
	}

	files, err := c.listChangedFiles(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}

	headSHA := pr.GetHead().GetSHA()
	for _, f := range files {
		if f.GetStatus() == "removed" {
			continue
		}
		path := f.GetFilename()
		content, err := c.fileContent(ctx, owner, repo, path, headSHA)
		if err != nil {
			// Missing or binary content is not fatal; the diff still
			// covers the change.
			c.logger.Debug("skipping file content", "path", path, "error", err)
			continue
		}
		if len(content) > maxFileBytes {
			continue
		}
		switch {
		case isDocFile(path):
			if rctx.Documentation == nil {
				rctx.Documentation = make(map[string]string)
			}
			rctx.Documentation[path] = content
		case isTestFile(path):
			if rctx.TestFiles == nil {
				rctx.TestFiles = make(map[string]string)
			}
			rctx.TestFiles[path] = content
		default:
			if rctx.FileContents == nil {
				rctx.FileContents = make(map[string]string)
			}
			rctx.FileContents[path] = content
		}
	}

	return rctx, nil
}

// listChangedFiles pages through the PR file list; the API caps pages at
// 100 entries.
func (c *Client) listChangedFiles(ctx context.Context, owner, repo string, number int) ([]*github.CommitFile, error) {
	var all []*github.CommitFile
	opts := &github.ListOptions{PerPage: 100}
	for {
		files, resp, err := c.gh.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list files for pull request: %w", err)
		}
		all = append(all, files...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

func (c *Client) fileContent(ctx context.Context, owner, repo, path, ref string) (string, error) {
	fc, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path,
		&github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return "", err
	}
	if fc == nil {
		return "", fmt.Errorf("%s is not a file", path)
	}
	return fc.GetContent()
}

func isDocFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".rst") || strings.HasSuffix(lower, ".adoc")
}

func isTestFile(path string) bool {
	lower := strings.ToLower(path)
	base := lower
	if i := strings.LastIndex(lower, "/"); i >= 0 {
		base = lower[i+1:]
	}
	return strings.Contains(base, "_test.") || strings.HasPrefix(base, "test_") ||
		strings.Contains(lower, "/tests/") || strings.Contains(lower, "/__tests__/")
}
