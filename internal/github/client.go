package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	gh "github.com/google/go-github/v60/github"
)

// perPageLimit is the page size for release listings; one page is enough
// because only the head of the list is ever inspected.
const perPageLimit = 100

var (
	// ErrNoReleases is returned when the repository has no published releases.
	ErrNoReleases = errors.New("no releases found")
	// errBadRepository is returned when the repository is not "owner/name".
	errBadRepository = errors.New("repository must be in owner/name form")
)

// Asset is a single downloadable file attached to a release.
type Asset struct {
	Name               string
	BrowserDownloadURL string
}

// Release is the remote source of truth for an installable version.
type Release struct {
	TagName    string
	Prerelease bool
	Assets     []Asset
}

// Client is the read-only surface of the releases API consumed by the setup
// pipeline. Implementations never write to the API.
type Client interface {
	// Releases lists published releases, most recent first.
	Releases(ctx context.Context) ([]*Release, error)
	// ReleaseByTag fetches a single release addressed by its tag.
	ReleaseByTag(ctx context.Context, tag string) (*Release, error)
}

// SDKClient implements Client on top of the go-github SDK.
type SDKClient struct {
	client *gh.Client
	owner  string
	repo   string
}

// NewClient builds a releases client for the "owner/name" repository.
// A token from GH_TOKEN or GITHUB_TOKEN is used when present; anonymous
// access works too, within the API rate limits.
func NewClient(repository string) (*SDKClient, error) {
	owner, repo, found := strings.Cut(repository, "/")
	if !found || owner == "" || repo == "" {
		return nil, fmt.Errorf("%w: %q", errBadRepository, repository)
	}

	client := gh.NewClient(http.DefaultClient)
	if token := envToken(); token != "" {
		client = client.WithAuthToken(token)
	}

	return &SDKClient{
		client: client,
		owner:  owner,
		repo:   repo,
	}, nil
}

// Releases lists published releases, most recent first.
func (c *SDKClient) Releases(ctx context.Context) ([]*Release, error) {
	releases, _, err := c.client.Repositories.ListReleases(ctx, c.owner, c.repo,
		&gh.ListOptions{PerPage: perPageLimit})
	if err != nil {
		return nil, fmt.Errorf("list releases for %s/%s: %w", c.owner, c.repo, err)
	}

	if len(releases) == 0 {
		return nil, fmt.Errorf("%s/%s: %w", c.owner, c.repo, ErrNoReleases)
	}

	result := make([]*Release, 0, len(releases))
	for _, release := range releases {
		result = append(result, fromSDK(release))
	}

	return result, nil
}

// ReleaseByTag fetches a single release addressed by its tag.
func (c *SDKClient) ReleaseByTag(ctx context.Context, tag string) (*Release, error) {
	release, _, err := c.client.Repositories.GetReleaseByTag(ctx, c.owner, c.repo, tag)
	if err != nil {
		return nil, fmt.Errorf("release %s of %s/%s: %w", tag, c.owner, c.repo, err)
	}

	return fromSDK(release), nil
}

// fromSDK converts an SDK release into the local model.
func fromSDK(release *gh.RepositoryRelease) *Release {
	assets := make([]Asset, 0, len(release.Assets))
	for _, asset := range release.Assets {
		assets = append(assets, Asset{
			Name:               asset.GetName(),
			BrowserDownloadURL: asset.GetBrowserDownloadURL(),
		})
	}

	return &Release{
		TagName:    release.GetTagName(),
		Prerelease: release.GetPrerelease(),
		Assets:     assets,
	}
}

// envToken returns the API token from the conventional environment variables.
func envToken() string {
	if token := os.Getenv("GH_TOKEN"); token != "" {
		return token
	}

	return os.Getenv("GITHUB_TOKEN")
}
