package release

import (
	"context"
	"fmt"
	"strings"

	"github.com/trueasync/trueasync-setup/internal/github"
)

// LatestSelector is the version selector resolving to the newest release.
const LatestSelector = "latest"

// ErrResolution is returned when the selector cannot be turned into a tag.
var ErrResolution = fmt.Errorf("unable to resolve release version")

// Resolver turns a user-supplied version selector into a concrete tag.
type Resolver struct {
	client github.Client
}

// NewResolver creates a resolver backed by the provided releases client.
func NewResolver(client github.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve maps "latest" to the most recent entry in the releases list.
// Pre-releases are deliberately included: the newest published entry wins,
// whatever its channel. An explicit tag passes through unchanged; its
// existence is only checked when the download is attempted.
func (r *Resolver) Resolve(ctx context.Context, selector string) (string, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		selector = LatestSelector
	}

	if !strings.EqualFold(selector, LatestSelector) {
		return selector, nil
	}

	releases, err := r.client.Releases(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrResolution, err)
	}

	if len(releases) == 0 || releases[0].TagName == "" {
		return "", fmt.Errorf("%w: release list is empty", ErrResolution)
	}

	return releases[0].TagName, nil
}
