package creator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"

	"shortreel/internal/domain"
	"shortreel/internal/infra"
)

// genericTerms is the filler pool appended after the caller's search terms.
// With these in play the catalog should always return something, which is
// why running out of results is treated as a catalog outage.
var genericTerms = []string{
	"nature", "globe", "space", "ocean",
	"clouds", "forest", "city", "abstract",
}

// lastResortTerms feed the orientation-agnostic final tier.
var lastResortTerms = []string{"nature", "landscape"}

// normalFPS is the frame rate clip durations are normalized against: a
// slow-motion 24fps clip plays shorter than its nominal duration.
const normalFPS = 25.0

// VisualResolver finds one background clip for a segment, relaxing its
// criteria tier by tier until something matches.
type VisualResolver struct {
	catalog Catalog
	rng     *rand.Rand
	policy  Policy
	logger  infra.Logger
}

// NewVisualResolver builds a resolver. The rand source is injected so tests
// can seed term shuffling and clip selection.
func NewVisualResolver(catalog Catalog, rng *rand.Rand, policy Policy, logger infra.Logger) *VisualResolver {
	return &VisualResolver{catalog: catalog, rng: rng, policy: policy, logger: logger}
}

// Resolve returns one clip matching the terms, duration and orientation
// constraints, excluding ids already used in the job. It fails only when
// every tier is exhausted, which indicates the catalog itself is down.
func (v *VisualResolver) Resolve(ctx context.Context, terms []string, minDuration float64, exclude map[int64]bool, orientation domain.Orientation) (domain.ClipDescriptor, error) {
	ordered := v.orderTerms(terms)

	if clip, ok := v.resolveStrict(ctx, ordered, minDuration, exclude, orientation); ok {
		return clip, nil
	}
	v.logger.Warn().
		Strs("terms", terms).
		Float64("min_duration", minDuration).
		Msg("visuals: strict search empty, relaxing constraints")

	if clip, ok := v.resolveRelaxed(ctx, ordered, exclude, orientation); ok {
		return clip, nil
	}
	v.logger.Warn().Strs("terms", terms).Msg("visuals: relaxed search empty, dropping orientation")

	if clip, ok := v.resolveLastResort(ctx, exclude); ok {
		return clip, nil
	}

	v.logger.Error().
		Strs("terms", terms).
		Msg("visuals: all tiers exhausted; catalog appears unavailable")
	return domain.ClipDescriptor{}, fmt.Errorf("resolve %v: %w", terms, domain.ErrSearchExhausted)
}

// orderTerms shuffles the caller's terms and the generic pool separately so
// thematic terms always come first but no term is systematically favored.
func (v *VisualResolver) orderTerms(terms []string) []string {
	ordered := make([]string, 0, len(terms)+len(genericTerms))
	ordered = append(ordered, terms...)
	v.rng.Shuffle(len(ordered), func(i, j int) { ordered[i], ordered[j] = ordered[j], ordered[i] })

	generic := append([]string(nil), genericTerms...)
	v.rng.Shuffle(len(generic), func(i, j int) { generic[i], generic[j] = generic[j], generic[i] })
	return append(ordered, generic...)
}

// resolveStrict is the first tier: hd quality, exact target dimensions, and
// enough effective duration. Qualifiers from every term are pooled and one
// is picked uniformly at random.
func (v *VisualResolver) resolveStrict(ctx context.Context, terms []string, minDuration float64, exclude map[int64]bool, orientation domain.Orientation) (domain.ClipDescriptor, bool) {
	width, height := orientation.Dimensions()
	required := minDuration + v.policy.DurationBuffer

	for attempt := 0; attempt < v.policy.SearchRetries; attempt++ {
		var qualifying []domain.ClipDescriptor
		timedOut := false

		for _, term := range terms {
			candidates, err := v.search(ctx, term, orientation)
			if err != nil {
				if isTimeout(err) {
					timedOut = true
					break
				}
				v.logger.Debug().Err(err).Str("term", term).Msg("visuals: term search failed")
				continue
			}
			for _, c := range candidates {
				if exclude[c.ID] || effectiveDuration(c) < required {
					continue
				}
				for _, f := range c.Files {
					if f.Quality == "hd" && f.Width == width && f.Height == height {
						qualifying = append(qualifying, domain.ClipDescriptor{
							ID: c.ID, URL: f.Link, Width: f.Width, Height: f.Height,
						})
						break
					}
				}
			}
		}

		if len(qualifying) > 0 {
			return qualifying[v.rng.Intn(len(qualifying))], true
		}
		if !timedOut {
			return domain.ClipDescriptor{}, false
		}
		v.logger.Warn().Int("attempt", attempt+1).Msg("visuals: search timed out, retrying")
	}
	return domain.ClipDescriptor{}, false
}

// resolveRelaxed is the second tier: any quality, any duration. Exact
// dimension matches are preferred, otherwise the first file is taken. A
// timeout aborts the term walk and retries it within the same budget the
// strict tier uses; other errors just advance to the next term.
func (v *VisualResolver) resolveRelaxed(ctx context.Context, terms []string, exclude map[int64]bool, orientation domain.Orientation) (domain.ClipDescriptor, bool) {
	width, height := orientation.Dimensions()

	for attempt := 0; attempt < v.policy.SearchRetries; attempt++ {
		timedOut := false

		for _, term := range terms {
			candidates, err := v.search(ctx, term, orientation)
			if err != nil {
				if isTimeout(err) {
					timedOut = true
					break
				}
				v.logger.Debug().Err(err).Str("term", term).Msg("visuals: relaxed term search failed")
				continue
			}
			for _, c := range candidates {
				if exclude[c.ID] || len(c.Files) == 0 {
					continue
				}
				chosen := c.Files[0]
				for _, f := range c.Files {
					if f.Width == width && f.Height == height {
						chosen = f
						break
					}
				}
				return domain.ClipDescriptor{ID: c.ID, URL: chosen.Link, Width: chosen.Width, Height: chosen.Height}, true
			}
		}

		if !timedOut {
			return domain.ClipDescriptor{}, false
		}
		v.logger.Warn().Int("attempt", attempt+1).Msg("visuals: relaxed search timed out, retrying")
	}
	return domain.ClipDescriptor{}, false
}

// resolveLastResort drops the orientation filter entirely and takes the
// first non-excluded clip a generic term produces. Timeouts are retried
// here too; exhaustion must mean the catalog is empty, not slow.
func (v *VisualResolver) resolveLastResort(ctx context.Context, exclude map[int64]bool) (domain.ClipDescriptor, bool) {
	for attempt := 0; attempt < v.policy.SearchRetries; attempt++ {
		timedOut := false

		for _, term := range lastResortTerms {
			candidates, err := v.search(ctx, term, "")
			if err != nil {
				if isTimeout(err) {
					timedOut = true
					break
				}
				v.logger.Debug().Err(err).Str("term", term).Msg("visuals: last-resort search failed")
				continue
			}
			for _, c := range candidates {
				if exclude[c.ID] || len(c.Files) == 0 {
					continue
				}
				f := c.Files[0]
				return domain.ClipDescriptor{ID: c.ID, URL: f.Link, Width: f.Width, Height: f.Height}, true
			}
		}

		if !timedOut {
			return domain.ClipDescriptor{}, false
		}
		v.logger.Warn().Int("attempt", attempt+1).Msg("visuals: last-resort search timed out, retrying")
	}
	return domain.ClipDescriptor{}, false
}

func (v *VisualResolver) search(ctx context.Context, term string, orientation domain.Orientation) ([]domain.ClipCandidate, error) {
	searchCtx, cancel := context.WithTimeout(ctx, v.policy.SearchTimeout)
	defer cancel()
	return v.catalog.SearchVideos(searchCtx, term, orientation, v.policy.SearchPageSize)
}

// effectiveDuration normalizes a clip's duration to 25fps-equivalent
// playback time.
func effectiveDuration(c domain.ClipCandidate) float64 {
	if c.FPS > 0 && c.FPS < normalFPS {
		return c.Duration * (c.FPS / normalFPS)
	}
	return c.Duration
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
