package carousel

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kindanddivine/kndweb/api"
)

// EmptyStripMessage is shown when the bottom collection has nothing to render.
const EmptyStripMessage = "No solution images configured yet. Please add carousels in the admin panel."

// Source fetches raw carousel records for one position.
type Source interface {
	Carousels(ctx context.Context, position string) ([]api.Carousel, error)
}

// Collection is the loaded, normalized slide list for one position.
type Collection struct {
	Position Position
	Slides   []Slide
	// Fallback is set when the hero shows the static default set.
	Fallback bool
	// Empty is set when the strip has nothing to show.
	Empty bool
}

// Driver builds the driver for this collection.
func (c Collection) Driver(opts Options) Driver {
	return NewDriver(c.Position, len(c.Slides), opts)
}

// Collections holds both homepage collections.
type Collections struct {
	Top    Collection
	Bottom Collection
}

// Loader fetches and normalizes carousel collections. Failures are logged
// and degrade to the fallback policy; nothing is retried or cached.
type Loader struct {
	src     Source
	logger  *zap.Logger
	timeout time.Duration
}

func NewLoader(src Source, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{src: src, logger: logger, timeout: 5 * time.Second}
}

// Load fetches top and bottom concurrently. Each fetch owns its result, so
// a failure on one side never affects the other.
func (l *Loader) Load(ctx context.Context) Collections {
	var (
		g           errgroup.Group
		top, bottom []Slide
		topErr      error
		bottomErr   error
	)
	g.Go(func() error {
		top, topErr = l.fetch(ctx, PositionTop)
		return nil
	})
	g.Go(func() error {
		bottom, bottomErr = l.fetch(ctx, PositionBottom)
		return nil
	})
	_ = g.Wait()

	return Collections{
		Top:    l.resolve(PositionTop, top, topErr),
		Bottom: l.resolve(PositionBottom, bottom, bottomErr),
	}
}

// LoadPosition fetches a single collection with the same fallback policy.
func (l *Loader) LoadPosition(ctx context.Context, pos Position) Collection {
	slides, err := l.fetch(ctx, pos)
	return l.resolve(pos, slides, err)
}

func (l *Loader) fetch(ctx context.Context, pos Position) ([]Slide, error) {
	if l.src == nil {
		return nil, errors.New("carousel: no source configured")
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	records, err := l.src.Carousels(ctx, string(pos))
	if err != nil {
		return nil, err
	}
	slides := make([]Slide, 0, len(records))
	for _, rec := range records {
		if !ValidRotation(rec.Rotation) {
			l.logger.Warn("carousel rotation is not a right angle",
				zap.Int("id", rec.ID),
				zap.Int("rotation", rec.Rotation))
		}
		s, err := Normalize(rec)
		if err != nil {
			l.logger.Warn("skipping carousel record",
				zap.Int("id", rec.ID),
				zap.String("position", string(pos)),
				zap.Error(err))
			continue
		}
		s.Position = pos
		slides = append(slides, s)
	}
	return slides, nil
}

func (l *Loader) resolve(pos Position, slides []Slide, err error) Collection {
	if err != nil {
		l.logger.Error("failed to fetch carousel",
			zap.String("position", string(pos)),
			zap.Error(err))
	}
	c := Collection{Position: pos, Slides: slides}
	if err == nil && len(slides) > 0 {
		return c
	}
	if pos == PositionTop {
		c.Slides = DefaultSlides()
		c.Fallback = true
		return c
	}
	c.Slides = nil
	c.Empty = true
	return c
}
