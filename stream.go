package kndweb

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kindanddivine/kndweb/carousel"
)

// streamHello is the first event of a carousel stream. The client needs the
// player id to send control actions.
type streamHello struct {
	ID       string        `json:"id"`
	Position string        `json:"position"`
	Mode     carousel.Mode `json:"mode"`
	Count    int           `json:"count"`
	Fallback bool          `json:"fallback"`
	Empty    bool          `json:"empty"`
}

// streamStale tells the client its rendered slides no longer match the
// backend, so it should keep the static markup.
type streamStale struct {
	Count    int  `json:"count"`
	Fallback bool `json:"fallback"`
}

// renderedDiffers compares the slide count and fallback flag the page was
// rendered with (?count=, ?fallback=) against a fresh load. Missing
// parameters are not compared.
func renderedDiffers(c echo.Context, col carousel.Collection) bool {
	if raw := c.QueryParam("count"); raw != "" {
		if n, err := strconv.Atoi(raw); err != nil || n != len(col.Slides) {
			return true
		}
	}
	if raw := c.QueryParam("fallback"); raw != "" {
		if fb, err := strconv.ParseBool(raw); err != nil || fb != col.Fallback {
			return true
		}
	}
	return false
}

// handleCarouselStream runs a player for one viewer and streams its frames
// as server-sent events until the client disconnects.
func (a *App) handleCarouselStream(c echo.Context) error {
	pos, err := carousel.ParsePosition(c.QueryParam("position"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	col := a.Loader.LoadPosition(ctx, pos)

	startEventStream(c)
	if renderedDiffers(c, col) {
		// The page was rendered from a different load; a player for this one
		// would step through slides the viewer cannot see.
		_ = writeEvent(c, "stale", streamStale{Count: len(col.Slides), Fallback: col.Fallback})
		return nil
	}
	d := col.Driver(a.carouselOptions())
	p := a.Hub.Spawn(ctx, pos, d)
	if err := writeEvent(c, "hello", streamHello{
		ID:       p.ID(),
		Position: string(pos),
		Mode:     d.Mode(),
		Count:    len(col.Slides),
		Fallback: col.Fallback,
		Empty:    col.Empty,
	}); err != nil {
		return nil
	}
	for f := range p.Frames() {
		if err := writeEvent(c, "frame", f); err != nil {
			a.Logger.Debug("carousel stream closed", zap.String("player", p.ID()), zap.Error(err))
			return nil
		}
	}
	return nil
}

// handleCarouselAction applies pause, resume, next, prev or jump to a live
// player and answers with the resulting frame. An out-of-range jump leaves
// the player unchanged.
func (a *App) handleCarouselAction(c echo.Context) error {
	p, ok := a.Hub.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "carousel player not found")
	}
	var err error
	switch c.Param("action") {
	case "pause":
		p.Pause()
	case "resume":
		p.Resume()
	case "next":
		err = p.Next()
	case "prev":
		err = p.Prev()
	case "jump":
		to, convErr := strconv.Atoi(c.QueryParam("to"))
		if convErr != nil {
			to, convErr = strconv.Atoi(c.FormValue("to"))
		}
		if convErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "jump needs a numeric ?to=")
		}
		err = p.Jump(to)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown carousel action")
	}
	switch {
	case errors.Is(err, carousel.ErrNotNavigable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, carousel.ErrStopped):
		return echo.NewHTTPError(http.StatusGone, err.Error())
	case err != nil && !errors.Is(err, carousel.ErrOutOfRange):
		return err
	}
	return c.JSON(http.StatusOK, p.Frame())
}
