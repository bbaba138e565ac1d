package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/fatih/color"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"edgesearch/internal/humanize"
	"edgesearch/internal/serp"
)

// runSearches drives the whole session: one initial navigation with a
// sign-in check, then the planned number of queries drawn randomly from the
// pool without replacement. A failed query is logged and skipped; only
// cancellation or an unreachable search page stops the loop.
func runSearches(ctx context.Context, page *rod.Page, pool []string, planned int) (int, error) {
	searchLog := Log.Named("search")
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	searchURL := viper.GetString("search.url")

	if err := navigateWithRetry(ctx, page, searchURL); err != nil {
		searchLog.Error("search page unreachable", zap.Error(err))
		return 0, err
	}
	if !skipLogin {
		if err := waitForLogin(ctx, page); err != nil {
			return 0, err
		}
	}

	remaining := append([]string(nil), pool...)
	done := 0
	for i := 0; i < planned && len(remaining) > 0; i++ {
		if err := ctx.Err(); err != nil {
			return done, err
		}

		var query string
		query, remaining = takeRandom(rng, remaining)
		color.Cyan("[%d/%d] %s", i+1, planned, query)

		if err := performSearch(ctx, page, rng, query); err != nil {
			if ctx.Err() != nil {
				return done, ctx.Err()
			}
			searchLog.Warn("search failed", zap.String("query", query), zap.Error(err))
			color.Red("  failed: %v", err)
		} else {
			done++
			searchLog.Info("search completed", zap.String("query", query))
		}

		if i < planned-1 {
			if err := humanize.Between(ctx, rng,
				viper.GetDuration("pacing.between_min"),
				viper.GetDuration("pacing.between_max")); err != nil {
				return done, err
			}
		}
	}
	return done, nil
}

// performSearch runs a single query: fresh navigation, clear the box, type
// the query a character at a time, submit, let the results settle.
func performSearch(ctx context.Context, page *rod.Page, rng *rand.Rand, query string) error {
	if err := navigateWithRetry(ctx, page, viper.GetString("search.url")); err != nil {
		return err
	}

	navTimeout := viper.GetDuration("nav.timeout")
	box, err := page.Timeout(navTimeout).Element(viper.GetString("search.box_selector"))
	if err != nil {
		return fmt.Errorf("search box not found: %w", err)
	}
	if err := box.Timeout(navTimeout).WaitVisible(); err != nil {
		return fmt.Errorf("search box never became visible: %w", err)
	}

	// Empty the box the way a person would: select everything, overwrite.
	if err := box.SelectAllText(); err != nil {
		return fmt.Errorf("select search box text: %w", err)
	}
	if err := page.Keyboard.Press(input.Backspace); err != nil {
		return fmt.Errorf("clear search box: %w", err)
	}
	if err := humanize.Between(ctx, rng,
		viper.GetDuration("pacing.clear_min"),
		viper.GetDuration("pacing.clear_max")); err != nil {
		return err
	}

	for _, r := range query {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := box.Input(string(r)); err != nil {
			return fmt.Errorf("type %q: %w", r, err)
		}
		if err := humanize.Between(ctx, rng,
			viper.GetDuration("pacing.key_min"),
			viper.GetDuration("pacing.key_max")); err != nil {
			return err
		}
	}

	if err := humanize.Between(ctx, rng,
		viper.GetDuration("pacing.submit_min"),
		viper.GetDuration("pacing.submit_max")); err != nil {
		return err
	}
	if err := page.Keyboard.Press(input.Enter); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}
	if err := page.Timeout(navTimeout).WaitLoad(); err != nil {
		Log.Named("search").Debug("load event not seen after submit", zap.Error(err))
	}
	if err := humanize.Sleep(ctx, viper.GetDuration("pacing.settle")); err != nil {
		return err
	}

	logResults(page, query)
	return nil
}

// navigateWithRetry tries the navigation a fixed number of times with a
// fixed pause in between. No backoff growth; a page that needs more than
// that is treated as down.
func navigateWithRetry(ctx context.Context, page *rod.Page, url string) error {
	attempts := viper.GetInt("nav.attempts")
	retryDelay := viper.GetDuration("nav.retry_delay")
	navTimeout := viper.GetDuration("nav.timeout")

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := page.Timeout(navTimeout).Navigate(url)
		if err == nil {
			err = page.Timeout(navTimeout).WaitLoad()
			if err == nil {
				return nil
			}
		}
		lastErr = err
		Log.Named("search").Warn("navigation attempt failed",
			zap.String("url", url), zap.Int("attempt", attempt), zap.Error(err))
		if attempt < attempts {
			if err := humanize.Sleep(ctx, retryDelay); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("%s unreachable after %d attempts: %w", url, attempts, lastErr)
}

// waitForLogin gives the operator a chance to sign in when the page shows
// the sign-in control. Rewards only accrue to signed-in sessions, so we hold
// the run for up to login.wait before carrying on regardless.
func waitForLogin(ctx context.Context, page *rod.Page) error {
	if !signInVisible(page) {
		Log.Debug("session appears signed in")
		return nil
	}

	limit := viper.GetDuration("login.wait")
	progressEvery := viper.GetDuration("login.progress_every")
	color.Yellow("Not signed in. Sign in from the browser window (waiting up to %s)...", limit)

	for waited := time.Duration(0); waited < limit; waited += time.Second {
		if err := humanize.Sleep(ctx, time.Second); err != nil {
			return err
		}
		if !signInVisible(page) {
			color.Green("Signed in, continuing.")
			Log.Info("sign-in detected", zap.Duration("after", waited+time.Second))
			return nil
		}
		if progressEvery > 0 && (waited+time.Second)%progressEvery == 0 {
			color.Yellow("Still waiting for sign-in (%s of %s)...", waited+time.Second, limit)
		}
	}

	color.Yellow("No sign-in detected, continuing anyway.")
	Log.Warn("proceeding without a signed-in session")
	return nil
}

// signInVisible reports whether the Bing sign-in control is on screen.
func signInVisible(page *rod.Page) bool {
	has, el, err := page.Timeout(2 * time.Second).Has(viper.GetString("search.signin_selector"))
	if err != nil || !has {
		return false
	}
	visible, err := el.Visible()
	return err == nil && visible
}

// logResults parses the result page and records what came back.
func logResults(page *rod.Page, query string) {
	searchLog := Log.Named("search")

	if v, err := evalJSON(page, `() => ({url: location.href, title: document.title})`); err == nil {
		searchLog.Debug("page settled",
			zap.String("url", v.Get("url").Str()),
			zap.String("title", v.Get("title").Str()))
	}

	html, err := page.HTML()
	if err != nil {
		searchLog.Debug("could not read page html", zap.Error(err))
		return
	}
	results, err := serp.Parse(html)
	if err != nil || len(results) == 0 {
		searchLog.Info("no organic results parsed", zap.String("query", query))
		return
	}
	top := results[0]
	searchLog.Info("results",
		zap.String("query", query),
		zap.Int("count", len(results)),
		zap.String("top", top.Title),
		zap.String("url", top.URL))
	color.Blue("  %d results; top: %s", len(results), top.Title)
}

// takeRandom draws one entry from pool without replacement.
func takeRandom(rng *rand.Rand, pool []string) (string, []string) {
	idx := rng.Intn(len(pool))
	picked := pool[idx]
	return picked, append(pool[:idx], pool[idx+1:]...)
}
