package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/spf13/viper"
	"github.com/ysmood/gson"
	"go.uber.org/zap"

	"edgesearch/internal/profile"
)

// findEdgeBinary resolves the Edge executable. An explicit --browser-bin or
// edge.binary config entry wins; otherwise the conventional install
// locations for the platform are probed.
func findEdgeBinary() (string, error) {
	if bin := strings.TrimSpace(viper.GetString("edge.binary")); bin != "" {
		if _, err := os.Stat(bin); err != nil {
			return "", fmt.Errorf("browser binary %s: %w", bin, err)
		}
		return bin, nil
	}

	switch runtime.GOOS {
	case "windows":
		candidates := []string{
			filepath.Join(os.Getenv("ProgramFiles(x86)"), "Microsoft", "Edge", "Application", "msedge.exe"),
			filepath.Join(os.Getenv("ProgramFiles"), "Microsoft", "Edge", "Application", "msedge.exe"),
			filepath.Join(os.Getenv("LocalAppData"), "Microsoft", "Edge", "Application", "msedge.exe"),
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				return c, nil
			}
		}
		if path, err := findEdgeInRegistry(); err == nil {
			return path, nil
		}
	case "darwin":
		c := "/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge"
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	default:
		for _, name := range []string{"microsoft-edge", "microsoft-edge-stable", "microsoft-edge-beta", "microsoft-edge-dev"} {
			if path, err := exec.LookPath(name); err == nil {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("Microsoft Edge executable not found; install Edge or pass --browser-bin")
}

// findEdgeInRegistry asks the registry where the Edge installer put
// msedge.exe. Works from any shell, no registry bindings needed.
func findEdgeInRegistry() (string, error) {
	out, err := exec.Command("reg.exe", "query",
		`HKLM\SOFTWARE\Microsoft\Windows\CurrentVersion\App Paths\msedge.exe`,
		"/ve").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("query registry for Edge: %w", err)
	}

	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "REG_SZ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 3 {
			return strings.Join(fields[2:], " "), nil
		}
	}
	return "", fmt.Errorf("no Edge path in registry output %q", out)
}

// prepareBrowser launches Edge against the staged profile and hands back a
// connected browser plus the page the session will run in. A staged copy
// becomes the whole user data dir; in direct mode Edge runs on the live
// root with the profile picked via --profile-directory.
func prepareBrowser(staged string, mode profile.StageMode) (*rod.Browser, *rod.Page, error) {
	bin, err := findEdgeBinary()
	if err != nil {
		return nil, nil, err
	}

	l := launcher.New().
		Bin(bin).
		Headless(viper.GetBool("search.headless")).
		Set("no-sandbox").
		Set("disable-features", "ImprovedCookieControls,LazyFrameLoading").
		Set("disable-hang-monitor").
		Set("disable-popup-blocking").
		Set("disable-sync").
		Set("no-first-run", "true").
		Set("password-store", "basic")

	switch mode {
	case profile.ModeCopy:
		l = l.UserDataDir(staged)
	default:
		l = l.UserDataDir(filepath.Dir(staged)).ProfileDir(filepath.Base(staged))
	}

	Log.Debug("launching browser",
		zap.String("bin", bin),
		zap.String("profile", staged),
		zap.String("mode", string(mode)))

	controlURL, err := l.Launch()
	if err != nil {
		if isProfileLockError(err) {
			return nil, nil, fmt.Errorf("the profile is locked by a running browser; close Edge and rerun: %w", err)
		}
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		if isProfileLockError(err) {
			return nil, nil, fmt.Errorf("the profile is locked by a running browser; close Edge and rerun: %w", err)
		}
		return nil, nil, fmt.Errorf("connect to browser: %w", err)
	}

	page, err := sessionPage(browser)
	if err != nil {
		_ = browser.Close()
		return nil, nil, err
	}
	attachDialogHandler(page)
	return browser, page, nil
}

// sessionPage reuses the tab Edge opens on startup when there is one.
func sessionPage(browser *rod.Browser) (*rod.Page, error) {
	if Stealth {
		page, err := stealth.Page(browser)
		if err != nil {
			return nil, fmt.Errorf("create stealth page: %w", err)
		}
		return page, nil
	}

	pages, err := browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if len(pages) > 0 {
		if _, err := pages[0].Activate(); err != nil {
			Log.Debug("could not activate initial page", zap.Error(err))
		}
		return pages[0], nil
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	return page, nil
}

// attachDialogHandler accepts javascript dialogs so a stray confirm() cannot
// stall the run.
func attachDialogHandler(page *rod.Page) {
	go page.EachEvent(func(e *proto.PageJavascriptDialogOpening) {
		Log.Info("dismissing page dialog",
			zap.String("type", string(e.Type)), zap.String("message", e.Message))
		_ = proto.PageHandleJavaScriptDialog{Accept: true, PromptText: ""}.Call(page)
	})()
}

// isProfileLockError spots the ProcessSingleton complaint Chromium emits
// when another instance already owns the profile.
func isProfileLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "ProcessSingleton") || strings.Contains(msg, "SingletonLock")
}

// evalJSON runs js on the page and returns the decoded value.
func evalJSON(page *rod.Page, js string) (gson.JSON, error) {
	res, err := page.Eval(js)
	if err != nil {
		return gson.New(nil), err
	}
	return res.Value, nil
}
