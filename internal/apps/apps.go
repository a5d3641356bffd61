// Package apps resolves raw application identifiers from capture data into
// canonical identities. Recorders report a mix of bundle IDs, helper-process
// IDs and display names for the same application; alias resolution keeps an
// app switch from being detected when only the reported spelling changed.
package apps

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is a coarse application class used to pick a typing context.
type Category string

const (
	CategoryOther      Category = "other"
	CategoryCodeEditor Category = "codeEditor"
	CategoryTerminal   Category = "terminal"
	CategoryBrowser    Category = "browser"
)

// Identity is the canonical form of one application.
type Identity struct {
	ID       string
	Name     string
	Category Category
}

var fold = cases.Fold()
var title = cases.Title(language.Und)

// aliases maps folded bundle IDs and display names onto canonical
// identities. Multiple spellings of the same app share one entry.
var aliases = map[string]Identity{
	// Code editors and IDEs.
	"com.microsoft.vscode":         {ID: "vscode", Name: "Visual Studio Code", Category: CategoryCodeEditor},
	"com.microsoft.vscodeinsiders": {ID: "vscode", Name: "Visual Studio Code", Category: CategoryCodeEditor},
	"visual studio code":           {ID: "vscode", Name: "Visual Studio Code", Category: CategoryCodeEditor},
	"code":                         {ID: "vscode", Name: "Visual Studio Code", Category: CategoryCodeEditor},
	"com.apple.dt.xcode":           {ID: "xcode", Name: "Xcode", Category: CategoryCodeEditor},
	"xcode":                        {ID: "xcode", Name: "Xcode", Category: CategoryCodeEditor},
	"com.jetbrains.intellij":       {ID: "intellij", Name: "IntelliJ IDEA", Category: CategoryCodeEditor},
	"com.jetbrains.intellij.ce":    {ID: "intellij", Name: "IntelliJ IDEA", Category: CategoryCodeEditor},
	"intellij idea":                {ID: "intellij", Name: "IntelliJ IDEA", Category: CategoryCodeEditor},
	"com.jetbrains.goland":         {ID: "goland", Name: "GoLand", Category: CategoryCodeEditor},
	"com.sublimetext.4":            {ID: "sublime", Name: "Sublime Text", Category: CategoryCodeEditor},
	"sublime text":                 {ID: "sublime", Name: "Sublime Text", Category: CategoryCodeEditor},
	"dev.zed.zed":                  {ID: "zed", Name: "Zed", Category: CategoryCodeEditor},
	"zed":                          {ID: "zed", Name: "Zed", Category: CategoryCodeEditor},

	// Terminals.
	"com.apple.terminal":    {ID: "terminal", Name: "Terminal", Category: CategoryTerminal},
	"terminal":              {ID: "terminal", Name: "Terminal", Category: CategoryTerminal},
	"com.googlecode.iterm2": {ID: "iterm", Name: "iTerm2", Category: CategoryTerminal},
	"iterm":                 {ID: "iterm", Name: "iTerm2", Category: CategoryTerminal},
	"iterm2":                {ID: "iterm", Name: "iTerm2", Category: CategoryTerminal},
	"dev.warp.warp-stable":  {ID: "warp", Name: "Warp", Category: CategoryTerminal},
	"warp":                  {ID: "warp", Name: "Warp", Category: CategoryTerminal},
	"com.github.wez.wezterm": {ID: "wezterm", Name: "WezTerm", Category: CategoryTerminal},
	"org.alacritty":          {ID: "alacritty", Name: "Alacritty", Category: CategoryTerminal},
	"net.kovidgoyal.kitty":   {ID: "kitty", Name: "kitty", Category: CategoryTerminal},

	// Browsers.
	"com.google.chrome":     {ID: "chrome", Name: "Google Chrome", Category: CategoryBrowser},
	"google chrome":         {ID: "chrome", Name: "Google Chrome", Category: CategoryBrowser},
	"com.apple.safari":      {ID: "safari", Name: "Safari", Category: CategoryBrowser},
	"safari":                {ID: "safari", Name: "Safari", Category: CategoryBrowser},
	"org.mozilla.firefox":   {ID: "firefox", Name: "Firefox", Category: CategoryBrowser},
	"firefox":               {ID: "firefox", Name: "Firefox", Category: CategoryBrowser},
	"company.thebrowser.browser": {ID: "arc", Name: "Arc", Category: CategoryBrowser},
}

// Resolve maps a bundle ID and/or display name onto a canonical identity.
// Unknown applications get a derived identity with CategoryOther, so two
// different unknown apps still resolve to two different IDs.
func Resolve(bundleID, appName string) Identity {
	if id, ok := lookup(bundleID); ok {
		return id
	}
	if id, ok := lookup(appName); ok {
		return id
	}
	return derive(bundleID, appName)
}

// Canonical returns just the canonical ID for a raw identifier, used when
// comparing consecutive events for application switches.
func Canonical(raw string) string {
	if id, ok := lookup(raw); ok {
		return id.ID
	}
	return derive(raw, "").ID
}

func lookup(raw string) (Identity, bool) {
	key := fold.String(strings.TrimSpace(raw))
	if key == "" {
		return Identity{}, false
	}
	id, ok := aliases[key]
	return id, ok
}

func derive(bundleID, appName string) Identity {
	raw := strings.TrimSpace(bundleID)
	name := strings.TrimSpace(appName)
	if raw == "" {
		raw = name
	}
	if raw == "" {
		return Identity{ID: "unknown", Name: "Unknown", Category: CategoryOther}
	}

	// Bundle IDs keep only their last segment: com.example.SomeTool -> sometool.
	id := raw
	if i := strings.LastIndex(raw, "."); i >= 0 && i < len(raw)-1 {
		id = raw[i+1:]
	}
	id = fold.String(id)

	if name == "" {
		name = title.String(id)
	}
	return Identity{ID: id, Name: name, Category: CategoryOther}
}
