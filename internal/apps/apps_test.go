package apps

import "testing"

func TestResolveKnownApps(t *testing.T) {
	tests := []struct {
		name     string
		bundleID string
		appName  string
		wantID   string
		wantCat  Category
	}{
		{"vscode by bundle", "com.microsoft.VSCode", "", "vscode", CategoryCodeEditor},
		{"vscode by name", "", "Code", "vscode", CategoryCodeEditor},
		{"vscode case folded", "COM.MICROSOFT.VSCODE", "", "vscode", CategoryCodeEditor},
		{"iterm by bundle", "com.googlecode.iterm2", "", "iterm", CategoryTerminal},
		{"iterm by name", "", "iTerm2", "iterm", CategoryTerminal},
		{"chrome", "com.google.Chrome", "Google Chrome", "chrome", CategoryBrowser},
		{"bundle wins over name", "com.apple.Terminal", "Code", "terminal", CategoryTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.bundleID, tt.appName)
			if got.ID != tt.wantID {
				t.Errorf("Resolve(%q, %q).ID = %q, want %q", tt.bundleID, tt.appName, got.ID, tt.wantID)
			}
			if got.Category != tt.wantCat {
				t.Errorf("Resolve(%q, %q).Category = %q, want %q", tt.bundleID, tt.appName, got.Category, tt.wantCat)
			}
		})
	}
}

func TestResolveUnknownApp(t *testing.T) {
	got := Resolve("com.example.SomeTool", "SomeTool")
	if got.ID != "sometool" {
		t.Errorf("derived ID = %q, want %q", got.ID, "sometool")
	}
	if got.Category != CategoryOther {
		t.Errorf("derived Category = %q, want %q", got.Category, CategoryOther)
	}

	// Two distinct unknown apps must not collapse into one identity.
	other := Resolve("com.example.OtherTool", "")
	if other.ID == got.ID {
		t.Errorf("distinct unknown apps resolved to the same ID %q", got.ID)
	}
}

func TestResolveEmpty(t *testing.T) {
	got := Resolve("", "")
	if got.ID != "unknown" || got.Category != CategoryOther {
		t.Errorf("Resolve of empty input = %+v, want unknown/other", got)
	}
}

func TestCanonicalCollapsesAliases(t *testing.T) {
	a := Canonical("com.microsoft.VSCode")
	b := Canonical("Visual Studio Code")
	if a != b {
		t.Errorf("aliases of the same app resolved differently: %q vs %q", a, b)
	}

	if Canonical("com.apple.Terminal") == Canonical("com.microsoft.VSCode") {
		t.Error("different apps must keep different canonical IDs")
	}
}
