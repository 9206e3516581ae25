package display

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// StyleFileName is the optional user stylesheet inside the app config dir.
const StyleFileName = "style.css"

const defaultCSS = `
.quicknote-overlay {
	border-radius: 12px;
}
.quicknote-editor {
	padding: 12px;
	font-size: 1.1em;
}
.quicknote-status {
	font-size: 0.85em;
	opacity: 0.7;
	margin: 4px 12px 8px 12px;
}
.quicknote-status.error {
	color: @error_color;
	opacity: 1;
}
`

// ApplyStyle installs the built-in stylesheet, overlaid by the user's
// style.css from configDir when present. Must run on the main loop.
func ApplyStyle(configDir string, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	display := gdk.DisplayGetDefault()
	if display == nil {
		logger.Warn("no display available, cannot apply style")
		return
	}

	css := defaultCSS
	if configDir != "" {
		path := filepath.Join(configDir, StyleFileName)
		if data, err := os.ReadFile(path); err == nil {
			css += "\n" + string(data)
			logger.Debug("loaded user stylesheet", "path", path)
		} else if !os.IsNotExist(err) {
			logger.Warn("failed to read user stylesheet", "path", path, "error", err)
		}
	}

	provider := gtk.NewCSSProvider()
	provider.LoadFromString(css)
	gtk.StyleContextAddProviderForDisplay(display, provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
}
