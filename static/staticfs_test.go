package static

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/benpsk/weather-gate/internal/weather"
)

func TestEmbeddedAssetsCoverEveryIcon(t *testing.T) {
	icons := []weather.Icon{weather.IconClear, weather.IconCloud, weather.IconDrizzle, weather.IconRain, weather.IconSnow}
	paths := []string{weather.HumidityIcon, weather.WindIcon, weather.SearchIcon, "/static/app.css", "/static/app.js"}
	for _, icon := range icons {
		paths = append(paths, icon.Asset())
	}

	for _, p := range paths {
		name := strings.TrimPrefix(p, "/static/")
		if _, err := fs.Stat(FS(), name); err != nil {
			t.Fatalf("missing embedded asset %s: %v", p, err)
		}
	}
}
