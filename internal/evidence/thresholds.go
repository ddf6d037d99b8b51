package evidence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"

	"github.com/rivetbio/rivet/internal/rank"
)

// Accepted key aliases for the global thresholds, tried in order.
var (
	p95Keys    = []string{"P95_threshold", "P95_thr", "p95", "P95"}
	bestF1Keys = []string{"BestF1_threshold", "BestF1_thr", "best_f1", "F1"}
)

// LoadThresholds parses the threshold document. JSON is the default format;
// a .toml extension selects TOML. Either threshold may be absent; a present
// key must coerce to a number.
func LoadThresholds(path string) (rank.Thresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rank.Thresholds{}, fmt.Errorf("read thresholds %s: %w", path, err)
	}

	doc := make(map[string]any)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, &doc); err != nil {
			return rank.Thresholds{}, fmt.Errorf("parse thresholds %s: %w", path, err)
		}
	} else {
		if err := json.Unmarshal(data, &doc); err != nil {
			return rank.Thresholds{}, fmt.Errorf("parse thresholds %s: %w", path, err)
		}
	}

	var thr rank.Thresholds
	if v, ok := firstNumeric(doc, p95Keys); ok {
		thr.P95, thr.HasP95 = v, true
	}
	if v, ok := firstNumeric(doc, bestF1Keys); ok {
		thr.BestF1, thr.HasBestF1 = v, true
	}
	return thr, nil
}

// firstNumeric returns the value of the first alias present in the document
// that coerces to a float.
func firstNumeric(doc map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		raw, ok := doc[k]
		if !ok {
			continue
		}
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}
