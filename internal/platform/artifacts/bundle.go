package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/staycast/staycast/internal/platform/gbm"
)

// Bundle holds every artifact the prediction service needs, loaded once at
// startup and read-only for the lifetime of the process. Reloading means
// restarting the service.
type Bundle struct {
	Manifest     Manifest
	Model        gbm.Regressor
	FeatureNames []string
	MDCLos       map[int]float64    // MDC code -> median LOS at training time
	SeverityLos  map[int]float64    // severity code -> median LOS at training time
	MDCCodes     map[string]int     // MDC description -> MDC code
}

// Manifest describes the trained model the bundle was produced from.
type Manifest struct {
	ModelVersion string    `json:"model_version"`
	ResidualRMSE float64   `json:"residual_rmse"`
	FeatureCount int       `json:"feature_count"`
	TrainedAt    time.Time `json:"trained_at"`
}

const (
	manifestFile     = "manifest.json"
	modelFile        = "model.json"
	featureNamesFile = "feature_names.json"
	mdcLosFile       = "mdc_los.json"
	severityLosFile  = "severity_los.json"
	mdcCodesFile     = "mdc_codes.json"
)

// Load reads the artifact bundle from dir. Any missing or internally
// inconsistent artifact is fatal: the service must refuse to serve
// predictions rather than guess.
func Load(dir string) (*Bundle, error) {
	b := &Bundle{}

	if err := readJSON(filepath.Join(dir, manifestFile), &b.Manifest); err != nil {
		return nil, err
	}
	if b.Manifest.ModelVersion == "" {
		return nil, fmt.Errorf("artifacts: manifest has no model_version")
	}
	if b.Manifest.ResidualRMSE < 0 {
		return nil, fmt.Errorf("artifacts: manifest residual_rmse must be non-negative, got %v", b.Manifest.ResidualRMSE)
	}

	model, err := gbm.Load(filepath.Join(dir, modelFile))
	if err != nil {
		return nil, fmt.Errorf("artifacts: %w", err)
	}
	b.Model = model

	if err := readJSON(filepath.Join(dir, featureNamesFile), &b.FeatureNames); err != nil {
		return nil, err
	}
	if len(b.FeatureNames) == 0 {
		return nil, fmt.Errorf("artifacts: feature name list is empty")
	}
	if b.Manifest.FeatureCount != 0 && b.Manifest.FeatureCount != len(b.FeatureNames) {
		return nil, fmt.Errorf("artifacts: manifest expects %d features, name list has %d",
			b.Manifest.FeatureCount, len(b.FeatureNames))
	}
	if model.NumFeatures() != len(b.FeatureNames) {
		return nil, fmt.Errorf("artifacts: model dimension %d does not match %d feature names",
			model.NumFeatures(), len(b.FeatureNames))
	}

	if b.MDCLos, err = readIntKeyMap(filepath.Join(dir, mdcLosFile)); err != nil {
		return nil, err
	}
	if b.SeverityLos, err = readIntKeyMap(filepath.Join(dir, severityLosFile)); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, mdcCodesFile), &b.MDCCodes); err != nil {
		return nil, err
	}
	if len(b.MDCCodes) == 0 {
		return nil, fmt.Errorf("artifacts: MDC code mapping is empty")
	}

	// Every MDC description the gateway will accept must resolve to a
	// median LOS, otherwise a validated request could still hit an
	// unmapped key at encode time.
	for desc, code := range b.MDCCodes {
		if _, ok := b.MDCLos[code]; !ok {
			return nil, fmt.Errorf("artifacts: MDC %q (code %d) has no LOS mapping", desc, code)
		}
	}
	for sev := 1; sev <= 4; sev++ {
		if _, ok := b.SeverityLos[sev]; !ok {
			return nil, fmt.Errorf("artifacts: severity %d has no LOS mapping", sev)
		}
	}

	return b, nil
}

// MDCDescriptions returns the closed set of diagnosis-group descriptions the
// model was trained on.
func (b *Bundle) MDCDescriptions() map[string]bool {
	out := make(map[string]bool, len(b.MDCCodes))
	for desc := range b.MDCCodes {
		out[desc] = true
	}
	return out
}

func readJSON(path string, v interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("artifacts: read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("artifacts: parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// readIntKeyMap reads a JSON object whose keys are integers serialized as
// strings, the natural JSON form of the training-time lookup tables.
func readIntKeyMap(path string) (map[int]float64, error) {
	var raw map[string]float64
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	out := make(map[int]float64, len(raw))
	for k, v := range raw {
		n, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("artifacts: %s: key %q is not an integer", filepath.Base(path), k)
		}
		out[n] = v
	}
	return out, nil
}
