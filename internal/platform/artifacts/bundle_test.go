package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/staycast/staycast/internal/platform/gbm"
)

func writeFile(t *testing.T, dir, name string, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// writeTestBundle lays down a minimal but internally consistent bundle.
func writeTestBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, manifestFile, map[string]interface{}{
		"model_version": "1.0.0-test",
		"residual_rmse": 1.5,
		"feature_count": 3,
	})
	writeFile(t, dir, modelFile, gbm.Ensemble{
		BaseScore:  4.0,
		FeatureDim: 3,
		Trees: []gbm.Tree{
			{Nodes: []gbm.Node{{Leaf: true, Value: 0.5}}},
		},
	})
	writeFile(t, dir, featureNamesFile, []string{
		"Gender_M", "Gender_F", "APR Severity of Illness Code",
	})
	writeFile(t, dir, mdcLosFile, map[string]float64{"5": 4.0, "22": 9.0})
	writeFile(t, dir, severityLosFile, map[string]float64{"1": 2.0, "2": 3.0, "3": 5.0, "4": 8.0})
	writeFile(t, dir, mdcCodesFile, map[string]int{
		"Diseases and Disorders of the Circulatory System": 5,
		"Burns": 22,
	})
	return dir
}

func TestLoad_Complete(t *testing.T) {
	dir := writeTestBundle(t)

	b, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b.Manifest.ModelVersion != "1.0.0-test" {
		t.Errorf("unexpected version %q", b.Manifest.ModelVersion)
	}
	if len(b.FeatureNames) != 3 {
		t.Errorf("expected 3 feature names, got %d", len(b.FeatureNames))
	}
	if b.MDCLos[22] != 9.0 {
		t.Errorf("expected MDC 22 LOS 9.0, got %v", b.MDCLos[22])
	}
	if !b.MDCDescriptions()["Burns"] {
		t.Error("expected Burns in MDC description set")
	}
	got, err := b.Model.Predict([]float64{1, 0, 3})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if got != 4.5 {
		t.Errorf("expected 4.5, got %v", got)
	}
}

func TestLoad_MissingArtifactFails(t *testing.T) {
	for _, name := range []string{manifestFile, modelFile, featureNamesFile, mdcLosFile, severityLosFile, mdcCodesFile} {
		dir := writeTestBundle(t)
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			t.Fatalf("remove %s: %v", name, err)
		}
		if _, err := Load(dir); err == nil {
			t.Errorf("expected load failure with %s missing", name)
		}
	}
}

func TestLoad_DimensionMismatchFails(t *testing.T) {
	dir := writeTestBundle(t)
	writeFile(t, dir, featureNamesFile, []string{"Gender_M", "Gender_F"})
	if _, err := Load(dir); err == nil {
		t.Fatal("expected load failure for feature count mismatch")
	}
}

func TestLoad_UnmappedMDCFails(t *testing.T) {
	dir := writeTestBundle(t)
	// Description resolves to a code with no median-LOS entry.
	writeFile(t, dir, mdcCodesFile, map[string]int{"Burns": 23})
	if _, err := Load(dir); err == nil {
		t.Fatal("expected load failure for MDC code without LOS mapping")
	}
}

func TestLoad_IncompleteSeverityFails(t *testing.T) {
	dir := writeTestBundle(t)
	writeFile(t, dir, severityLosFile, map[string]float64{"1": 2.0, "2": 3.0})
	if _, err := Load(dir); err == nil {
		t.Fatal("expected load failure for missing severity mapping")
	}
}
