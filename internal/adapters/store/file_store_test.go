package store

import (
	"context"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mathfrancisco/phishing-detector/internal/artifact"
	"github.com/mathfrancisco/phishing-detector/internal/features"
	"github.com/mathfrancisco/phishing-detector/internal/ml"
)

func storeModel(version string) *artifact.Model {
	return &artifact.Model{
		Version:   version,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Language:  "english",
		Vocabulary: &features.Vocabulary{
			Index:     map[string]int{"account": 0, "verify": 1},
			Terms:     []string{"account", "verify"},
			DocFreq:   []int{4, 3},
			TotalDocs: 12,
			NgramMin:  1,
			NgramMax:  2,
		},
		Handcrafted: features.DefaultHandcrafted(),
		Weights:     []float64{0.4, 1.3, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6},
		Bias:        -0.7,
		Threshold:   0.5,
		Metrics:     ml.Metrics{Accuracy: 0.95, Recall: 0.93},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	want := storeModel("v20260101-000000")
	if err := s.Save(context.Background(), want); err != nil {
		t.Fatalf("failed to save artifact: %v", err)
	}

	got, err := s.Load(context.Background(), want.Version)
	if err != nil {
		t.Fatalf("failed to load artifact: %v", err)
	}

	if got.Version != want.Version || got.Bias != want.Bias || got.Threshold != want.Threshold {
		t.Fatalf("loaded artifact differs: %+v vs %+v", got, want)
	}
	if !reflect.DeepEqual(got.Weights, want.Weights) {
		t.Fatalf("weights changed across round trip: %v vs %v", got.Weights, want.Weights)
	}
	if !reflect.DeepEqual(got.Vocabulary.Terms, want.Vocabulary.Terms) {
		t.Fatalf("vocabulary changed across round trip")
	}
	if !reflect.DeepEqual(got.Vocabulary.Index, want.Vocabulary.Index) {
		t.Fatalf("index map changed across round trip")
	}
	if got.Metrics.Accuracy != want.Metrics.Accuracy {
		t.Fatalf("metrics changed across round trip")
	}
}

func TestFileStoreIdenticalPredictions(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	original := storeModel("v20260102-000000")
	if err := s.Save(context.Background(), original); err != nil {
		t.Fatalf("failed to save artifact: %v", err)
	}
	loaded, err := s.Load(context.Background(), original.Version)
	if err != nil {
		t.Fatalf("failed to load artifact: %v", err)
	}

	vec := []float64{1.2, 0.7, 1, 0.3, 2, 1, 4, 9}
	pOrig, err := ml.Predict(vec, original.Weights, original.Bias)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	pLoaded, err := ml.Predict(vec, loaded.Weights, loaded.Bias)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if pOrig != pLoaded {
		t.Fatalf("loaded artifact predicts differently: %v vs %v", pOrig, pLoaded)
	}
}

func TestFileStoreLatest(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	for _, version := range []string{"v20260101-000000", "v20260103-000000", "v20260102-000000"} {
		if err := s.Save(context.Background(), storeModel(version)); err != nil {
			t.Fatalf("failed to save %s: %v", version, err)
		}
	}

	for _, request := range []string{"", "latest"} {
		got, err := s.Load(context.Background(), request)
		if err != nil {
			t.Fatalf("failed to load %q: %v", request, err)
		}
		if got.Version != "v20260103-000000" {
			t.Fatalf("expected newest version for %q, got %s", request, got.Version)
		}
	}
}

func TestFileStoreEmptyDirectory(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if _, err := s.Load(context.Background(), "latest"); err == nil {
		t.Fatalf("expected error loading from an empty store")
	}
}

func TestFileStoreRejectsInvalidArtifactOnSave(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	m := storeModel("v20260101-000000")
	m.Weights = m.Weights[:2]
	if err := s.Save(context.Background(), m); err == nil {
		t.Fatalf("expected invalid artifact to be rejected")
	}
}

func TestFileStoreVersions(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := s.Save(context.Background(), storeModel("v20260102-000000")); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if err := s.Save(context.Background(), storeModel("v20260101-000000")); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	versions, err := s.Versions()
	if err != nil {
		t.Fatalf("failed to list versions: %v", err)
	}
	want := []string{"v20260101-000000", "v20260102-000000"}
	if !reflect.DeepEqual(versions, want) {
		t.Fatalf("expected %v, got %v", want, versions)
	}
}
