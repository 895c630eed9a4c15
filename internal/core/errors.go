package core

import "errors"

var (
	// ErrArtifactUnavailable is returned when classification is requested
	// before a trained model has been loaded. Classification fails closed
	// rather than guessing a label.
	ErrArtifactUnavailable = errors.New("no model artifact loaded")

	// ErrArtifactMismatch is returned when a feature vector does not match
	// the dimensions of the loaded model artifact.
	ErrArtifactMismatch = errors.New("feature vector does not match model artifact")

	// ErrDegenerateTrainingData is returned when a training corpus cannot
	// produce a usable model (single-class labels, or an empty vocabulary
	// after document-frequency filtering).
	ErrDegenerateTrainingData = errors.New("degenerate training data")

	// ErrTrainingInProgress is returned when a training run is started
	// while a previous run has not finished.
	ErrTrainingInProgress = errors.New("training run already in progress")

	// ErrModelRejected is returned when a trained model does not meet the
	// configured acceptance floors.
	ErrModelRejected = errors.New("trained model rejected by acceptance floors")
)
