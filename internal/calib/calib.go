// Package calib holds the fixed calibration record that drives every persona
// projection and transition. Nothing in the field or receiver packages reads
// a package-level number directly; they are handed a Calibration value.
package calib

// Calibration is the immutable set of calibration numbers. Copy it, never
// share a pointer to it.
type Calibration struct {
	// Field state defaults.
	DefaultPhase      string
	DefaultEnergy     float64
	DefaultPlasticity float64
	DefaultLabel      string
	DefaultSeed       int64
	ReceiverLabel     string

	// Preset projection: value = base + input * scale.
	DelayBase                 float64
	DelayEnergyScale          float64
	FeedbackBase              float64
	FeedbackPlasticityScale   float64
	DriveBase                 float64
	DriveEnergyScale          float64
	RefinementBase            float64
	RefinementPlasticityScale float64
	CouplingBase              float64
	CouplingInteractionScale  float64

	// Receiver mode classification.
	BandLowThreshold  float64
	BandHighThreshold float64
	TensionRut        float64
	TensionEmerging   float64
	TensionGrowing    float64
	TensionTaste      float64
	TensionFallback   float64

	// Discrete signals.
	BurstEnergyDelta        float64
	BurstPlasticityDelta    float64
	BurstAdvanceThreshold   float64
	SilenceEnergyDelta      float64
	SilencePlasticityDelta  float64
	SilenceRegressThreshold float64

	// Observation feedback.
	EntropyEnergyScale     float64
	PlasticityLearningRate float64

	// Receiver frame loop.
	StepDefaultDT   float64 // seconds, used when a host passes no usable dt
	ValueCenter     float64
	ValueAmplitude  float64
	ValueFreqBase   float64
	JitterMax       float64 // symmetric bound on the jitter accumulator
	JitterDecay     float64
	JitterStepBase  float64
	JitterStepScale float64 // scaled by plasticity
}

// Default returns the production calibration.
func Default() Calibration {
	return Calibration{
		DefaultPhase:      "rut",
		DefaultEnergy:     0.5,
		DefaultPlasticity: 0.5,
		DefaultLabel:      "default",
		DefaultSeed:       0,
		ReceiverLabel:     "receiver",

		DelayBase:                 0.10,
		DelayEnergyScale:          0.60,
		FeedbackBase:              0.10,
		FeedbackPlasticityScale:   0.70,
		DriveBase:                 0.20,
		DriveEnergyScale:          0.80,
		RefinementBase:            0.20,
		RefinementPlasticityScale: 0.70,
		CouplingBase:              0.20,
		CouplingInteractionScale:  0.60,

		BandLowThreshold:  0.3,
		BandHighThreshold: 0.7,
		TensionRut:        0.2,
		TensionEmerging:   0.5,
		TensionGrowing:    0.7,
		TensionTaste:      0.9,
		TensionFallback:   0.5,

		BurstEnergyDelta:        0.15,
		BurstPlasticityDelta:    0.05,
		BurstAdvanceThreshold:   0.6,
		SilenceEnergyDelta:      -0.10,
		SilencePlasticityDelta:  -0.02,
		SilenceRegressThreshold: 0.4,

		EntropyEnergyScale:     0.05,
		PlasticityLearningRate: 0.10,

		StepDefaultDT:   0.016, // ~60 fps
		ValueCenter:     0.5,
		ValueAmplitude:  0.5,
		ValueFreqBase:   0.5,
		JitterMax:       0.1,
		JitterDecay:     0.98,
		JitterStepBase:  0.01,
		JitterStepScale: 0.06,
	}
}
