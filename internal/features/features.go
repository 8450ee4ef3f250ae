package features

// Stage 标记开关所处的生命周期。
type Stage string

const (
	StageStable       Stage = "stable"
	StageBeta         Stage = "beta"
	StageExperimental Stage = "experimental"
)

const (
	Mouse      = "mouse"
	AltScreen  = "alt_screen"
	Animations = "animations"
	Metrics    = "metrics"
)

// Spec describes a feature flag exposed by the console.
type Spec struct {
	Key            string
	Stage          Stage
	DefaultEnabled bool
}

var Specs = []Spec{
	{Key: Mouse, Stage: StageStable, DefaultEnabled: true},
	{Key: AltScreen, Stage: StageStable, DefaultEnabled: true},
	{Key: Animations, Stage: StageBeta, DefaultEnabled: true},
	{Key: Metrics, Stage: StageExperimental, DefaultEnabled: false},
}

var known = func() map[string]Spec {
	m := make(map[string]Spec, len(Specs))
	for _, spec := range Specs {
		m[spec.Key] = spec
	}
	return m
}()

// IsKnown reports whether the feature key is recognized.
func IsKnown(key string) bool {
	_, ok := known[key]
	return ok
}

// StageFor returns the lifecycle stage for a feature, defaulting to experimental.
func StageFor(key string) Stage {
	if spec, ok := known[key]; ok {
		return spec.Stage
	}
	return StageExperimental
}

// DefaultEnabled reports the default value for the given feature key.
func DefaultEnabled(key string) bool {
	if spec, ok := known[key]; ok {
		return spec.DefaultEnabled
	}
	return false
}

// Enabled 先查配置表，再回退到默认值。
func Enabled(overrides map[string]bool, key string) bool {
	if v, ok := overrides[key]; ok {
		return v
	}
	return DefaultEnabled(key)
}
