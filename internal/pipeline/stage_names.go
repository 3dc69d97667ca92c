package pipeline

// StageName is a strongly-typed identifier for a build stage. All canonical
// stages are declared as constants here for compile-time safety.
type StageName string

// Canonical stage names.
const (
	StageClean        StageName = "clean"
	StagePackage      StageName = "package"
	StageStageOutputs StageName = "stage_outputs"
	StageReport       StageName = "report"
)

// StageDef pairs a stage name with its executing function (internal wiring helper).
type StageDef struct {
	Name StageName
	Fn   Stage
}
