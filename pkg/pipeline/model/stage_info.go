package model

type stageRole string

const (
	SourceRole stageRole = "source"
	PipeRole   stageRole = "pipe"
	ConcatRole stageRole = "concat"
	DrainRole  stageRole = "drain"
)

func (r stageRole) String() string {
	return string(r)
}

// StageInfo describes one stage of a chain.
// ID is unique within a pipeline; Name is the label given by the stage author.
type StageInfo struct {
	Role stageRole
	Name string
	ID   string
}

// Label returns the name used to identify the stage in hooks and graphs.
func (s StageInfo) Label() string {
	if s.ID != "" {
		return s.ID
	}

	return s.Name
}

var (
	StartStage = &StageInfo{Name: "start", ID: "start"}
	EndStage   = &StageInfo{Name: "end", ID: "end"}
)
