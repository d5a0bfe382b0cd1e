package model

import "sort"

// TransferSpec describes one stream transfer within a session.
type TransferSpec struct {
	Label string
	URL   string
	Path  string
	Kind  StreamKind
}

// NewTransferSpecs builds one spec per selected stream using the layout.
func NewTransferSpecs(layout Layout, title string, streams []StreamRef) []TransferSpec {
	specs := make([]TransferSpec, 0, len(streams))
	for _, s := range streams {
		specs = append(specs, TransferSpec{
			Label: s.Label(),
			URL:   s.URL,
			Path:  layout.IntermediatePath(title, s),
			Kind:  s.Kind,
		})
	}
	return specs
}

// Paths returns the local paths of the specs in input order.
func Paths(specs []TransferSpec) []string {
	paths := make([]string, len(specs))
	for i, s := range specs {
		paths[i] = s.Path
	}
	return paths
}

// MergeInput is one completed intermediate file.
type MergeInput struct {
	Kind StreamKind
	Path string
}

// MergeJob is the ordered input list plus the output path handed to the merge step.
// It is created only after every transfer of a session succeeded and is never retried.
type MergeJob struct {
	Inputs []MergeInput
	Output string
}

// NewMergeJob pairs completed session paths with their stream kinds.
// paths must be in the same order as specs.
func NewMergeJob(specs []TransferSpec, paths []string, output string) MergeJob {
	inputs := make([]MergeInput, 0, len(paths))
	for i, p := range paths {
		inputs = append(inputs, MergeInput{Kind: specs[i].Kind, Path: p})
	}
	return MergeJob{Inputs: inputs, Output: output}
}

// OrderedPaths returns the input paths with video before audio.
// Inputs of the same kind keep their relative order.
func (j MergeJob) OrderedPaths() []string {
	inputs := make([]MergeInput, len(j.Inputs))
	copy(inputs, j.Inputs)
	sort.SliceStable(inputs, func(a, b int) bool {
		return inputs[a].Kind < inputs[b].Kind
	})

	paths := make([]string, len(inputs))
	for i, in := range inputs {
		paths[i] = in.Path
	}
	return paths
}
