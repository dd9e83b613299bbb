package analyzer

// Analyzer runs the classifier, partitioner, segmenter and explainer over a
// single file. It holds no state between calls.
type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

func (a *Analyzer) Analyze(file SourceFile, mode ExtractMode) FileAnalysis {
	listing := file.Text
	if mode == ExtractLogic {
		listing = Partition(file.Text, file.Ext)
	}

	units := Segment(listing)
	explanations, dropped := ExplainAll(units)

	return FileAnalysis{
		File:           file,
		Mode:           mode,
		Classification: Classify(file.Path, file.Text),
		Listing:        listing,
		Units:          units,
		Explanations:   explanations,
		DroppedUnits:   dropped,
	}
}
