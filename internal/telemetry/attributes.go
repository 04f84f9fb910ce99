package telemetry

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for frame-geometry, solver, and validation spans.
const (
	AttrFrameSize   = "geometry.frame_size"
	AttrNumFrames   = "geometry.num_frames"
	AttrHyperperiod = "geometry.hyperperiod"

	AttrAlgorithm  = "algorithm.name"
	AttrIterations = "algorithm.iterations"
	AttrMaxFlow    = "algorithm.max_flow"
	AttrBFDRepairs = "algorithm.bfd_repairs"

	AttrValidationWCETOK     = "validation.wcet_ok"
	AttrValidationDeadlineOK = "validation.deadline_ok"
)

// GeometryAttributes describes one FrameGeometry computation.
func GeometryAttributes(frameSize, numFrames, hyperperiod int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64(AttrFrameSize, frameSize),
		attribute.Int64(AttrNumFrames, numFrames),
		attribute.Int64(AttrHyperperiod, hyperperiod),
	}
}

// AlgorithmAttributes describes one solver invocation.
func AlgorithmAttributes(name string, iterations int, maxFlow float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAlgorithm, name),
		attribute.Int(AttrIterations, iterations),
		attribute.Float64(AttrMaxFlow, maxFlow),
	}
}

// ValidationAttributes describes one ScheduleValidator result.
func ValidationAttributes(wcetOK, deadlineOK bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(AttrValidationWCETOK, wcetOK),
		attribute.Bool(AttrValidationDeadlineOK, deadlineOK),
	}
}
