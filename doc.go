// Package cyclicexec implements a cyclic-executive scheduler core: given a
// set of periodic real-time tasks, it partitions one hyperperiod into equal
// frames and assigns every job (one release of a task within the
// hyperperiod) to a frame in which it runs to completion without
// preemption.
//
// Two independent solvers produce the job→frame assignment:
//
//   - scheduler.NewILPSolver: a binary 0/1 feasibility ILP.
//   - scheduler.NewFlowSolver: a bipartite max-flow (Edmonds-Karp) followed
//     by a best-fit-descent repair pass that re-concentrates jobs the flow
//     split across several frames.
//
// builder.Build turns either solver's assignment into a concrete Schedule
// (an ordered list of busy/idle Intervals); validator.Validate checks the
// result against each job's WCET and deadline.
//
// # Packages
//
//	domain      - Task, Job, TaskSet, Interval, Schedule
//	geometry    - hyperperiod, frame-size derivation, valid-frame sets
//	scheduler   - ILP and Flow+BFD assignment solvers
//	builder     - assignment -> Schedule materialization
//	validator   - WCET/deadline conformance checks
//	apperror    - structured error taxonomy (InfeasibleFrameSize, ...)
//	harness     - thin adapter contracts consumed by an external harness
//	internal/*  - flow-network primitives (plus graph pooling) and ambient
//	             infrastructure (config, logging, metrics, tracing,
//	             caching, Postgres-backed run-result storage)
//
// Task-set ingestion, synthetic task-set generation, EDF scheduling,
// graphical rendering, and CLI entry points are out of scope; harness is a
// set of interfaces an external caller implements.
package cyclicexec
