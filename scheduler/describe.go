package scheduler

// Info describes one solver's tradeoffs for callers choosing between
// KindILP and KindFlow.
type Info struct {
	Kind            Kind
	Name            string
	Description     string
	TimeComplexity  string
	SpaceComplexity string
	BestFor         []string
	Caveats         []string
}

var solverInfo = map[Kind]Info{
	KindILP: {
		Kind:            KindILP,
		Name:            "ILP feasibility search",
		Description:     "Binary 0/1 feasibility formulation solved by a pluggable MIPBackend; the shipped backend is a most-constrained-first depth-first search, not an external MIP engine.",
		TimeComplexity:  "worst-case exponential in job count; pruned by per-frame capacity",
		SpaceComplexity: "O(jobs * frames)",
		BestFor:         []string{"small_task_sets", "tight_valid_frame_sets", "exact_feasibility_answer"},
		Caveats: []string{
			"No objective — feasibility only",
			"Backtracking backend can be slow on large, loosely-constrained instances; swap in a real MIP backend via NewILPSolverWithBackend for those",
		},
	},
	KindFlow: {
		Kind:            KindFlow,
		Name:            "Max-flow + best-fit-descent repair",
		Description:     "Bipartite Edmonds-Karp max-flow between jobs and frames, followed by a deterministic best-fit-descent repair pass that re-concentrates any job the flow split across frames.",
		TimeComplexity:  "O(V*E^2) for max-flow, plus O(preempted*frames) for repair",
		SpaceComplexity: "O((jobs+frames)^2) for the dense capacity/flow matrices",
		BestFor:         []string{"large_task_sets", "many_jobs_per_hyperperiod", "polynomial_time_requirement"},
		Caveats: []string{
			"Fractional WCETs are scaled to integer units before the flow stage runs",
			"BFD repair can fail even when a feasible assignment exists in principle, since it only ever moves a preempted job once, not recursively",
		},
	},
}

// Describe returns the static Info for kind, and false if kind names
// neither solver this module ships.
func Describe(kind Kind) (Info, bool) {
	info, ok := solverInfo[kind]
	return info, ok
}

// Recommend picks a solver kind from coarse shape signals: the flow
// solver's polynomial-time guarantee matters once the job*frame product
// grows large, where the ILP backend's exponential worst case becomes
// risky.
func Recommend(numJobs, numFrames int) Kind {
	if numJobs*numFrames > 2000 {
		return KindFlow
	}
	return KindILP
}
