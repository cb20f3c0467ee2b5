// Package climb propagates a weight signal from sample individuals up
// through their ancestors, one generation at a time.
//
// # Lifecycle
//
// A [Climber] moves through a fixed sequence of states:
//
//	Loaded → Seeded → Climbing → Exhausted
//
// [New] binds a [pedigree.Graph] and allocates a zero weight vector
// (Loaded). [Climber.LoadSamples] records the samples and
// [Climber.InitSampleWeights] gives each a weight of 1 and makes them the
// frontier (Seeded). Each [Climber.ClimbStep] adds the weight every
// frontier member received on the previous step to each of its known
// parents and moves the frontier up to those parents (Climbing). When a step reaches no parent the climber
// is Exhausted; later steps do nothing.
//
//	c, _ := climb.New(g)
//	_ = c.LoadSamples([]pedigree.ID{3, 4})
//	_ = c.InitSampleWeights()
//	for {
//	    res, _ := c.ClimbStep()
//	    if !res.Advanced {
//	        break
//	    }
//	}
//	w, _ := c.WeightOf(1)
//
// # Weight Rule
//
// Weight is not a conserved mass. A node with two parents passes its whole
// weight to both, and an ancestor reached along several lineages sums all
// of them. An ancestor reached at two different depths rejoins the frontier
// with only the weight that just arrived, so every sample-to-ancestor path
// adds exactly one unit and a finished climb counts paths.
// [Climber.AddAncestorWeight] and [Climber.InheritedWeight] offer the
// halving-per-generation view for callers that want it.
//
// # Concurrency
//
// A Climber is the sole owner of its weights and frontier. Its methods are
// serialized by an internal mutex; graph traversals on the shared
// [pedigree.Graph] may run alongside it freely.
package climb
