// Package pkg provides the libraries behind pedsignal.
//
// # Overview
//
// Pedsignal analyzes genealogical pedigrees: multi-parent DAGs in which
// every individual has at most a father and a mother. The pkg directory is
// organized into three areas:
//
//  1. Core: [pedigree] (graph, lineage, descent cones) and [climb] (weight
//     propagation). Neither logs nor touches the filesystem.
//  2. Infrastructure: [io] (pedigree tables, JSON), [cache] (file, memory
//     and Redis result caches), [store] (saved reports, memory/file/MongoDB),
//     [config], [errors], [observability] and [buildinfo].
//  3. Orchestration: [pipeline] (load → cones/climb with caching and
//     reports), shared by the CLI and the HTTP API.
//
// # Architecture
//
// The typical data flow:
//
//	Pedigree table (Ind Father Mother)
//	         ↓
//	    [io] package (parse and validate)
//	         ↓
//	    [pedigree] package (graph, lineage, cones)
//	         ↓
//	    [climb] package (generation-stepped weights)
//	         ↓
//	    JSON reports, terminal output, HTTP responses
//
// # Quick Start
//
//	g, err := io.ImportPedigree("family.txt")
//	if err != nil {
//	    return err
//	}
//
//	cones, err := pedigree.AllowedInds(g, []pedigree.ID{5, 6})
//	// cones.CommonAncestors, cones.ConeInds[anc], cones.IndCones[id]
//
//	c, _ := climb.New(g, climb.WithAllowed(pedigree.NewSet(cones.ConeMembers()...)))
//	_ = c.LoadSamples([]pedigree.ID{5, 6})
//	_ = c.InitSampleWeights()
//	steps, err := c.Run(0)
//
// The [pipeline.Runner] wraps these steps with caching, observability hooks
// and report storage.
package pkg
