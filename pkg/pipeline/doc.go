// Package pipeline provides a demand-driven graph for processing images.
//
// A Graph holds nodes and the links between them. Nothing runs when a node is added: work only happens when
// Update is called on a node. Update walks the node and everything upstream of it in three passes. The first pass
// propagates image information (geometry, largest region, components) downstream. The second pass propagates the
// requested regions upstream, each node translating what it must produce into what it needs from its inputs. The
// last pass executes, upstream first, every node whose cached output is out of date and reuses the others.
//
// A node is out of date when it has never run, when one of its parameters changed after its last execution, when
// one of its inputs executed after it, or when its cached output does not cover the region now requested. Parameter
// changes are tracked with a process wide modification clock, see Tick and Filter.Modified.
//
// Inside a node, Request.Split and Request.ForEach distribute the work over a bounded number of goroutines. Every
// worker joins before the node is marked up to date, so from the graph's point of view a node is never asynchronous.
//
// The first error aborts Update. The failing node drops its output and stays Stale, and the next Update retries it.
package pipeline
