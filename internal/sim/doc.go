// Package sim runs a cluster of nodes inside one process for tests.
//
// Every node gets its own runtime, connected through pipes: lines a node
// writes to stdout are routed to the stdin of the addressed member, or kept
// as client replies when the destination is not a member. There is no
// latency model; Drop lets a test lose inter-node messages.
package sim
