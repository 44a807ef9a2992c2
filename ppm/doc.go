package ppm

/*

# Partially persistent pointer machines

This package makes an arbitrary graph of mutable records ("nodes") connected
by typed pointer fields partially persistent: every past state of the graph
stays readable forever, and only the most recent state may be written.

It is the classic node-copying construction for bounded degree pointer
machines:

- each node keeps the field values it was created with (the base map) plus a
  small append-only log of later writes, each stamped with a version
- every pointer edge is recorded twice, as a Link on the source and a
  Backlink on the target, so a node can find its predecessors without a
  graph wide scan
- when a node's log is full the node is frozen and a clone takes its place.
  The clone starts with the flattened fields and an empty log. Every
  predecessor is then rewritten to point at the clone, and those writes may
  in turn fill other logs. That chain of clones is the cascade.

## Core invariants

1. versions are issued by the Context, one per field write, strictly
   increasing and never reused
2. logs are append only and frozen nodes are never written again, so a
   Revision (node, version) reads the same values every time it is read
3. for every occupied Link (target, field, slot) on A, target's Backlink at
   slot is (A, field)
4. the number of occupied Links on a node equals the number of its fields
   currently holding a Ref
5. no node ever has more than MaxLinks occupied Link or Backlink slots

## Why MaxMods must exceed MaxLinks

A fresh clone has an empty log. During a cascade it may receive one retarget
write per incoming edge that is itself a self loop, and later one write per
out neighbour that clones. If the log could fill before those writes land,
the clone would clone again and a dense cyclic graph could cascade forever.
Requiring MaxMods > MaxLinks means each clone retires more log entries than
the retargets it can cause, so the total number of unretired entries strictly
falls and every cascade terminates. The default is 2 * MaxLinks.

## Reading history

Reads never go through cached raw node pointers. A Revision resolves, at the
time of the read, which instance in a node's clone chain was authoritative
for its version: successors born at or before the version are followed, and
predecessors are followed back when the handle's node was born after the
version. Ref values read through a Revision are resolved the same way, so a
pointer to a node that has since been cloned resolves to the clone for every
version at or after the clone's birth, and to the frozen original before it.

## Compound operations

An operation that writes several nodes (for example unlinking an element of a
list) must always write through the latest instance of each node. Acquire a
Holder for every node involved; a cascade moves holders onto clones as it
freezes their nodes, so Holder.Node() is always writable.

## Concurrency

A Context and its nodes assume a single mutator. Historical reads at versions
that have already been written are pure and may run alongside a writer on a
different node, but concurrent writes, or a write concurrent with a cascade,
need an external lock over the whole Context.
*/
