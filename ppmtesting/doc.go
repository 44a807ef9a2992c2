// Package ppmtesting provides shared fixtures for tests of ppm and the
// structures built on it: a logger-wired context, node factories, a
// consistency check and a reference deque model.
package ppmtesting
