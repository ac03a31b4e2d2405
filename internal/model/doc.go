// Package model defines the data structures shared across sitegraph's
// components: the fetched Page and the run Summary.
package model
