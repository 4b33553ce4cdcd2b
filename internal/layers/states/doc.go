// Package states implements the "states" layer, which emits one layer record
// holding a fixed list of states declared inline in the generator config.
//
//	layers:
//	  - type: states
//	    name: Base
//	    config: {states: [Idle, Walk], default: Idle, weight: 1}
package states
