// Package harness runs scripted measurement sessions and checks their
// outcome.
//
// A Scenario is a YAML file listing user inputs (pointer down/move/up,
// scale selection, undo, redo, document loads) and assertions on the final
// state. Run drives a fresh engine.Session through the steps with a
// deterministic clock and scripted measurement ids, so the same scenario
// always yields the same trace and canonical final state. RunWithGolden
// additionally compares that state against testdata/golden/<name>.golden.
//
// Example scenario:
//
//	name: calibrate_after_commit
//	description: Display distance follows the selected scale.
//	ids: [A]
//	steps:
//	  - action: down
//	  - action: move
//	    x: 3
//	    y: 4
//	  - action: up
//	  - action: select_scale
//	    scale: "100"
//	assertions:
//	  - type: formatted_distance
//	    index: 1
//	    text: 0.63 m
package harness
