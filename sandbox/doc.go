// Package sandbox compiles program text into three lifecycle phases and runs them in an
// embedded JavaScript runtime against private copies of actor records.
//
// Program shape:
//
//	let speed = 2                       // prelude: bound on the first Compile, kept after
//
//	function setup(sprites) { ... }     // init, once per sandbox lifetime
//	function draw(frame, sprites) { ... } // per frame while running
//	function mousePressed(x, y, sprites) { ... } // pointer press that missed every actor
//
// init also answers to "init", frame to "update", press to "onPointerDown".
//
// Each sprite is a plain object with id, name, x, y, size, color, visible,
// waitUntilFrame, actionQueue, currentActionIndex and actionState. Changes are read
// back after the phase returns; a thrown error discards all of them.
//
// Globals: sprites, frame, width, height, pointer, and the primitives clear, rect,
// circle, line, text, log, warn, tone, random and sprite(id).
package sandbox
