// Package render draws a laid out grid as terminal text.
//
// Each column becomes a fixed number of characters and each text row covers
// a fixed number of pixels, so the drawing keeps the shape of the grid:
// items in the same column stack, modules straddle columns and whitespace
// left under a module shows up as blank cells.
//
//	fmt.Println(render.Text(layout, render.Options{Color: true}))
package render
