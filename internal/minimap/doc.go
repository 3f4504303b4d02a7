// Package minimap ties the renderer pieces together for one editor view.
//
// An Engine owns the view's image cache, render scheduler, rasterizer and
// overlay painter. Hosts call the change hooks (TextChanged, FoldsChanged,
// MarkupChanged, ViewportChanged, SetScale) from their own event handlers
// and call CurrentImage and the Paint methods from their paint path. Paint
// methods never block on rasterization.
//
// A Registry keeps one Engine per open view, keyed by ViewID.
package minimap
