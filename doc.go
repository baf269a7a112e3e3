// Package qse is a software-rasterized real-time 3D engine for Quake-style
// indoor levels.
//
// # Overview
//
// qse is split into an offline map compiler and a runtime renderer:
//
//   - build: brush/polygon soup to BSP tree to portal graph.
//   - compactmap: compact, index-based, mmap-able map representation and
//     its binary file format.
//   - material: named material registry and mip-pyramid texture cache.
//   - visibility: runtime per-frame portal flood with 2D screen-space
//     bound propagation.
//   - surface: per-polygon surface cache with baked lightmaps and dynamic
//     lighting composited onto mip-selected textures.
//   - raster: tiled, multi-threaded, fixed-point software rasterizer.
//   - model: external triangle-model (skeletal/vertex-animated) contract.
//   - postprocess: HDR tonemap and bloom.
//   - engine: per-frame orchestration tying the above together.
//
// # Architecture
//
// Offline stages run once per map (geom -> build -> compactmap); runtime
// stages run once per frame (visibility -> surface -> raster -> postprocess),
// driven by engine.Frame.
package qse
