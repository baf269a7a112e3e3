package native

import (
	"github.com/gogpu/wgpu/core"
)

// CommandEncoder wraps GPU command encoding operations.
// It provides a high-level interface for building command buffers
// that can be submitted to the GPU queue.
//
// CommandEncoder accumulates render passes and compute passes,
// then produces a command buffer when Finish is called.
type CommandEncoder struct {
	device  core.DeviceID
	encoder StubCommandEncoderID

	// State tracking
	hasActivePass bool
	passCount     int
}

// StubCommandEncoderID is a placeholder for actual wgpu CommandEncoderID.
type StubCommandEncoderID uint64

// StubCommandBufferID is a placeholder for actual wgpu CommandBufferID.
type StubCommandBufferID uint64

// NewCommandEncoder creates a new command encoder for the given device.
func NewCommandEncoder(device core.DeviceID) *CommandEncoder {
	// TODO: When wgpu is ready:
	// encoder, _ := core.CreateCommandEncoder(device, nil)

	return &CommandEncoder{
		device:  device,
		encoder: StubCommandEncoderID(1),
	}
}

// BeginRenderPass begins a new render pass targeting the specified texture.
// If clearTarget is true, the texture is cleared to transparent before drawing.
func (e *CommandEncoder) BeginRenderPass(target *GPUTexture, clearTarget bool) *RenderPass {
	if e.hasActivePass {
		// Can't begin a new pass while one is active
		return nil
	}

	e.hasActivePass = true
	e.passCount++

	// TODO: When wgpu is ready:
	// loadOp := gputypes.LoadOpLoad
	// if clearTarget {
	//     loadOp = gputypes.LoadOpClear
	// }
	//
	// desc := &gputypes.RenderPassDescriptor{
	//     ColorAttachments: []gputypes.RenderPassColorAttachment{
	//         {
	//             View:       target.ViewID(),
	//             LoadOp:     loadOp,
	//             StoreOp:    gputypes.StoreOpStore,
	//             ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
	//         },
	//     },
	// }
	// pass, _ := core.BeginRenderPass(e.encoder, desc)

	return &RenderPass{
		encoder: e,
		//nolint:gosec // passCount is incremented sequentially, overflow not possible in practice
		pass:   StubRenderPassID(e.passCount),
		target: target,
	}
}

// BeginComputePass begins a new compute pass.
func (e *CommandEncoder) BeginComputePass() *ComputePass {
	if e.hasActivePass {
		return nil
	}

	e.hasActivePass = true
	e.passCount++

	// TODO: When wgpu is ready:
	// pass, _ := core.BeginComputePass(e.encoder, nil)

	return &ComputePass{
		encoder: e,
		//nolint:gosec // passCount is incremented sequentially, overflow not possible in practice
		pass: StubComputePassID(e.passCount),
	}
}

// CopyTextureToTexture copies a region from one texture to another.
func (e *CommandEncoder) CopyTextureToTexture(src, dst *GPUTexture, width, height int) {
	if e.hasActivePass {
		// Can't copy while a pass is active
		return
	}

	// TODO: When wgpu is ready:
	// core.CommandEncoderCopyTextureToTexture(
	//     e.encoder,
	//     &gputypes.ImageCopyTexture{Texture: src.TextureID()},
	//     &gputypes.ImageCopyTexture{Texture: dst.TextureID()},
	//     &gputypes.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
	// )

	_ = src
	_ = dst
	_ = width
	_ = height
}

// CopyTextureToBuffer copies a texture to a buffer for readback.
func (e *CommandEncoder) CopyTextureToBuffer(src *GPUTexture, dst StubBufferID, bytesPerRow uint32) {
	if e.hasActivePass {
		return
	}

	// TODO: When wgpu is ready:
	// core.CommandEncoderCopyTextureToBuffer(
	//     e.encoder,
	//     &gputypes.ImageCopyTexture{Texture: src.TextureID()},
	//     &gputypes.ImageCopyBuffer{Buffer: dst, Layout: gputypes.TextureDataLayout{BytesPerRow: bytesPerRow}},
	//     &gputypes.Extent3D{Width: uint32(src.Width()), Height: uint32(src.Height()), DepthOrArrayLayers: 1},
	// )

	_ = src
	_ = dst
	_ = bytesPerRow
}

// Finish completes the command encoder and returns the command buffer.
// The encoder cannot be used after calling Finish.
func (e *CommandEncoder) Finish() StubCommandBufferID {
	// TODO: When wgpu is ready:
	// return core.FinishCommandEncoder(e.encoder)

	return StubCommandBufferID(1)
}

// PassCount returns the number of passes recorded.
func (e *CommandEncoder) PassCount() int {
	return e.passCount
}

// endPass is called by passes when they end.
func (e *CommandEncoder) endPass() {
	e.hasActivePass = false
}

// RenderPass represents an active render pass for draw commands.
// Draw commands can only be issued while a render pass is active.
type RenderPass struct {
	encoder *CommandEncoder
	pass    StubRenderPassID
	target  *GPUTexture

	// State
	pipelineBound bool
	bindGroupSet  bool
}

// StubRenderPassID is a placeholder for actual wgpu RenderPassID.
type StubRenderPassID uint64

// SetPipeline sets the render pipeline for subsequent draw calls.
func (p *RenderPass) SetPipeline(pipeline StubPipelineID) {
	// TODO: When wgpu is ready:
	// core.SetRenderPipeline(p.pass, pipeline)

	_ = pipeline
	p.pipelineBound = true
}

// SetBindGroup sets a bind group at the specified index.
func (p *RenderPass) SetBindGroup(index uint32, bindGroup StubBindGroupID) {
	// TODO: When wgpu is ready:
	// core.SetBindGroup(p.pass, index, bindGroup)

	_ = index
	_ = bindGroup
	p.bindGroupSet = true
}

// SetVertexBuffer sets a vertex buffer at the specified slot.
func (p *RenderPass) SetVertexBuffer(slot uint32, buffer StubBufferID) {
	// TODO: When wgpu is ready:
	// core.SetVertexBuffer(p.pass, slot, buffer)

	_ = slot
	_ = buffer
}

// SetIndexBuffer sets the index buffer for indexed drawing.
func (p *RenderPass) SetIndexBuffer(buffer StubBufferID, format IndexFormat) {
	// TODO: When wgpu is ready:
	// core.SetIndexBuffer(p.pass, buffer, format)

	_ = buffer
	_ = format
}

// Draw issues a non-indexed draw call.
// vertexCount: number of vertices to draw
// instanceCount: number of instances to draw
// firstVertex: offset into the vertex buffer
// firstInstance: instance ID offset
func (p *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if !p.pipelineBound {
		return
	}

	// TODO: When wgpu is ready:
	// core.Draw(p.pass, vertexCount, instanceCount, firstVertex, firstInstance)

	_ = vertexCount
	_ = instanceCount
	_ = firstVertex
	_ = firstInstance
}

// DrawIndexed issues an indexed draw call.
func (p *RenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if !p.pipelineBound {
		return
	}

	// TODO: When wgpu is ready:
	// core.DrawIndexed(p.pass, indexCount, instanceCount, firstIndex, baseVertex, firstInstance)

	_ = indexCount
	_ = instanceCount
	_ = firstIndex
	_ = baseVertex
	_ = firstInstance
}

// DrawFullScreenTriangle is a convenience method for drawing a full-screen triangle.
// This is commonly used for post-processing effects and texture blits.
// Uses 3 vertices with no instance or offset.
func (p *RenderPass) DrawFullScreenTriangle() {
	p.Draw(3, 1, 0, 0)
}

// End finishes the render pass.
// No more draw calls can be issued after this.
func (p *RenderPass) End() {
	// TODO: When wgpu is ready:
	// core.EndRenderPass(p.pass)

	p.encoder.endPass()
}

// Target returns the render target texture.
func (p *RenderPass) Target() *GPUTexture {
	return p.target
}

// ComputePass represents an active compute pass for dispatch commands.
type ComputePass struct {
	encoder *CommandEncoder
	pass    StubComputePassID

	// State
	pipelineBound bool
	bindGroupSet  bool
}

// StubComputePassID is a placeholder for actual wgpu ComputePassID.
type StubComputePassID uint64

// SetPipeline sets the compute pipeline for subsequent dispatch calls.
func (p *ComputePass) SetPipeline(pipeline StubComputePipelineID) {
	// TODO: When wgpu is ready:
	// core.SetComputePipeline(p.pass, pipeline)

	_ = pipeline
	p.pipelineBound = true
}

// SetBindGroup sets a bind group at the specified index.
func (p *ComputePass) SetBindGroup(index uint32, bindGroup StubBindGroupID) {
	// TODO: When wgpu is ready:
	// core.SetBindGroup(p.pass, index, bindGroup)

	_ = index
	_ = bindGroup
	p.bindGroupSet = true
}

// DispatchWorkgroups dispatches compute work.
// workgroupCountX/Y/Z: number of workgroups in each dimension
func (p *ComputePass) DispatchWorkgroups(workgroupCountX, workgroupCountY, workgroupCountZ uint32) {
	if !p.pipelineBound {
		return
	}

	// TODO: When wgpu is ready:
	// core.DispatchWorkgroups(p.pass, workgroupCountX, workgroupCountY, workgroupCountZ)

	_ = workgroupCountX
	_ = workgroupCountY
	_ = workgroupCountZ
}

// DispatchWorkgroupsForSize calculates and dispatches workgroups for a given work size.
// workSize: total number of work items
// workgroupSize: number of items per workgroup (typically 64 or 256)
func (p *ComputePass) DispatchWorkgroupsForSize(workSize, workgroupSize uint32) {
	if workgroupSize == 0 {
		workgroupSize = 64
	}
	workgroups := (workSize + workgroupSize - 1) / workgroupSize
	p.DispatchWorkgroups(workgroups, 1, 1)
}

// End finishes the compute pass.
func (p *ComputePass) End() {
	// TODO: When wgpu is ready:
	// core.EndComputePass(p.pass)

	p.encoder.endPass()
}

// IndexFormat specifies the format of index buffer elements.
type IndexFormat uint32

const (
	// IndexFormatUint16 uses 16-bit unsigned integers.
	IndexFormatUint16 IndexFormat = 0

	// IndexFormatUint32 uses 32-bit unsigned integers.
	IndexFormatUint32 IndexFormat = 1
)

// CommandBuffer represents a finished command buffer ready for submission.
type CommandBuffer struct {
	id StubCommandBufferID
}

// NewCommandBuffer wraps a command buffer ID.
func NewCommandBuffer(id StubCommandBufferID) *CommandBuffer {
	return &CommandBuffer{id: id}
}

// ID returns the underlying command buffer ID.
func (b *CommandBuffer) ID() StubCommandBufferID {
	return b.id
}

// QueueSubmitter submits command buffers to a GPU queue.
type QueueSubmitter struct {
	queue core.QueueID
}

// NewQueueSubmitter creates a new queue submitter.
func NewQueueSubmitter(queue core.QueueID) *QueueSubmitter {
	return &QueueSubmitter{queue: queue}
}

// Submit submits command buffers to the queue.
func (s *QueueSubmitter) Submit(buffers ...*CommandBuffer) {
	if len(buffers) == 0 {
		return
	}

	// TODO: When wgpu is ready:
	// ids := make([]core.CommandBufferID, len(buffers))
	// for i, b := range buffers {
	//     ids[i] = b.id
	// }
	// core.QueueSubmit(s.queue, ids)

	_ = buffers
}

// WriteBuffer writes data to a GPU buffer.
func (s *QueueSubmitter) WriteBuffer(buffer StubBufferID, offset uint64, data []byte) {
	// TODO: When wgpu is ready:
	// core.QueueWriteBuffer(s.queue, buffer, offset, data)

	_ = buffer
	_ = offset
	_ = data
}

// WriteTexture writes data to a GPU texture.
func (s *QueueSubmitter) WriteTexture(texture *GPUTexture, data []byte) {
	// TODO: When wgpu is ready:
	// core.QueueWriteTexture(
	//     s.queue,
	//     &gputypes.ImageCopyTexture{Texture: texture.TextureID()},
	//     data,
	//     &gputypes.TextureDataLayout{
	//         BytesPerRow: uint32(texture.Width() * texture.Format().BytesPerPixel()),
	//         RowsPerImage: uint32(texture.Height()),
	//     },
	//     &gputypes.Extent3D{
	//         Width: uint32(texture.Width()),
	//         Height: uint32(texture.Height()),
	//         DepthOrArrayLayers: 1,
	//     },
	// )

	_ = texture
	_ = data
}

// RenderCommandBuilder provides a fluent API for building render commands.
type RenderCommandBuilder struct {
	encoder *CommandEncoder
	pass    *RenderPass
}

// NewRenderCommandBuilder creates a new render command builder.
func NewRenderCommandBuilder(device core.DeviceID, target *GPUTexture, clearTarget bool) *RenderCommandBuilder {
	encoder := NewCommandEncoder(device)
	pass := encoder.BeginRenderPass(target, clearTarget)

	return &RenderCommandBuilder{
		encoder: encoder,
		pass:    pass,
	}
}

// SetPipeline sets the render pipeline.
func (b *RenderCommandBuilder) SetPipeline(pipeline StubPipelineID) *RenderCommandBuilder {
	b.pass.SetPipeline(pipeline)
	return b
}

// SetBindGroup sets a bind group.
func (b *RenderCommandBuilder) SetBindGroup(index uint32, bindGroup StubBindGroupID) *RenderCommandBuilder {
	b.pass.SetBindGroup(index, bindGroup)
	return b
}

// Draw issues a draw call.
func (b *RenderCommandBuilder) Draw(vertexCount, instanceCount uint32) *RenderCommandBuilder {
	b.pass.Draw(vertexCount, instanceCount, 0, 0)
	return b
}

// DrawFullScreen draws a full-screen triangle.
func (b *RenderCommandBuilder) DrawFullScreen() *RenderCommandBuilder {
	b.pass.DrawFullScreenTriangle()
	return b
}

// Finish ends the pass and returns the command buffer.
func (b *RenderCommandBuilder) Finish() StubCommandBufferID {
	b.pass.End()
	return b.encoder.Finish()
}

// ComputeCommandBuilder provides a fluent API for building compute commands.
type ComputeCommandBuilder struct {
	encoder *CommandEncoder
	pass    *ComputePass
}

// NewComputeCommandBuilder creates a new compute command builder.
func NewComputeCommandBuilder(device core.DeviceID) *ComputeCommandBuilder {
	encoder := NewCommandEncoder(device)
	pass := encoder.BeginComputePass()

	return &ComputeCommandBuilder{
		encoder: encoder,
		pass:    pass,
	}
}

// SetPipeline sets the compute pipeline.
func (b *ComputeCommandBuilder) SetPipeline(pipeline StubComputePipelineID) *ComputeCommandBuilder {
	b.pass.SetPipeline(pipeline)
	return b
}

// SetBindGroup sets a bind group.
func (b *ComputeCommandBuilder) SetBindGroup(index uint32, bindGroup StubBindGroupID) *ComputeCommandBuilder {
	b.pass.SetBindGroup(index, bindGroup)
	return b
}

// Dispatch dispatches workgroups.
func (b *ComputeCommandBuilder) Dispatch(x, y, z uint32) *ComputeCommandBuilder {
	b.pass.DispatchWorkgroups(x, y, z)
	return b
}

// DispatchForSize calculates and dispatches for a work size.
func (b *ComputeCommandBuilder) DispatchForSize(size, groupSize uint32) *ComputeCommandBuilder {
	b.pass.DispatchWorkgroupsForSize(size, groupSize)
	return b
}

// Finish ends the pass and returns the command buffer.
func (b *ComputeCommandBuilder) Finish() StubCommandBufferID {
	b.pass.End()
	return b.encoder.Finish()
}
