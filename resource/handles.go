package resource

import "github.com/forgelabs/rendercore/handle"

type textureMarker struct{}

func (textureMarker) IsHandleMarker() {}

type bufferMarker struct{}

func (bufferMarker) IsHandleMarker() {}

type viewMarker struct{}

func (viewMarker) IsHandleMarker() {}

// TextureHandle identifies a Texture registered with a Registry.
type TextureHandle = handle.ID[textureMarker]

// BufferHandle identifies a Buffer registered with a Registry.
type BufferHandle = handle.ID[bufferMarker]

// ViewHandle identifies a View registered with a Registry.
type ViewHandle = handle.ID[viewMarker]
