package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/DarioCorno/skengio/common"
)

// gltfMaterialExtractorImpl is the implementation of the
// gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor extracts surface materials from a parsed glTF
// document. Only the PBR metallic-roughness parameters used by the renderer
// are kept: base color, roughness, and the base color texture.
type gltfMaterialExtractor interface {
	// ExtractMaterials extracts all materials from the document.
	//
	// Returns:
	//   - []importedMaterial: the extracted materials
	//   - error: error if extraction fails
	ExtractMaterials() ([]importedMaterial, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a material extractor bound to a parser.
//
// Parameters:
//   - parser: the parser holding the parsed document
//
// Returns:
//   - gltfMaterialExtractor: a new extractor instance
func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterials() ([]importedMaterial, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	materials := make([]importedMaterial, 0, len(doc.Materials))
	for i, gm := range doc.Materials {
		name := common.Coalesce(gm.Name, fmt.Sprintf("material_%d", i))

		mat := importedMaterial{
			Name:      name,
			BaseColor: [4]float32{1, 1, 1, 1},
			Roughness: 1,
		}

		if pbr := gm.PbrMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				mat.BaseColor = *pbr.BaseColorFactor
			}
			if pbr.RoughnessFactor != nil {
				mat.Roughness = *pbr.RoughnessFactor
			}
			if pbr.BaseColorTexture != nil {
				tex, err := e.loadTexture(pbr.BaseColorTexture.Index, name)
				if err != nil {
					return nil, fmt.Errorf("material %q: %w", name, err)
				}
				mat.DiffuseTexture = tex
			}
		}

		materials = append(materials, mat)
	}

	return materials, nil
}

// loadTexture resolves a texture index into an ImportedTexture. Embedded
// images (bufferView or data URI) carry raw bytes; external images carry a
// path resolved against the document's base directory.
func (e *gltfMaterialExtractorImpl) loadTexture(textureIndex int, materialName string) (*common.ImportedTexture, error) {
	doc := e.parser.Document()

	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", textureIndex)
	}

	tex := &doc.Textures[textureIndex]
	if tex.Source == nil {
		return nil, fmt.Errorf("texture %d has no image source", textureIndex)
	}
	if *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", *tex.Source)
	}

	img := &doc.Images[*tex.Source]
	name := common.Coalesce(img.Name, fmt.Sprintf("%s_diffuse", materialName))

	switch {
	case img.BufferView != nil:
		data, err := e.parser.ReadBufferView(*img.BufferView)
		if err != nil {
			return nil, fmt.Errorf("failed to read image bufferView: %w", err)
		}
		return &common.ImportedTexture{Name: name, Data: data}, nil

	case strings.HasPrefix(img.URI, "data:"):
		data, _, err := gltfDecodeDataURI(img.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data URI: %w", err)
		}
		return &common.ImportedTexture{Name: name, Data: data}, nil

	case img.URI != "":
		return &common.ImportedTexture{
			Name: name,
			Path: filepath.Join(e.parser.BaseDir(), img.URI),
		}, nil

	default:
		return nil, fmt.Errorf("image %d has neither URI nor bufferView", *tex.Source)
	}
}
